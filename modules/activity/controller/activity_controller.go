package controller

import (
	"go-musician-booking/core/controller"
	"go-musician-booking/core/errors"
	"go-musician-booking/modules/activity/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type ActivityController struct {
	controller.BaseController
	service *service.ActivityService
}

func NewActivityController(service *service.ActivityService) *ActivityController {
	return &ActivityController{
		BaseController: controller.NewBaseController(),
		service:        service,
	}
}

// List returns the audit trail of one entity.
func (c *ActivityController) List(ctx echo.Context) error {
	entityType := ctx.QueryParam("entity_type")
	entityID, err := uuid.Parse(ctx.QueryParam("entity_id"))
	if entityType == "" || err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "entity_type and entity_id are required", err))
	}

	items, err := c.service.List(ctx.Request().Context(), entityType, entityID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, items, "Activity retrieved")
}
