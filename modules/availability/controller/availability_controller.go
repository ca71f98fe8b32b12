package controller

import (
	"go-musician-booking/core/controller"
	"go-musician-booking/core/errors"
	"go-musician-booking/core/middleware"
	"go-musician-booking/core/utils"
	"go-musician-booking/modules/availability/dto"
	"go-musician-booking/modules/availability/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AvailabilityController struct {
	controller.BaseController
	service *service.AvailabilityService
}

func NewAvailabilityController(service *service.AvailabilityService) *AvailabilityController {
	return &AvailabilityController{
		BaseController: controller.NewBaseController(),
		service:        service,
	}
}

// GetRange handles GET /musicians/:id/availability?from=YYYY-MM-DD&to=YYYY-MM-DD
func (c *AvailabilityController) GetRange(ctx echo.Context) error {
	musicianID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid musician id", err))
	}
	from, err := utils.ParseDate(ctx.QueryParam("from"))
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid from date", err))
	}
	to, err := utils.ParseDate(ctx.QueryParam("to"))
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid to date", err))
	}

	days, err := c.service.Range(ctx.Request().Context(), musicianID, from, to)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, days, "Availability retrieved")
}

func (c *AvailabilityController) Set(ctx echo.Context) error {
	musicianID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid musician id", err))
	}

	req := new(dto.SetAvailabilityRequest)
	if err := ctx.Bind(req); err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}
	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid date", err))
	}

	actor := ""
	if userID, err := middleware.UserID(ctx); err == nil {
		actor = userID.String()
	}

	if err := c.service.Set(ctx.Request().Context(), musicianID, date, req.IsAvailable, req.Note, actor); err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, nil, "Availability updated")
}
