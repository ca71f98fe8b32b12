package controller

import (
	"go-musician-booking/core/controller"
	"go-musician-booking/core/errors"
	"go-musician-booking/core/middleware"
	"go-musician-booking/modules/booking/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type BookingController struct {
	controller.BaseController
	service *service.BookingService
}

func NewBookingController(service *service.BookingService) *BookingController {
	return &BookingController{
		BaseController: controller.NewBaseController(),
		service:        service,
	}
}

func (c *BookingController) Get(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid booking id", err))
	}

	b, err := c.service.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, b, "Booking retrieved")
}

func (c *BookingController) ListByMusician(ctx echo.Context) error {
	musicianID, err := uuid.Parse(ctx.QueryParam("musician_id"))
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "musician_id is required", err))
	}

	items, err := c.service.ListByMusician(ctx.Request().Context(), musicianID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, items, "Bookings retrieved")
}

func (c *BookingController) MarkPaid(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid booking id", err))
	}
	actor, _ := middleware.UserID(ctx)

	b, err := c.service.MarkPaid(ctx.Request().Context(), id, actor.String())
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, b, "Booking marked as paid")
}
