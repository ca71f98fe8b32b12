package controller

import (
	"go-musician-booking/core/controller"
	"go-musician-booking/core/errors"
	"go-musician-booking/core/middleware"
	"go-musician-booking/modules/invoice/dto"
	"go-musician-booking/modules/invoice/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type InvoiceController struct {
	controller.BaseController
	service *service.InvoiceService
}

func NewInvoiceController(service *service.InvoiceService) *InvoiceController {
	return &InvoiceController{
		BaseController: controller.NewBaseController(),
		service:        service,
	}
}

func (c *InvoiceController) Generate(ctx echo.Context) error {
	req := new(dto.GenerateInvoicesRequest)
	if err := ctx.Bind(req); err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}
	actor, _ := middleware.UserID(ctx)

	invoices, err := c.service.GenerateInvoices(ctx.Request().Context(), req.PlannerID, actor.String())
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, invoices, "Invoices generated")
}

func (c *InvoiceController) List(ctx echo.Context) error {
	plannerID, err := uuid.Parse(ctx.QueryParam("planner_id"))
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "planner_id is required", err))
	}

	invoices, err := c.service.ListByPlanner(ctx.Request().Context(), plannerID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, invoices, "Invoices retrieved")
}

func (c *InvoiceController) Get(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid invoice id", err))
	}

	inv, err := c.service.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, inv, "Invoice retrieved")
}

func (c *InvoiceController) Finalize(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid invoice id", err))
	}
	actor, _ := middleware.UserID(ctx)

	inv, err := c.service.Finalize(ctx.Request().Context(), id, actor.String())
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, inv, "Invoice finalized")
}

func (c *InvoiceController) MarkPaid(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid invoice id", err))
	}
	req := new(dto.MarkPaidRequest)
	if err := ctx.Bind(req); err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}
	actor, _ := middleware.UserID(ctx)

	inv, err := c.service.MarkPaid(ctx.Request().Context(), id, req.Notes, actor.String())
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, inv, "Invoice marked as paid")
}
