package controller

import (
	"go-musician-booking/core/controller"
	"go-musician-booking/core/errors"
	"go-musician-booking/core/middleware"
	"go-musician-booking/modules/planner/dto"
	"go-musician-booking/modules/planner/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type PlannerController struct {
	controller.BaseController
	service *service.PlannerService
}

func NewPlannerController(service *service.PlannerService) *PlannerController {
	return &PlannerController{
		BaseController: controller.NewBaseController(),
		service:        service,
	}
}

func (c *PlannerController) Create(ctx echo.Context) error {
	req := new(dto.CreatePlannerRequest)
	if err := ctx.Bind(req); err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}
	actor, _ := middleware.UserID(ctx)

	p, err := c.service.CreatePlanner(ctx.Request().Context(), req, actor)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, p, "Planner created")
}

func (c *PlannerController) Get(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid planner id", err))
	}

	p, err := c.service.GetPlanner(ctx.Request().Context(), id)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	assignments, err := c.service.ListAssignments(ctx.Request().Context(), id, nil)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, map[string]any{"planner": p, "assignments": assignments}, "Planner retrieved")
}

func (c *PlannerController) AddSlot(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid planner id", err))
	}
	req := new(dto.CreateSlotRequest)
	if err := ctx.Bind(req); err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}

	slot, err := c.service.AddSlot(ctx.Request().Context(), id, req)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, slot, "Slot created")
}

func (c *PlannerController) Assign(ctx echo.Context) error {
	slotID, err := uuid.Parse(ctx.Param("slotId"))
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid slot id", err))
	}
	req := new(dto.AssignRequest)
	if err := ctx.Bind(req); err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}

	a, err := c.service.Assign(ctx.Request().Context(), slotID, req)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, a, "Musician assigned")
}

func (c *PlannerController) UpdateAssignment(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid assignment id", err))
	}
	req := new(dto.UpdateAssignmentRequest)
	if err := ctx.Bind(req); err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}

	a, err := c.service.UpdateAssignment(ctx.Request().Context(), id, req)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, a, "Assignment updated")
}
