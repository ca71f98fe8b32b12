package controller

import (
	"context"
	"strconv"

	"go-musician-booking/core/constants"
	"go-musician-booking/core/controller"
	"go-musician-booking/core/errors"
	"go-musician-booking/core/saga"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Replayer is the dead-letter side of the saga runner.
type Replayer interface {
	ListDeadLetters(ctx context.Context, limit int) ([]saga.DeadLetter, error)
	Replay(ctx context.Context, id uuid.UUID) error
}

type DeadLetterController struct {
	controller.BaseController
	runner Replayer
}

func NewDeadLetterController(runner Replayer) *DeadLetterController {
	return &DeadLetterController{
		BaseController: controller.NewBaseController(),
		runner:         runner,
	}
}

func (c *DeadLetterController) List(ctx echo.Context) error {
	limit := constants.DefaultPageSize
	if raw := ctx.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "limit must be a positive integer", err))
		}
		limit = min(n, constants.MaxPageSize)
	}

	items, err := c.runner.ListDeadLetters(ctx.Request().Context(), limit)
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrGetFailed, "failed to list dead letters", err))
	}
	return c.SuccessResponse(ctx, items, "Dead letters retrieved")
}

func (c *DeadLetterController) Replay(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid dead letter id", err))
	}

	if err := c.runner.Replay(ctx.Request().Context(), id); err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, map[string]any{"id": id, "resolved": true}, "Dead letter replayed")
}
