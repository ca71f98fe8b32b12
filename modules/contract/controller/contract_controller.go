package controller

import (
	"go-musician-booking/core/controller"
	"go-musician-booking/core/errors"
	"go-musician-booking/core/middleware"
	"go-musician-booking/modules/contract/dto"
	"go-musician-booking/modules/contract/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type ContractController struct {
	controller.BaseController
	contracts *service.ContractService
	generator *service.GeneratorService
}

func NewContractController(contracts *service.ContractService, generator *service.GeneratorService) *ContractController {
	return &ContractController{
		BaseController: controller.NewBaseController(),
		contracts:      contracts,
		generator:      generator,
	}
}

func (c *ContractController) ViewByToken(ctx echo.Context) error {
	var id *uuid.UUID
	if raw := ctx.QueryParam("id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid contract id", err))
		}
		id = &parsed
	}

	view, err := c.contracts.ViewByToken(ctx.Request().Context(), ctx.QueryParam("token"), id)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, view, "Contract retrieved")
}

func (c *ContractController) Respond(ctx echo.Context) error {
	req := new(dto.RespondRequest)
	if err := ctx.Bind(req); err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}

	m, err := c.contracts.Respond(ctx.Request().Context(), service.RespondInput{
		Token:      req.Token,
		ContractID: req.ContractID,
		Action:     req.Action,
		Comments:   req.Comments,
		SignerName: req.SignerName,
		IPAddress:  ctx.RealIP(),
		UserAgent:  ctx.Request().UserAgent(),
	})
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, map[string]any{
		"id":          m.ID,
		"status":      m.Status,
		"respondedAt": m.RespondedAt,
		"completedAt": m.CompletedAt,
	}, "Response recorded")
}

func (c *ContractController) Generate(ctx echo.Context) error {
	req := new(dto.GenerateContractsRequest)
	if err := ctx.Bind(req); err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}

	var actor *uuid.UUID
	if id, err := middleware.UserID(ctx); err == nil {
		actor = &id
	}

	result, err := c.generator.GenerateMonthlyContracts(ctx.Request().Context(), service.GenerateRequest{
		PlannerID:     req.PlannerID,
		AssignmentIDs: req.AssignmentIDs,
		Actor:         actor,
	})
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, result, "Contracts generated")
}

func (c *ContractController) Detail(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid contract id", err))
	}

	detail, err := c.contracts.Detail(ctx.Request().Context(), id)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, detail, "Contract retrieved")
}

func (c *ContractController) Send(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid contract id", err))
	}
	actor, _ := middleware.UserID(ctx)

	result, err := c.contracts.Send(ctx.Request().Context(), id, actor.String())
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	msg := "Contract sent"
	if result.Skipped {
		msg = "Contract already " + string(result.Status) + ", send skipped"
	}
	return c.SuccessResponse(ctx, result, msg)
}

func (c *ContractController) Cancel(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid contract id", err))
	}
	req := new(dto.CancelRequest)
	if err := ctx.Bind(req); err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}
	actor, _ := middleware.UserID(ctx)

	m, err := c.contracts.Cancel(ctx.Request().Context(), id, actor.String(), req.Reason)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, m, "Contract cancelled")
}
