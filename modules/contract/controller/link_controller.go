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

type LinkController struct {
	controller.BaseController
	links *service.LinkService
}

func NewLinkController(links *service.LinkService) *LinkController {
	return &LinkController{
		BaseController: controller.NewBaseController(),
		links:          links,
	}
}

func (c *LinkController) ViewByToken(ctx echo.Context) error {
	view, err := c.links.ViewByToken(ctx.Request().Context(), ctx.QueryParam("token"))
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, view, "Contract retrieved")
}

func (c *LinkController) Respond(ctx echo.Context) error {
	req := new(dto.RespondRequest)
	if err := ctx.Bind(req); err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}

	link, err := c.links.RespondLink(ctx.Request().Context(), service.RespondInput{
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
		"id":          link.ID,
		"status":      link.Status,
		"respondedAt": link.RespondedAt,
		"completedAt": link.CompletedAt,
	}, "Response recorded")
}

func (c *LinkController) Create(ctx echo.Context) error {
	req := new(dto.CreateLinkRequest)
	if err := ctx.Bind(req); err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}
	if req.BookingID == uuid.Nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidInput, "bookingId is required", nil))
	}
	actor, _ := middleware.UserID(ctx)

	link, err := c.links.CreateLink(ctx.Request().Context(), req.BookingID, actor.String())
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, link, "Contract link created")
}

func (c *LinkController) ListByBooking(ctx echo.Context) error {
	bookingID, err := uuid.Parse(ctx.QueryParam("booking_id"))
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "booking_id is required", err))
	}

	items, err := c.links.ListByBooking(ctx.Request().Context(), bookingID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, items, "Contract links retrieved")
}

func (c *LinkController) Send(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid link id", err))
	}
	actor, _ := middleware.UserID(ctx)

	result, err := c.links.SendLink(ctx.Request().Context(), id, actor.String())
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	msg := "Contract link sent"
	if result.Skipped {
		msg = "Contract link already " + string(result.Status) + ", send skipped"
	}
	return c.SuccessResponse(ctx, result, msg)
}

func (c *LinkController) Cancel(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid link id", err))
	}
	req := new(dto.CancelRequest)
	if err := ctx.Bind(req); err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}
	actor, _ := middleware.UserID(ctx)

	link, err := c.links.CancelLink(ctx.Request().Context(), id, actor.String(), req.Reason)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, link, "Contract link cancelled")
}
