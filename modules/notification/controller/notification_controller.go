package controller

import (
	"strconv"

	"go-musician-booking/core/controller"
	"go-musician-booking/core/errors"
	"go-musician-booking/core/middleware"
	"go-musician-booking/core/params"
	"go-musician-booking/modules/notification/dto"
	"go-musician-booking/modules/notification/entity"
	"go-musician-booking/modules/notification/service"

	"github.com/labstack/echo/v4"
)

type NotificationController struct {
	controller.BaseController
	inbox *service.NotificationService
}

func NewNotificationController(inbox *service.NotificationService) *NotificationController {
	return &NotificationController{
		BaseController: controller.NewBaseController(),
		inbox:          inbox,
	}
}

// Inbox lists the caller's notifications. Supports ?type= and ?unread=true.
func (c *NotificationController) Inbox(ctx echo.Context) error {
	userID, err := middleware.UserID(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	filter := entity.InboxFilter{Type: ctx.QueryParam("type")}
	if raw := ctx.QueryParam("unread"); raw != "" {
		unread, err := strconv.ParseBool(raw)
		if err != nil {
			return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "unread must be a boolean", err))
		}
		filter.UnreadOnly = unread
	}

	inbox, err := c.inbox.Inbox(ctx.Request().Context(), userID, filter, *params.NewQueryParams(ctx))
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, inbox, "Notifications retrieved")
}

func (c *NotificationController) MarkAsRead(ctx echo.Context) error {
	userID, err := middleware.UserID(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	req := new(dto.MarkAsReadRequest)
	if err := ctx.Bind(req); err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}
	if len(req.IDs) == 0 {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidInput, "ids is required", nil))
	}

	updated, err := c.inbox.MarkAsRead(ctx.Request().Context(), userID, req.IDs)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, dto.MarkAsReadResponse{Updated: updated}, "Notifications marked as read")
}

func (c *NotificationController) MarkAllAsRead(ctx echo.Context) error {
	userID, err := middleware.UserID(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	updated, err := c.inbox.MarkAsRead(ctx.Request().Context(), userID, nil)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, dto.MarkAsReadResponse{Updated: updated}, "Inbox marked as read")
}

func (c *NotificationController) CountUnread(ctx echo.Context) error {
	userID, err := middleware.UserID(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	count, err := c.inbox.CountUnread(ctx.Request().Context(), userID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, map[string]int{"count": count}, "Unread count retrieved")
}
