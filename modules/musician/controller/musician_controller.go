package controller

import (
	"go-musician-booking/core/controller"
	"go-musician-booking/core/errors"
	"go-musician-booking/core/params"
	"go-musician-booking/modules/musician/dto"
	"go-musician-booking/modules/musician/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type MusicianController struct {
	controller.BaseController
	service *service.MusicianService
}

func NewMusicianController(service *service.MusicianService) *MusicianController {
	return &MusicianController{
		BaseController: controller.NewBaseController(),
		service:        service,
	}
}

func (c *MusicianController) Create(ctx echo.Context) error {
	req := new(dto.CreateMusicianRequest)
	if err := ctx.Bind(req); err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}

	m, err := c.service.Create(ctx.Request().Context(), req)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, m, "Musician created")
}

func (c *MusicianController) Get(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid musician id", err))
	}

	m, err := c.service.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, m, "Musician retrieved")
}

func (c *MusicianController) List(ctx echo.Context) error {
	result, err := c.service.List(ctx.Request().Context(), *params.NewQueryParams(ctx))
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, result, "Musicians retrieved")
}

func (c *MusicianController) SetPayRate(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid musician id", err))
	}

	req := new(dto.PayRateRequest)
	if err := ctx.Bind(req); err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}

	rate, err := c.service.SetPayRate(ctx.Request().Context(), id, req)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, rate, "Pay rate saved")
}
