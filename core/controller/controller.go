package controller

import (
	"net/http"
	"time"

	"go-musician-booking/core/errors"
	"go-musician-booking/core/logger"

	"github.com/labstack/echo/v4"
)

type (
	SuccessResponse struct {
		Status    int       `json:"status"`
		Message   string    `json:"message"`
		Data      any       `json:"data,omitempty"`
		Timestamp time.Time `json:"timestamp"`
	}

	ErrorResponse struct {
		Status    string           `json:"status"`
		Code      errors.ErrorCode `json:"code"`
		Message   string           `json:"message"`
		Timestamp time.Time        `json:"timestamp"`
	}
)

// BaseController is embedded by every module controller and the auth middleware.
type BaseController interface {
	SuccessResponse(c echo.Context, data any, message string) error
	ErrorResponse(c echo.Context, err error) error
}

type responseWriter struct{}

func NewBaseController() BaseController {
	return responseWriter{}
}

func (responseWriter) SuccessResponse(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusOK, &SuccessResponse{
		Status:    http.StatusOK,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// StatusFor maps an application error code to its HTTP status.
func StatusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrInvalidInput, errors.ErrInvalidRequestData, errors.ErrInvalidState:
		return http.StatusBadRequest
	case errors.ErrUnauthorized, errors.ErrTokenExpired, errors.ErrInvalidTokenFormat, errors.ErrMissingAuthorizationHeader:
		return http.StatusUnauthorized
	case errors.ErrForbidden:
		return http.StatusForbidden
	case errors.ErrNotFound:
		return http.StatusNotFound
	case errors.ErrAlreadyExists:
		return http.StatusConflict
	case errors.ErrTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse writes err as JSON. Messages of unexpected failures are
// replaced so internals never reach the client.
func (responseWriter) ErrorResponse(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	code := errors.ErrInternalServer
	msg := "internal server error"

	var ae *errors.AppError
	if errors.As(err, &ae) && ae != nil {
		code = ae.Code
		status = StatusFor(code)
		if ae.Message != "" && status != http.StatusInternalServerError {
			msg = ae.Message
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error("BaseController:ErrorResponse", "status", status, "code", code, "error", err)
	} else {
		logger.Warn("BaseController:ErrorResponse", "status", status, "code", code, "message", msg)
	}
	return c.JSON(status, &ErrorResponse{
		Status:    "error",
		Code:      code,
		Message:   msg,
		Timestamp: time.Now(),
	})
}
