package middleware

import (
	"strings"

	"go-musician-booking/core/constants"
	"go-musician-booking/core/controller"
	"go-musician-booking/core/errors"
	"go-musician-booking/core/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Middleware struct {
	controller.BaseController
}

func NewMiddleware() *Middleware {
	return &Middleware{BaseController: controller.NewBaseController()}
}

// AuthMiddleware requires a valid staff bearer token and stores its claims
// under constants.ContextTokenData.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return m.ErrorResponse(c, errors.NewAppError(errors.ErrMissingAuthorizationHeader, "missing authorization header", nil))
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return m.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidTokenFormat, "invalid authorization header", nil))
			}

			claims, err := utils.ValidateAndParseToken(token)
			if err != nil {
				return m.ErrorResponse(c, err)
			}

			c.Set(constants.ContextTokenData, claims)
			return next(c)
		}
	}
}

// UserID returns the authenticated user's id set by AuthMiddleware.
func UserID(c echo.Context) (uuid.UUID, error) {
	claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok || claims == nil {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "token data not found in context", nil)
	}
	return claims.UserID, nil
}
