package router

import (
	"go-musician-booking/core/middleware"
	"go-musician-booking/modules/availability/controller"

	"github.com/labstack/echo/v4"
)

type AvailabilityRouter struct {
	controller *controller.AvailabilityController
}

func NewAvailabilityRouter(controller *controller.AvailabilityController) *AvailabilityRouter {
	return &AvailabilityRouter{controller: controller}
}

func (r *AvailabilityRouter) Register(g *echo.Group, mw *middleware.Middleware) {
	musicians := g.Group("/musicians", mw.AuthMiddleware())
	musicians.GET("/:id/availability", r.controller.GetRange)
	musicians.PUT("/:id/availability", r.controller.Set)
}
