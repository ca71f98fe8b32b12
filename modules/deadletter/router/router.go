package router

import (
	"go-musician-booking/core/middleware"
	"go-musician-booking/modules/deadletter/controller"

	"github.com/labstack/echo/v4"
)

type DeadLetterRouter struct {
	controller *controller.DeadLetterController
}

func NewDeadLetterRouter(controller *controller.DeadLetterController) *DeadLetterRouter {
	return &DeadLetterRouter{controller: controller}
}

func (r *DeadLetterRouter) Register(g *echo.Group, mw *middleware.Middleware) {
	letters := g.Group("/dead-letters", mw.AuthMiddleware())
	letters.GET("", r.controller.List)
	letters.POST("/:id/replay", r.controller.Replay)
}
