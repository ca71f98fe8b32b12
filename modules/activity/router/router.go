package router

import (
	"go-musician-booking/core/middleware"
	"go-musician-booking/modules/activity/controller"

	"github.com/labstack/echo/v4"
)

type ActivityRouter struct {
	controller *controller.ActivityController
}

func NewActivityRouter(controller *controller.ActivityController) *ActivityRouter {
	return &ActivityRouter{controller: controller}
}

func (r *ActivityRouter) Register(g *echo.Group, mw *middleware.Middleware) {
	g.GET("/activities", r.controller.List, mw.AuthMiddleware())
}
