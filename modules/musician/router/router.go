package router

import (
	"go-musician-booking/core/middleware"
	"go-musician-booking/modules/musician/controller"

	"github.com/labstack/echo/v4"
)

type MusicianRouter struct {
	controller *controller.MusicianController
}

func NewMusicianRouter(controller *controller.MusicianController) *MusicianRouter {
	return &MusicianRouter{controller: controller}
}

func (r *MusicianRouter) Register(g *echo.Group, mw *middleware.Middleware) {
	musicians := g.Group("/musicians", mw.AuthMiddleware())
	musicians.POST("", r.controller.Create)
	musicians.GET("", r.controller.List)
	musicians.GET("/:id", r.controller.Get)
	musicians.PUT("/:id/pay-rates", r.controller.SetPayRate)
}
