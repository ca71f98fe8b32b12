package musician

import (
	"go-musician-booking/core/middleware"
	"go-musician-booking/modules/musician/controller"
	"go-musician-booking/modules/musician/repository"
	"go-musician-booking/modules/musician/router"
	"go-musician-booking/modules/musician/service"

	"github.com/labstack/echo/v4"
)

func Init(g *echo.Group, repo repository.MusicianRepository, mw *middleware.Middleware) *service.MusicianService {
	svc := service.NewMusicianService(repo)
	ctrl := controller.NewMusicianController(svc)
	router.NewMusicianRouter(ctrl).Register(g, mw)
	return svc
}
