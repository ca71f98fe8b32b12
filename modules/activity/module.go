package activity

import (
	"go-musician-booking/core/database"
	"go-musician-booking/core/middleware"
	"go-musician-booking/modules/activity/controller"
	"go-musician-booking/modules/activity/repository"
	"go-musician-booking/modules/activity/router"
	"go-musician-booking/modules/activity/service"

	"github.com/labstack/echo/v4"
)

func Init(g *echo.Group, repo repository.ActivityRepository, tx database.Transactor, mw *middleware.Middleware) *service.ActivityService {
	svc := service.NewActivityService(repo, tx)
	ctrl := controller.NewActivityController(svc)
	router.NewActivityRouter(ctrl).Register(g, mw)
	return svc
}
