package availability

import (
	"go-musician-booking/core/database"
	"go-musician-booking/core/middleware"
	"go-musician-booking/modules/availability/controller"
	"go-musician-booking/modules/availability/repository"
	"go-musician-booking/modules/availability/router"
	"go-musician-booking/modules/availability/service"

	"github.com/labstack/echo/v4"
)

func Init(g *echo.Group, repo repository.AvailabilityRepository, tx database.Transactor, activity service.ActivityRecorder, mw *middleware.Middleware) *service.AvailabilityService {
	svc := service.NewAvailabilityService(repo, tx, activity)
	ctrl := controller.NewAvailabilityController(svc)
	router.NewAvailabilityRouter(ctrl).Register(g, mw)
	return svc
}
