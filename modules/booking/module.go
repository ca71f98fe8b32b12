package booking

import (
	"go-musician-booking/core/middleware"
	"go-musician-booking/modules/booking/controller"
	"go-musician-booking/modules/booking/repository"
	"go-musician-booking/modules/booking/router"
	"go-musician-booking/modules/booking/service"

	"github.com/labstack/echo/v4"
)

func Init(g *echo.Group, repo repository.BookingRepository, activity service.ActivityRecorder, mw *middleware.Middleware) *service.BookingService {
	svc := service.NewBookingService(repo, activity)
	ctrl := controller.NewBookingController(svc)
	router.NewBookingRouter(ctrl).Register(g, mw)
	return svc
}
