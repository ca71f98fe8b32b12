package notification

import (
	"go-musician-booking/core/middleware"
	"go-musician-booking/modules/notification/controller"
	"go-musician-booking/modules/notification/repository"
	"go-musician-booking/modules/notification/router"
	"go-musician-booking/modules/notification/service"

	"github.com/labstack/echo/v4"
)

func Init(g *echo.Group, repo repository.NotificationRepository, mw *middleware.Middleware) *service.NotificationService {
	svc := service.NewNotificationService(repo)
	ctrl := controller.NewNotificationController(svc)

	router.NewNotificationRouter(ctrl).Register(g, mw)

	return svc
}
