package deadletter

import (
	"go-musician-booking/core/middleware"
	"go-musician-booking/modules/deadletter/controller"
	"go-musician-booking/modules/deadletter/router"

	"github.com/labstack/echo/v4"
)

func Init(g *echo.Group, runner controller.Replayer, mw *middleware.Middleware) {
	ctrl := controller.NewDeadLetterController(runner)
	router.NewDeadLetterRouter(ctrl).Register(g, mw)
}
