package planner

import (
	"go-musician-booking/core/middleware"
	"go-musician-booking/modules/planner/controller"
	"go-musician-booking/modules/planner/repository"
	"go-musician-booking/modules/planner/router"
	"go-musician-booking/modules/planner/service"

	"github.com/labstack/echo/v4"
)

func Init(g *echo.Group, repo repository.PlannerRepository, mw *middleware.Middleware) *service.PlannerService {
	svc := service.NewPlannerService(repo)
	ctrl := controller.NewPlannerController(svc)
	router.NewPlannerRouter(ctrl).Register(g, mw)
	return svc
}
