package router

import (
	"go-musician-booking/core/middleware"
	"go-musician-booking/modules/planner/controller"

	"github.com/labstack/echo/v4"
)

type PlannerRouter struct {
	controller *controller.PlannerController
}

func NewPlannerRouter(controller *controller.PlannerController) *PlannerRouter {
	return &PlannerRouter{controller: controller}
}

func (r *PlannerRouter) Register(g *echo.Group, mw *middleware.Middleware) {
	planners := g.Group("/planners", mw.AuthMiddleware())
	planners.POST("", r.controller.Create)
	planners.GET("/:id", r.controller.Get)
	planners.POST("/:id/slots", r.controller.AddSlot)
	planners.POST("/:id/slots/:slotId/assignments", r.controller.Assign)

	g.PATCH("/planner-assignments/:id", r.controller.UpdateAssignment, mw.AuthMiddleware())
}
