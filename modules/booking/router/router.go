package router

import (
	"go-musician-booking/core/middleware"
	"go-musician-booking/modules/booking/controller"

	"github.com/labstack/echo/v4"
)

type BookingRouter struct {
	controller *controller.BookingController
}

func NewBookingRouter(controller *controller.BookingController) *BookingRouter {
	return &BookingRouter{controller: controller}
}

func (r *BookingRouter) Register(g *echo.Group, mw *middleware.Middleware) {
	bookings := g.Group("/bookings", mw.AuthMiddleware())
	bookings.GET("", r.controller.ListByMusician)
	bookings.GET("/:id", r.controller.Get)
	bookings.POST("/:id/mark-paid", r.controller.MarkPaid)
}
