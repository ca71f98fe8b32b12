package router

import (
	"go-musician-booking/core/middleware"
	"go-musician-booking/modules/invoice/controller"

	"github.com/labstack/echo/v4"
)

type InvoiceRouter struct {
	controller *controller.InvoiceController
}

func NewInvoiceRouter(controller *controller.InvoiceController) *InvoiceRouter {
	return &InvoiceRouter{controller: controller}
}

func (r *InvoiceRouter) Register(g *echo.Group, mw *middleware.Middleware) {
	invoices := g.Group("/invoices", mw.AuthMiddleware())
	invoices.POST("/generate", r.controller.Generate)
	invoices.GET("", r.controller.List)
	invoices.GET("/:id", r.controller.Get)
	invoices.POST("/:id/finalize", r.controller.Finalize)
	invoices.POST("/:id/pay", r.controller.MarkPaid)
}
