package invoice

import (
	"go-musician-booking/core/database"
	"go-musician-booking/core/middleware"
	"go-musician-booking/modules/invoice/controller"
	"go-musician-booking/modules/invoice/repository"
	"go-musician-booking/modules/invoice/router"
	"go-musician-booking/modules/invoice/service"

	"github.com/labstack/echo/v4"
)

func Init(g *echo.Group, repo repository.InvoiceRepository, planners service.PlannerSource, fees service.FeeSource, tx database.Transactor, activity service.ActivityRecorder, mw *middleware.Middleware) *service.InvoiceService {
	svc := service.NewInvoiceService(repo, planners, fees, tx, activity)
	ctrl := controller.NewInvoiceController(svc)
	router.NewInvoiceRouter(ctrl).Register(g, mw)
	return svc
}
