package contract

import (
	"go-musician-booking/core/middleware"
	"go-musician-booking/modules/contract/controller"
	"go-musician-booking/modules/contract/router"
	"go-musician-booking/modules/contract/service"

	"github.com/labstack/echo/v4"
)

type Module struct {
	Contracts *service.ContractService
	Links     *service.LinkService
	Generator *service.GeneratorService
}

func Init(public, private *echo.Group, deps service.Dependencies, planners service.PlannerSource, fees service.FeeSource, mw *middleware.Middleware) *Module {
	contracts := service.NewContractService(deps)
	links := service.NewLinkService(deps)
	generator := service.NewGeneratorService(planners, fees, deps.Contracts, contracts, deps.Options.TermsAndConditions)

	router.NewContractRouter(
		controller.NewContractController(contracts, generator),
		controller.NewLinkController(links),
	).Register(public, private, mw)

	return &Module{Contracts: contracts, Links: links, Generator: generator}
}
