package router

import (
	"go-musician-booking/core/middleware"
	"go-musician-booking/modules/contract/controller"

	"github.com/labstack/echo/v4"
)

type ContractRouter struct {
	contracts *controller.ContractController
	links     *controller.LinkController
}

func NewContractRouter(contracts *controller.ContractController, links *controller.LinkController) *ContractRouter {
	return &ContractRouter{contracts: contracts, links: links}
}

// Register mounts the token-authenticated musician routes on public and the
// staff routes on private.
func (r *ContractRouter) Register(public, private *echo.Group, mw *middleware.Middleware) {
	public.GET("/contracts/view-by-token", r.contracts.ViewByToken)
	public.POST("/contracts/respond", r.contracts.Respond)
	public.GET("/contract-links/view-by-token", r.links.ViewByToken)
	public.POST("/contract-links/respond", r.links.Respond)

	contracts := private.Group("/contracts", mw.AuthMiddleware())
	contracts.POST("/generate", r.contracts.Generate)
	contracts.GET("/:id", r.contracts.Detail)

	monthly := private.Group("/monthly-contracts", mw.AuthMiddleware())
	monthly.POST("/:id/send", r.contracts.Send)
	monthly.POST("/:id/cancel", r.contracts.Cancel)

	links := private.Group("/contract-links", mw.AuthMiddleware())
	links.GET("", r.links.ListByBooking)
	links.POST("", r.links.Create)
	links.POST("/:id/send", r.links.Send)
	links.POST("/:id/cancel", r.links.Cancel)
}
