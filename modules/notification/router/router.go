package router

import (
	"go-musician-booking/core/middleware"
	"go-musician-booking/modules/notification/controller"

	"github.com/labstack/echo/v4"
)

type NotificationRouter struct {
	controller *controller.NotificationController
}

func NewNotificationRouter(controller *controller.NotificationController) *NotificationRouter {
	return &NotificationRouter{controller: controller}
}

// Register mounts the staff inbox. Contract responses and invitation replies
// land here.
func (r *NotificationRouter) Register(g *echo.Group, mw *middleware.Middleware) {
	inbox := g.Group("/notifications", mw.AuthMiddleware())
	inbox.GET("", r.controller.Inbox)
	inbox.GET("/unread/count", r.controller.CountUnread)
	inbox.POST("/read", r.controller.MarkAsRead)
	inbox.POST("/read/all", r.controller.MarkAllAsRead)
}
