package invitation

import (
	"go-musician-booking/core/database"
	"go-musician-booking/core/middleware"
	"go-musician-booking/modules/invitation/controller"
	"go-musician-booking/modules/invitation/repository"
	"go-musician-booking/modules/invitation/router"
	"go-musician-booking/modules/invitation/service"

	"github.com/labstack/echo/v4"
)

// Init wires the invitation module. Accepting an invitation books the musician
// through bookings.
func Init(g *echo.Group, repo repository.InvitationRepository, bookings service.BookingCreator, availability service.AvailabilityChecker, notifier service.Notifier, tx database.Transactor, activity service.ActivityRecorder, mw *middleware.Middleware) *service.InvitationService {
	svc := service.NewInvitationService(repo, bookings, availability, notifier, tx, activity)
	ctrl := controller.NewInvitationController(svc)
	router.NewInvitationRouter(ctrl).Register(g, mw)
	return svc
}
