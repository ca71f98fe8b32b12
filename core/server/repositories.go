package server

import (
	"go-musician-booking/core/database"
	"go-musician-booking/core/saga"
	activityRepo "go-musician-booking/modules/activity/repository"
	availabilityRepo "go-musician-booking/modules/availability/repository"
	bookingRepo "go-musician-booking/modules/booking/repository"
	contractRepo "go-musician-booking/modules/contract/repository"
	invitationRepo "go-musician-booking/modules/invitation/repository"
	invoiceRepo "go-musician-booking/modules/invoice/repository"
	musicianRepo "go-musician-booking/modules/musician/repository"
	notificationRepo "go-musician-booking/modules/notification/repository"
	plannerRepo "go-musician-booking/modules/planner/repository"
)

// repositories holds one store per module, all backed by the same engine.
type repositories struct {
	tx            database.Transactor
	sagas         saga.Store
	activity      activityRepo.ActivityRepository
	availability  availabilityRepo.AvailabilityRepository
	musicians     musicianRepo.MusicianRepository
	planners      plannerRepo.PlannerRepository
	bookings      bookingRepo.BookingRepository
	contracts     contractRepo.MonthlyContractRepository
	links         contractRepo.ContractLinkRepository
	invoices      invoiceRepo.InvoiceRepository
	invitations   invitationRepo.InvitationRepository
	notifications notificationRepo.NotificationRepository
}

func postgresRepositories(db *database.Database) *repositories {
	return &repositories{
		tx:            db,
		sagas:         saga.NewPostgresStore(db),
		activity:      activityRepo.NewActivityRepository(db),
		availability:  availabilityRepo.NewAvailabilityRepository(db),
		musicians:     musicianRepo.NewMusicianRepository(db),
		planners:      plannerRepo.NewPlannerRepository(db),
		bookings:      bookingRepo.NewBookingRepository(db),
		contracts:     contractRepo.NewMonthlyContractRepository(db),
		links:         contractRepo.NewContractLinkRepository(db),
		invoices:      invoiceRepo.NewInvoiceRepository(db),
		invitations:   invitationRepo.NewInvitationRepository(db),
		notifications: notificationRepo.NewNotificationRepository(db),
	}
}

func memoryRepositories() *repositories {
	return &repositories{
		tx:            database.NewMemoryTransactor(),
		sagas:         saga.NewMemoryStore(),
		activity:      activityRepo.NewMemoryActivityRepository(),
		availability:  availabilityRepo.NewMemoryAvailabilityRepository(),
		musicians:     musicianRepo.NewMemoryMusicianRepository(),
		planners:      plannerRepo.NewMemoryPlannerRepository(),
		bookings:      bookingRepo.NewMemoryBookingRepository(),
		contracts:     contractRepo.NewMemoryMonthlyContractRepository(),
		links:         contractRepo.NewMemoryContractLinkRepository(),
		invoices:      invoiceRepo.NewMemoryInvoiceRepository(),
		invitations:   invitationRepo.NewMemoryInvitationRepository(),
		notifications: notificationRepo.NewMemoryNotificationRepository(),
	}
}
