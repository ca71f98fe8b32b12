package service

import (
	"context"

	"go-musician-booking/core/saga"
	activityEntity "go-musician-booking/modules/activity/entity"
	bookingEntity "go-musician-booking/modules/booking/entity"
	"go-musician-booking/modules/contract/entity"
	musicianEntity "go-musician-booking/modules/musician/entity"
	notificationDto "go-musician-booking/modules/notification/dto"
	plannerEntity "go-musician-booking/modules/planner/entity"
	syncService "go-musician-booking/modules/synchronizer/service"

	"github.com/google/uuid"
)

type ActivityRecorder interface {
	Record(ctx context.Context, a *activityEntity.Activity)
}

type MusicianLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*musicianEntity.Musician, error)
}

// Reconciler keeps the availability ledger in step with date transitions.
type Reconciler interface {
	Reconcile(ctx context.Context, t syncService.Transition)
}

type SagaRunner interface {
	Register(step string, h saga.Handler)
	Run(ctx context.Context, sagaName, step string, payload any) error
}

type Notifier interface {
	Create(ctx context.Context, req *notificationDto.CreateNotificationRequest) error
}

// BookingLifecycle is the booking side of a single-event contract link.
type BookingLifecycle interface {
	GetByID(ctx context.Context, id uuid.UUID) (*bookingEntity.Booking, error)
	ApplyLinkStatus(ctx context.Context, bookingID, linkID uuid.UUID, status entity.ContractStatus, actor string) error
}

// AssignmentTracker keeps the planner assignment behind each contract date
// in step with the contract.
type AssignmentTracker interface {
	MoveAssignments(ctx context.Context, ids []uuid.UUID, to plannerEntity.AssignmentStatus) error
}

type Options struct {
	TermsAndConditions string
	ResponseBaseURL    string
	NotifyEmail        string
}
