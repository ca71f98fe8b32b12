package synchronizer

import (
	"go-musician-booking/core/database"
	"go-musician-booking/core/saga"
	availabilityRepo "go-musician-booking/modules/availability/repository"
	"go-musician-booking/modules/synchronizer/service"
)

// Init builds the synchronizer and registers its replay step.
func Init(ledger availabilityRepo.AvailabilityRepository, activity service.ActivityRecorder, tx database.Transactor, runner *saga.Runner, claims ...service.ClaimSource) *service.Synchronizer {
	sync := service.NewSynchronizer(ledger, activity, tx, runner)
	for _, c := range claims {
		sync.AddClaimSource(c)
	}
	runner.Register(service.StepAvailabilitySync, sync.HandleStep)
	return sync
}
