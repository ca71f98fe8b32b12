package service

import (
	"context"
	stderrors "errors"
	"testing"

	"go-musician-booking/modules/activity/entity"
	"go-musician-booking/modules/activity/repository"

	"github.com/google/uuid"
)

type failingRepo struct {
	repository.ActivityRepository
	calls int
}

func (r *failingRepo) Append(ctx context.Context, a *entity.Activity) error {
	r.calls++
	return stderrors.New("activities: insert rejected")
}

// savepointTx counts savepoints and surfaces what the wrapped call returned.
type savepointTx struct {
	savepoints int
	lastErr    error
}

func (t *savepointTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (t *savepointTx) Savepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	t.savepoints++
	t.lastErr = fn(ctx)
	return t.lastErr
}

func TestRecordIsolatesFailedAppend(t *testing.T) {
	repo := &failingRepo{}
	tx := &savepointTx{}
	svc := NewActivityService(repo, tx)

	svc.Record(context.Background(), &entity.Activity{
		EntityType: entity.EntityAvailability,
		EntityID:   uuid.New(),
		Action:     "availability.hold",
	})

	if repo.calls != 1 {
		t.Fatalf("Append calls = %d, want 1", repo.calls)
	}
	if tx.savepoints != 1 {
		t.Errorf("savepoints = %d, want the append wrapped in 1", tx.savepoints)
	}
	if tx.lastErr == nil {
		t.Errorf("savepoint saw no error, want the append failure rolled back")
	}
}

func TestRecordFillsDefaults(t *testing.T) {
	repo := repository.NewMemoryActivityRepository()
	svc := NewActivityService(repo, &savepointTx{})
	id := uuid.New()

	svc.Record(context.Background(), &entity.Activity{EntityType: entity.EntityAvailability, EntityID: id, Action: "availability.set"})

	items, err := svc.List(context.Background(), entity.EntityAvailability, id)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].ID == uuid.Nil || items[0].CreatedAt.IsZero() {
		t.Errorf("defaults not filled: %+v", items[0])
	}
}
