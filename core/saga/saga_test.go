package saga

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"go-musician-booking/core/errors"

	"github.com/google/uuid"
)

type recordingQueue struct {
	tasks [][]byte
}

func (q *recordingQueue) Enqueue(ctx context.Context, taskType string, payload []byte, delay time.Duration) error {
	q.tasks = append(q.tasks, payload)
	return nil
}

func TestRunSucceedsAfterRetry(t *testing.T) {
	store := NewMemoryStore()
	r := NewRunner(store, Options{MaxAttempts: 3})

	calls := 0
	r.Register("email", func(ctx context.Context, payload json.RawMessage) error {
		calls++
		if calls < 2 {
			return fmt.Errorf("smtp unavailable")
		}
		return nil
	})

	if err := r.Run(context.Background(), "contract.send", "email", map[string]string{"to": "a@b.c"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	pending, _ := store.ListUnresolved(context.Background(), 10)
	if len(pending) != 0 {
		t.Fatalf("dead letters = %d, want 0", len(pending))
	}
}

func TestRunParksExhaustedStep(t *testing.T) {
	store := NewMemoryStore()
	q := &recordingQueue{}
	r := NewRunner(store, Options{MaxAttempts: 2, Queue: q})

	r.Register("artifact", func(ctx context.Context, payload json.RawMessage) error {
		return fmt.Errorf("bucket unreachable")
	})

	err := r.Run(context.Background(), "contract.respond", "artifact", map[string]int{"n": 1})
	if !errors.Is(err, errors.DownstreamError) {
		t.Fatalf("Run() error = %v, want downstream error", err)
	}

	pending, _ := store.ListUnresolved(context.Background(), 10)
	if len(pending) != 1 {
		t.Fatalf("dead letters = %d, want 1", len(pending))
	}
	dl := pending[0]
	if dl.Attempts != 2 || dl.Step != "artifact" || dl.LastError != "bucket unreachable" {
		t.Fatalf("unexpected dead letter %+v", dl)
	}
	if len(q.tasks) != 1 {
		t.Fatalf("replay tasks = %d, want 1", len(q.tasks))
	}
}

func TestReplayResolvesDeadLetter(t *testing.T) {
	store := NewMemoryStore()
	r := NewRunner(store, Options{MaxAttempts: 1})

	healthy := false
	var seen map[string]string
	r.Register("sync", func(ctx context.Context, payload json.RawMessage) error {
		if !healthy {
			return fmt.Errorf("down")
		}
		return json.Unmarshal(payload, &seen)
	})

	dl, err := r.Schedule(context.Background(), "availability", "sync", map[string]string{"musician": "m1"}, fmt.Errorf("lock timeout"))
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	if err := r.Replay(context.Background(), dl.ID); err == nil {
		t.Fatal("Replay() expected error while handler is failing")
	}
	got, _ := store.Get(context.Background(), dl.ID)
	if got.Attempts != 1 || got.ResolvedAt != nil {
		t.Fatalf("after failed replay: %+v", got)
	}

	healthy = true
	task, _ := json.Marshal(replayTask{DeadLetterID: dl.ID})
	if err := r.HandleReplayTask(context.Background(), task); err != nil {
		t.Fatalf("HandleReplayTask() error = %v", err)
	}
	got, _ = store.Get(context.Background(), dl.ID)
	if got.ResolvedAt == nil {
		t.Fatal("dead letter not resolved")
	}
	if seen["musician"] != "m1" {
		t.Fatalf("payload = %v", seen)
	}

	// A resolved dead letter replays as a no-op.
	healthy = false
	if err := r.Replay(context.Background(), dl.ID); err != nil {
		t.Fatalf("second Replay() error = %v", err)
	}
}

func TestReplayUnknownDeadLetter(t *testing.T) {
	r := NewRunner(NewMemoryStore(), Options{})
	err := r.Replay(context.Background(), uuid.New())
	if errors.CodeOf(err) != errors.ErrNotFound {
		t.Fatalf("Replay() code = %v, want NOT_FOUND", errors.CodeOf(err))
	}
}
