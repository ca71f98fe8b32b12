package saga

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go-musician-booking/core/constants"
	"go-musician-booking/core/errors"
	"go-musician-booking/core/logger"
	"go-musician-booking/core/queue"
	"go-musician-booking/core/telemetry"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Handler executes one named step. It must be safe to run more than once.
type Handler func(ctx context.Context, payload json.RawMessage) error

type Options struct {
	MaxAttempts int
	Backoff     time.Duration
	ReplayDelay time.Duration
	// Queue, when set, receives a replay task for every parked step.
	Queue queue.Enqueuer
}

// Runner executes side effects that must not fail the primary write.
// Steps that exhaust their retries are parked as dead letters.
type Runner struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	store    Store
	opts     Options
}

type replayTask struct {
	DeadLetterID uuid.UUID `json:"dead_letter_id"`
}

func NewRunner(store Store, opts Options) *Runner {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &Runner{
		handlers: make(map[string]Handler),
		store:    store,
		opts:     opts,
	}
}

func (r *Runner) Register(step string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[step] = h
}

func (r *Runner) handler(step string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[step]
	return h, ok
}

// Run executes step with bounded retries. On exhaustion the step is parked
// and a DownstreamError is returned for the caller to log.
func (r *Runner) Run(ctx context.Context, sagaName, step string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to encode saga payload", err)
	}

	h, ok := r.handler(step)
	if !ok {
		return errors.NewAppError(errors.ErrInternalServer, fmt.Sprintf("no handler registered for step %s", step), nil)
	}

	ctx, span := telemetry.Tracer().Start(ctx, "saga."+step,
		trace.WithAttributes(attribute.String("saga.name", sagaName), attribute.String("saga.step", step)))
	defer span.End()

	var lastErr error
attempts:
	for attempt := 1; attempt <= r.opts.MaxAttempts; attempt++ {
		if lastErr = h(ctx, body); lastErr == nil {
			telemetry.SagaSteps.WithLabelValues(step, "ok").Inc()
			return nil
		}
		telemetry.SagaSteps.WithLabelValues(step, "retry").Inc()
		span.AddEvent("attempt failed", trace.WithAttributes(attribute.Int("attempt", attempt)))
		logger.Warn("Saga:Run:AttemptFailed", "saga", sagaName, "step", step, "attempt", attempt, "error", lastErr)

		if attempt < r.opts.MaxAttempts && r.opts.Backoff > 0 {
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
				break attempts
			case <-time.After(r.opts.Backoff * time.Duration(attempt)):
			}
		}
	}

	span.SetStatus(codes.Error, lastErr.Error())
	// ctx may already be cancelled; parking must still happen.
	if _, err := r.park(context.WithoutCancel(ctx), sagaName, step, body, r.opts.MaxAttempts, lastErr); err != nil {
		logger.Error("Saga:Run:Park:Error:", err)
	}
	return errors.NewAppError(errors.ErrDownstream, fmt.Sprintf("step %s failed", step), lastErr)
}

// Schedule parks step for later replay without running it. Used from inside
// a transaction where retrying inline would hold locks.
func (r *Runner) Schedule(ctx context.Context, sagaName, step string, payload any, cause error) (*DeadLetter, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to encode saga payload", err)
	}
	return r.park(ctx, sagaName, step, body, 0, cause)
}

func (r *Runner) park(ctx context.Context, sagaName, step string, body []byte, attempts int, cause error) (*DeadLetter, error) {
	now := time.Now()
	dl := &DeadLetter{
		ID:        uuid.New(),
		Saga:      sagaName,
		Step:      step,
		Payload:   string(body),
		Attempts:  attempts,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if cause != nil {
		dl.LastError = cause.Error()
	}

	if err := r.store.Save(ctx, dl); err != nil {
		return nil, err
	}
	telemetry.SagaSteps.WithLabelValues(step, "parked").Inc()
	logger.Warn("Saga:Park", "dead_letter_id", dl.ID, "saga", sagaName, "step", step, "error", dl.LastError)

	if r.opts.Queue != nil {
		task, _ := json.Marshal(replayTask{DeadLetterID: dl.ID})
		if err := r.opts.Queue.Enqueue(ctx, constants.TaskSagaReplay, task, r.opts.ReplayDelay); err != nil {
			logger.Error("Saga:Park:Enqueue:Error:", err)
		}
	}
	return dl, nil
}

// Replay re-executes a parked step once and resolves it on success.
func (r *Runner) Replay(ctx context.Context, id uuid.UUID) error {
	dl, err := r.store.Get(ctx, id)
	if err != nil {
		return errors.NewAppError(errors.ErrGetFailed, "failed to load dead letter", err)
	}
	if dl == nil {
		return errors.NewAppError(errors.ErrNotFound, "dead letter not found", nil)
	}
	if dl.ResolvedAt != nil {
		return nil
	}

	h, ok := r.handler(dl.Step)
	if !ok {
		return errors.NewAppError(errors.ErrInternalServer, fmt.Sprintf("no handler registered for step %s", dl.Step), nil)
	}

	if runErr := h(ctx, json.RawMessage(dl.Payload)); runErr != nil {
		telemetry.SagaSteps.WithLabelValues(dl.Step, "replay_failed").Inc()
		if err := r.store.RecordAttempt(ctx, id, runErr.Error()); err != nil {
			logger.Error("Saga:Replay:RecordAttempt:Error:", err)
		}
		return errors.NewAppError(errors.ErrDownstream, fmt.Sprintf("replay of step %s failed", dl.Step), runErr)
	}

	if err := r.store.Resolve(ctx, id, time.Now()); err != nil {
		return errors.NewAppError(errors.ErrUpdateFailed, "failed to resolve dead letter", err)
	}
	telemetry.SagaSteps.WithLabelValues(dl.Step, "replayed").Inc()
	logger.Info("Saga:Replay:Resolved", "dead_letter_id", id, "step", dl.Step)
	return nil
}

// HandleReplayTask is the queue handler for constants.TaskSagaReplay.
func (r *Runner) HandleReplayTask(ctx context.Context, payload []byte) error {
	var t replayTask
	if err := json.Unmarshal(payload, &t); err != nil {
		return err
	}
	return r.Replay(ctx, t.DeadLetterID)
}

func (r *Runner) ListDeadLetters(ctx context.Context, limit int) ([]DeadLetter, error) {
	return r.store.ListUnresolved(ctx, limit)
}
