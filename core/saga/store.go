package saga

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"go-musician-booking/core/database"
	"go-musician-booking/core/logger"

	"github.com/google/uuid"
)

type DeadLetter struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	Saga       string     `db:"saga" json:"saga"`
	Step       string     `db:"step" json:"step"`
	Payload    string     `db:"payload" json:"payload"`
	Attempts   int        `db:"attempts" json:"attempts"`
	LastError  string     `db:"last_error" json:"last_error"`
	ResolvedAt *time.Time `db:"resolved_at" json:"resolved_at"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

type Store interface {
	Save(ctx context.Context, dl *DeadLetter) error
	Get(ctx context.Context, id uuid.UUID) (*DeadLetter, error)
	ListUnresolved(ctx context.Context, limit int) ([]DeadLetter, error)
	RecordAttempt(ctx context.Context, id uuid.UUID, lastErr string) error
	Resolve(ctx context.Context, id uuid.UUID, at time.Time) error
}

type PostgresStore struct {
	db *database.Database
}

func NewPostgresStore(db *database.Database) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, dl *DeadLetter) error {
	query := `
		INSERT INTO dead_letters (id, saga, step, payload, attempts, last_error, created_at, updated_at)
		VALUES (:id, :saga, :step, :payload, :attempts, :last_error, :created_at, :updated_at)
	`
	if _, err := s.db.NamedExecContext(ctx, query, dl); err != nil {
		logger.Error("DeadLetterStore:Save:Error:", err)
		return err
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*DeadLetter, error) {
	var dl DeadLetter
	err := s.db.GetContext(ctx, &dl, `SELECT * FROM dead_letters WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("DeadLetterStore:Get:Error:", err)
		return nil, err
	}
	return &dl, nil
}

func (s *PostgresStore) ListUnresolved(ctx context.Context, limit int) ([]DeadLetter, error) {
	var items []DeadLetter
	query := `SELECT * FROM dead_letters WHERE resolved_at IS NULL ORDER BY created_at LIMIT $1`
	if err := s.db.SelectContext(ctx, &items, query, limit); err != nil {
		logger.Error("DeadLetterStore:ListUnresolved:Error:", err)
		return nil, err
	}
	return items, nil
}

func (s *PostgresStore) RecordAttempt(ctx context.Context, id uuid.UUID, lastErr string) error {
	query := `UPDATE dead_letters SET attempts = attempts + 1, last_error = $2, updated_at = now() WHERE id = $1`
	return s.db.ExecContext(ctx, query, id, lastErr)
}

func (s *PostgresStore) Resolve(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE dead_letters SET attempts = attempts + 1, resolved_at = $2, updated_at = $2 WHERE id = $1 AND resolved_at IS NULL`
	return s.db.ExecContext(ctx, query, id, at)
}

type MemoryStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]DeadLetter
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[uuid.UUID]DeadLetter)}
}

func (s *MemoryStore) Save(ctx context.Context, dl *DeadLetter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[dl.ID] = *dl
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*DeadLetter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dl, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return &dl, nil
}

func (s *MemoryStore) ListUnresolved(ctx context.Context, limit int) ([]DeadLetter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []DeadLetter
	for _, dl := range s.items {
		if dl.ResolvedAt == nil {
			out = append(out, dl)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) RecordAttempt(ctx context.Context, id uuid.UUID, lastErr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dl, ok := s.items[id]; ok {
		dl.Attempts++
		dl.LastError = lastErr
		dl.UpdatedAt = time.Now()
		s.items[id] = dl
	}
	return nil
}

func (s *MemoryStore) Resolve(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dl, ok := s.items[id]; ok && dl.ResolvedAt == nil {
		dl.Attempts++
		dl.ResolvedAt = &at
		dl.UpdatedAt = at
		s.items[id] = dl
	}
	return nil
}
