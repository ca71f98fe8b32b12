package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go-musician-booking/core/utils"
	"go-musician-booking/modules/contract/entity"

	"github.com/google/uuid"
)

type contractKey struct {
	plannerID   uuid.UUID
	month, year int
}

type memoryMonthlyContractRepository struct {
	mu        sync.Mutex
	contracts map[uuid.UUID]entity.MonthlyContract
	byPlanner map[contractKey]uuid.UUID
	musicians map[uuid.UUID]entity.MonthlyContractMusician
	dates     map[uuid.UUID][]entity.MonthlyContractDate
}

func NewMemoryMonthlyContractRepository() MonthlyContractRepository {
	return &memoryMonthlyContractRepository{
		contracts: make(map[uuid.UUID]entity.MonthlyContract),
		byPlanner: make(map[contractKey]uuid.UUID),
		musicians: make(map[uuid.UUID]entity.MonthlyContractMusician),
		dates:     make(map[uuid.UUID][]entity.MonthlyContractDate),
	}
}

func (r *memoryMonthlyContractRepository) UpsertContract(ctx context.Context, c *entity.MonthlyContract) (*entity.MonthlyContract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := contractKey{c.PlannerID, c.Month, c.Year}
	if id, ok := r.byPlanner[key]; ok {
		existing := r.contracts[id]
		return &existing, nil
	}
	r.contracts[c.ID] = *c
	r.byPlanner[key] = c.ID
	out := *c
	return &out, nil
}

func (r *memoryMonthlyContractRepository) GetContract(ctx context.Context, id uuid.UUID) (*entity.MonthlyContract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *memoryMonthlyContractRepository) CreateMusician(ctx context.Context, m *entity.MonthlyContractMusician, dates []entity.MonthlyContractDate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.musicians {
		if existing.ContractID == m.ContractID && existing.MusicianID == m.MusicianID {
			return fmt.Errorf("contract musician (%s, %s) already exists", m.ContractID, m.MusicianID)
		}
		if existing.Token == m.Token {
			return fmt.Errorf("token already in use")
		}
	}
	r.musicians[m.ID] = *m
	rows := make([]entity.MonthlyContractDate, len(dates))
	for i, d := range dates {
		d.Date = utils.DateOnly(d.Date)
		rows[i] = d
	}
	r.dates[m.ID] = rows
	return nil
}

func (r *memoryMonthlyContractRepository) GetMusician(ctx context.Context, id uuid.UUID) (*entity.MonthlyContractMusician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.musicians[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *memoryMonthlyContractRepository) find(match func(entity.MonthlyContractMusician) bool) *entity.MonthlyContractMusician {
	for _, m := range r.musicians {
		if match(m) {
			return &m
		}
	}
	return nil
}

func (r *memoryMonthlyContractRepository) GetMusicianByPair(ctx context.Context, contractID, musicianID uuid.UUID) (*entity.MonthlyContractMusician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(func(m entity.MonthlyContractMusician) bool {
		return m.ContractID == contractID && m.MusicianID == musicianID
	}), nil
}

func (r *memoryMonthlyContractRepository) GetMusicianByToken(ctx context.Context, token string) (*entity.MonthlyContractMusician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(func(m entity.MonthlyContractMusician) bool { return m.Token == token }), nil
}

func (r *memoryMonthlyContractRepository) ListMusicians(ctx context.Context, contractID uuid.UUID) ([]entity.MonthlyContractMusician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.MonthlyContractMusician
	for _, m := range r.musicians {
		if m.ContractID == contractID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryMonthlyContractRepository) ListDates(ctx context.Context, contractMusicianID uuid.UUID) ([]entity.MonthlyContractDate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]entity.MonthlyContractDate(nil), r.dates[contractMusicianID]...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (r *memoryMonthlyContractRepository) SetDateStatus(ctx context.Context, contractMusicianID uuid.UUID, status entity.DateStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := r.dates[contractMusicianID]
	for i := range rows {
		if rows[i].Status != entity.DateStatusCancelled {
			rows[i].Status = status
		}
	}
	return nil
}

func (r *memoryMonthlyContractRepository) MarkSent(ctx context.Context, id uuid.UUID, meta entity.StatusMetadata, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.musicians[id]
	if !ok || m.Status != entity.ContractStatusPending {
		return false, nil
	}
	m.Status = entity.ContractStatusSent
	m.SentAt = &at
	m.Metadata = meta
	m.UpdatedAt = at
	r.musicians[id] = m
	return true, nil
}

func (r *memoryMonthlyContractRepository) Respond(ctx context.Context, u entity.ResponseUpdate) (*entity.MonthlyContractMusician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.find(func(m entity.MonthlyContractMusician) bool { return m.Token == u.Token })
	if m == nil || !m.Status.Respondable() {
		return nil, nil
	}
	applyResponse(&m.Status, &m.Response, &m.IPAddress, &m.SignatureHash, &m.RespondedAt, &m.CompletedAt, u)
	m.Metadata = u.Metadata
	m.UpdatedAt = u.At
	r.musicians[m.ID] = *m
	return m, nil
}

func (r *memoryMonthlyContractRepository) Cancel(ctx context.Context, id uuid.UUID, meta entity.StatusMetadata, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.musicians[id]
	if !ok || !m.Status.Respondable() {
		return false, nil
	}
	m.Status = entity.ContractStatusCancelled
	m.Metadata = meta
	m.CompletedAt = &at
	m.UpdatedAt = at
	r.musicians[id] = m
	return true, nil
}

func (r *memoryMonthlyContractRepository) CountClaims(ctx context.Context, musicianID uuid.UUID, date time.Time, exclude uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := utils.FormatDate(date)
	n := 0
	for id, m := range r.musicians {
		if m.MusicianID != musicianID || id == exclude {
			continue
		}
		for _, d := range r.dates[id] {
			if utils.FormatDate(d.Date) == day && (d.Status == entity.DateStatusSent || d.Status == entity.DateStatusSigned) {
				n++
			}
		}
	}
	return n, nil
}

type memoryContractLinkRepository struct {
	mu    sync.Mutex
	links map[uuid.UUID]entity.ContractLink
}

func NewMemoryContractLinkRepository() ContractLinkRepository {
	return &memoryContractLinkRepository{links: make(map[uuid.UUID]entity.ContractLink)}
}

func (r *memoryContractLinkRepository) Create(ctx context.Context, l *entity.ContractLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.links {
		if existing.Token == l.Token {
			return fmt.Errorf("token already in use")
		}
	}
	row := *l
	row.Date = utils.DateOnly(l.Date)
	r.links[l.ID] = row
	return nil
}

func (r *memoryContractLinkRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ContractLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.links[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *memoryContractLinkRepository) byToken(token string) *entity.ContractLink {
	for _, l := range r.links {
		if l.Token == token {
			return &l
		}
	}
	return nil
}

func (r *memoryContractLinkRepository) GetByToken(ctx context.Context, token string) (*entity.ContractLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byToken(token), nil
}

func (r *memoryContractLinkRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]entity.ContractLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.ContractLink
	for _, l := range r.links {
		if l.BookingID == bookingID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryContractLinkRepository) MarkSent(ctx context.Context, id uuid.UUID, meta entity.StatusMetadata, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.links[id]
	if !ok || l.Status != entity.ContractStatusPending {
		return false, nil
	}
	l.Status = entity.ContractStatusSent
	l.SentAt = &at
	l.Metadata = meta
	l.UpdatedAt = at
	r.links[id] = l
	return true, nil
}

func (r *memoryContractLinkRepository) Respond(ctx context.Context, u entity.ResponseUpdate) (*entity.ContractLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := r.byToken(u.Token)
	if l == nil || !l.Status.Respondable() {
		return nil, nil
	}
	applyResponse(&l.Status, &l.Response, &l.IPAddress, &l.SignatureHash, &l.RespondedAt, &l.CompletedAt, u)
	l.Metadata = u.Metadata
	l.UpdatedAt = u.At
	r.links[l.ID] = *l
	return l, nil
}

func (r *memoryContractLinkRepository) Cancel(ctx context.Context, id uuid.UUID, meta entity.StatusMetadata, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.links[id]
	if !ok || !l.Status.Respondable() {
		return false, nil
	}
	l.Status = entity.ContractStatusCancelled
	l.Metadata = meta
	l.CompletedAt = &at
	l.UpdatedAt = at
	r.links[id] = l
	return true, nil
}

func (r *memoryContractLinkRepository) CountClaims(ctx context.Context, musicianID uuid.UUID, date time.Time, exclude uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := utils.FormatDate(date)
	n := 0
	for _, l := range r.links {
		if l.MusicianID != musicianID || l.ID == exclude || l.BookingID == exclude {
			continue
		}
		if utils.FormatDate(l.Date) == day && (l.Status == entity.ContractStatusSent || l.Status == entity.ContractStatusSigned) {
			n++
		}
	}
	return n, nil
}

// applyResponse mirrors the SQL of Respond: responded_at is only set once.
func applyResponse(status *entity.ContractStatus, response, ip, hash **string, respondedAt, completedAt **time.Time, u entity.ResponseUpdate) {
	at := u.At
	*status = u.Status
	resp, addr := u.Response, u.IPAddress
	*response = &resp
	*ip = &addr
	if u.SignatureHash != nil {
		h := *u.SignatureHash
		*hash = &h
	}
	if *respondedAt == nil {
		*respondedAt = &at
	}
	*completedAt = &at
}
