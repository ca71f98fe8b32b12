package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	coreEntity "go-musician-booking/core/entity"
	"go-musician-booking/core/params"
	"go-musician-booking/modules/musician/entity"

	"github.com/google/uuid"
)

type memoryMusicianRepository struct {
	mu        sync.Mutex
	musicians map[uuid.UUID]entity.Musician
	rates     map[[2]uuid.UUID]entity.PayRate
}

func NewMemoryMusicianRepository() MusicianRepository {
	return &memoryMusicianRepository{
		musicians: make(map[uuid.UUID]entity.Musician),
		rates:     make(map[[2]uuid.UUID]entity.PayRate),
	}
}

func (r *memoryMusicianRepository) Create(ctx context.Context, m *entity.Musician) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.musicians[m.ID] = *m
	return nil
}

func (r *memoryMusicianRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Musician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.musicians[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *memoryMusicianRepository) List(ctx context.Context, params params.QueryParams) (*entity.PaginatedMusicianEntity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []entity.Musician
	for _, m := range r.musicians {
		if params.Search == "" || strings.Contains(strings.ToLower(m.Name), strings.ToLower(params.Search)) {
			items = append(items, m)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return coreEntity.Paginate(items, params.PageNumber, params.PageSize), nil
}

func (r *memoryMusicianRepository) UpsertPayRate(ctx context.Context, rate *entity.PayRate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rates[[2]uuid.UUID{rate.MusicianID, rate.CategoryID}] = *rate
	return nil
}

func (r *memoryMusicianRepository) GetPayRate(ctx context.Context, musicianID, categoryID uuid.UUID) (*entity.PayRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rate, ok := r.rates[[2]uuid.UUID{musicianID, categoryID}]
	if !ok {
		return nil, nil
	}
	return &rate, nil
}
