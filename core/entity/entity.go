package entity

import (
	"time"

	"github.com/google/uuid"
)

type BaseEntity struct {
	ID        uuid.UUID `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type Pagination[T any] struct {
	Items      []T `json:"items"`
	TotalItems int `json:"total_items"`
	PageNumber int `json:"page_number"`
	PageSize   int `json:"page_size"`
}

// Paginate slices an in-memory result set the way the SQL repositories do.
func Paginate[T any](items []T, pageNumber, pageSize int) *Pagination[T] {
	total := len(items)
	start := (pageNumber - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return &Pagination[T]{
		Items:      items[start:end],
		TotalItems: total,
		PageNumber: pageNumber,
		PageSize:   pageSize,
	}
}
