package pagination

import "github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/response"

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params is a normalized page request: Page >= 1 and 1 <= Limit <= MaxLimit.
type Params struct {
	Page  int
	Limit int
}

func Normalize(page, limit int) Params {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Result is the list contract shared by every entity service.
type Result[T any] struct {
	Data       []T                     `json:"data"`
	Pagination response.PaginationMeta `json:"pagination"`
}

func NewResult[T any](data []T, total int64, p Params) Result[T] {
	if data == nil {
		data = []T{}
	}
	return Result[T]{
		Data:       data,
		Pagination: response.NewPaginationMeta(total, p.Page, p.Limit),
	}
}

// Map converts the page items while keeping the pagination block.
func Map[S, T any](in Result[S], fn func(S) T) Result[T] {
	out := make([]T, len(in.Data))
	for i, item := range in.Data {
		out[i] = fn(item)
	}
	return Result[T]{Data: out, Pagination: in.Pagination}
}
