package types

import (
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/samber/lo"
)

const (
	filterDefaultLimit = 50
	filterMaxLimit     = 200
)

// QueryFilter carries common pagination options.
type QueryFilter struct {
	Limit  *int    `json:"limit,omitempty" form:"limit"`
	Offset *int    `json:"offset,omitempty" form:"offset"`
	Order  *string `json:"order,omitempty" form:"order"`
}

// NewDefaultQueryFilter returns a filter with default pagination.
func NewDefaultQueryFilter() *QueryFilter {
	return &QueryFilter{
		Limit:  lo.ToPtr(filterDefaultLimit),
		Offset: lo.ToPtr(0),
		Order:  lo.ToPtr("desc"),
	}
}

func (f *QueryFilter) GetLimit() int {
	if f == nil || f.Limit == nil {
		return filterDefaultLimit
	}
	return *f.Limit
}

func (f *QueryFilter) GetOffset() int {
	if f == nil || f.Offset == nil {
		return 0
	}
	return *f.Offset
}

func (f *QueryFilter) GetOrder() string {
	if f == nil || f.Order == nil {
		return "desc"
	}
	return *f.Order
}

func (f *QueryFilter) Validate() error {
	if f.Limit != nil && (*f.Limit < 1 || *f.Limit > filterMaxLimit) {
		return ierr.NewError("limit out of range").
			WithHintf("Limit must be between 1 and %d", filterMaxLimit).
			Mark(ierr.ErrValidation)
	}
	if f.Offset != nil && *f.Offset < 0 {
		return ierr.NewError("offset must not be negative").
			WithHint("Offset must not be negative").
			Mark(ierr.ErrValidation)
	}
	if f.Order != nil && *f.Order != "asc" && *f.Order != "desc" {
		return ierr.NewError("invalid order").
			WithHint("Order must be asc or desc").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// LetterFilter represents the filter options for letters.
type LetterFilter struct {
	*QueryFilter
	UserID      string         `json:"user_id,omitempty" form:"user_id"`
	Statuses    []LetterStatus `json:"statuses,omitempty" form:"statuses"`
	LetterTypes []LetterType   `json:"letter_types,omitempty" form:"letter_types"`
}

func NewLetterFilter() *LetterFilter {
	return &LetterFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

func (f *LetterFilter) Validate() error {
	if f.QueryFilter == nil {
		f.QueryFilter = NewDefaultQueryFilter()
	}
	if err := f.QueryFilter.Validate(); err != nil {
		return err
	}
	for _, status := range f.Statuses {
		if !status.Valid() {
			return ierr.NewError("invalid letter status filter").
				WithHintf("Unknown letter status: %s", status).
				Mark(ierr.ErrValidation)
		}
	}
	for _, lt := range f.LetterTypes {
		if !lt.Valid() {
			return ierr.NewError("invalid letter type filter").
				WithHintf("Unknown letter type: %s", lt).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}
