package service

import (
	"strings"

	"github.com/serviprohq/servipro-backend/pkg/enums"
	"github.com/serviprohq/servipro-backend/pkg/pagination"
)

// ListSort names the supported orderings for the browse endpoint.
type ListSort string

const (
	SortLatest    ListSort = "latest"
	SortOldest    ListSort = "oldest"
	SortPriceLow  ListSort = "price_low"
	SortPriceHigh ListSort = "price_high"
)

// ParseListSort maps raw query input onto a sort, defaulting to latest.
func ParseListSort(value string) ListSort {
	switch ListSort(strings.ToLower(strings.TrimSpace(value))) {
	case SortOldest:
		return SortOldest
	case SortPriceLow:
		return SortPriceLow
	case SortPriceHigh:
		return SortPriceHigh
	default:
		return SortLatest
	}
}

// orderClause translates the sort into SQL. Every ordering carries an id
// tie-break so pages stay stable across identical sort keys.
func (s ListSort) orderClause() string {
	switch s {
	case SortOldest:
		return "s.created_at ASC, s.id DESC"
	case SortPriceLow:
		return "s.price ASC, s.id DESC"
	case SortPriceHigh:
		return "s.price DESC, s.id DESC"
	default:
		return "s.created_at DESC, s.id DESC"
	}
}

// ListFilters describe the filter knobs for the browse endpoint.
type ListFilters struct {
	Query    string
	Category *enums.ServiceCategory
}

// ListInput captures the inputs needed to paginate/filter public listings.
type ListInput struct {
	Filters    ListFilters
	Sort       ListSort
	Pagination pagination.Params
}

// ListResult is one page of listings plus the page descriptor.
type ListResult struct {
	Services []ServiceDTO    `json:"services"`
	Page     pagination.Page `json:"page"`
}
