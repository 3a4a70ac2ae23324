package listings

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/ecofinds-backend/pkg/enums"
	"github.com/angelmondragon/ecofinds-backend/pkg/pagination"
)

// AllValues is the sentinel for "no constraint" on category and status.
const AllValues = "all"

// Filterable is a record the catalog views can search, filter and sort.
type Filterable interface {
	SearchFields() []string
	FilterCategory() string
	FilterStatus() string
	SortPrice() decimal.Decimal
	SortCreatedAt() time.Time
	SortViews() int
}

// Query holds the user's search, filter and sort choices. Empty fields apply no constraint.
type Query struct {
	Search   string
	Category string
	Status   string
	Sort     enums.SortKey
	Page     pagination.Params
}

// Apply filters records conjunctively and sorts the survivors stably.
// The input slice is not modified.
func Apply[T Filterable](records []T, q Query) []T {
	term := strings.ToLower(strings.TrimSpace(q.Search))
	category := strings.TrimSpace(q.Category)
	status := strings.TrimSpace(q.Status)

	out := make([]T, 0, len(records))
	for _, record := range records {
		if term != "" && !matchesSearch(record.SearchFields(), term) {
			continue
		}
		if !isAll(category) && record.FilterCategory() != category {
			continue
		}
		if !isAll(status) && !strings.EqualFold(record.FilterStatus(), status) {
			continue
		}
		out = append(out, record)
	}

	if less := lessFor[T](q.Sort); less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}

// Paginate slices a filtered collection. A zero Params returns everything.
func Paginate[T any](records []T, p pagination.Params) []T {
	if p == (pagination.Params{}) {
		return records
	}
	start, end := p.Window(len(records))
	return records[start:end]
}

// Categories returns "all" followed by each distinct category in first-seen order.
func Categories[T Filterable](records []T) []string {
	seen := map[string]struct{}{}
	out := []string{AllValues}
	for _, record := range records {
		category := record.FilterCategory()
		if category == "" {
			continue
		}
		if _, ok := seen[category]; ok {
			continue
		}
		seen[category] = struct{}{}
		out = append(out, category)
	}
	return out
}

func matchesSearch(fields []string, term string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func isAll(value string) bool {
	return value == "" || strings.EqualFold(value, AllValues)
}

func lessFor[T Filterable](key enums.SortKey) func(a, b T) bool {
	switch key {
	case enums.SortNewest:
		return func(a, b T) bool { return a.SortCreatedAt().After(b.SortCreatedAt()) }
	case enums.SortOldest:
		return func(a, b T) bool { return a.SortCreatedAt().Before(b.SortCreatedAt()) }
	case enums.SortPriceLow:
		return func(a, b T) bool { return a.SortPrice().LessThan(b.SortPrice()) }
	case enums.SortPriceHigh:
		return func(a, b T) bool { return a.SortPrice().GreaterThan(b.SortPrice()) }
	case enums.SortViews:
		return func(a, b T) bool { return a.SortViews() > b.SortViews() }
	default:
		return nil
	}
}
