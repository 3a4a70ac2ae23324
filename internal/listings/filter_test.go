package listings

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/ecofinds-backend/pkg/enums"
	"github.com/angelmondragon/ecofinds-backend/pkg/pagination"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func listing(name, category, status, price string, ageDays, views int) ListingDTO {
	return ListingDTO{
		Name:      name,
		Category:  category,
		Status:    status,
		Price:     decimal.RequireFromString(price),
		Views:     views,
		CreatedAt: baseTime.AddDate(0, 0, -ageDays),
	}
}

func names(records []ListingDTO) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name)
	}
	return out
}

func TestApplySearchIsCaseInsensitiveSubstring(t *testing.T) {
	records := []ListingDTO{
		listing("Eco Mug", "Kitchen", "Active", "8", 1, 0),
		listing("Bag", "Bags", "Active", "20", 2, 0),
	}

	got := Apply(records, Query{Search: "mug", Category: "all"})
	require.Len(t, got, 1)
	assert.Equal(t, "Eco Mug", got[0].Name)
}

func TestApplySearchesDescription(t *testing.T) {
	desc := "Hand-thrown ceramic"
	records := []ListingDTO{
		listing("Cup", "Kitchen", "Active", "5", 1, 0),
		listing("Plate", "Kitchen", "Active", "5", 1, 0),
	}
	records[1].Description = &desc

	assert.Equal(t, []string{"Plate"}, names(Apply(records, Query{Search: "CERAMIC"})))

	own := []ownListing{{records[0]}, {records[1]}}
	assert.Empty(t, Apply(own, Query{Search: "ceramic"}))
}

func TestApplyFiltersAreConjunctive(t *testing.T) {
	records := []ListingDTO{
		listing("Oak Chair", "Furniture", "Active", "40", 3, 0),
		listing("Oak Table", "Furniture", "Sold", "90", 2, 0),
		listing("Oak Spoon", "Kitchen", "Active", "3", 1, 0),
	}

	got := Apply(records, Query{Search: "oak", Category: "Furniture", Status: "active"})
	assert.Equal(t, []string{"Oak Chair"}, names(got))

	got = Apply(records, Query{Category: "All", Status: "ALL"})
	assert.Len(t, got, 3)

	got = Apply(records, Query{Category: "furniture"})
	assert.Empty(t, got, "category match is exact")
}

func TestApplySortKeys(t *testing.T) {
	records := []ListingDTO{
		listing("middle", "A", "Active", "20", 2, 5),
		listing("oldest", "A", "Active", "10", 3, 50),
		listing("newest", "A", "Active", "30", 1, 1),
	}

	cases := []struct {
		key  enums.SortKey
		want []string
	}{
		{enums.SortFeatured, []string{"middle", "oldest", "newest"}},
		{enums.SortNewest, []string{"newest", "middle", "oldest"}},
		{enums.SortOldest, []string{"oldest", "middle", "newest"}},
		{enums.SortPriceLow, []string{"oldest", "middle", "newest"}},
		{enums.SortPriceHigh, []string{"newest", "middle", "oldest"}},
		{enums.SortViews, []string{"oldest", "middle", "newest"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, names(Apply(records, Query{Sort: tc.key})), "sort %s", tc.key)
	}
	assert.Equal(t, "middle", records[0].Name, "input must not be reordered")
}

func TestApplySortIsStable(t *testing.T) {
	records := []ListingDTO{
		listing("first", "A", "Active", "10", 1, 0),
		listing("second", "A", "Active", "10", 1, 0),
		listing("cheap", "A", "Active", "1", 1, 0),
	}
	assert.Equal(t, []string{"cheap", "first", "second"}, names(Apply(records, Query{Sort: enums.SortPriceLow})))
}

func TestCategoriesKeepsFirstSeenOrder(t *testing.T) {
	records := []ListingDTO{
		listing("a", "Kitchen", "Active", "1", 1, 0),
		listing("b", "Bags", "Active", "1", 1, 0),
		listing("c", "Kitchen", "Active", "1", 1, 0),
	}
	assert.Equal(t, []string{"all", "Kitchen", "Bags"}, Categories(records))
	assert.Equal(t, []string{"all"}, Categories([]ListingDTO{}))
}

func TestPaginate(t *testing.T) {
	records := []int{1, 2, 3, 4, 5}
	assert.Equal(t, records, Paginate(records, pagination.Params{}))
	assert.Equal(t, []int{3, 4}, Paginate(records, pagination.Params{Limit: 2, Offset: 2}))
	assert.Empty(t, Paginate(records, pagination.Params{Limit: 2, Offset: 9}))
}
