package enums

import (
	"fmt"
	"strings"
)

// ListingStatus tracks whether a listing is visible in the shop.
type ListingStatus string

const (
	ListingStatusActive ListingStatus = "Active"
	ListingStatusSold   ListingStatus = "Sold"
	ListingStatusDraft  ListingStatus = "Draft"
)

var validListingStatuses = []ListingStatus{
	ListingStatusActive,
	ListingStatusSold,
	ListingStatusDraft,
}

// String implements fmt.Stringer.
func (s ListingStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ListingStatus.
func (s ListingStatus) IsValid() bool {
	for _, candidate := range validListingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseListingStatus converts raw input into a ListingStatus, ignoring case.
func ParseListingStatus(value string) (ListingStatus, error) {
	for _, candidate := range validListingStatuses {
		if strings.EqualFold(string(candidate), strings.TrimSpace(value)) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing status %q", value)
}
