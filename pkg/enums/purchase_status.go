package enums

import (
	"fmt"
	"strings"
)

// PurchaseStatus tracks the delivery progress of a purchase.
type PurchaseStatus string

const (
	PurchaseStatusProcessing PurchaseStatus = "Processing"
	PurchaseStatusInTransit  PurchaseStatus = "In Transit"
	PurchaseStatusDelivered  PurchaseStatus = "Delivered"
)

var validPurchaseStatuses = []PurchaseStatus{
	PurchaseStatusProcessing,
	PurchaseStatusInTransit,
	PurchaseStatusDelivered,
}

// String implements fmt.Stringer.
func (s PurchaseStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PurchaseStatus.
func (s PurchaseStatus) IsValid() bool {
	for _, candidate := range validPurchaseStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// PurchaseStatuses lists the statuses in delivery order.
func PurchaseStatuses() []PurchaseStatus {
	out := make([]PurchaseStatus, len(validPurchaseStatuses))
	copy(out, validPurchaseStatuses)
	return out
}

// ParsePurchaseStatus converts raw input into a PurchaseStatus, ignoring case.
func ParsePurchaseStatus(value string) (PurchaseStatus, error) {
	for _, candidate := range validPurchaseStatuses {
		if strings.EqualFold(string(candidate), strings.TrimSpace(value)) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid purchase status %q", value)
}
