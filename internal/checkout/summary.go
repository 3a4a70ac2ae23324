package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/ecofinds-backend/internal/cart"
)

// DefaultShippingFee is the flat per-order fee used when none is configured.
var DefaultShippingFee = decimal.RequireFromString("15.00")

// Reader is the read side of a cart the summary is computed from.
type Reader interface {
	Items() []cart.LineItem
}

// Drainer empties a cart and hands back what it held.
type Drainer interface {
	Drain() []cart.LineItem
}

// Summary is the read-only set of figures handed to the payment collaborator.
type Summary struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
	LineCount int             `json:"line_count"`
}

// Summarize computes the order figures from the current cart contents.
// Shipping is a flat fee per order; negative fees are treated as zero.
func Summarize(c Reader, shippingFee decimal.Decimal) Summary {
	return SummarizeItems(c.Items(), shippingFee)
}

// SummarizeItems computes the order figures for a fixed set of lines.
func SummarizeItems(items []cart.LineItem, shippingFee decimal.Decimal) Summary {
	if shippingFee.IsNegative() {
		shippingFee = decimal.Zero
	}
	summary := Summary{
		Subtotal:  decimal.Zero,
		Shipping:  shippingFee,
		LineCount: len(items),
	}
	for _, item := range items {
		summary.Subtotal = summary.Subtotal.Add(item.LineTotal())
		summary.ItemCount += item.Quantity
	}
	summary.Total = summary.Subtotal.Add(summary.Shipping)
	return summary
}

// Confirm empties the cart after the payment collaborator reports success
// and returns the summary of exactly the lines that were removed.
func Confirm(c Drainer, shippingFee decimal.Decimal) Summary {
	return SummarizeItems(c.Drain(), shippingFee)
}
