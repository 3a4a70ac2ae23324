package cart

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
)

// PlaceholderImage is shown for line items added without an image.
const PlaceholderImage = "/placeholder.svg"

// MaxQuantity bounds the quantity of a single line. Merges saturate here.
const MaxQuantity = 9999

// ItemInput is the catalog snapshot handed to AddItem.
type ItemInput struct {
	ID     string
	Name   string
	Price  decimal.Decimal
	Image  string
	Seller string
}

// LineItem is one distinct product in a cart with its requested quantity.
type LineItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Seller   string          `json:"seller"`
	Quantity int             `json:"quantity"`
}

// LineTotal returns price times quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Validate reports the problems the store would otherwise normalize away.
func Validate(item ItemInput, quantity int) error {
	details := map[string]string{}
	if strings.TrimSpace(item.ID) == "" {
		details["id"] = "is required"
	}
	if strings.TrimSpace(item.Name) == "" {
		details["name"] = "is required"
	}
	if item.Price.IsNegative() {
		details["price"] = "must be non-negative"
	}
	if msg := quantityProblem(quantity); msg != "" {
		details["quantity"] = msg
	}
	if len(details) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid cart item").WithDetails(details)
}

// ValidateQuantity is the SetQuantity counterpart of Validate.
func ValidateQuantity(quantity int) error {
	msg := quantityProblem(quantity)
	if msg == "" {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid quantity").
		WithDetails(map[string]string{"quantity": msg})
}

func quantityProblem(quantity int) string {
	switch {
	case quantity < 1:
		return "must be at least 1"
	case quantity > MaxQuantity:
		return fmt.Sprintf("must be at most %d", MaxQuantity)
	}
	return ""
}

// newLineItem normalizes an input into a line item. It reports false when the id is blank.
func newLineItem(item ItemInput, quantity int) (LineItem, bool) {
	id := strings.TrimSpace(item.ID)
	if id == "" {
		return LineItem{}, false
	}
	name := strings.TrimSpace(item.Name)
	if name == "" {
		name = id
	}
	price := item.Price
	if price.IsNegative() {
		price = decimal.Zero
	}
	image := strings.TrimSpace(item.Image)
	if image == "" {
		image = PlaceholderImage
	}
	return LineItem{
		ID:       id,
		Name:     name,
		Price:    price,
		Image:    image,
		Seller:   strings.TrimSpace(item.Seller),
		Quantity: clampQuantity(quantity),
	}, true
}

func clampQuantity(quantity int) int {
	switch {
	case quantity < 1:
		return 1
	case quantity > MaxQuantity:
		return MaxQuantity
	}
	return quantity
}

// mergeQuantity adds two clamped quantities without leaving [1, MaxQuantity].
func mergeQuantity(current, extra int) int {
	current, extra = clampQuantity(current), clampQuantity(extra)
	if extra > MaxQuantity-current {
		return MaxQuantity
	}
	return current + extra
}
