package cart

import (
	"encoding/json"
	"errors"
	"fmt"
)

const snapshotVersion = 1

// ErrCorruptSnapshot marks persisted state that cannot be decoded into a cart.
var ErrCorruptSnapshot = errors.New("corrupt cart snapshot")

type snapshotDocument struct {
	Version int        `json:"version"`
	Items   []LineItem `json:"items"`
}

// EncodeSnapshot serializes the ordered line items of a cart.
func EncodeSnapshot(items []LineItem) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	data, err := json.Marshal(snapshotDocument{Version: snapshotVersion, Items: items})
	if err != nil {
		return nil, fmt.Errorf("encode cart snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot restores line items, re-applying the cart invariants.
// Duplicate ids are merged into the first occurrence.
func DecodeSnapshot(data []byte) ([]LineItem, error) {
	var doc snapshotDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if doc.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, doc.Version)
	}

	items := make([]LineItem, 0, len(doc.Items))
	index := make(map[string]int, len(doc.Items))
	for _, raw := range doc.Items {
		item, ok := newLineItem(ItemInput{
			ID:     raw.ID,
			Name:   raw.Name,
			Price:  raw.Price,
			Image:  raw.Image,
			Seller: raw.Seller,
		}, raw.Quantity)
		if !ok {
			return nil, fmt.Errorf("%w: line item without id", ErrCorruptSnapshot)
		}
		if pos, seen := index[item.ID]; seen {
			items[pos].Quantity = mergeQuantity(items[pos].Quantity, item.Quantity)
			continue
		}
		index[item.ID] = len(items)
		items = append(items, item)
	}
	return items, nil
}
