package cart

import (
	"context"
	"errors"
)

// ErrNoSnapshot is returned by a Persister when the owner has no saved cart.
var ErrNoSnapshot = errors.New("cart snapshot not found")

// Persister stores one cart snapshot per owner.
type Persister interface {
	Name() string
	Load(ctx context.Context, owner string) ([]LineItem, error)
	Save(ctx context.Context, owner string, items []LineItem) error
}
