package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgredis "github.com/angelmondragon/ecofinds-backend/pkg/redis"
)

type snapshotKV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	CartKey(owner string) string
}

// RedisPersister stores cart snapshots under ef:cart:<owner> with a sliding TTL.
type RedisPersister struct {
	kv  snapshotKV
	ttl time.Duration
}

func NewRedisPersister(kv snapshotKV, ttl time.Duration) (*RedisPersister, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisPersister{kv: kv, ttl: ttl}, nil
}

func (p *RedisPersister) Name() string { return "redis" }

func (p *RedisPersister) Load(ctx context.Context, owner string) ([]LineItem, error) {
	data, err := p.kv.Get(ctx, p.kv.CartKey(owner))
	if errors.Is(err, pkgredis.ErrNil) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load cart snapshot: %w", err)
	}
	return DecodeSnapshot(data)
}

func (p *RedisPersister) Save(ctx context.Context, owner string, items []LineItem) error {
	data, err := EncodeSnapshot(items)
	if err != nil {
		return err
	}
	if err := p.kv.Set(ctx, p.kv.CartKey(owner), data, p.ttl); err != nil {
		return fmt.Errorf("save cart snapshot: %w", err)
	}
	return nil
}
