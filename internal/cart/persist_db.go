package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/ecofinds-backend/pkg/db/models"
)

// DBPersister stores cart snapshots in the cart_snapshots table.
type DBPersister struct {
	db *gorm.DB
}

func NewDBPersister(db *gorm.DB) (*DBPersister, error) {
	if db == nil {
		return nil, fmt.Errorf("db connection required")
	}
	return &DBPersister{db: db}, nil
}

func (p *DBPersister) Name() string { return "db" }

func (p *DBPersister) Load(ctx context.Context, owner string) ([]LineItem, error) {
	var snap models.CartSnapshot
	err := p.db.WithContext(ctx).Where("owner = ?", owner).First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load cart snapshot: %w", err)
	}
	return DecodeSnapshot([]byte(snap.Payload))
}

func (p *DBPersister) Save(ctx context.Context, owner string, items []LineItem) error {
	data, err := EncodeSnapshot(items)
	if err != nil {
		return err
	}
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	snap := models.CartSnapshot{
		Owner:     owner,
		Version:   snapshotVersion,
		Payload:   string(data),
		ItemCount: count,
		UpdatedAt: time.Now().UTC(),
	}
	err = p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}},
		DoUpdates: clause.AssignmentColumns([]string{"version", "payload", "item_count", "updated_at"}),
	}).Create(&snap).Error
	if err != nil {
		return fmt.Errorf("save cart snapshot: %w", err)
	}
	return nil
}
