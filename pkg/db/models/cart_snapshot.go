package models

import "time"

// CartSnapshot holds the serialized line items of one cart owner.
type CartSnapshot struct {
	Owner     string    `gorm:"column:owner;type:varchar(191);primaryKey"`
	Version   int       `gorm:"column:version;not null;default:1"`
	Payload   string    `gorm:"column:payload;type:text;not null"`
	ItemCount int       `gorm:"column:item_count;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
