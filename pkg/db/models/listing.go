package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/ecofinds-backend/pkg/enums"
)

// Listing is a second-hand product offered by a seller.
type Listing struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID        uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index:listings_user_id_idx"`
	Name          string              `gorm:"column:name;not null"`
	Description   *string             `gorm:"column:description"`
	Price         decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	OriginalPrice *decimal.Decimal    `gorm:"column:original_price;type:numeric(12,2)"`
	ImageURL      *string             `gorm:"column:image_url"`
	Category      string              `gorm:"column:category;not null"`
	Condition     string              `gorm:"column:condition;not null;default:''"`
	Status        enums.ListingStatus `gorm:"column:status;not null;default:'Active';index:listings_status_idx"`
	Views         int                 `gorm:"column:views;not null;default:0"`
	Seller        *Profile            `gorm:"foreignKey:UserID;references:ID"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
