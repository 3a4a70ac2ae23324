package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/ecofinds-backend/pkg/enums"
)

// Purchase records a completed order line for a buyer.
type Purchase struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        string               `gorm:"column:order_id;not null"`
	BuyerID        uuid.UUID            `gorm:"column:buyer_id;type:uuid;not null;index:purchases_buyer_id_idx"`
	SellerID       uuid.UUID            `gorm:"column:seller_id;type:uuid;not null"`
	ListingID      uuid.UUID            `gorm:"column:listing_id;type:uuid;not null"`
	Price          decimal.Decimal      `gorm:"column:price;type:numeric(12,2);not null"`
	Status         enums.PurchaseStatus `gorm:"column:status;not null;default:'Processing'"`
	TrackingNumber *string              `gorm:"column:tracking_number"`
	HasReview      bool                 `gorm:"column:has_review;not null;default:false"`
	Listing        *Listing             `gorm:"foreignKey:ListingID;references:ID"`
	Seller         *Profile             `gorm:"foreignKey:SellerID;references:ID"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
}
