package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PriceTypeFixed  = "FIXED"
	PriceTypeTiered = "TIERED"
)

// Listing is a farmer's standing offer. Orders copy its values into snapshot
// fields at creation; the listing itself is never mutated by the order engine.
type Listing struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	RequestID string    `gorm:"column:request_id;not null;uniqueIndex" json:"request_id"`
	FarmerID  uuid.UUID `gorm:"column:farmer_id;type:uuid;not null;index" json:"farmer_id"`
	Farmer    *User     `gorm:"foreignKey:FarmerID" json:"farmer,omitempty"`

	FishType          string `gorm:"column:fish_type;not null" json:"fish_type"`
	PriceType         string `gorm:"column:price_type;type:varchar(10);not null;default:'FIXED'" json:"price_type"`
	FixedPriceKHRPerKg *int  `gorm:"column:fixed_price_khr_per_kg" json:"fixed_price_khr_per_kg"`
	// BasePricePerKg is the fixed price, or the cheapest tier price for TIERED
	// listings (used for list views only; orders resolve the selected tier).
	BasePricePerKg float64 `gorm:"column:base_price_per_kg;not null" json:"base_price_per_kg"`

	GuttingAvailable  bool `gorm:"column:gutting_available;not null;default:false" json:"gutting_available"`
	GuttingPricePerKg int  `gorm:"column:gutting_price_per_kg;not null;default:0" json:"gutting_price_per_kg"`
	DeliveryAvailable bool `gorm:"column:delivery_available;not null;default:false" json:"delivery_available"`

	FreeDeliveryMinKg *int `gorm:"column:free_delivery_min_kg" json:"free_delivery_min_kg"`
	MinOrderKg        *int `gorm:"column:min_order_kg" json:"min_order_kg"`

	IsActive bool    `gorm:"column:is_active;not null;default:true" json:"is_active"`
	PhotoURL *string `gorm:"column:photo_url" json:"photo_url"`

	SizePriceTiers   []SizePriceTier   `gorm:"foreignKey:ListingID" json:"size_price_tiers,omitempty"`
	DeliveryFeeTiers []DeliveryFeeTier `gorm:"foreignKey:ListingID" json:"delivery_fee_tiers,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Listing) TableName() string {
	return "Listings"
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// SizePriceTier is one size band of a TIERED listing: fish counted at
// [MinHeadPerKg, MaxHeadPerKg] head per kilogram sells at PriceKHRPerKg.
type SizePriceTier struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ListingID     uuid.UUID `gorm:"column:listing_id;type:uuid;not null;index" json:"listing_id"`
	MinHeadPerKg  int       `gorm:"column:min_head_per_kg;not null" json:"min_head_per_kg"`
	MaxHeadPerKg  int       `gorm:"column:max_head_per_kg;not null" json:"max_head_per_kg"`
	PriceKHRPerKg int       `gorm:"column:price_khr_per_kg;not null" json:"price_khr_per_kg"`
	SortOrder     int       `gorm:"column:sort_order;not null" json:"sort_order"`
}

func (SizePriceTier) TableName() string {
	return "SizePriceTiers"
}

func (t *SizePriceTier) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// DeliveryFeeTier is one distance band of the farmer's declared delivery fee
// table, used only for the farmer payout estimate before acceptance.
type DeliveryFeeTier struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ListingID uuid.UUID `gorm:"column:listing_id;type:uuid;not null;index" json:"listing_id"`
	Label     string    `gorm:"column:label;not null" json:"label"`
	Fee       int       `gorm:"column:fee;not null" json:"fee"`
	SortOrder int       `gorm:"column:sort_order;not null" json:"sort_order"`
}

func (DeliveryFeeTier) TableName() string {
	return "DeliveryFeeTiers"
}

func (t *DeliveryFeeTier) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
