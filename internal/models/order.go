package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OrderStatusRequested  = "REQUESTED"
	OrderStatusAccepted   = "ACCEPTED"
	OrderStatusPreparing  = "PREPARING"
	OrderStatusDelivering = "DELIVERING"
	OrderStatusCompleted  = "COMPLETED"
	OrderStatusRejected   = "REJECTED"
	OrderStatusExpired    = "EXPIRED"
)

const (
	PaymentStatusUnpaid = "UNPAID"
	PaymentStatusPaid   = "PAID"
)

const (
	TimeBandMorning   = "MORNING"
	TimeBandAfternoon = "AFTERNOON"
	TimeBandNight     = "NIGHT"
)

// IsValidTimeBand returns true for one of the three ordering windows.
func IsValidTimeBand(band string) bool {
	return band == TimeBandMorning || band == TimeBandAfternoon || band == TimeBandNight
}

// Reject reason codes a farmer may pick.
const (
	RejectReasonQuantity = "QUANTITY"
	RejectReasonSize     = "SIZE"
	RejectReasonTime     = "TIME"
	RejectReasonMinOrder = "MIN_ORDER"
	RejectReasonOther    = "OTHER"
)

// IsValidRejectReason returns true for one of the allowed reason codes.
func IsValidRejectReason(reason string) bool {
	switch reason {
	case RejectReasonQuantity, RejectReasonSize, RejectReasonTime, RejectReasonMinOrder, RejectReasonOther:
		return true
	}
	return false
}

// Order is the central entity. The *Snap fields are written once at creation
// and never recomputed from live config; the final pricing fields are written
// exactly once, on the REQUESTED→ACCEPTED transition.
type Order struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	RequestID string    `gorm:"column:request_id;not null;uniqueIndex" json:"request_id"`

	ListingID    uuid.UUID `gorm:"column:listing_id;type:uuid;not null;index" json:"listing_id"`
	Listing      *Listing  `gorm:"foreignKey:ListingID" json:"listing,omitempty"`
	RestaurantID uuid.UUID `gorm:"column:restaurant_id;type:uuid;not null;index" json:"restaurant_id"`
	Restaurant   *User     `gorm:"foreignKey:RestaurantID" json:"restaurant,omitempty"`
	FarmerID     uuid.UUID `gorm:"column:farmer_id;type:uuid;not null;index" json:"farmer_id"`
	Farmer       *User     `gorm:"foreignKey:FarmerID" json:"farmer,omitempty"`

	QuantityKg      float64 `gorm:"column:quantity_kg;not null" json:"quantity_kg"`
	SizeRequestText string  `gorm:"column:size_request_text;not null" json:"size_request_text"`
	TimeBand        string  `gorm:"column:time_band;type:varchar(10);not null" json:"time_band"`
	TimeDetail      *string `gorm:"column:time_detail" json:"time_detail"`
	Memo            *string `gorm:"column:memo" json:"memo"`

	GuttingRequested  bool `gorm:"column:gutting_requested;not null;default:false" json:"gutting_requested"`
	DeliveryRequested bool `gorm:"column:delivery_requested;not null;default:false" json:"delivery_requested"`

	Status        string    `gorm:"column:status;type:varchar(20);not null;default:'REQUESTED';index" json:"status"`
	ExpiresAt     time.Time `gorm:"column:expires_at;not null" json:"expires_at"`
	RequestedDate string    `gorm:"column:requested_date;not null" json:"requested_date"`

	PaymentStatus string     `gorm:"column:payment_status;type:varchar(10);not null;default:'UNPAID'" json:"payment_status"`
	PaidAt        *time.Time `gorm:"column:paid_at" json:"paid_at"`

	RejectReason *string `gorm:"column:reject_reason;type:varchar(20)" json:"reject_reason"`
	RejectNote   *string `gorm:"column:reject_note" json:"reject_note"`

	// Contact snapshots taken at creation.
	RestaurantPhoneSnap string `gorm:"column:restaurant_phone_snap" json:"restaurant_phone_snap"`
	RestaurantMapSnap   string `gorm:"column:restaurant_map_snap" json:"restaurant_map_snap"`
	FarmerPhoneSnap     string `gorm:"column:farmer_phone_snap" json:"farmer_phone_snap"`
	FarmerMapSnap       string `gorm:"column:farmer_map_snap" json:"farmer_map_snap"`
	HandoffMapSnap      string `gorm:"column:handoff_map_snap" json:"handoff_map_snap"`

	// Pricing snapshots taken at creation.
	BasePricePerKgSnap    float64 `gorm:"column:base_price_per_kg_snap;not null" json:"base_price_per_kg_snap"`
	GuttingPricePerKgSnap float64 `gorm:"column:gutting_price_per_kg_snap;not null" json:"gutting_price_per_kg_snap"`
	PricingVersionSnap    *string `gorm:"column:pricing_version_snap" json:"pricing_version_snap"`
	AlphaRateSnap         float64 `gorm:"column:alpha_rate_snap;not null;default:0" json:"alpha_rate_snap"`
	BetaRateSnap          float64 `gorm:"column:beta_rate_snap;not null;default:0" json:"beta_rate_snap"`
	BetaDiscountRateSnap  float64 `gorm:"column:beta_discount_rate_snap;not null;default:0" json:"beta_discount_rate_snap"`

	// Final pricing, frozen on acceptance.
	DeliveryFeeFinal     *float64 `gorm:"column:delivery_fee_final" json:"delivery_fee_final"`
	DisplayUnitPriceSnap *float64 `gorm:"column:display_unit_price_snap" json:"display_unit_price_snap"`
	FishSubtotalSnap     *float64 `gorm:"column:fish_subtotal_snap" json:"fish_subtotal_snap"`
	BetaFeeSnap          *float64 `gorm:"column:beta_fee_snap" json:"beta_fee_snap"`
	BetaDiscountSnap     *float64 `gorm:"column:beta_discount_snap" json:"beta_discount_snap"`
	FinalTotal           *float64 `gorm:"column:final_total" json:"final_total"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Order) TableName() string {
	return "Orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// IsTerminal reports whether no further status transition is possible.
func (o *Order) IsTerminal() bool {
	switch o.Status {
	case OrderStatusCompleted, OrderStatusRejected, OrderStatusExpired:
		return true
	}
	return false
}
