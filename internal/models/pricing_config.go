package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PricingConfig holds the global commission parameters. At most one record is
// active at a time; orders snapshot its rates at creation so later changes
// never retroactively alter an in-flight order.
type PricingConfig struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	PricingVersion string    `gorm:"column:pricing_version;not null" json:"pricing_version"`
	// AlphaRate is the demand-side markup on the farmer base price.
	AlphaRate float64 `gorm:"column:alpha_rate;not null;default:0" json:"alpha_rate"`
	// BetaRate is the platform support fee on the fish subtotal.
	BetaRate float64 `gorm:"column:beta_rate;not null;default:0" json:"beta_rate"`
	// BetaDiscountRate discounts the support fee.
	BetaDiscountRate float64 `gorm:"column:beta_discount_rate;not null;default:0" json:"beta_discount_rate"`
	IsActive         bool    `gorm:"column:is_active;not null;default:false;index" json:"is_active"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (PricingConfig) TableName() string {
	return "PricingConfigs"
}

func (p *PricingConfig) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
