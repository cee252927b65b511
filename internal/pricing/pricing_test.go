package pricing

import (
	"context"
	"testing"

	"fishlink-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreationDeliveryFee(t *testing.T) {
	assert.Equal(t, 0.0, CreationDeliveryFee(0))
	assert.Equal(t, 0.0, CreationDeliveryFee(4.9))
	assert.Equal(t, 0.0, CreationDeliveryFee(5.0))
	// 5.2 km → ceil(5.2) × 600 = 3600
	assert.Equal(t, 3600.0, CreationDeliveryFee(5.2))
	assert.Equal(t, 3600.0, CreationDeliveryFee(6.0))
	assert.Equal(t, 4200.0, CreationDeliveryFee(6.01))
}

// Worked example: 10 kg at 4500/kg, α=0.05, β=0.05, no discount, gutting at
// 500/kg, delivery fee 1200 → finalTotal 55812.5 (display 55,813).
func TestFinalBreakdown_WorkedExample(t *testing.T) {
	o := &models.Order{
		QuantityKg:            10,
		BasePricePerKgSnap:    4500,
		GuttingPricePerKgSnap: 500,
		AlphaRateSnap:         0.05,
		BetaRateSnap:          0.05,
		BetaDiscountRateSnap:  0,
		GuttingRequested:      true,
	}
	b := FinalBreakdown(o, 1200)
	assert.InDelta(t, 4725, b.DisplayUnitPrice, 1e-9)
	assert.InDelta(t, 47250, b.FishSubtotal, 1e-9)
	assert.InDelta(t, 5000, b.GuttingFee, 1e-9)
	assert.InDelta(t, 2362.5, b.BetaFee, 1e-9)
	assert.InDelta(t, 0, b.BetaDiscount, 1e-9)
	assert.InDelta(t, 55812.5, b.FinalTotal, 1e-9)
}

func TestFinalBreakdown_DiscountAndNoGutting(t *testing.T) {
	o := &models.Order{
		QuantityKg:            4,
		BasePricePerKgSnap:    5000,
		GuttingPricePerKgSnap: 500,
		AlphaRateSnap:         0.1,
		BetaRateSnap:          0.05,
		BetaDiscountRateSnap:  0.5,
		GuttingRequested:      false,
	}
	b := FinalBreakdown(o, 0)
	assert.InDelta(t, 5500, b.DisplayUnitPrice, 1e-9)
	assert.InDelta(t, 22000, b.FishSubtotal, 1e-9)
	assert.InDelta(t, 0, b.GuttingFee, 1e-9)
	assert.InDelta(t, 1100, b.BetaFee, 1e-9)
	assert.InDelta(t, 550, b.BetaDiscount, 1e-9)
	assert.InDelta(t, 22550, b.FinalTotal, 1e-9)
}

func TestDeliveryEstimate(t *testing.T) {
	tiers := []models.DeliveryFeeTier{
		{Fee: 4000, SortOrder: 3},
		{Fee: 1000, SortOrder: 1},
		{Fee: 2000, SortOrder: 2},
	}
	freeMin := 30

	// Delivery not requested → always zero.
	o := &models.Order{QuantityKg: 10, DeliveryRequested: false}
	assert.Equal(t, FeeRange{}, DeliveryEstimate(o, tiers, &freeMin))

	// Requested, below threshold → min/max across bands.
	o = &models.Order{QuantityKg: 10, DeliveryRequested: true}
	assert.Equal(t, FeeRange{Min: 1000, Max: 4000}, DeliveryEstimate(o, tiers, &freeMin))

	// Threshold met → forced zero.
	o = &models.Order{QuantityKg: 30, DeliveryRequested: true}
	assert.Equal(t, FeeRange{}, DeliveryEstimate(o, tiers, &freeMin))

	// No threshold declared.
	o = &models.Order{QuantityKg: 100, DeliveryRequested: true}
	assert.Equal(t, FeeRange{Min: 1000, Max: 4000}, DeliveryEstimate(o, tiers, nil))
}

func TestEstimateForFarmer_UsesBasePriceOnly(t *testing.T) {
	o := &models.Order{
		QuantityKg:            10,
		BasePricePerKgSnap:    4500,
		GuttingPricePerKgSnap: 500,
		AlphaRateSnap:         0.05,
		BetaRateSnap:          0.05,
		GuttingRequested:      true,
		DeliveryRequested:     true,
	}
	tiers := []models.DeliveryFeeTier{{Fee: 1000}, {Fee: 6000}}
	est := EstimateForFarmer(o, tiers, nil)
	assert.InDelta(t, 45000, est.FishSubtotal, 1e-9) // no alpha markup
	assert.InDelta(t, 5000, est.GuttingFee, 1e-9)
	assert.InDelta(t, 51000, est.TotalMin, 1e-9)
	assert.InDelta(t, 56000, est.TotalMax, 1e-9)
}

func TestActive_ZeroDefaultWhenNoneActive(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.PricingConfig{}))
	svc := &Service{DB: db}

	cfg, err := svc.Active(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.AlphaRate)
	assert.Equal(t, 0.0, cfg.BetaRate)
	assert.Equal(t, 0.0, cfg.BetaDiscountRate)

	require.NoError(t, db.Create(&models.PricingConfig{PricingVersion: "v1", AlphaRate: 0.05, BetaRate: 0.05, IsActive: true}).Error)
	cfg, err = svc.Active(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1", cfg.PricingVersion)
	assert.Equal(t, 0.05, cfg.AlphaRate)
}
