// Package pricing implements the two-phase pricing computation: a live,
// non-committal estimate at request time and a frozen final breakdown at
// acceptance, plus the distance-based delivery fee rules.
package pricing

import (
	"context"
	"math"

	"fishlink-backend/internal/models"

	"gorm.io/gorm"
)

// Delivery fee rule for the order-creation context.
const (
	FreeRadiusKm = 5.0
	FeePerKmKHR  = 600.0
)

// Service reads the globally active commission configuration.
type Service struct {
	DB *gorm.DB
}

// Active returns the single active PricingConfig. When none is active all
// rates are zero — orders created in that window carry a zero snapshot, which
// is the intended behavior, not an error.
func (s *Service) Active(ctx context.Context) (models.PricingConfig, error) {
	var cfg models.PricingConfig
	err := s.DB.WithContext(ctx).Where("is_active = ?", true).Order("updated_at DESC").First(&cfg).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return models.PricingConfig{}, nil
		}
		return models.PricingConfig{}, err
	}
	return cfg, nil
}

// CreationDeliveryFee converts a straight-line distance into the buyer-side
// delivery fee: free within the radius, then per started kilometer.
func CreationDeliveryFee(distanceKm float64) float64 {
	if distanceKm <= FreeRadiusKm {
		return 0
	}
	return math.Ceil(distanceKm) * FeePerKmKHR
}

// Breakdown is the frozen final pricing written on acceptance. All values
// keep full precision; rounding happens only at the presentation boundary.
type Breakdown struct {
	DeliveryFeeFinal float64
	DisplayUnitPrice float64
	FishSubtotal     float64
	GuttingFee       float64
	BetaFee          float64
	BetaDiscount     float64
	FinalTotal       float64
}

// FinalBreakdown computes the charged amounts from the order's frozen
// creation snapshot plus the now-resolved delivery fee. The currently active
// PricingConfig plays no part here.
func FinalBreakdown(o *models.Order, deliveryFeeFinal float64) Breakdown {
	unit := o.BasePricePerKgSnap * (1 + o.AlphaRateSnap)
	fish := o.QuantityKg * unit
	gutting := 0.0
	if o.GuttingRequested {
		gutting = o.QuantityKg * o.GuttingPricePerKgSnap
	}
	betaFee := fish * o.BetaRateSnap
	betaDiscount := betaFee * o.BetaDiscountRateSnap
	return Breakdown{
		DeliveryFeeFinal: deliveryFeeFinal,
		DisplayUnitPrice: unit,
		FishSubtotal:     fish,
		GuttingFee:       gutting,
		BetaFee:          betaFee,
		BetaDiscount:     betaDiscount,
		FinalTotal:       fish + gutting + deliveryFeeFinal + betaFee - betaDiscount,
	}
}

// FeeRange is a min/max delivery fee across the farmer's distance bands.
type FeeRange struct {
	Min float64
	Max float64
}

func tierFeeRange(tiers []models.DeliveryFeeTier) FeeRange {
	if len(tiers) == 0 {
		return FeeRange{}
	}
	r := FeeRange{Min: float64(tiers[0].Fee), Max: float64(tiers[0].Fee)}
	for _, t := range tiers[1:] {
		f := float64(t.Fee)
		if f < r.Min {
			r.Min = f
		}
		if f > r.Max {
			r.Max = f
		}
	}
	return r
}

// DeliveryEstimate is the tier-based fee range shown before acceptance.
// Forced to zero when delivery was not requested or the free-delivery
// quantity threshold is met.
func DeliveryEstimate(o *models.Order, tiers []models.DeliveryFeeTier, freeDeliveryMinKg *int) FeeRange {
	if !o.DeliveryRequested {
		return FeeRange{}
	}
	if freeDeliveryMinKg != nil && o.QuantityKg >= float64(*freeDeliveryMinKg) {
		return FeeRange{}
	}
	return tierFeeRange(tiers)
}

// BuyerEstimate is the snapshot-based estimate shown to the restaurant while
// the order is REQUESTED. Delivery is a range because the final distance fee
// is not settled until acceptance.
type BuyerEstimate struct {
	DisplayUnitPrice float64
	FishSubtotal     float64
	GuttingFee       float64
	SupportFee       float64
	DeliveryMin      float64
	DeliveryMax      float64
	TotalMin         float64
	TotalMax         float64
}

// EstimateForBuyer computes the REQUESTED-state buyer estimate from the
// order's frozen snapshot and the listing's fee tiers.
func EstimateForBuyer(o *models.Order, tiers []models.DeliveryFeeTier, freeDeliveryMinKg *int) BuyerEstimate {
	unit := o.BasePricePerKgSnap * (1 + o.AlphaRateSnap)
	fish := o.QuantityKg * unit
	gutting := 0.0
	if o.GuttingRequested {
		gutting = o.QuantityKg * o.GuttingPricePerKgSnap
	}
	support := fish * o.BetaRateSnap
	delivery := DeliveryEstimate(o, tiers, freeDeliveryMinKg)
	return BuyerEstimate{
		DisplayUnitPrice: unit,
		FishSubtotal:     fish,
		GuttingFee:       gutting,
		SupportFee:       support,
		DeliveryMin:      delivery.Min,
		DeliveryMax:      delivery.Max,
		TotalMin:         fish + gutting + support + delivery.Min,
		TotalMax:         fish + gutting + support + delivery.Max,
	}
}

// FarmerEstimate is the payout view: base price only, no markup or support
// fee, since those belong to the platform side.
type FarmerEstimate struct {
	FishSubtotal float64
	GuttingFee   float64
	DeliveryMin  float64
	DeliveryMax  float64
	TotalMin     float64
	TotalMax     float64
}

// EstimateForFarmer computes the farmer payout estimate (or, once the
// delivery fee is final, pass it via FarmerFinal instead).
func EstimateForFarmer(o *models.Order, tiers []models.DeliveryFeeTier, freeDeliveryMinKg *int) FarmerEstimate {
	fish := o.QuantityKg * o.BasePricePerKgSnap
	gutting := 0.0
	if o.GuttingRequested {
		gutting = o.QuantityKg * o.GuttingPricePerKgSnap
	}
	delivery := DeliveryEstimate(o, tiers, freeDeliveryMinKg)
	return FarmerEstimate{
		FishSubtotal: fish,
		GuttingFee:   gutting,
		DeliveryMin:  delivery.Min,
		DeliveryMax:  delivery.Max,
		TotalMin:     fish + gutting + delivery.Min,
		TotalMax:     fish + gutting + delivery.Max,
	}
}

// FarmerFinal is the settled payout once the delivery fee is frozen.
func FarmerFinal(o *models.Order) float64 {
	fish := o.QuantityKg * o.BasePricePerKgSnap
	gutting := 0.0
	if o.GuttingRequested {
		gutting = o.QuantityKg * o.GuttingPricePerKgSnap
	}
	delivery := 0.0
	if o.DeliveryRequested && o.DeliveryFeeFinal != nil {
		delivery = *o.DeliveryFeeFinal
	}
	return fish + gutting + delivery
}

// LiveEstimate is the non-committal estimate returned at creation, computed
// from the currently active rates (not the snapshot) so the buyer sees
// current conditions.
type LiveEstimate struct {
	DisplayUnitPrice float64
	FishSubtotal     float64
	GuttingFee       float64
	SupportFee       float64
	DeliveryFee      float64
	Total            float64
}

// EstimateLive computes the creation-time buyer estimate with the
// distance-based delivery fee already known.
func EstimateLive(cfg models.PricingConfig, basePricePerKg, quantityKg float64, guttingRequested bool, guttingPricePerKg float64, deliveryFee float64) LiveEstimate {
	unit := basePricePerKg * (1 + cfg.AlphaRate)
	fish := quantityKg * unit
	gutting := 0.0
	if guttingRequested {
		gutting = quantityKg * guttingPricePerKg
	}
	support := fish * cfg.BetaRate
	return LiveEstimate{
		DisplayUnitPrice: unit,
		FishSubtotal:     fish,
		GuttingFee:       gutting,
		SupportFee:       support,
		DeliveryFee:      deliveryFee,
		Total:            fish + gutting + support + deliveryFee,
	}
}
