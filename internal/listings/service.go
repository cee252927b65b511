package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fishlink-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// DeliveryTierInput is one distance band of the farmer's fee table.
type DeliveryTierInput struct {
	MinKm int `json:"min_km"`
	MaxKm int `json:"max_km"`
	Fee   int `json:"fee"`
}

// SizeTierInput is one size band of a TIERED price list.
type SizeTierInput struct {
	MinHeadPerKg  int `json:"min_head_per_kg"`
	MaxHeadPerKg  int `json:"max_head_per_kg"`
	PriceKHRPerKg int `json:"price_khr_per_kg"`
}

type CreateListingInput struct {
	RequestID          string
	FarmerID           uuid.UUID
	FishType           string
	PriceType          string
	FixedPriceKHRPerKg int
	GuttingAvailable   bool
	GuttingPricePerKg  int
	DeliveryAvailable  bool
	DeliveryFeeTiers   []DeliveryTierInput
	SizePriceTiers     []SizeTierInput
	FreeDeliveryMinKg  *int
	MinOrderKg         *int
	PhotoURL           string
}

// CreateListing validates and persists a listing with its tier tables. The
// second return value is false when the request id was already used and the
// previously created listing is returned instead.
func (s *Service) CreateListing(ctx context.Context, in CreateListingInput) (*models.Listing, bool, error) {
	in.FishType = strings.TrimSpace(in.FishType)
	if in.FishType == "" {
		return nil, false, ErrFishTypeRequired
	}
	if in.GuttingAvailable && in.GuttingPricePerKg <= 0 {
		return nil, false, ErrInvalidGuttingPrice
	}
	if in.FreeDeliveryMinKg != nil && *in.FreeDeliveryMinKg < 0 {
		return nil, false, ErrInvalidThreshold
	}
	if in.MinOrderKg != nil && *in.MinOrderKg < 0 {
		return nil, false, ErrInvalidThreshold
	}
	for _, tier := range in.DeliveryFeeTiers {
		if tier.Fee < 0 || tier.MinKm < 0 || tier.MaxKm < tier.MinKm {
			return nil, false, ErrInvalidDeliveryTier
		}
	}

	priceType := models.PriceTypeFixed
	if in.PriceType == models.PriceTypeTiered {
		priceType = models.PriceTypeTiered
	}

	var fixedPrice *int
	var basePrice float64
	var sizeTiers []models.SizePriceTier

	if priceType == models.PriceTypeFixed {
		if in.FixedPriceKHRPerKg <= 0 {
			return nil, false, ErrInvalidFixedPrice
		}
		p := in.FixedPriceKHRPerKg
		fixedPrice = &p
		basePrice = float64(p)
	} else {
		// Every submitted band must be valid so tier resolution at order time
		// is unambiguous; range-overlap checking is still an open followup.
		if len(in.SizePriceTiers) < 1 || len(in.SizePriceTiers) > 4 {
			return nil, false, ErrInvalidSizeTiers
		}
		minPrice := 0
		for i, tier := range in.SizePriceTiers {
			if tier.MinHeadPerKg <= 0 || tier.MaxHeadPerKg <= 0 || tier.MinHeadPerKg > tier.MaxHeadPerKg || tier.PriceKHRPerKg <= 0 {
				return nil, false, ErrInvalidSizeTiers
			}
			sizeTiers = append(sizeTiers, models.SizePriceTier{
				MinHeadPerKg:  tier.MinHeadPerKg,
				MaxHeadPerKg:  tier.MaxHeadPerKg,
				PriceKHRPerKg: tier.PriceKHRPerKg,
				SortOrder:     i,
			})
			if minPrice == 0 || tier.PriceKHRPerKg < minPrice {
				minPrice = tier.PriceKHRPerKg
			}
		}
		basePrice = float64(minPrice)
	}

	deliveryTiers := make([]models.DeliveryFeeTier, 0, len(in.DeliveryFeeTiers))
	for i, tier := range in.DeliveryFeeTiers {
		deliveryTiers = append(deliveryTiers, models.DeliveryFeeTier{
			Label:     fmt.Sprintf("%d-%dkm", tier.MinKm, tier.MaxKm),
			Fee:       tier.Fee,
			SortOrder: i + 1,
		})
	}

	requestID := strings.TrimSpace(in.RequestID)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	var photoURL *string
	if in.PhotoURL != "" {
		photoURL = &in.PhotoURL
	}

	listing := &models.Listing{
		RequestID:          requestID,
		FarmerID:           in.FarmerID,
		FishType:           in.FishType,
		PriceType:          priceType,
		FixedPriceKHRPerKg: fixedPrice,
		BasePricePerKg:     basePrice,
		GuttingAvailable:   in.GuttingAvailable,
		GuttingPricePerKg:  in.GuttingPricePerKg,
		DeliveryAvailable:  in.DeliveryAvailable,
		FreeDeliveryMinKg:  in.FreeDeliveryMinKg,
		MinOrderKg:         in.MinOrderKg,
		IsActive:           true,
		PhotoURL:           photoURL,
		SizePriceTiers:     sizeTiers,
		DeliveryFeeTiers:   deliveryTiers,
	}

	if err := s.DB.WithContext(ctx).Create(listing).Error; err != nil {
		if !duplicateKey(err) {
			return nil, false, err
		}
		// Retried submission: return the row the first attempt created.
		var existing models.Listing
		if err := s.DB.WithContext(ctx).
			Preload("SizePriceTiers").Preload("DeliveryFeeTiers").
			Where("request_id = ?", requestID).First(&existing).Error; err != nil {
			return nil, false, err
		}
		return &existing, false, nil
	}
	return listing, true, nil
}

// GetAllActive returns every active listing with its farmer and tier tables.
func (s *Service) GetAllActive(ctx context.Context) ([]models.Listing, error) {
	var out []models.Listing
	err := s.DB.WithContext(ctx).
		Preload("Farmer").Preload("SizePriceTiers", sortedTiers).Preload("DeliveryFeeTiers", sortedTiers).
		Where("is_active = ?", true).Order("created_at DESC").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetForFarmer returns a farmer's own listings, active or not.
func (s *Service) GetForFarmer(ctx context.Context, farmerID uuid.UUID) ([]models.Listing, error) {
	if farmerID == uuid.Nil {
		return nil, ErrNotListingOwner
	}
	var out []models.Listing
	err := s.DB.WithContext(ctx).
		Preload("SizePriceTiers", sortedTiers).Preload("DeliveryFeeTiers", sortedTiers).
		Where("farmer_id = ?", farmerID).Order("created_at DESC").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns one listing with farmer and tier tables.
func (s *Service) GetByID(ctx context.Context, listingID uuid.UUID) (*models.Listing, error) {
	if listingID == uuid.Nil {
		return nil, ErrListingNotFound
	}
	var listing models.Listing
	err := s.DB.WithContext(ctx).
		Preload("Farmer").Preload("SizePriceTiers", sortedTiers).Preload("DeliveryFeeTiers", sortedTiers).
		Where("id = ?", listingID).First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &listing, nil
}

// Deactivate takes a listing off the board. Orders already placed against it
// are unaffected; they carry their own snapshots.
func (s *Service) Deactivate(ctx context.Context, listingID, farmerID uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := s.DB.WithContext(ctx).Where("id = ?", listingID).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	if listing.FarmerID != farmerID {
		return nil, ErrNotListingOwner
	}
	if err := s.DB.WithContext(ctx).Model(&listing).Update("is_active", false).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

func sortedTiers(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC")
}

// duplicateKey detects a uniqueness-constraint conflict across drivers
// (postgres via TranslateError, sqlite in tests by message).
func duplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
