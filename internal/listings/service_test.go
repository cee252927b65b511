package listings

import (
	"context"
	"testing"

	"fishlink-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupListingsTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Listing{}, &models.SizePriceTier{}, &models.DeliveryFeeTier{},
	))
	return &Service{DB: db}, db
}

func seedFarmer(t *testing.T, db *gorm.DB) *models.User {
	u := &models.User{
		LoginID:      uuid.New().String(),
		PasswordHash: "x",
		Role:         models.RoleFarmer,
		Name:         "Farmer",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func fixedInput(farmerID uuid.UUID) CreateListingInput {
	return CreateListingInput{
		RequestID:          uuid.New().String(),
		FarmerID:           farmerID,
		FishType:           "Tilapia",
		PriceType:          models.PriceTypeFixed,
		FixedPriceKHRPerKg: 4500,
		GuttingAvailable:   true,
		GuttingPricePerKg:  500,
		DeliveryAvailable:  true,
		DeliveryFeeTiers: []DeliveryTierInput{
			{MinKm: 0, MaxKm: 5, Fee: 0},
			{MinKm: 5, MaxKm: 10, Fee: 3000},
		},
	}
}

func TestCreateListing_Fixed(t *testing.T) {
	svc, db := setupListingsTest(t)
	farmer := seedFarmer(t, db)

	listing, created, err := svc.CreateListing(context.Background(), fixedInput(farmer.ID))
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, listing.IsActive)
	assert.Equal(t, models.PriceTypeFixed, listing.PriceType)
	require.NotNil(t, listing.FixedPriceKHRPerKg)
	assert.Equal(t, 4500, *listing.FixedPriceKHRPerKg)
	assert.Equal(t, 4500.0, listing.BasePricePerKg)
	require.Len(t, listing.DeliveryFeeTiers, 2)
	assert.Equal(t, "0-5km", listing.DeliveryFeeTiers[0].Label)
	assert.Equal(t, "5-10km", listing.DeliveryFeeTiers[1].Label)
}

// The list-view base price of a TIERED listing is its cheapest band.
func TestCreateListing_TieredBasePrice(t *testing.T) {
	svc, db := setupListingsTest(t)
	farmer := seedFarmer(t, db)

	in := fixedInput(farmer.ID)
	in.PriceType = models.PriceTypeTiered
	in.FixedPriceKHRPerKg = 0
	in.SizePriceTiers = []SizeTierInput{
		{MinHeadPerKg: 2, MaxHeadPerKg: 3, PriceKHRPerKg: 6000},
		{MinHeadPerKg: 4, MaxHeadPerKg: 5, PriceKHRPerKg: 4000},
	}
	listing, _, err := svc.CreateListing(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 4000.0, listing.BasePricePerKg)
	require.Len(t, listing.SizePriceTiers, 2)
	assert.Equal(t, 0, listing.SizePriceTiers[0].SortOrder)
	assert.Equal(t, 1, listing.SizePriceTiers[1].SortOrder)
}

func TestCreateListing_Validation(t *testing.T) {
	svc, db := setupListingsTest(t)
	farmer := seedFarmer(t, db)

	in := fixedInput(farmer.ID)
	in.FishType = "  "
	_, _, err := svc.CreateListing(context.Background(), in)
	assert.ErrorIs(t, err, ErrFishTypeRequired)

	in = fixedInput(farmer.ID)
	in.FixedPriceKHRPerKg = 0
	_, _, err = svc.CreateListing(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidFixedPrice)

	in = fixedInput(farmer.ID)
	in.GuttingPricePerKg = 0
	_, _, err = svc.CreateListing(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidGuttingPrice)

	// No gutting offered means no gutting price is needed.
	in = fixedInput(farmer.ID)
	in.GuttingAvailable = false
	in.GuttingPricePerKg = 0
	_, _, err = svc.CreateListing(context.Background(), in)
	assert.NoError(t, err)

	in = fixedInput(farmer.ID)
	in.DeliveryFeeTiers = []DeliveryTierInput{{MinKm: 10, MaxKm: 5, Fee: 100}}
	_, _, err = svc.CreateListing(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidDeliveryTier)

	in = fixedInput(farmer.ID)
	in.PriceType = models.PriceTypeTiered
	in.SizePriceTiers = nil
	_, _, err = svc.CreateListing(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidSizeTiers)

	in = fixedInput(farmer.ID)
	in.PriceType = models.PriceTypeTiered
	in.SizePriceTiers = []SizeTierInput{{MinHeadPerKg: 5, MaxHeadPerKg: 2, PriceKHRPerKg: 4000}}
	_, _, err = svc.CreateListing(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidSizeTiers)

	neg := -1
	in = fixedInput(farmer.ID)
	in.FreeDeliveryMinKg = &neg
	_, _, err = svc.CreateListing(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestCreateListing_IdempotentOnRequestID(t *testing.T) {
	svc, db := setupListingsTest(t)
	farmer := seedFarmer(t, db)

	in := fixedInput(farmer.ID)
	first, created, err := svc.CreateListing(context.Background(), in)
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := svc.CreateListing(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Listing{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetAllActive_ExcludesDeactivated(t *testing.T) {
	svc, db := setupListingsTest(t)
	farmer := seedFarmer(t, db)

	kept, _, err := svc.CreateListing(context.Background(), fixedInput(farmer.ID))
	require.NoError(t, err)
	dropped, _, err := svc.CreateListing(context.Background(), fixedInput(farmer.ID))
	require.NoError(t, err)

	_, err = svc.Deactivate(context.Background(), dropped.ID, farmer.ID)
	require.NoError(t, err)

	active, err := svc.GetAllActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, kept.ID, active[0].ID)

	// The farmer's own list still shows both.
	mine, err := svc.GetForFarmer(context.Background(), farmer.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestDeactivate_OwnerOnly(t *testing.T) {
	svc, db := setupListingsTest(t)
	farmer := seedFarmer(t, db)
	other := seedFarmer(t, db)

	listing, _, err := svc.CreateListing(context.Background(), fixedInput(farmer.ID))
	require.NoError(t, err)

	_, err = svc.Deactivate(context.Background(), listing.ID, other.ID)
	assert.ErrorIs(t, err, ErrNotListingOwner)

	got, err := svc.GetByID(context.Background(), listing.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}
