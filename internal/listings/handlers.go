package listings

import (
	"errors"

	"fishlink-backend/internal/middleware"
	"fishlink-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

type createListingRequest struct {
	RequestID          string              `json:"request_id"`
	FishType           string              `json:"fish_type"`
	PriceType          string              `json:"price_type"`
	FixedPriceKHRPerKg int                 `json:"fixed_price_khr_per_kg"`
	GuttingAvailable   bool                `json:"gutting_available"`
	GuttingPricePerKg  int                 `json:"gutting_price_per_kg"`
	DeliveryAvailable  bool                `json:"delivery_available"`
	DeliveryFeeTiers   []DeliveryTierInput `json:"delivery_fee_tiers"`
	SizePriceTiers     []SizeTierInput     `json:"size_price_tiers"`
	FreeDeliveryMinKg  *int                `json:"free_delivery_min_kg"`
	MinOrderKg         *int                `json:"min_order_kg"`
	PhotoURL           string              `json:"photo_url"`
}

// CreateListing creates a listing for the session farmer (idempotent on
// request_id).
func (h *Handlers) CreateListing(c *fiber.Ctx) error {
	farmerID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req createListingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}

	listing, created, err := h.Service.CreateListing(c.Context(), CreateListingInput{
		RequestID:          req.RequestID,
		FarmerID:           farmerID,
		FishType:           req.FishType,
		PriceType:          req.PriceType,
		FixedPriceKHRPerKg: req.FixedPriceKHRPerKg,
		GuttingAvailable:   req.GuttingAvailable,
		GuttingPricePerKg:  req.GuttingPricePerKg,
		DeliveryAvailable:  req.DeliveryAvailable,
		DeliveryFeeTiers:   req.DeliveryFeeTiers,
		SizePriceTiers:     req.SizePriceTiers,
		FreeDeliveryMinKg:  req.FreeDeliveryMinKg,
		MinOrderKg:         req.MinOrderKg,
		PhotoURL:           req.PhotoURL,
	})
	if err != nil {
		return listingError(c, err)
	}
	if !created {
		return response.Success(c, "Listing already created", listing, map[string]interface{}{"deduplicated": true})
	}
	return response.SuccessCreated(c, "Listing created", listing, nil)
}

// GetAllActiveListings returns the open board for restaurants.
func (h *Handlers) GetAllActiveListings(c *fiber.Ctx) error {
	items, err := h.Service.GetAllActive(c.Context())
	if err != nil {
		return response.Error(c, "Failed to fetch listings", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Listings fetched", items, nil)
}

// GetMyListings returns the session farmer's listings.
func (h *Handlers) GetMyListings(c *fiber.Ctx) error {
	farmerID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	items, err := h.Service.GetForFarmer(c.Context(), farmerID)
	if err != nil {
		return listingError(c, err)
	}
	return response.Success(c, "Listings fetched", items, nil)
}

// GetListingByID returns one listing by path param.
func (h *Handlers) GetListingByID(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("listing_id"))
	if err != nil {
		return response.Error(c, "Invalid listing_id", fiber.StatusBadRequest, nil)
	}
	listing, err := h.Service.GetByID(c.Context(), listingID)
	if err != nil {
		return listingError(c, err)
	}
	return response.Success(c, "Listing fetched", listing, nil)
}

type deactivateListingRequest struct {
	ListingID string `json:"listing_id"`
}

// DeactivateListing takes the session farmer's listing off the board.
func (h *Handlers) DeactivateListing(c *fiber.Ctx) error {
	farmerID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req deactivateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return response.Error(c, "Invalid listing_id", fiber.StatusBadRequest, nil)
	}
	listing, err := h.Service.Deactivate(c.Context(), listingID, farmerID)
	if err != nil {
		return listingError(c, err)
	}
	return response.Success(c, "Listing deactivated", listing, nil)
}

func listingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrListingNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case errors.Is(err, ErrNotListingOwner):
		return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
	case errors.Is(err, ErrFishTypeRequired),
		errors.Is(err, ErrInvalidFixedPrice),
		errors.Is(err, ErrInvalidGuttingPrice),
		errors.Is(err, ErrInvalidSizeTiers),
		errors.Is(err, ErrInvalidDeliveryTier),
		errors.Is(err, ErrInvalidThreshold):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	return response.Error(c, "Failed to process listing", fiber.StatusInternalServerError, nil)
}
