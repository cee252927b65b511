package listings

import "errors"

var (
	ErrFishTypeRequired    = errors.New("Fish type is required")
	ErrInvalidFixedPrice   = errors.New("Fixed price must be a positive integer")
	ErrInvalidGuttingPrice = errors.New("Gutting price must be a positive integer")
	ErrInvalidSizeTiers    = errors.New("Size price tiers are invalid")
	ErrInvalidDeliveryTier = errors.New("Delivery fee tiers are invalid")
	ErrInvalidThreshold    = errors.New("Quantity thresholds must be non-negative integers")
	ErrListingNotFound     = errors.New("Listing not found")
	ErrNotListingOwner     = errors.New("Unauthorized listing change")
)
