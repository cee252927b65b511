package orders

import "errors"

// Validation errors: rejected before any persistence.
var (
	ErrMissingOrderID      = errors.New("Missing order_id")
	ErrListingNotFound     = errors.New("Listing not found")
	ErrOrderNotFound       = errors.New("Order not found")
	ErrQuantityRequired    = errors.New("Quantity must be positive")
	ErrInvalidTimeBand     = errors.New("Invalid time band")
	ErrInvalidDayOffset    = errors.New("Day offset must be 0, 1 or 2")
	ErrSizeTextRequired    = errors.New("Size request is required")
	ErrInvalidSizeTier     = errors.New("Selected size tier does not exist")
	ErrRejectReasonInvalid = errors.New("Invalid reject reason")
)

// Precondition errors: no state change, a specific reason surfaces to the
// caller.
var (
	ErrNotOrderOwner             = errors.New("Unauthorized order action")
	ErrRestaurantLocationMissing = errors.New("Restaurant location is not set")
	ErrFarmerLocationMissing     = errors.New("Farmer location is not set")
	ErrDeadlinePassed            = errors.New("Requested time is already in the past")
)
