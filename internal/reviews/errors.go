package reviews

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderNotCompleted = errors.New("order is not completed")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
)
