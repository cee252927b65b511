package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fishlink-backend/internal/expiration"
	"fishlink-backend/internal/models"
	"fishlink-backend/internal/notifications"
	"fishlink-backend/internal/pkg/geo"
	"fishlink-backend/internal/pricing"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service runs the order lifecycle: idempotent creation with pricing
// snapshots, guarded status transitions, and read-triggered expiry. Every
// transition is a conditional update matching the expected prior status, so
// concurrent conflicting calls resolve to at most one winner.
type Service struct {
	DB            *gorm.DB
	Pricing       *pricing.Service
	Expiration    *expiration.Service
	Notifications *notifications.Service
	Now           func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type CreateOrderInput struct {
	RequestID    string
	RestaurantID uuid.UUID
	ListingID    uuid.UUID

	QuantityKg                float64
	SizeRequestText           string
	SelectedSizeTierSortOrder *int
	TimeBand                  string
	DayOffset                 *int
	SelectedDate              string
	TimeDetail                string
	Memo                      string
	GuttingRequested          bool
	DeliveryRequested         bool
}

// CreateOrder validates the request, snapshots the active pricing config and
// the listing's resolved prices onto a new REQUESTED order, and returns a
// live estimate computed from current rates. The bool is false when the
// request id was already used: the earlier order is returned and no second
// notification fires.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, *pricing.LiveEstimate, bool, error) {
	if in.ListingID == uuid.Nil || in.RestaurantID == uuid.Nil {
		return nil, nil, false, ErrMissingOrderID
	}
	if in.QuantityKg <= 0 {
		return nil, nil, false, ErrQuantityRequired
	}
	if !models.IsValidTimeBand(in.TimeBand) {
		return nil, nil, false, ErrInvalidTimeBand
	}

	var listing models.Listing
	err := s.DB.WithContext(ctx).
		Preload("Farmer").Preload("SizePriceTiers", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("DeliveryFeeTiers").
		Where("id = ?", in.ListingID).First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, false, ErrListingNotFound
		}
		return nil, nil, false, err
	}

	var restaurant models.User
	if err := s.DB.WithContext(ctx).Where("id = ?", in.RestaurantID).First(&restaurant).Error; err != nil {
		return nil, nil, false, err
	}
	if !restaurant.HasLocation() {
		return nil, nil, false, ErrRestaurantLocationMissing
	}
	// Reject rather than silently defaulting: the delivery fee would be
	// uncomputable at acceptance.
	if listing.Farmer == nil || !listing.Farmer.HasLocation() {
		return nil, nil, false, ErrFarmerLocationMissing
	}

	now := s.now()
	var expiresAt time.Time
	var requestedDate string
	if strings.TrimSpace(in.SelectedDate) != "" {
		requestedDate = strings.TrimSpace(in.SelectedDate)
		expiresAt, err = expiration.ComputeExpiresAtByDate(in.TimeBand, requestedDate)
		if err != nil {
			return nil, nil, false, err
		}
	} else {
		if in.DayOffset == nil || *in.DayOffset < 0 || *in.DayOffset > 2 {
			return nil, nil, false, ErrInvalidDayOffset
		}
		requestedDate = expiration.ComputeRequestedDate(*in.DayOffset, now)
		expiresAt = expiration.ComputeExpiresAt(in.TimeBand, *in.DayOffset, now)
	}
	if !expiresAt.After(now) {
		return nil, nil, false, ErrDeadlinePassed
	}

	guttingRequested := in.GuttingRequested && listing.GuttingAvailable
	deliveryRequested := in.DeliveryRequested && listing.DeliveryAvailable

	sizeText := strings.TrimSpace(in.SizeRequestText)
	basePrice := listing.BasePricePerKg
	if listing.FixedPriceKHRPerKg != nil {
		basePrice = float64(*listing.FixedPriceKHRPerKg)
	}
	if listing.PriceType == models.PriceTypeTiered {
		if in.SelectedSizeTierSortOrder == nil {
			return nil, nil, false, ErrInvalidSizeTier
		}
		var selected *models.SizePriceTier
		for i := range listing.SizePriceTiers {
			if listing.SizePriceTiers[i].SortOrder == *in.SelectedSizeTierSortOrder {
				selected = &listing.SizePriceTiers[i]
				break
			}
		}
		if selected == nil {
			return nil, nil, false, ErrInvalidSizeTier
		}
		basePrice = float64(selected.PriceKHRPerKg)
		sizeText = fmt.Sprintf("%d–%d head/kg", selected.MinHeadPerKg, selected.MaxHeadPerKg)
	} else if sizeText == "" {
		return nil, nil, false, ErrSizeTextRequired
	}

	cfg, err := s.Pricing.Active(ctx)
	if err != nil {
		return nil, nil, false, err
	}
	var versionSnap *string
	if cfg.PricingVersion != "" {
		v := cfg.PricingVersion
		versionSnap = &v
	}

	// Handoff point: the restaurant's pin when the farmer delivers, the
	// farmer's pin when the restaurant picks up.
	handoffMap := listing.Farmer.GoogleMapURL
	if deliveryRequested {
		handoffMap = restaurant.GoogleMapURL
	}

	requestID := strings.TrimSpace(in.RequestID)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	order := &models.Order{
		RequestID:    requestID,
		ListingID:    listing.ID,
		RestaurantID: restaurant.ID,
		FarmerID:     listing.FarmerID,

		QuantityKg:        in.QuantityKg,
		SizeRequestText:   sizeText,
		TimeBand:          in.TimeBand,
		TimeDetail:        optional(in.TimeDetail),
		Memo:              optional(in.Memo),
		GuttingRequested:  guttingRequested,
		DeliveryRequested: deliveryRequested,

		Status:        models.OrderStatusRequested,
		ExpiresAt:     expiresAt,
		RequestedDate: requestedDate,
		PaymentStatus: models.PaymentStatusUnpaid,

		RestaurantPhoneSnap: restaurant.Phone,
		RestaurantMapSnap:   restaurant.GoogleMapURL,
		FarmerPhoneSnap:     listing.Farmer.Phone,
		FarmerMapSnap:       listing.Farmer.GoogleMapURL,
		HandoffMapSnap:      handoffMap,

		BasePricePerKgSnap:    basePrice,
		GuttingPricePerKgSnap: float64(listing.GuttingPricePerKg),
		PricingVersionSnap:    versionSnap,
		AlphaRateSnap:         cfg.AlphaRate,
		BetaRateSnap:          cfg.BetaRate,
		BetaDiscountRateSnap:  cfg.BetaDiscountRate,
	}

	distanceKm := geo.HaversineDistanceKm(
		geo.Point{Lat: *restaurant.Lat, Lng: *restaurant.Lng},
		geo.Point{Lat: *listing.Farmer.Lat, Lng: *listing.Farmer.Lng},
	)
	deliveryFee := 0.0
	if deliveryRequested {
		deliveryFee = pricing.CreationDeliveryFee(distanceKm)
	}
	estimate := pricing.EstimateLive(cfg, basePrice, in.QuantityKg, guttingRequested, float64(listing.GuttingPricePerKg), deliveryFee)

	created := true
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		return s.Notifications.CreateTx(tx, listing.FarmerID,
			"notifications.orderRequested.title", "notifications.orderRequested.body",
			map[string]interface{}{"orderId": order.ID.String()})
	})
	if err != nil {
		if !duplicateKey(err) {
			return nil, nil, false, err
		}
		// Retried submission: hand back the original row, skip notifications.
		var existing models.Order
		if err := s.DB.WithContext(ctx).Where("request_id = ?", requestID).First(&existing).Error; err != nil {
			return nil, nil, false, err
		}
		order = &existing
		created = false
	}
	return order, &estimate, created, nil
}

// Accept freezes the final pricing onto the order and moves it to ACCEPTED.
// The delivery fee is now fully determined from up-to-date coordinates; the
// commission rates come from the order's creation snapshot, never from the
// currently active config.
func (s *Service) Accept(ctx context.Context, orderID, farmerID uuid.UUID) (*models.Order, bool, error) {
	order, err := s.loadForTransition(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	if order.FarmerID != farmerID {
		return nil, false, ErrNotOrderOwner
	}
	if order.Status != models.OrderStatusRequested {
		return order, false, nil
	}

	deliveryFeeFinal := 0.0
	if order.DeliveryRequested {
		var restaurant, farmer models.User
		if err := s.DB.WithContext(ctx).Where("id = ?", order.RestaurantID).First(&restaurant).Error; err != nil {
			return nil, false, err
		}
		if err := s.DB.WithContext(ctx).Where("id = ?", order.FarmerID).First(&farmer).Error; err != nil {
			return nil, false, err
		}
		if !restaurant.HasLocation() {
			return nil, false, ErrRestaurantLocationMissing
		}
		if !farmer.HasLocation() {
			return nil, false, ErrFarmerLocationMissing
		}
		distanceKm := geo.HaversineDistanceKm(
			geo.Point{Lat: *restaurant.Lat, Lng: *restaurant.Lng},
			geo.Point{Lat: *farmer.Lat, Lng: *farmer.Lng},
		)
		deliveryFeeFinal = pricing.CreationDeliveryFee(distanceKm)
	}

	b := pricing.FinalBreakdown(order, deliveryFeeFinal)

	won := false
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusRequested).
			Updates(map[string]interface{}{
				"status":                  models.OrderStatusAccepted,
				"delivery_fee_final":      b.DeliveryFeeFinal,
				"display_unit_price_snap": b.DisplayUnitPrice,
				"fish_subtotal_snap":      b.FishSubtotal,
				"beta_fee_snap":           b.BetaFee,
				"beta_discount_snap":      b.BetaDiscount,
				"final_total":             b.FinalTotal,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		won = true
		return s.Notifications.CreateTx(tx, order.RestaurantID,
			"notifications.orderAccepted.title", "notifications.orderAccepted.body",
			map[string]interface{}{"orderId": order.ID.String()})
	})
	if err != nil {
		return nil, false, err
	}
	return s.reload(ctx, order.ID, won)
}

// Reject closes a REQUESTED order with a reason code and optional note.
func (s *Service) Reject(ctx context.Context, orderID, farmerID uuid.UUID, reason, note string) (*models.Order, bool, error) {
	reason = strings.TrimSpace(reason)
	if !models.IsValidRejectReason(reason) {
		return nil, false, ErrRejectReasonInvalid
	}
	order, err := s.loadForTransition(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	if order.FarmerID != farmerID {
		return nil, false, ErrNotOrderOwner
	}
	if order.Status != models.OrderStatusRequested {
		return order, false, nil
	}

	won := false
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusRequested).
			Updates(map[string]interface{}{
				"status":        models.OrderStatusRejected,
				"reject_reason": reason,
				"reject_note":   optional(note),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		won = true
		return s.Notifications.CreateTx(tx, order.RestaurantID,
			"notifications.orderRejected.title", "notifications.orderRejected.body",
			map[string]interface{}{"orderId": order.ID.String(), "reason": reason})
	})
	if err != nil {
		return nil, false, err
	}
	return s.reload(ctx, order.ID, won)
}

// StartPreparing moves ACCEPTED→PREPARING (farmer only).
func (s *Service) StartPreparing(ctx context.Context, orderID, farmerID uuid.UUID) (*models.Order, bool, error) {
	return s.advance(ctx, orderID, farmerID, actorFarmer,
		models.OrderStatusAccepted, models.OrderStatusPreparing,
		"notifications.orderPreparing.title", "notifications.orderPreparing.body")
}

// StartDelivering moves PREPARING→DELIVERING (farmer only).
func (s *Service) StartDelivering(ctx context.Context, orderID, farmerID uuid.UUID) (*models.Order, bool, error) {
	return s.advance(ctx, orderID, farmerID, actorFarmer,
		models.OrderStatusPreparing, models.OrderStatusDelivering,
		"notifications.orderDelivering.title", "notifications.orderDelivering.body")
}

// Complete moves DELIVERING→COMPLETED (restaurant only).
func (s *Service) Complete(ctx context.Context, orderID, restaurantID uuid.UUID) (*models.Order, bool, error) {
	return s.advance(ctx, orderID, restaurantID, actorRestaurant,
		models.OrderStatusDelivering, models.OrderStatusCompleted,
		"notifications.orderCompleted.title", "notifications.orderCompleted.body")
}

// MarkPaid records the payment timestamp on a COMPLETED order. The order
// status does not change.
func (s *Service) MarkPaid(ctx context.Context, orderID, restaurantID uuid.UUID) (*models.Order, bool, error) {
	order, err := s.loadForTransition(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	if order.RestaurantID != restaurantID {
		return nil, false, ErrNotOrderOwner
	}
	if order.Status != models.OrderStatusCompleted || order.PaymentStatus == models.PaymentStatusPaid {
		return order, false, nil
	}

	now := s.now()
	res := s.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ? AND payment_status = ?", order.ID, models.OrderStatusCompleted, models.PaymentStatusUnpaid).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentStatusPaid,
			"paid_at":        now,
		})
	if res.Error != nil {
		return nil, false, res.Error
	}
	return s.reload(ctx, order.ID, res.RowsAffected > 0)
}

// GetOrder refreshes expiry and returns the order with its relations. A
// non-participant gets not-found, same as a missing order.
func (s *Service) GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, ErrMissingOrderID
	}
	if _, err := s.Expiration.RefreshOrder(ctx, orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	var order models.Order
	err := s.DB.WithContext(ctx).
		Preload("Listing").Preload("Listing.DeliveryFeeTiers", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Restaurant").Preload("Farmer").
		Where("id = ?", orderID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.RestaurantID != userID && order.FarmerID != userID {
		return nil, ErrOrderNotFound
	}
	return &order, nil
}

// ListForUser refreshes expiry over the user's orders and returns them,
// newest first, scoped to the session user's side of the marketplace.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, role string) ([]models.Order, error) {
	col := "restaurant_id"
	if role == models.RoleFarmer {
		col = "farmer_id"
	}
	var orders []models.Order
	err := s.DB.WithContext(ctx).
		Preload("Listing").
		Where(col+" = ?", userID).Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, err
	}
	if err := s.Expiration.RefreshOrders(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

type actorSide int

const (
	actorFarmer actorSide = iota
	actorRestaurant
)

// advance runs one guarded step of the ACCEPTED→…→COMPLETED chain. The
// notification goes to the counterparty of the acting side.
func (s *Service) advance(ctx context.Context, orderID, actorID uuid.UUID, side actorSide, from, to, titleKey, bodyKey string) (*models.Order, bool, error) {
	order, err := s.loadForTransition(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	owner := order.FarmerID
	notifyTarget := order.RestaurantID
	if side == actorRestaurant {
		owner = order.RestaurantID
		notifyTarget = order.FarmerID
	}
	if owner != actorID {
		return nil, false, ErrNotOrderOwner
	}
	if order.Status != from {
		return order, false, nil
	}

	won := false
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, from).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		won = true
		return s.Notifications.CreateTx(tx, notifyTarget, titleKey, bodyKey,
			map[string]interface{}{"orderId": order.ID.String()})
	})
	if err != nil {
		return nil, false, err
	}
	return s.reload(ctx, order.ID, won)
}

// loadForTransition refreshes expiry first so "not expired" preconditions
// see the current state, then returns the fresh row.
func (s *Service) loadForTransition(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, ErrMissingOrderID
	}
	order, err := s.Expiration.RefreshOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *Service) reload(ctx context.Context, orderID uuid.UUID, won bool) (*models.Order, bool, error) {
	var order models.Order
	if err := s.DB.WithContext(ctx).Where("id = ?", orderID).First(&order).Error; err != nil {
		return nil, false, err
	}
	return &order, won, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
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
