package orders

import (
	"errors"

	"fishlink-backend/internal/expiration"
	"fishlink-backend/internal/middleware"
	"fishlink-backend/internal/models"
	"fishlink-backend/internal/pkg/money"
	"fishlink-backend/internal/pkg/response"
	"fishlink-backend/internal/pricing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
	// PaymentQRURL is shown on completed orders for the out-of-band payment.
	PaymentQRURL string
}

type createOrderRequest struct {
	RequestID                 string  `json:"request_id"`
	ListingID                 string  `json:"listing_id"`
	QuantityKg                float64 `json:"quantity_kg"`
	SizeRequestText           string  `json:"size_request_text"`
	SelectedSizeTierSortOrder *int    `json:"selected_size_tier_sort_order"`
	TimeBand                  string  `json:"time_band"`
	DayOffset                 *int    `json:"day_offset"`
	SelectedDate              string  `json:"selected_date"`
	TimeDetail                string  `json:"time_detail"`
	Memo                      string  `json:"memo"`
	GuttingRequested          bool    `json:"gutting_requested"`
	DeliveryRequested         bool    `json:"delivery_requested"`
}

// CreateOrder places an order for the session restaurant (idempotent on
// request_id) and returns it with a live, non-committal estimate.
func (h *Handlers) CreateOrder(c *fiber.Ctx) error {
	restaurantID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return response.Error(c, "Invalid listing_id", fiber.StatusBadRequest, nil)
	}

	order, estimate, created, err := h.Service.CreateOrder(c.Context(), CreateOrderInput{
		RequestID:                 req.RequestID,
		RestaurantID:              restaurantID,
		ListingID:                 listingID,
		QuantityKg:                req.QuantityKg,
		SizeRequestText:           req.SizeRequestText,
		SelectedSizeTierSortOrder: req.SelectedSizeTierSortOrder,
		TimeBand:                  req.TimeBand,
		DayOffset:                 req.DayOffset,
		SelectedDate:              req.SelectedDate,
		TimeDetail:                req.TimeDetail,
		Memo:                      req.Memo,
		GuttingRequested:          req.GuttingRequested,
		DeliveryRequested:         req.DeliveryRequested,
	})
	if err != nil {
		return orderError(c, err)
	}
	data := fiber.Map{
		"order":    order,
		"estimate": estimateView(estimate),
	}
	if !created {
		return response.Success(c, "Order already created", data, map[string]interface{}{"deduplicated": true})
	}
	return response.SuccessCreated(c, "Order created", data, nil)
}

// GetOrders lists the session user's orders (expiry evaluated first).
func (h *Handlers) GetOrders(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	userID, err := uuid.Parse(user.UserID)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	items, err := h.Service.ListForUser(c.Context(), userID, user.Role)
	if err != nil {
		return response.Error(c, "Failed to fetch orders", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Orders fetched", items, nil)
}

// GetOrder returns one order with role-dependent pricing views.
func (h *Handlers) GetOrder(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	userID, err := uuid.Parse(user.UserID)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	orderID, err := uuid.Parse(c.Params("order_id"))
	if err != nil {
		return response.Error(c, "Invalid order_id", fiber.StatusBadRequest, nil)
	}
	order, err := h.Service.GetOrder(c.Context(), orderID, userID)
	if err != nil {
		return orderError(c, err)
	}
	return response.Success(c, "Order fetched", h.orderDetailView(order, user.Role), nil)
}

type transitionRequest struct {
	OrderID      string `json:"order_id"`
	RejectReason string `json:"reject_reason"`
	RejectNote   string `json:"reject_note"`
}

// AcceptOrder runs REQUESTED→ACCEPTED for the session farmer.
func (h *Handlers) AcceptOrder(c *fiber.Ctx) error {
	return h.transition(c, func(orderID, actorID uuid.UUID, _ transitionRequest) (*models.Order, bool, error) {
		return h.Service.Accept(c.Context(), orderID, actorID)
	}, "Order accepted")
}

// RejectOrder runs REQUESTED→REJECTED for the session farmer.
func (h *Handlers) RejectOrder(c *fiber.Ctx) error {
	return h.transition(c, func(orderID, actorID uuid.UUID, req transitionRequest) (*models.Order, bool, error) {
		return h.Service.Reject(c.Context(), orderID, actorID, req.RejectReason, req.RejectNote)
	}, "Order rejected")
}

// StartPreparing runs ACCEPTED→PREPARING for the session farmer.
func (h *Handlers) StartPreparing(c *fiber.Ctx) error {
	return h.transition(c, func(orderID, actorID uuid.UUID, _ transitionRequest) (*models.Order, bool, error) {
		return h.Service.StartPreparing(c.Context(), orderID, actorID)
	}, "Order preparing")
}

// StartDelivering runs PREPARING→DELIVERING for the session farmer.
func (h *Handlers) StartDelivering(c *fiber.Ctx) error {
	return h.transition(c, func(orderID, actorID uuid.UUID, _ transitionRequest) (*models.Order, bool, error) {
		return h.Service.StartDelivering(c.Context(), orderID, actorID)
	}, "Order delivering")
}

// CompleteOrder runs DELIVERING→COMPLETED for the session restaurant.
func (h *Handlers) CompleteOrder(c *fiber.Ctx) error {
	return h.transition(c, func(orderID, actorID uuid.UUID, _ transitionRequest) (*models.Order, bool, error) {
		return h.Service.Complete(c.Context(), orderID, actorID)
	}, "Order completed")
}

// MarkPaid records the payment timestamp on a COMPLETED order.
func (h *Handlers) MarkPaid(c *fiber.Ctx) error {
	return h.transition(c, func(orderID, actorID uuid.UUID, _ transitionRequest) (*models.Order, bool, error) {
		return h.Service.MarkPaid(c.Context(), orderID, actorID)
	}, "Order marked paid")
}

func (h *Handlers) transition(c *fiber.Ctx, run func(orderID, actorID uuid.UUID, req transitionRequest) (*models.Order, bool, error), okMessage string) error {
	actorID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req transitionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return response.Error(c, ErrMissingOrderID.Error(), fiber.StatusBadRequest, nil)
	}
	order, transitioned, err := run(orderID, actorID, req)
	if err != nil {
		return orderError(c, err)
	}
	if !transitioned {
		return response.NoChange(c, "No change", order)
	}
	return response.Success(c, okMessage, order, map[string]interface{}{"transitioned": true})
}

// orderDetailView assembles the role-dependent pricing blocks around the raw
// order, with display amounts rounded only here.
func (h *Handlers) orderDetailView(order *models.Order, role string) fiber.Map {
	view := fiber.Map{"order": order}

	var tiers []models.DeliveryFeeTier
	var freeMinKg *int
	if order.Listing != nil {
		tiers = order.Listing.DeliveryFeeTiers
		freeMinKg = order.Listing.FreeDeliveryMinKg
	}

	if order.Status == models.OrderStatusRequested {
		if role == models.RoleRestaurant {
			est := pricing.EstimateForBuyer(order, tiers, freeMinKg)
			view["buyer_estimate"] = fiber.Map{
				"display_unit_price": est.DisplayUnitPrice,
				"fish_subtotal":      est.FishSubtotal,
				"gutting_fee":        est.GuttingFee,
				"support_fee":        est.SupportFee,
				"delivery_min":       est.DeliveryMin,
				"delivery_max":       est.DeliveryMax,
				"total_min":          est.TotalMin,
				"total_max":          est.TotalMax,
				"total_min_display":  money.FormatKHR(est.TotalMin),
				"total_max_display":  money.FormatKHR(est.TotalMax),
			}
		} else {
			est := pricing.EstimateForFarmer(order, tiers, freeMinKg)
			view["farmer_estimate"] = fiber.Map{
				"fish_subtotal":     est.FishSubtotal,
				"gutting_fee":       est.GuttingFee,
				"delivery_min":      est.DeliveryMin,
				"delivery_max":      est.DeliveryMax,
				"total_min":         est.TotalMin,
				"total_max":         est.TotalMax,
				"total_min_display": money.FormatKHR(est.TotalMin),
				"total_max_display": money.FormatKHR(est.TotalMax),
			}
		}
	}

	if order.FinalTotal != nil {
		view["final_total_display"] = money.FormatKHR(*order.FinalTotal)
		if role == models.RoleFarmer {
			payout := pricing.FarmerFinal(order)
			view["farmer_payout_final"] = payout
			view["farmer_payout_display"] = money.FormatKHR(payout)
		}
	}
	if order.Status == models.OrderStatusCompleted && role == models.RoleRestaurant && h.PaymentQRURL != "" {
		view["payment_qr_url"] = h.PaymentQRURL
	}
	return view
}

func estimateView(est *pricing.LiveEstimate) fiber.Map {
	if est == nil {
		return nil
	}
	return fiber.Map{
		"display_unit_price": est.DisplayUnitPrice,
		"fish_subtotal":      est.FishSubtotal,
		"gutting_fee":        est.GuttingFee,
		"support_fee":        est.SupportFee,
		"delivery_fee":       est.DeliveryFee,
		"total":              est.Total,
		"total_display":      money.FormatKHR(est.Total),
	}
}

func orderError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrListingNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case errors.Is(err, ErrNotOrderOwner):
		return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
	case errors.Is(err, ErrRestaurantLocationMissing),
		errors.Is(err, ErrFarmerLocationMissing),
		errors.Is(err, ErrDeadlinePassed):
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	case errors.Is(err, ErrMissingOrderID),
		errors.Is(err, ErrQuantityRequired),
		errors.Is(err, ErrInvalidTimeBand),
		errors.Is(err, ErrInvalidDayOffset),
		errors.Is(err, expiration.ErrInvalidDate),
		errors.Is(err, ErrSizeTextRequired),
		errors.Is(err, ErrInvalidSizeTier),
		errors.Is(err, ErrRejectReasonInvalid):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	return response.Error(c, "Failed to process order", fiber.StatusInternalServerError, nil)
}
