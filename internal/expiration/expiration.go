// Package expiration computes order deadlines and retires stale requests.
// There is no scheduler: expiry is evaluated on every order read, so an order
// may stay visibly REQUESTED past its deadline until the next read. That
// staleness window is deliberate — it keeps the engine free of timers.
package expiration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fishlink-backend/internal/models"
	"fishlink-backend/internal/notifications"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Timezone is the single named zone all cutoffs are wall-clock in.
const Timezone = "Asia/Phnom_Penh"

var ErrInvalidDate = errors.New("Invalid requested date")

// Location returns the deadline timezone. The IANA name is compiled into the
// Go zoneinfo fallback, so this cannot fail at runtime.
func Location() *time.Location {
	loc, err := time.LoadLocation(Timezone)
	if err != nil {
		panic(fmt.Sprintf("load %s: %v", Timezone, err))
	}
	return loc
}

// cutoff returns the wall-clock cutoff for a time band on the given date.
// MORNING 04:30, AFTERNOON 09:00, NIGHT 14:00 (anything else is NIGHT,
// matching band validation done upstream).
func cutoff(band string, year int, month time.Month, day int, loc *time.Location) time.Time {
	switch band {
	case models.TimeBandMorning:
		return time.Date(year, month, day, 4, 30, 0, 0, loc)
	case models.TimeBandAfternoon:
		return time.Date(year, month, day, 9, 0, 0, 0, loc)
	default:
		return time.Date(year, month, day, 14, 0, 0, 0, loc)
	}
}

// ComputeExpiresAt returns the deadline for a request placed dayOffset days
// from now (0 = today, 1 = tomorrow, 2 = day after).
func ComputeExpiresAt(band string, dayOffset int, now time.Time) time.Time {
	loc := Location()
	base := now.In(loc).AddDate(0, 0, dayOffset)
	return cutoff(band, base.Year(), base.Month(), base.Day(), loc)
}

// ComputeRequestedDate returns the ISO calendar date dayOffset days from now.
func ComputeRequestedDate(dayOffset int, now time.Time) string {
	return now.In(Location()).AddDate(0, 0, dayOffset).Format("2006-01-02")
}

// ComputeExpiresAtByDate returns the deadline for an explicit calendar date
// ("2006-01-02").
func ComputeExpiresAtByDate(band string, dateStr string) (time.Time, error) {
	loc := Location()
	base, err := time.ParseInLocation("2006-01-02", dateStr, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return cutoff(band, base.Year(), base.Month(), base.Day(), loc), nil
}

// Service retires REQUESTED orders whose deadline has passed. Now is
// injectable for tests and defaults to time.Now.
type Service struct {
	DB            *gorm.DB
	Notifications *notifications.Service
	Now           func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// RefreshOrder expires the order if due and returns the current row. The
// status write is a conditional update matching the prior status, so a
// concurrent accept/reject and an expiry race resolve to exactly one winner;
// notifications fire only when this call performed the transition.
func (s *Service) RefreshOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.DB.WithContext(ctx).Where("id = ?", orderID).First(&order).Error; err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusRequested {
		return &order, nil
	}
	if s.now().Before(order.ExpiresAt) {
		return &order, nil
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusRequested).
			Update("status", models.OrderStatusExpired)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race; someone else transitioned it first.
			return nil
		}
		params := map[string]interface{}{"orderId": order.ID.String()}
		if err := s.Notifications.CreateTx(tx, order.RestaurantID, "notifications.orderExpired.title", "notifications.orderExpired.body", params); err != nil {
			return err
		}
		return s.Notifications.CreateTx(tx, order.FarmerID, "notifications.orderExpiredFarmer.title", "notifications.orderExpiredFarmer.body", params)
	})
	if err != nil {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).Where("id = ?", orderID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// RefreshOrders runs RefreshOrder over a list read and patches statuses in
// place so the caller renders fresh states without re-querying.
func (s *Service) RefreshOrders(ctx context.Context, orders []models.Order) error {
	now := s.now()
	for i := range orders {
		if orders[i].Status != models.OrderStatusRequested || now.Before(orders[i].ExpiresAt) {
			continue
		}
		updated, err := s.RefreshOrder(ctx, orders[i].ID)
		if err != nil {
			return err
		}
		orders[i].Status = updated.Status
	}
	return nil
}
