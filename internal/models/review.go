package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is feedback attached to a completed order. At most one review per
// (order, author) pair, enforced by the composite unique index.
type Review struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderID    uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex:ux_order_from,priority:1" json:"order_id"`
	FromUserID uuid.UUID `gorm:"column:from_user_id;type:uuid;not null;uniqueIndex:ux_order_from,priority:2" json:"from_user_id"`
	ToUserID   uuid.UUID `gorm:"column:to_user_id;type:uuid;not null;index" json:"to_user_id"`
	Rating     *int      `gorm:"column:rating" json:"rating"`
	Comment    *string   `gorm:"column:comment" json:"comment"`

	CreatedAt time.Time `json:"createdAt"`
}

func (Review) TableName() string {
	return "Reviews"
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
