package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification is an append-only side-effect record emitted by state
// transitions. Title/body are message-template keys resolved by the client;
// Params carries the template parameters as JSON.
type Notification struct {
	ID       uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID      `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	TitleKey string         `gorm:"column:title_key;not null" json:"title_key"`
	BodyKey  string         `gorm:"column:body_key;not null" json:"body_key"`
	Params   datatypes.JSON `gorm:"column:params;type:json" json:"params"`

	CreatedAt time.Time `json:"createdAt"`
}

func (Notification) TableName() string {
	return "Notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
