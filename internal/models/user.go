package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleRestaurant = "RESTAURANT"
	RoleFarmer     = "FARMER"
)

// IsValidRole returns true if role is one of the two marketplace sides.
func IsValidRole(role string) bool {
	return role == RoleRestaurant || role == RoleFarmer
}

// User is a marketplace account. Profile fields live inline; lat/lng are
// nullable because users may not have pinned their location yet — order
// creation checks presence explicitly.
type User struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	LoginID      string    `gorm:"column:login_id;not null;uniqueIndex" json:"login_id"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Role         string    `gorm:"column:role;type:varchar(20);not null" json:"role"`

	Name         string   `gorm:"column:name" json:"name"`
	EntityName   string   `gorm:"column:entity_name" json:"entity_name"`
	Phone        string   `gorm:"column:phone" json:"phone"`
	GoogleMapURL string   `gorm:"column:google_map_url" json:"google_map_url"`
	Province     string   `gorm:"column:province" json:"province"`
	District     string   `gorm:"column:district" json:"district"`
	Lat          *float64 `gorm:"column:lat" json:"lat"`
	Lng          *float64 `gorm:"column:lng" json:"lng"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "Users"
}

// BeforeCreate sets UUID if not set (for DBs without gen_random_uuid).
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// HasLocation reports whether both coordinates are present.
func (u *User) HasLocation() bool {
	return u.Lat != nil && u.Lng != nil
}
