package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents the canonical identity entity.
type User struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Username       string     `gorm:"column:username;type:varchar(50);not null;uniqueIndex"`
	Email          string     `gorm:"column:email;type:varchar(255);not null;uniqueIndex"`
	PasswordHash   *string    `gorm:"column:password_hash"`
	IsPremium      bool       `gorm:"column:is_premium;not null;default:false"`
	GoogleID       *string    `gorm:"column:google_id;uniqueIndex"`
	GoogleEmail    *string    `gorm:"column:google_email"`
	ProfilePicture *string    `gorm:"column:profile_picture"`
	LastLoginAt    *time.Time `gorm:"column:last_login_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}
