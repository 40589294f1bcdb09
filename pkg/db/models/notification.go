package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/enums"
)

// Notification is an in-app message addressed to one user, optionally scoped to a group.
type Notification struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index:idx_notifications_user_created" json:"user_id"`
	GroupID   *uuid.UUID             `gorm:"column:group_id;type:uuid" json:"group_id,omitempty"`
	Kind      enums.NotificationKind `gorm:"column:kind;type:varchar(32);not null" json:"kind"`
	Message   string                 `gorm:"column:message;not null" json:"message"`
	IsRead    bool                   `gorm:"column:is_read;not null;default:false" json:"is_read"`
	ReadAt    *time.Time             `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime;index:idx_notifications_user_created" json:"created_at"`
}

func (n *Notification) BeforeCreate(*gorm.DB) error {
	ensureID(&n.ID)
	return nil
}
