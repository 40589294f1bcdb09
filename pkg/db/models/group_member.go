package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/enums"
)

// GroupMember links a user with a group; one row per (group, user).
type GroupMember struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	GroupID   uuid.UUID              `gorm:"column:group_id;type:uuid;not null;uniqueIndex:uq_group_members_group_user"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_group_members_group_user;index"`
	Status    enums.MembershipStatus `gorm:"column:status;type:varchar(16);not null"`
	JoinedAt  time.Time              `gorm:"column:joined_at;autoCreateTime"`
	UpdatedAt time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (GroupMember) TableName() string {
	return "group_members"
}

func (m *GroupMember) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
