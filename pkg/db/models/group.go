package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultGroupCategory is applied when a group is created without a category.
const DefaultGroupCategory = "Autre"

// Group is a savings pot with a funding target, owned by its creator.
type Group struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name         string          `gorm:"column:name;not null"`
	Description  string          `gorm:"column:description;not null;default:''"`
	Category     string          `gorm:"column:category;not null;default:'Autre'"`
	TargetAmount decimal.Decimal `gorm:"column:target_amount;type:numeric(12,2);not null"`
	Deadline     *time.Time      `gorm:"column:deadline;type:date"`
	CreatedBy    uuid.UUID       `gorm:"column:created_by;type:uuid;not null;index"`
	InviteCode   string          `gorm:"column:invite_code;type:varchar(16);not null;uniqueIndex"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (g *Group) BeforeCreate(*gorm.DB) error {
	ensureID(&g.ID)
	if g.Category == "" {
		g.Category = DefaultGroupCategory
	}
	return nil
}

// IsAdmin reports whether userID created the group.
func (g *Group) IsAdmin(userID uuid.UUID) bool {
	return g != nil && g.CreatedBy == userID
}
