package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/enums"
)

// Contribution is a monetary deposit by a member toward a group's target.
type Contribution struct {
	ID               uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	GroupID          uuid.UUID                `gorm:"column:group_id;type:uuid;not null;index:idx_contributions_group_status"`
	UserID           uuid.UUID                `gorm:"column:user_id;type:uuid;not null;index"`
	Amount           decimal.Decimal          `gorm:"column:amount;type:numeric(12,2);not null"`
	Description      string                   `gorm:"column:description;not null;default:''"`
	ProofRef         *string                  `gorm:"column:proof_ref"`
	Status           enums.ContributionStatus `gorm:"column:status;type:varchar(16);not null;index:idx_contributions_group_status"`
	ContributionDate time.Time                `gorm:"column:contribution_date;not null"`
	ReviewedBy       *uuid.UUID               `gorm:"column:reviewed_by;type:uuid"`
	ReviewedAt       *time.Time               `gorm:"column:reviewed_at"`
}

func (c *Contribution) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	if c.ContributionDate.IsZero() {
		c.ContributionDate = time.Now().UTC()
	}
	return nil
}
