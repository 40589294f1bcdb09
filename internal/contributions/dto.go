package contributions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/db/models"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/enums"
)

// ContributionDTO is the transport shape of a contribution.
type ContributionDTO struct {
	ID               uuid.UUID                `json:"id"`
	GroupID          uuid.UUID                `json:"group_id"`
	GroupName        string                   `json:"group_name,omitempty"`
	UserID           uuid.UUID                `json:"user_id"`
	Username         string                   `json:"username,omitempty"`
	Amount           decimal.Decimal          `json:"amount"`
	Description      string                   `json:"description"`
	ProofRef         *string                  `json:"proof_ref,omitempty"`
	Status           enums.ContributionStatus `json:"status"`
	ContributionDate time.Time                `json:"contribution_date"`
	ReviewedBy       *uuid.UUID               `json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time               `json:"reviewed_at,omitempty"`
}

// SubmitInput carries a member's new contribution.
type SubmitInput struct {
	GroupID     uuid.UUID
	UserID      uuid.UUID
	Amount      decimal.Decimal
	Description string
	ProofRef    *string
}

type contributionRow struct {
	models.Contribution
	Username  string `gorm:"column:username"`
	GroupName string `gorm:"column:group_name"`
}

// FromModel converts a model to the external DTO.
func FromModel(c *models.Contribution) *ContributionDTO {
	if c == nil {
		return nil
	}
	return &ContributionDTO{
		ID:               c.ID,
		GroupID:          c.GroupID,
		UserID:           c.UserID,
		Amount:           c.Amount,
		Description:      c.Description,
		ProofRef:         c.ProofRef,
		Status:           c.Status,
		ContributionDate: c.ContributionDate,
		ReviewedBy:       c.ReviewedBy,
		ReviewedAt:       c.ReviewedAt,
	}
}

func fromRows(rows []contributionRow) []ContributionDTO {
	out := make([]ContributionDTO, 0, len(rows))
	for i := range rows {
		dto := FromModel(&rows[i].Contribution)
		dto.Username = rows[i].Username
		dto.GroupName = rows[i].GroupName
		out = append(out, *dto)
	}
	return out
}
