package groups

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/analytics"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/contributions"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/db/models"
)

const deadlineLayout = "2006-01-02"

// CreateInput is the payload for a new savings group.
type CreateInput struct {
	Name         string          `json:"name" validate:"required,max=255"`
	Description  string          `json:"description"`
	Category     string          `json:"category" validate:"omitempty,max=64"`
	TargetAmount decimal.Decimal `json:"target_amount" validate:"decimal_positive"`
	Deadline     string          `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
}

// GroupDTO is the public representation of a group.
type GroupDTO struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	Deadline     *string         `json:"deadline,omitempty"`
	CreatedBy    uuid.UUID       `json:"created_by"`
	InviteCode   string          `json:"invite_code"`
	CreatedAt    time.Time       `json:"created_at"`
}

// DetailDTO adds progress and the caller's role to a group.
type DetailDTO struct {
	GroupDTO
	TotalContributed decimal.Decimal `json:"total_contributed"`
	Percentage       decimal.Decimal `json:"percentage"`
	IsAdmin          bool            `json:"is_admin"`
}

// SummaryDTO is one dashboard card.
type SummaryDTO struct {
	DetailDTO
	MemberCount int64 `json:"member_count"`
}

// Dashboard aggregates what a user sees on login.
type Dashboard struct {
	Groups              []SummaryDTO                    `json:"groups"`
	RecentContributions []contributions.ContributionDTO `json:"recent_contributions"`
	Notifications       []models.Notification           `json:"notifications"`
}

func FromModel(g *models.Group) GroupDTO {
	dto := GroupDTO{
		ID:           g.ID,
		Name:         g.Name,
		Description:  g.Description,
		Category:     g.Category,
		TargetAmount: g.TargetAmount,
		CreatedBy:    g.CreatedBy,
		InviteCode:   g.InviteCode,
		CreatedAt:    g.CreatedAt,
	}
	if g.Deadline != nil {
		formatted := g.Deadline.Format(deadlineLayout)
		dto.Deadline = &formatted
	}
	return dto
}

func detail(g *models.Group, total decimal.Decimal, userID uuid.UUID) DetailDTO {
	return DetailDTO{
		GroupDTO:         FromModel(g),
		TotalContributed: total,
		Percentage:       analytics.ProgressPct(total, g.TargetAmount),
		IsAdmin:          g.IsAdmin(userID),
	}
}
