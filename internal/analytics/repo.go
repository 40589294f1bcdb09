package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/repo"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/db/models"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/enums"
)

// Repository reads the approved contributions the aggregator works on.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

type entryRow struct {
	UserID           uuid.UUID       `gorm:"column:user_id"`
	Username         string          `gorm:"column:username"`
	Amount           decimal.Decimal `gorm:"column:amount"`
	ContributionDate time.Time       `gorm:"column:contribution_date"`
}

// ApprovedEntries returns the group's approved contributions, oldest first.
func (r *Repository) ApprovedEntries(ctx context.Context, groupID uuid.UUID) ([]Entry, error) {
	var rows []entryRow
	err := r.DB(ctx).
		Model(&models.Contribution{}).
		Select("contributions.user_id, users.username, contributions.amount, contributions.contribution_date").
		Joins("JOIN users ON users.id = contributions.user_id").
		Where("contributions.group_id = ? AND contributions.status = ?", groupID, enums.ContributionStatusApproved).
		Order("contributions.contribution_date, contributions.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Entry{
			UserID:   row.UserID,
			Username: row.Username,
			Amount:   row.Amount,
			Date:     row.ContributionDate,
		})
	}
	return entries, nil
}
