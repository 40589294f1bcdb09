package contributions

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

// Repository persists contributions.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, contribution *models.Contribution) error {
	return r.DB(ctx).Create(contribution).Error
}

// FindByID returns nil when the contribution does not exist.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Contribution, error) {
	var contribution models.Contribution
	err := r.DB(ctx).First(&contribution, "id = ?", id).Error
	return repo.Found(&contribution, err)
}

// Review closes a pending contribution of groupID. It reports false when the
// row is missing, belongs elsewhere, or was already reviewed.
func (r *Repository) Review(ctx context.Context, groupID, id uuid.UUID, next enums.ContributionStatus, reviewer uuid.UUID, now time.Time) (bool, error) {
	result := r.DB(ctx).
		Model(&models.Contribution{}).
		Where("id = ? AND group_id = ? AND status = ?", id, groupID, enums.ContributionStatusPending).
		UpdateColumns(map[string]any{
			"status":      next,
			"reviewed_by": reviewer,
			"reviewed_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ApprovedAmounts returns every approved amount of the group.
func (r *Repository) ApprovedAmounts(ctx context.Context, groupID uuid.UUID) ([]decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := r.DB(ctx).
		Model(&models.Contribution{}).
		Where("group_id = ? AND status = ?", groupID, enums.ContributionStatusApproved).
		Pluck("amount", &amounts).Error
	if err != nil {
		return nil, err
	}
	return amounts, nil
}

// ListByStatus returns the group's contributions in status, newest first, with usernames.
func (r *Repository) ListByStatus(ctx context.Context, groupID uuid.UUID, status enums.ContributionStatus) ([]ContributionDTO, error) {
	var rows []contributionRow
	err := r.DB(ctx).
		Model(&models.Contribution{}).
		Select("contributions.*, users.username").
		Joins("JOIN users ON users.id = contributions.user_id").
		Where("contributions.group_id = ? AND contributions.status = ?", groupID, status).
		Order("contributions.contribution_date DESC, contributions.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

// RecentApprovedForUser lists the latest approved contributions across every
// group userID is an active member of.
func (r *Repository) RecentApprovedForUser(ctx context.Context, userID uuid.UUID, limit int) ([]ContributionDTO, error) {
	var rows []contributionRow
	err := r.DB(ctx).
		Model(&models.Contribution{}).
		Select("contributions.*, users.username, groups.name AS group_name").
		Joins("JOIN users ON users.id = contributions.user_id").
		Joins("JOIN groups ON groups.id = contributions.group_id").
		Joins("JOIN group_members gm ON gm.group_id = contributions.group_id AND gm.user_id = ? AND gm.status = ?",
			userID, enums.MembershipStatusActive).
		Where("contributions.status = ?", enums.ContributionStatusApproved).
		Order("contributions.contribution_date DESC, contributions.id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}
