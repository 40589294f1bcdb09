package groups

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/repo"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/db/models"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/enums"
)

// Repository persists groups and answers the group-level aggregates.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx rebinds the repository to a transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// Create inserts the group row.
func (r *Repository) Create(ctx context.Context, group *models.Group) error {
	return r.DB(ctx).Create(group).Error
}

// AddMember inserts a membership row; used for the creator on group creation.
func (r *Repository) AddMember(ctx context.Context, member *models.GroupMember) error {
	return r.DB(ctx).Create(member).Error
}

// FindByID returns nil when the group does not exist.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	var group models.Group
	err := r.DB(ctx).First(&group, "id = ?", id).Error
	return repo.Found(&group, err)
}

// FindByInviteCode matches codes case-insensitively; nil when unknown.
func (r *Repository) FindByInviteCode(ctx context.Context, code string) (*models.Group, error) {
	var group models.Group
	err := r.DB(ctx).
		Where("invite_code = ?", strings.ToLower(strings.TrimSpace(code))).
		First(&group).Error
	return repo.Found(&group, err)
}

// SummaryRow is a group plus its dashboard aggregates.
type SummaryRow struct {
	models.Group
	TotalContributed decimal.Decimal `gorm:"column:total_contributed"`
	MemberCount      int64           `gorm:"column:member_count"`
}

// ListActiveForUser returns the groups userID is an active member of, newest
// first, with their approved total and active member count.
func (r *Repository) ListActiveForUser(ctx context.Context, userID uuid.UUID) ([]SummaryRow, error) {
	var rows []SummaryRow
	err := r.DB(ctx).
		Model(&models.Group{}).
		Select(`groups.*,
			COALESCE((SELECT SUM(c.amount) FROM contributions c WHERE c.group_id = groups.id AND c.status = ?), 0) AS total_contributed,
			(SELECT COUNT(*) FROM group_members m WHERE m.group_id = groups.id AND m.status = ?) AS member_count`,
			enums.ContributionStatusApproved, enums.MembershipStatusActive).
		Joins("JOIN group_members gm ON gm.group_id = groups.id").
		Where("gm.user_id = ? AND gm.status = ?", userID, enums.MembershipStatusActive).
		Order("groups.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ExportRow is one approved contribution in the CSV export.
type ExportRow struct {
	Amount           decimal.Decimal `gorm:"column:amount"`
	Description      string          `gorm:"column:description"`
	ContributionDate time.Time       `gorm:"column:contribution_date"`
	Username         string          `gorm:"column:username"`
}

// ListExportRows returns the group's approved contributions, newest first.
func (r *Repository) ListExportRows(ctx context.Context, groupID uuid.UUID) ([]ExportRow, error) {
	var rows []ExportRow
	err := r.DB(ctx).
		Model(&models.Contribution{}).
		Select("contributions.amount, contributions.description, contributions.contribution_date, users.username").
		Joins("JOIN users ON users.id = contributions.user_id").
		Where("contributions.group_id = ? AND contributions.status = ?", groupID, enums.ContributionStatusApproved).
		Order("contributions.contribution_date DESC, contributions.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
