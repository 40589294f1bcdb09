package memberships

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/repo"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/db/models"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/enums"
)

// Repository exposes membership persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindMembership returns the (group, user) membership or nil when none exists.
func (r *Repository) FindMembership(ctx context.Context, groupID, userID uuid.UUID) (*models.GroupMember, error) {
	var membership models.GroupMember
	err := r.DB(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&membership).Error
	return repo.Found(&membership, err)
}

// CreateMembership persists a new membership record.
func (r *Repository) CreateMembership(ctx context.Context, groupID, userID uuid.UUID, status enums.MembershipStatus) (*models.GroupMember, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid membership status %q", status)
	}
	membership := &models.GroupMember{
		GroupID: groupID,
		UserID:  userID,
		Status:  status,
	}
	if err := r.DB(ctx).Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

// TransitionStatus moves the membership to next only if its current status is
// one of from. It reports whether a row changed.
func (r *Repository) TransitionStatus(ctx context.Context, groupID, userID uuid.UUID, from []enums.MembershipStatus, next enums.MembershipStatus, now time.Time) (bool, error) {
	result := r.DB(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ? AND status IN ?", groupID, userID, from).
		UpdateColumns(map[string]any{"status": next, "updated_at": now})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IsActive reports whether userID is an active member of groupID.
func (r *Repository) IsActive(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ? AND status = ?", groupID, userID, enums.MembershipStatusActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ActiveMemberIDs lists the user ids of the group's active members.
func (r *Repository) ActiveMemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.DB(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ? AND status = ?", groupID, enums.MembershipStatusActive).
		Order("joined_at").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ListMembers returns the group's memberships in the given statuses with usernames.
func (r *Repository) ListMembers(ctx context.Context, groupID uuid.UUID, statuses ...enums.MembershipStatus) ([]MemberDTO, error) {
	var rows []memberRow
	query := r.DB(ctx).
		Model(&models.GroupMember{}).
		Select("group_members.*, users.username, users.profile_picture").
		Joins("JOIN users ON users.id = group_members.user_id").
		Where("group_members.group_id = ?", groupID)
	if len(statuses) > 0 {
		query = query.Where("group_members.status IN ?", statuses)
	}
	if err := query.Order("group_members.joined_at, users.username").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return membersFromRows(rows), nil
}
