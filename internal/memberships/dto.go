package memberships

import (
	"time"

	"github.com/google/uuid"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/db/models"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/enums"
)

// MembershipDTO is the transport shape for a raw membership record.
type MembershipDTO struct {
	ID        uuid.UUID              `json:"id"`
	GroupID   uuid.UUID              `json:"group_id"`
	UserID    uuid.UUID              `json:"user_id"`
	Status    enums.MembershipStatus `json:"status"`
	JoinedAt  time.Time              `json:"joined_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// MemberDTO mixes membership metadata with the member's public profile.
type MemberDTO struct {
	MembershipID   uuid.UUID              `json:"membership_id"`
	GroupID        uuid.UUID              `json:"group_id"`
	UserID         uuid.UUID              `json:"user_id"`
	Username       string                 `json:"username"`
	ProfilePicture *string                `json:"profile_picture,omitempty"`
	Status         enums.MembershipStatus `json:"status"`
	JoinedAt       time.Time              `json:"joined_at"`
}

type memberRow struct {
	models.GroupMember
	Username       string  `gorm:"column:username"`
	ProfilePicture *string `gorm:"column:profile_picture"`
}

// ToDTO converts a model to the external DTO.
func ToDTO(m *models.GroupMember) *MembershipDTO {
	if m == nil {
		return nil
	}
	return &MembershipDTO{
		ID:        m.ID,
		GroupID:   m.GroupID,
		UserID:    m.UserID,
		Status:    m.Status,
		JoinedAt:  m.JoinedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func membersFromRows(rows []memberRow) []MemberDTO {
	out := make([]MemberDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, MemberDTO{
			MembershipID:   row.ID,
			GroupID:        row.GroupID,
			UserID:         row.UserID,
			Username:       row.Username,
			ProfilePicture: row.ProfilePicture,
			Status:         row.Status,
			JoinedAt:       row.JoinedAt,
		})
	}
	return out
}
