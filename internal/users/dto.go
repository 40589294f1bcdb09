package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/db/models"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID             uuid.UUID  `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	IsPremium      bool       `json:"is_premium"`
	HasPassword    bool       `json:"has_password"`
	GoogleLinked   bool       `json:"google_linked"`
	ProfilePicture *string    `json:"profile_picture,omitempty"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Username     string
	Email        string
	PasswordHash *string
	GoogleID     *string
	GoogleEmail  *string
}

// UpdateProfileInput carries the editable profile fields.
type UpdateProfileInput struct {
	Username string
	Email    string
}

// FederatedIdentity is the identity carried by a verified Google ID token.
type FederatedIdentity struct {
	GoogleID string
	Email    string
	Username string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		IsPremium:      u.IsPremium,
		HasPassword:    u.PasswordHash != nil && *u.PasswordHash != "",
		GoogleLinked:   u.GoogleID != nil,
		ProfilePicture: u.ProfilePicture,
		LastLoginAt:    u.LastLoginAt,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Username:     strings.TrimSpace(c.Username),
		Email:        NormalizeEmail(c.Email),
		PasswordHash: c.PasswordHash,
		GoogleID:     c.GoogleID,
		GoogleEmail:  c.GoogleEmail,
	}
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
