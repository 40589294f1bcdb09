package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/repo"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/db/models"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.DB(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID loads a user by their UUID; nil when absent.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.DB(ctx).First(&user, "id = ?", id).Error
	return repo.Found(&user, err)
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.DB(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	return repo.Found(&user, err)
}

// FindByUsername retrieves the user with exactly this username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.DB(ctx).Where("username = ?", username).First(&user).Error
	return repo.Found(&user, err)
}

// FindByLogin matches identifier against the username or the email.
func (r *Repository) FindByLogin(ctx context.Context, identifier string) (*models.User, error) {
	var user models.User
	err := r.DB(ctx).
		Where("username = ? OR email = ?", identifier, NormalizeEmail(identifier)).
		First(&user).Error
	return repo.Found(&user, err)
}

// FindByGoogleID retrieves the user linked to a Google account.
func (r *Repository) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	var user models.User
	err := r.DB(ctx).Where("google_id = ?", googleID).First(&user).Error
	return repo.Found(&user, err)
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// UpdateProfile overwrites username and email.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, username, email string) error {
	return r.updates(ctx, id, map[string]any{"username": username, "email": NormalizeEmail(email)})
}

// SetProfilePicture stores the avatar reference.
func (r *Repository) SetProfilePicture(ctx context.Context, id uuid.UUID, ref string) error {
	return r.updates(ctx, id, map[string]any{"profile_picture": ref})
}

// SetPremium flags the account as premium.
func (r *Repository) SetPremium(ctx context.Context, id uuid.UUID) error {
	return r.updates(ctx, id, map[string]any{"is_premium": true})
}

// LinkGoogle attaches a Google identity to an existing account.
func (r *Repository) LinkGoogle(ctx context.Context, id uuid.UUID, googleID, googleEmail string) error {
	return r.updates(ctx, id, map[string]any{"google_id": googleID, "google_email": googleEmail})
}

func (r *Repository) updates(ctx context.Context, id uuid.UUID, values map[string]any) error {
	result := r.DB(ctx).Model(&models.User{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
