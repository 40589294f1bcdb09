package users

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/db"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/db/models"
	pkgerrors "github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/errors"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/logger"
)

const maxUsernameAttempts = 50

var pictureExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".webp": {},
}

type userRepository interface {
	Create(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, username, email string) error
	SetProfilePicture(ctx context.Context, id uuid.UUID, ref string) error
	SetPremium(ctx context.Context, id uuid.UUID) error
	LinkGoogle(ctx context.Context, id uuid.UUID, googleID, googleEmail string) error
}

// Service manages account profiles.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error)
	SetProfilePicture(ctx context.Context, userID uuid.UUID, ref string) (*UserDTO, error)
	UpgradePremium(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	LinkFederated(ctx context.Context, identity FederatedIdentity) (*UserDTO, error)
}

type ServiceParams struct {
	Repo   userRepository
	Logger *logger.Logger
}

type service struct {
	repo userRepository
	logg *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: params.Repo, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error) {
	username := strings.TrimSpace(input.Username)
	email := NormalizeEmail(input.Email)
	if username == "" || email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and email are required")
	}
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if username != user.Username {
		taken, err := s.repo.FindByUsername(ctx, username)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup username")
		}
		if taken != nil && taken.ID != userID {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		}
	}
	if email != user.Email {
		taken, err := s.repo.FindByEmail(ctx, email)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup email")
		}
		if taken != nil && taken.ID != userID {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already taken")
		}
	}

	if err := s.repo.UpdateProfile(ctx, userID, username, email); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username or email already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update profile")
	}
	user.Username = username
	user.Email = email
	return FromModel(user), nil
}

func (s *service) SetProfilePicture(ctx context.Context, userID uuid.UUID, ref string) (*UserDTO, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile picture is required")
	}
	if _, ok := pictureExtensions[strings.ToLower(path.Ext(ref))]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile picture must be png, jpg, jpeg, gif or webp")
	}
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetProfilePicture(ctx, userID, ref); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "set profile picture")
	}
	user.ProfilePicture = &ref
	return FromModel(user), nil
}

func (s *service) UpgradePremium(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsPremium {
		return FromModel(user), nil
	}
	if err := s.repo.SetPremium(ctx, userID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upgrade premium")
	}
	user.IsPremium = true
	s.logg.Info(s.logg.WithUserID(ctx, userID.String()), "account upgraded to premium")
	return FromModel(user), nil
}

// LinkFederated resolves an external identity to a local account. Lookup
// order is google id, then email (linking the identity), then a new account.
func (s *service) LinkFederated(ctx context.Context, identity FederatedIdentity) (*UserDTO, error) {
	googleID := strings.TrimSpace(identity.GoogleID)
	email := NormalizeEmail(identity.Email)
	if googleID == "" || email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "google id and email are required")
	}

	user, err := s.repo.FindByGoogleID(ctx, googleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup google id")
	}
	if user != nil {
		return FromModel(user), nil
	}

	user, err = s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup email")
	}
	if user != nil {
		if err := s.repo.LinkGoogle(ctx, user.ID, googleID, email); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "link google account")
		}
		user.GoogleID = &googleID
		user.GoogleEmail = &email
		return FromModel(user), nil
	}

	username, err := s.availableUsername(ctx, identity.Username, email)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, CreateUserDTO{
		Username:    username,
		Email:       email,
		GoogleID:    &googleID,
		GoogleEmail: &email,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "account already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create federated user")
	}
	s.logg.Info(s.logg.WithUserID(ctx, created.ID.String()), "federated account created")
	return FromModel(created), nil
}

func (s *service) availableUsername(ctx context.Context, preferred, email string) (string, error) {
	base := usernameBase(preferred, email)
	candidate := base
	for attempt := 1; attempt <= maxUsernameAttempts; attempt++ {
		existing, err := s.repo.FindByUsername(ctx, candidate)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup username")
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, attempt)
	}
	return "", pkgerrors.New(pkgerrors.CodeConflict, "could not allocate a username")
}

func usernameBase(preferred, email string) string {
	base := strings.TrimSpace(preferred)
	if base == "" {
		base, _, _ = strings.Cut(email, "@")
	}
	base = strings.Join(strings.Fields(base), "_")
	if len(base) > 45 {
		base = base[:45]
	}
	for len(base) < 3 {
		base += "_"
	}
	return base
}

func (s *service) load(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return user, nil
}
