package auth

import (
	"context"
	"strings"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/users"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/config"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/db"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/db/models"
	pkgerrors "github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/errors"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/security"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 50
	minPasswordLength = 8
)

// RegisterRequest contains the payload required to open an account.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// RegisterService handles account creation.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
}

type registerRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	UserRepo       registerRepository
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	users       registerRepository
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "user repository required")
	}
	return &registerService{
		users:       params.UserRepo,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	username := strings.TrimSpace(req.Username)
	email := users.NormalizeEmail(req.Email)
	if n := len([]rune(username)); n < minUsernameLength || n > maxUsernameLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username must be between 3 and 50 characters")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	if existing, err := s.users.FindByUsername(ctx, username); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
	} else if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
	}
	if existing, err := s.users.FindByEmail(ctx, email); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
	} else if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Username:     username,
		Email:        email,
		PasswordHash: &passwordHash,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username or email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return users.FromModel(user), nil
}
