package auth

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/users"
	pkgerrors "github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/errors"
)

// IdentityVerifier turns a provider-issued token into a verified identity.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (users.FederatedIdentity, error)
}

type identityLinker interface {
	LinkFederated(ctx context.Context, identity users.FederatedIdentity) (*users.UserDTO, error)
}

type validateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// GoogleVerifier checks Google ID tokens against the OAuth client id.
type GoogleVerifier struct {
	audience string
	validate validateFunc
}

// NewGoogleVerifier returns nil when clientID is empty, which leaves
// federated login disabled.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil
	}
	return &GoogleVerifier{audience: clientID, validate: idtoken.Validate}
}

func (v *GoogleVerifier) Verify(ctx context.Context, token string) (users.FederatedIdentity, error) {
	payload, err := v.validate(ctx, token, v.audience)
	if err != nil {
		return users.FederatedIdentity{}, fmt.Errorf("validate google id token: %w", err)
	}
	email, _ := payload.Claims["email"].(string)
	if verified, _ := payload.Claims["email_verified"].(bool); !verified || email == "" {
		return users.FederatedIdentity{}, fmt.Errorf("google account email is not verified")
	}
	name, _ := payload.Claims["name"].(string)
	return users.FederatedIdentity{
		GoogleID: payload.Subject,
		Email:    email,
		Username: name,
	}, nil
}

func (s *service) LoginFederated(ctx context.Context, req FederatedLoginRequest) (*TokenResponse, error) {
	if s.verifier == nil || s.linker == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "federated login is not configured")
	}
	identity, err := s.verifier.Verify(ctx, strings.TrimSpace(req.IDToken))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, invalidCredentialsMessage)
	}

	linked, err := s.linker.LinkFederated(ctx, identity)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, linked.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "linked user disappeared")
	}
	return s.issue(ctx, user)
}
