package auth

import (
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/users"
)

// LoginRequest captures the credentials sent to the login endpoint. Login
// accepts either the username or the email.
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// FederatedLoginRequest carries a Google ID token obtained by the client.
type FederatedLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// RefreshRequest pairs the last access token (expired or not) with its refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse contains the tokens and user produced by a login or refresh.
type TokenResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int            `json:"expires_in"`
	User         *users.UserDTO `json:"user"`
}
