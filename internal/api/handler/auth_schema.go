package handler

import "github.com/aniwa/aniwa-server/internal/core/domain"

type registerRequest struct {
	Username    string `json:"username"     validate:"required,min=3,max=50"`
	Email       string `json:"email"        validate:"required,email"`
	Password    string `json:"password"     validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"max=100"`
}

type loginRequest struct {
	// Identifier is an email address or a username.
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password"   validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type authResponse struct {
	User   *domain.User      `json:"user"`
	Tokens tokenPairResponse `json:"tokens"`
}
