package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/salesops/kpi-backend-go/internal/domain/auth"
	"github.com/salesops/kpi-backend-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	users auth.UserStore
	jwt.Service
}

func NewAuthService(users auth.UserStore, jwtService jwt.Service) auth.AuthService {
	return &AuthServiceImpl{
		users:   users,
		Service: jwtService,
	}
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	userData, err := a.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by username: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userData.PasswordHash), []byte(req.Password)); err != nil {
		slog.Warn("dashboard login rejected", "username", req.Username)
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	var tokenResponse auth.TokenResponse
	tokenResponse.AccessToken, tokenResponse.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(userData.Username, string(userData.Role))
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, err = a.Service.GenerateRefreshToken(userData.Username)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create refresh token: %w", err)
	}
	tokenResponse.Role = userData.Role

	return tokenResponse, nil
}

// RefreshToken implements auth.AuthService.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.AccessTokenResponse{}, err
	}
	if a.Service.IsTokenRevoked(req.RefreshToken) {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	username, _, err := a.Service.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	// role changes in the login table take effect on the next refresh
	userData, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	var resp auth.AccessTokenResponse
	resp.AccessToken, resp.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(userData.Username, string(userData.Role))
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	return resp, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	_, expiresAt, err := a.Service.ParseRefreshToken(refreshToken)
	if err != nil {
		return auth.ErrInvalidToken
	}
	a.Service.RevokeToken(refreshToken, expiresAt)
	return nil
}
