package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/salesops/kpi-backend-go/internal/domain/auth"
	"github.com/salesops/kpi-backend-go/internal/handler/http/response"
	"github.com/salesops/kpi-backend-go/internal/pkg/jwt"
)

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	RefreshToken(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	jwtService  jwt.Service
	authService auth.AuthService
}

func NewAuthHandler(jwtService jwt.Service, authService auth.AuthService) AuthHandler {
	return &AuthHandlerImpl{
		jwtService:  jwtService,
		authService: authService,
	}
}

// Login implements AuthHandler.
func (a *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq auth.LoginRequest

	// 1. Decode JSON
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		slog.Error("Login decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	// Validate DTO
	if err := loginReq.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	tokenResponse, err := a.authService.Login(r.Context(), loginReq)
	if err != nil {
		slog.Error("Login service error", "error", err)
		response.HandleError(w, err)
		return
	}

	// Success response
	refreshTokenCookie := a.jwtService.RefreshTokenCookie(tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn)
	http.SetCookie(w, refreshTokenCookie)
	slog.Info("User logged in successfully", "username", loginReq.Username)
	response.Created(w, "User logged in successfully", tokenResponse)
}

// RefreshToken implements AuthHandler. The token is read from the cookie, then from the JSON body.
func (a *AuthHandlerImpl) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var refreshReq auth.RefreshTokenRequest
	if cookie, err := r.Cookie("refresh_token"); err == nil && cookie.Value != "" {
		refreshReq.RefreshToken = cookie.Value
	} else if err := json.NewDecoder(r.Body).Decode(&refreshReq); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	tokenResponse, err := a.authService.RefreshToken(r.Context(), refreshReq)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, tokenResponse)
}

// Logout implements AuthHandler.
func (a *AuthHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	var refreshToken string
	if cookie, err := r.Cookie("refresh_token"); err == nil {
		refreshToken = cookie.Value
	}

	if err := a.authService.Logout(r.Context(), refreshToken); err != nil {
		response.HandleError(w, err)
		return
	}

	// Clear the refresh token cookie
	clearedCookie := &http.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     "/api/v1/auth",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteStrictMode,
	}
	http.SetCookie(w, clearedCookie)
	response.SuccessWithMessage(w, "User logged out successfully", nil)
}
