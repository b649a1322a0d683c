package auth

import (
	"context"
	"testing"

	"github.com/salesops/kpi-backend-go/internal/domain/auth"
	"github.com/salesops/kpi-backend-go/internal/pkg/jwt"
	"github.com/salesops/kpi-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAccessExp  = "1h"
	testRefreshExp = "24h"
	testSecret     = "test-secret-key-for-jwt"
)

func newTestAuthService(t *testing.T) (auth.AuthService, *jwt.JWTService) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	store, err := NewStaticUserStore([]string{
		"ops.admin:" + string(hash) + ":admin",
		"zone.west:" + string(hash),
	})
	require.NoError(t, err)

	jwtService := jwt.NewJWTService(testSecret, testAccessExp, testRefreshExp)
	return NewAuthService(store, jwtService), jwtService
}

func TestNewStaticUserStore(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		wantErr bool
	}{
		{name: "role defaults to viewer", entries: []string{"viewer1:$2a$hash"}},
		{name: "missing hash", entries: []string{"viewer1"}, wantErr: true},
		{name: "unknown role", entries: []string{"viewer1:$2a$hash:root"}, wantErr: true},
		{name: "duplicate", entries: []string{"a.b:$2a$x", "a.b:$2a$y"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStaticUserStore(tt.entries)
			if tt.wantErr {
				assert.ErrorIs(t, err, auth.ErrInvalidUserEntry)
				return
			}
			require.NoError(t, err)
			u, err := store.GetByUsername(context.Background(), "viewer1")
			require.NoError(t, err)
			assert.Equal(t, auth.RoleViewer, u.Role)
		})
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, jwtService := newTestAuthService(t)

	response, err := svc.Login(context.Background(), auth.LoginRequest{Username: "ops.admin", Password: "password123"})

	require.NoError(t, err)
	assert.NotEmpty(t, response.AccessToken)
	assert.NotEmpty(t, response.RefreshToken)
	assert.Equal(t, auth.RoleAdmin, response.Role)
	assert.Greater(t, response.AccessTokenExpiresIn, int64(0))

	token, err := jwtService.JWTAuth().Decode(response.AccessToken)
	require.NoError(t, err)
	role, _ := token.Get("role")
	assert.Equal(t, "admin", role)
	assert.Equal(t, "ops.admin", token.Subject())
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Login(context.Background(), auth.LoginRequest{Username: "ops.admin", Password: "wrongpassword"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), auth.LoginRequest{Username: "nobody", Password: "password123"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_Login_Validation(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Login(context.Background(), auth.LoginRequest{Username: "a b"})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "username")
	assert.Contains(t, verrs.ToMap(), "password")
}

func TestAuthService_RefreshAndLogout(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, auth.LoginRequest{Username: "zone.west", Password: "password123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// an access token is not accepted as a refresh token
	_, err = svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.AccessToken})
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	require.NoError(t, svc.Logout(ctx, login.RefreshToken))
	_, err = svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)
}
