package jwt

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var ErrInvalidTokenType = errors.New("unexpected token type")

type Service interface {
	GenerateAccessToken(username string, role string) (token string, expiresAt int64, err error)
	GenerateRefreshToken(username string) (token string, expiresAt int64, err error)
	ParseRefreshToken(tokenString string) (username string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
	RefreshTokenCookie(token string, expiresAt int64) *http.Cookie
	RevokeToken(token string, expiresAt int64)
	IsTokenRevoked(token string) bool
}

type JWTService struct {
	accessTokenExpirationTime  string
	refreshTokenExpirationTime string
	tokenAuth                  *jwtauth.JWTAuth
	revokedTokens              map[string]int64
	mu                         sync.RWMutex
	now                        func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string, refreshTokenExpirationTime string) *JWTService {
	return &JWTService{
		accessTokenExpirationTime:  accessTokenExpirationTime,
		refreshTokenExpirationTime: refreshTokenExpirationTime,
		tokenAuth:                  jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens:              make(map[string]int64),
		now:                        time.Now,
	}
}

func (j *JWTService) GenerateAccessToken(username string, role string) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = j.now().Add(expDuration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"sub":  username,
		"role": role,
		"type": "access",
		"exp":  expiresAt,
	})
	return tokenString, expiresAt, err
}

func (j *JWTService) GenerateRefreshToken(username string) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.refreshTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = j.now().Add(expDuration).Unix()
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"sub":  username,
		"exp":  expiresAt,
		"type": "refresh",
	})
	return tokenString, expiresAt, err
}

// ParseRefreshToken verifies a refresh token and returns its subject and expiry.
func (j *JWTService) ParseRefreshToken(tokenString string) (string, int64, error) {
	if j.IsTokenRevoked(tokenString) {
		return "", 0, jwt.ErrInvalidJWT()
	}
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", 0, err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != "refresh" {
		return "", 0, ErrInvalidTokenType
	}
	if token.Subject() == "" {
		return "", 0, jwt.ErrInvalidJWT()
	}
	return token.Subject(), token.Expiration().Unix(), nil
}

func (j *JWTService) RefreshTokenCookie(token string, expiresAt int64) *http.Cookie {
	return &http.Cookie{
		Name:     "refresh_token",
		Value:    token,
		Path:     "/api/v1/auth",
		Expires:  time.Unix(expiresAt, 0),
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteStrictMode,
	}
}

// RevokeToken blacklists a token until it would have expired anyway.
func (j *JWTService) RevokeToken(token string, expiresAt int64) {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now().Unix()
	for t, exp := range j.revokedTokens {
		if exp < now {
			delete(j.revokedTokens, t)
		}
	}
	j.revokedTokens[token] = expiresAt
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}
