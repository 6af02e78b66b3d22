package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"quizclash/internal/model"
)

// AuthService issues and validates player tokens. Registration and login
// screens live elsewhere; this layer only guarantees that every websocket
// command carries a verified (uid, displayName) identity.
type AuthService struct {
	jwtSecret []byte
}

// NewAuthService creates a new auth service
func NewAuthService(secret string) *AuthService {
	return &AuthService{jwtSecret: []byte(secret)}
}

// GuestLogin mints a uid and a signed token for a display name
func (s *AuthService) GuestLogin(displayName string) (*model.LoginResponse, error) {
	uid := "u_" + uuid.New().String()[:8]
	token, err := s.GenerateUserToken(uid, displayName)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{Token: token, UID: uid}, nil
}

// GenerateUserToken creates a signed token for an existing identity
func (s *AuthService) GenerateUserToken(uid, displayName string) (string, error) {
	claims := &model.UserClaims{
		UID:         uid,
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateUserToken validates a player JWT and returns its claims
func (s *AuthService) ValidateUserToken(tokenString string) (*model.UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
