package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/philipposk/ThatJob/internal/config"
)

// Identity is the authenticated caller. Guests get a random id valid only
// for the lifetime of their token; nothing they do is persisted.
type Identity struct {
	UserID uuid.UUID
	Guest  bool
}

// Claims are the JWT claims carried by both account and guest tokens.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Guest  bool      `json:"guest,omitempty"`
	jwt.RegisteredClaims
}

// JWTService issues and validates tokens.
type JWTService struct {
	config *config.JWTConfig
}

// NewJWTService creates a JWT service with the given configuration.
func NewJWTService(cfg *config.JWTConfig) *JWTService {
	return &JWTService{config: cfg}
}

// GenerateToken issues a token for an account holder.
func (s *JWTService) GenerateToken(userID uuid.UUID) (string, error) {
	return s.generate(userID, false)
}

// GenerateGuestToken issues a token for an ephemeral guest session.
func (s *JWTService) GenerateGuestToken() (string, uuid.UUID, error) {
	guestID := uuid.New()
	token, err := s.generate(guestID, true)
	return token, guestID, err
}

func (s *JWTService) generate(userID uuid.UUID, guest bool) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Guest:  guest,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.config.ExpirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken validates a token and returns the caller's identity.
func (s *JWTService) ValidateToken(tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("token expired: %w", err)
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	return &Identity{UserID: claims.UserID, Guest: claims.Guest}, nil
}
