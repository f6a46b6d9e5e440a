package common

import (
	"errors"
	"fmt"
	"time"

	"travelbook/airports/internal/constants"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrMissingSecret = errors.New("admin token secret is not configured")

// AdminClaims is the validated content of an admin bearer token
type AdminClaims struct {
	Subject   string
	Role      constants.Role
	TokenID   string
	ExpiresAt time.Time
}

// AdminTokenSigner issues and validates HS256 bearer tokens for the admin routes
type AdminTokenSigner struct {
	secretKey []byte
	now       func() time.Time
}

func NewAdminTokenSigner(secretKey []byte) *AdminTokenSigner {
	return &AdminTokenSigner{secretKey: secretKey, now: time.Now}
}

// Generate signs a token for subject with the given role and lifetime.
func (s *AdminTokenSigner) Generate(subject string, role constants.Role, ttl time.Duration) (string, error) {
	if len(s.secretKey) == 0 {
		return "", ErrMissingSecret
	}

	issuedAt := s.now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role.String(),
		"jti":  uuid.NewString(),
		"exp":  issuedAt.Add(ttl).Unix(),
		"iat":  issuedAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Validate parses tokenString and checks signature, expiry and role.
func (s *AdminTokenSigner) Validate(tokenString string) (*AdminClaims, error) {
	if len(s.secretKey) == 0 {
		return nil, ErrMissingSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	subject, _ := (*claims)["sub"].(string)
	if subject == "" {
		return nil, errors.New("missing or invalid sub claim")
	}

	rawRole, _ := (*claims)["role"].(string)
	role, ok := constants.ParseRole(rawRole)
	if !ok {
		return nil, errors.New("missing or invalid role claim")
	}

	tokenID, _ := (*claims)["jti"].(string)

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errors.New("missing or invalid exp claim")
	}

	return &AdminClaims{
		Subject:   subject,
		Role:      role,
		TokenID:   tokenID,
		ExpiresAt: exp.Time,
	}, nil
}
