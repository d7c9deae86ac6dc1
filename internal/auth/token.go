package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/famcal/famcal/pkg/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims mirrors the access token issued by the identity provider.
type Claims struct {
	Email        string       `json:"email"`
	UserMetadata UserMetadata `json:"user_metadata"`
	jwt.RegisteredClaims
}

type UserMetadata struct {
	FullName string `json:"full_name"`
}

// TokenValidator verifies HS256 session tokens and turns them into users.
type TokenValidator struct {
	secret []byte
}

func NewTokenValidator(secret string) *TokenValidator {
	return &TokenValidator{secret: []byte(secret)}
}

func (v *TokenValidator) Validate(tokenString string) (user.User, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return user.User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return user.User{}, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}
	if strings.TrimSpace(claims.Email) == "" {
		return user.User{}, fmt.Errorf("%w: email claim missing", ErrInvalidToken)
	}

	return user.User{
		Id:          id,
		Email:       claims.Email,
		DisplayName: claims.UserMetadata.FullName,
	}, nil
}

// Issue signs a token for u. Used by the dev-token command and tests.
func (v *TokenValidator) Issue(u user.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:        u.Email,
		UserMetadata: UserMetadata{FullName: u.DisplayName},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Id.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
