package auth

import (
	"testing"
	"time"

	"github.com/famcal/famcal/pkg/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenValidator_Validate(t *testing.T) {
	validator := NewTokenValidator("test-secret")
	anna := user.User{Id: uuid.New(), Email: "anna@example.com", DisplayName: "Anna"}

	t.Run("should accept issued token", func(t *testing.T) {
		// given
		token, err := validator.Issue(anna, time.Hour)
		require.NoError(t, err)

		// when
		u, err := validator.Validate(token)

		// then
		require.NoError(t, err)
		assert.Equal(t, anna, u)
	})

	t.Run("should reject expired token", func(t *testing.T) {
		// given
		token, err := validator.Issue(anna, -time.Minute)
		require.NoError(t, err)

		// when
		_, err = validator.Validate(token)

		// then
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("should reject token signed with another secret", func(t *testing.T) {
		// given
		token, err := NewTokenValidator("other").Issue(anna, time.Hour)
		require.NoError(t, err)

		// when
		_, err = validator.Validate(token)

		// then
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("should reject non uuid subject", func(t *testing.T) {
		// given
		claims := Claims{
			Email: "anna@example.com",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "42",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		// when
		_, err = validator.Validate(token)

		// then
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestBearerToken(t *testing.T) {
	token, ok := BearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", token)

	_, ok = BearerToken("Basic abc")
	assert.False(t, ok)

	_, ok = BearerToken("")
	assert.False(t, ok)
}
