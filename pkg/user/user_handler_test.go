package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_CurrentProfile(t *testing.T) {
	t.Run("should return profile of signed-in user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		handler := NewHandler(service)
		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil).WithContext(ctx)
		w := httptest.NewRecorder()

		// when
		handler.CurrentProfile(w, req)

		// then
		assert.Equal(t, http.StatusOK, w.Code)
		var dto ProfileDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
		assert.Equal(t, currentUser.Id.String(), dto.Id)
		assert.Equal(t, "Anna Andersson", dto.FullName)
	})

	t.Run("should return 401 without user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		handler := NewHandler(service)
		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil).WithContext(context.Background())
		w := httptest.NewRecorder()

		// when
		handler.CurrentProfile(w, req)

		// then
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHandler_UpdateProfile(t *testing.T) {
	t.Run("should update full name", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		handler := NewHandler(service)
		req := httptest.NewRequest(http.MethodPut, "/api/profile", strings.NewReader(`{"fullName":"Anna Svensson"}`)).WithContext(ctx)
		w := httptest.NewRecorder()

		// when
		handler.UpdateProfile(w, req)

		// then
		assert.Equal(t, http.StatusOK, w.Code)
		var dto ProfileDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
		assert.Equal(t, "Anna Svensson", dto.FullName)
	})

	t.Run("should reject blank full name", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		handler := NewHandler(service)
		req := httptest.NewRequest(http.MethodPut, "/api/profile", strings.NewReader(`{"fullName":" "}`)).WithContext(ctx)
		w := httptest.NewRecorder()

		// when
		handler.UpdateProfile(w, req)

		// then
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Full name is required")
	})

	t.Run("should reject malformed body", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		handler := NewHandler(service)
		req := httptest.NewRequest(http.MethodPut, "/api/profile", strings.NewReader(`{`)).WithContext(ctx)
		w := httptest.NewRecorder()

		// when
		handler.UpdateProfile(w, req)

		// then
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
