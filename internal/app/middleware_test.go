package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/famcal/famcal/internal/auth"
	"github.com/famcal/famcal/internal/config"
	"github.com/famcal/famcal/internal/test_utils"
	"github.com/famcal/famcal/pkg/mail"
	"github.com/famcal/famcal/pkg/user"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validator = auth.NewTokenValidator("test-secret")
var anna = test_utils.NewTestUser("Anna")

func setupRouter(t *testing.T) (*mux.Router, *user.User) {
	t.Helper()
	var seen user.User
	r := mux.NewRouter()
	r.Use(authenticate(validator))
	echo := func(w http.ResponseWriter, req *http.Request) {
		u, err := user.CurrentUser(req.Context())
		require.NoError(t, err)
		seen = u
		w.WriteHeader(http.StatusNoContent)
	}
	r.HandleFunc("/api/profile", echo)
	r.HandleFunc("/api/live", echo)
	return r, &seen
}

func issue(t *testing.T, u user.User) string {
	t.Helper()
	token, err := validator.Issue(u, time.Hour)
	require.NoError(t, err)
	return token
}

func TestAuthenticate(t *testing.T) {
	t.Run("should put bearer user into context", func(t *testing.T) {
		// given
		r, seen := setupRouter(t)
		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, anna))
		w := httptest.NewRecorder()

		// when
		r.ServeHTTP(w, req)

		// then
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, anna, *seen)
	})

	t.Run("should reject missing token", func(t *testing.T) {
		// given
		r, _ := setupRouter(t)
		w := httptest.NewRecorder()

		// when
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/profile", nil))

		// then
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("should reject token signed with another secret", func(t *testing.T) {
		// given
		r, _ := setupRouter(t)
		forged, err := auth.NewTokenValidator("other-secret").Issue(anna, time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		w := httptest.NewRecorder()

		// when
		r.ServeHTTP(w, req)

		// then
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("should accept query token on live endpoint only", func(t *testing.T) {
		// given
		r, seen := setupRouter(t)
		token := issue(t, anna)

		// when
		live := httptest.NewRecorder()
		r.ServeHTTP(live, httptest.NewRequest(http.MethodGet, "/api/live?token="+token, nil))
		profile := httptest.NewRecorder()
		r.ServeHTTP(profile, httptest.NewRequest(http.MethodGet, "/api/profile?token="+token, nil))

		// then
		assert.Equal(t, http.StatusNoContent, live.Code)
		assert.Equal(t, anna.Id, seen.Id)
		assert.Equal(t, http.StatusUnauthorized, profile.Code)
	})
}

func TestCorsHandler(t *testing.T) {
	// given
	h := corsHandler(http.NotFoundHandler(), config.Cors{AllowedOrigins: []string{"http://localhost:5173"}})
	req := httptest.NewRequest(http.MethodOptions, "/api/groups", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()

	// when
	h.ServeHTTP(w, req)

	// then
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuthenticate_InviteEmailMethods(t *testing.T) {
	r := mux.NewRouter()
	r.Use(authenticate(validator))
	r.HandleFunc("/api/send-invite-email", mail.NewHandler(mail.NewMailer(config.Mail{})).SendInviteEmail)

	t.Run("should reject unauthenticated GET before method check", func(t *testing.T) {
		// given
		w := httptest.NewRecorder()

		// when
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/send-invite-email", nil))

		// then
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("should answer authenticated GET with method not allowed", func(t *testing.T) {
		// given
		req := httptest.NewRequest(http.MethodGet, "/api/send-invite-email", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, anna))
		w := httptest.NewRecorder()

		// when
		r.ServeHTTP(w, req)

		// then
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, http.MethodPost, w.Header().Get("Allow"))
	})
}
