package invitation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/famcal/famcal/pkg/user"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(u user.User) http.Handler {
	handler := NewHandler(service)
	r := mux.NewRouter()
	r.HandleFunc("/api/groups/{groupId}/invitations", handler.Invite).Methods("POST")
	r.HandleFunc("/api/invitations", handler.ListPending).Methods("GET")
	r.HandleFunc("/api/invitations/{invitationId}/accept", handler.Accept).Methods("POST")
	r.HandleFunc("/api/invitations/{invitationId}/decline", handler.Decline).Methods("POST")
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.ServeHTTP(w, req.WithContext(user.WithUser(req.Context(), u)))
	})
}

func TestHandler_Invite(t *testing.T) {
	t.Run("should create invitation", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		family := createFamily(t)
		router := setupRouter(anna)
		req := httptest.NewRequest(http.MethodPost, "/api/groups/"+family.Id.String()+"/invitations", strings.NewReader(`{"email":"b@example.com"}`))
		w := httptest.NewRecorder()

		// when
		router.ServeHTTP(w, req)

		// then
		assert.Equal(t, http.StatusCreated, w.Code)
		var dto InviteResultDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
		assert.False(t, dto.UserExists)
		assert.True(t, dto.EmailSent)
		assert.Contains(t, dto.InviteLink, "/auth?invite="+dto.InvitationId)
	})

	t.Run("should answer conflict for duplicate", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		family := createFamily(t)
		_, err := service.Invite(annaCtx, family.Id, "b@example.com")
		require.NoError(t, err)
		router := setupRouter(anna)
		req := httptest.NewRequest(http.MethodPost, "/api/groups/"+family.Id.String()+"/invitations", strings.NewReader(`{"email":"b@example.com"}`))
		w := httptest.NewRecorder()

		// when
		router.ServeHTTP(w, req)

		// then
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "An invitation for this email already exists")
	})
}

func TestHandler_ListPendingAndAccept(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	// given
	family := createFamily(t)
	_, err := service.Invite(annaCtx, family.Id, "b@example.com")
	require.NoError(t, err)
	router := setupRouter(bo)

	// when
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/invitations", nil))

	// then
	require.Equal(t, http.StatusOK, w.Code)
	var dtos []InvitationDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&dtos))
	require.Len(t, dtos, 1)
	assert.Equal(t, "Andersson Family", dtos[0].Group.Name)

	// when
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/invitations/"+dtos[0].Id+"/accept", nil))

	// then
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Len(t, groupService.FetchGroups(boCtx), 1)
}

func TestHandler_Decline_Unknown(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	// given
	router := setupRouter(bo)
	w := httptest.NewRecorder()

	// when
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/invitations/"+uuid.NewString()+"/decline", nil))

	// then
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "The invitation could not be declined")
}
