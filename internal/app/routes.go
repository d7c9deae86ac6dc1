package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Profile
	r.HandleFunc("/api/profile", deps.UserHandler.CurrentProfile).Methods("GET")
	r.HandleFunc("/api/profile", deps.UserHandler.UpdateProfile).Methods("PUT")

	// Groups
	r.HandleFunc("/api/groups", deps.GroupHandler.ListGroups).Methods("GET")
	r.HandleFunc("/api/groups", deps.GroupHandler.CreateGroup).Methods("POST")
	r.HandleFunc("/api/groups/{groupId}", deps.GroupHandler.DeleteGroup).Methods("DELETE")
	r.HandleFunc("/api/groups/{groupId}/members", deps.GroupHandler.ListMembers).Methods("GET")

	// Invitations
	r.HandleFunc("/api/groups/{groupId}/invitations", deps.InvitationHandler.Invite).Methods("POST")
	r.HandleFunc("/api/invitations", deps.InvitationHandler.ListPending).Methods("GET")
	r.HandleFunc("/api/invitations/{invitationId}/accept", deps.InvitationHandler.Accept).Methods("POST")
	r.HandleFunc("/api/invitations/{invitationId}/decline", deps.InvitationHandler.Decline).Methods("POST")

	// Active group
	r.HandleFunc("/api/scope", deps.ScopeHandler.GetScope).Methods("GET")
	r.HandleFunc("/api/scope", deps.ScopeHandler.SelectScope).Methods("PUT")

	// Events and todos
	r.HandleFunc("/api/events", deps.EventHandler.ListEvents).Methods("GET")
	r.HandleFunc("/api/events", deps.EventHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/events/{eventId}", deps.EventHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/events/{eventId}", deps.EventHandler.DeleteEvent).Methods("DELETE")
	r.HandleFunc("/api/todos", deps.EventHandler.ListTodos).Methods("GET")
	r.HandleFunc("/api/todos", deps.EventHandler.CreateTodo).Methods("POST")

	// Stats
	r.HandleFunc("/api/stats/overview", deps.StatsHandler.GetOverview).Methods("GET")

	// Live updates
	r.HandleFunc("/api/live", deps.LiveHandler.Stream).Methods("GET")
	r.HandleFunc("/api/live/ws", deps.LiveHandler.Socket).Methods("GET")

	// Mail, all methods so the handler can answer 405 itself
	r.HandleFunc("/api/send-invite-email", deps.MailHandler.SendInviteEmail)
}
