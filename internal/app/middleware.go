package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/famcal/famcal/internal/auth"
	"github.com/famcal/famcal/internal/config"
	"github.com/famcal/famcal/internal/rest"
	"github.com/famcal/famcal/pkg/user"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
)

const livePathPrefix = "/api/live"

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies) {
	r.Use(requestLogger)
	r.Use(authenticate(deps.AuthTokenValidator))
}

func corsHandler(h http.Handler, cfg config.Cors) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept"},
		AllowCredentials: true,
	}).Handler(h)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the Flusher and Hijacker of the live handlers.
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if strings.HasPrefix(req.URL.Path, livePathPrefix) {
			log.Debugf("%s %s (live)", req.Method, req.URL.Path)
			next.ServeHTTP(w, req)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)
		log.WithFields(log.Fields{
			"method":   req.Method,
			"path":     req.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		}).Debug("request handled")
	})
}

// authenticate puts the token's user into the request context. Live endpoints may pass the token
// as "token" query parameter because EventSource cannot set headers.
func authenticate(validator *auth.TokenValidator) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			token, ok := auth.BearerToken(req.Header.Get("Authorization"))
			if !ok && strings.HasPrefix(req.URL.Path, livePathPrefix) {
				token = req.URL.Query().Get("token")
				ok = token != ""
			}
			if !ok {
				rest.WriteError(w, http.StatusUnauthorized, "Not signed in", "")
				return
			}

			u, err := validator.Validate(token)
			if err != nil {
				log.Debugf("rejected token: %v", err)
				rest.WriteError(w, http.StatusUnauthorized, "Invalid session", "")
				return
			}
			next.ServeHTTP(w, req.WithContext(user.WithUser(req.Context(), u)))
		})
	}
}
