// Package network - api.go
// REST surface for spectators and the frontend bootstrap: current state,
// recent session scoreboard, health.
package network

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/MTorresVidal/InboxOverload/server/internal/engine"
	"github.com/MTorresVidal/InboxOverload/server/internal/infra/storage"
	"github.com/MTorresVidal/InboxOverload/server/internal/platform/logger"
)

// StateAPI exposes read-only HTTP endpoints over the live session and the
// persisted scoreboard.
type StateAPI struct {
	session     *engine.Session
	sessionRepo storage.SessionRepository
	logger      *logger.Logger
}

// NewStateAPI creates the REST handler. sessionRepo may be nil when the server
// runs without persistence; the scoreboard then returns an empty list.
func NewStateAPI(session *engine.Session, repo storage.SessionRepository, log *logger.Logger) *StateAPI {
	return &StateAPI{
		session:     session,
		sessionRepo: repo,
		logger:      log,
	}
}

// HandleState returns the current session snapshot.
// GET /state
func (api *StateAPI) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	json.NewEncoder(w).Encode(api.session.Snapshot())
}

// HandleSessions returns the recent session scoreboard.
// GET /api/sessions?limit=N
func (api *StateAPI) HandleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 100 {
			api.jsonError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	summaries := []storage.SessionSummary{}
	if api.sessionRepo != nil {
		found, err := api.sessionRepo.Recent(r.Context(), limit)
		if err != nil {
			api.logger.Error("Failed to load recent sessions: " + err.Error())
			api.jsonError(w, "Failed to load sessions", http.StatusInternalServerError)
			return
		}
		summaries = found
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"generated_at": time.Now().Format(time.RFC3339),
		"sessions":     summaries,
	})
}

// HandleHealth is the liveness probe.
// GET /healthz
func (api *StateAPI) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":     "ok",
		"session_id": api.session.ID(),
	})
}

// RegisterRoutes sets up the REST routes.
func (api *StateAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/state", api.HandleState)
	mux.HandleFunc("/api/sessions", api.HandleSessions)
	mux.HandleFunc("/healthz", api.HandleHealth)
}

func (api *StateAPI) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
