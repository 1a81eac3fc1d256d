// Package network - replay.go
// Replay endpoint - JSON export of a session's event history.
//
// Clients use it to render the post-game recap timeline: what arrived,
// what was replied to, where the score moved.
package network

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/MTorresVidal/InboxOverload/server/internal/events"
	"github.com/MTorresVidal/InboxOverload/server/internal/infra/storage"
	"github.com/MTorresVidal/InboxOverload/server/internal/platform/logger"
)

// ReplayHandler provides the session replay API.
type ReplayHandler struct {
	eventLog      *events.Log
	reconstructor *storage.Reconstructor
	logger        *logger.Logger
}

// NewReplayHandler creates a new replay handler. The reconstructor may be nil
// when the server runs without persistence; recap endpoints then return 503.
func NewReplayHandler(el *events.Log, rec *storage.Reconstructor, log *logger.Logger) *ReplayHandler {
	return &ReplayHandler{
		eventLog:      el,
		reconstructor: rec,
		logger:        log,
	}
}

// ReplayEvent is a sanitized event for public viewing.
type ReplayEvent struct {
	ID        string `json:"id"`
	ClockMs   int64  `json:"clock_ms"`
	Type      string `json:"type"`
	MessageID int    `json:"message_id,omitempty"`
	Summary   string `json:"summary"`
	Impact    string `json:"impact"`
}

// ReplayResponse is the API response for a replay request.
type ReplayResponse struct {
	SessionID   string        `json:"session_id"`
	TotalEvents int           `json:"total_events"`
	FilteredBy  string        `json:"filtered_by,omitempty"`
	GeneratedAt string        `json:"generated_at"`
	Events      []ReplayEvent `json:"events"`
}

// HandleReplay returns the in-memory event history for a session.
// GET /api/replay?session_id=XXX&type=REPLY_SENT&since_ms=N
func (rh *ReplayHandler) HandleReplay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		rh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		rh.jsonError(w, "Missing session_id", http.StatusBadRequest)
		return
	}

	eventType := r.URL.Query().Get("type")
	sinceStr := r.URL.Query().Get("since_ms")

	var replayEvents []ReplayEvent
	filterDesc := ""

	for _, e := range rh.eventLog.BySession(sessionID) {
		if sinceStr != "" {
			since, _ := strconv.ParseInt(sinceStr, 10, 64)
			if e.ClockMs < since {
				continue
			}
			filterDesc = "since " + sinceStr + "ms"
		}

		if eventType != "" && string(e.Type) != eventType {
			continue
		}

		replayEvents = append(replayEvents, convertToReplayEvent(e))
	}

	response := ReplayResponse{
		SessionID:   sessionID,
		TotalEvents: len(replayEvents),
		FilteredBy:  filterDesc,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Events:      replayEvents,
	}

	rh.logger.Event("REPLAY_SERVED", sessionID, "Events:"+strconv.Itoa(len(replayEvents)))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleRecap returns a human-readable recap rebuilt from the persisted ledger.
// GET /api/recap?session_id=XXX
func (rh *ReplayHandler) HandleRecap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		rh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if rh.reconstructor == nil {
		rh.jsonError(w, "Persistence disabled", http.StatusServiceUnavailable)
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		rh.jsonError(w, "Missing session_id", http.StatusBadRequest)
		return
	}

	recap, err := rh.reconstructor.GenerateRecap(r.Context(), sessionID)
	if err != nil {
		rh.logger.Error("Failed to generate recap: " + err.Error())
		rh.jsonError(w, "Failed to generate recap", http.StatusInternalServerError)
		return
	}

	rebuilt, err := rh.reconstructor.RebuildSession(r.Context(), sessionID)
	if err != nil {
		rh.logger.Error("Failed to rebuild session: " + err.Error())
		rh.jsonError(w, "Failed to rebuild session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"generated_at": time.Now().Format(time.RFC3339),
		"session":      rebuilt,
		"recap":        recap,
	})
}

// HandleStats returns aggregate statistics for one session's event history.
// GET /api/replay/stats?session_id=XXX
func (rh *ReplayHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		rh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		rh.jsonError(w, "Missing session_id", http.StatusBadRequest)
		return
	}

	stats := map[string]int{
		"total_events":    0,
		"arrivals":        0,
		"replies":         0,
		"alerts_expired":  0,
		"agent_mistakes":  0,
		"focus_penalties": 0,
	}

	for _, e := range rh.eventLog.BySession(sessionID) {
		stats["total_events"]++
		switch e.Type {
		case events.EventTypeMessageArrived:
			stats["arrivals"]++
		case events.EventTypeReplySent:
			stats["replies"]++
		case events.EventTypeAlertExpired:
			stats["alerts_expired"]++
		case events.EventTypeAgentMistake:
			stats["agent_mistakes"]++
		case events.EventTypeFocusPenalty:
			stats["focus_penalties"]++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"session_id":   sessionID,
		"generated_at": time.Now().Format(time.RFC3339),
		"stats":        stats,
	})
}

// RegisterRoutes sets up the replay API routes.
func (rh *ReplayHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/replay", rh.HandleReplay)
	mux.HandleFunc("/api/recap", rh.HandleRecap)
	mux.HandleFunc("/api/replay/stats", rh.HandleStats)
}

// convertToReplayEvent transforms an internal event to public format.
func convertToReplayEvent(e events.Event) ReplayEvent {
	return ReplayEvent{
		ID:        e.ID,
		ClockMs:   e.ClockMs,
		Type:      string(e.Type),
		MessageID: e.MessageID,
		Summary:   summarizeEvent(e),
		Impact:    determineImpact(e),
	}
}

// summarizeEvent creates a human-readable summary.
func summarizeEvent(e events.Event) string {
	switch e.Type {
	case events.EventTypeSessionStarted:
		return "The workday started."
	case events.EventTypeSessionEnded:
		return "The workday ended."
	case events.EventTypeMessageArrived:
		return "A new email landed in the inbox."
	case events.EventTypeReplySent:
		return "A reply went out."
	case events.EventTypeAlertRaised:
		return "A priority alert started counting down."
	case events.EventTypeAlertExpired:
		return "A priority alert expired unacknowledged."
	case events.EventTypeAgentMistake:
		return "The autopilot deleted something important."
	case events.EventTypeCadenceTightened:
		return "The inbox sped up."
	default:
		return "Something happened..."
	}
}

// determineImpact classifies the event impact.
func determineImpact(e events.Event) string {
	switch e.Type {
	case events.EventTypeAlertExpired, events.EventTypeAgentMistake, events.EventTypeFocusPenalty, events.EventTypeCadenceTightened:
		return "NEGATIVE"
	case events.EventTypeReplySent, events.EventTypeAlertAcked:
		return "POSITIVE"
	default:
		return "NEUTRAL"
	}
}

// jsonError sends an error response.
func (rh *ReplayHandler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
