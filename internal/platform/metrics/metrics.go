// Package metrics provides observability for the simulation server.
// Counters are cheap atomics so the engine loop never blocks on them.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance and gameplay metrics.
type Collector struct {
	// Engine metrics
	SessionsStarted   int64
	SessionsCompleted int64
	MessagesGenerated int64
	RepliesSent       int64
	AutopilotMistakes int64

	// Event metrics
	EventsWritten    int64
	EventWriteLatSum int64 // nanoseconds
	EventWriteLatMax int64
	EventWriteErrors int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordSessionStart counts a session start (including restarts).
func (c *Collector) RecordSessionStart() {
	atomic.AddInt64(&c.SessionsStarted, 1)
}

// RecordSessionEnd counts a session reaching its time cap.
func (c *Collector) RecordSessionEnd() {
	atomic.AddInt64(&c.SessionsCompleted, 1)
}

// RecordMessageGenerated counts a synthetic message arrival.
func (c *Collector) RecordMessageGenerated() {
	atomic.AddInt64(&c.MessagesGenerated, 1)
}

// RecordReply counts a player reply.
func (c *Collector) RecordReply() {
	atomic.AddInt64(&c.RepliesSent, 1)
}

// RecordAutopilotMistake counts an agent blunder.
func (c *Collector) RecordAutopilotMistake() {
	atomic.AddInt64(&c.AutopilotMistakes, 1)
}

// RecordEventWrite records an event write to the database.
func (c *Collector) RecordEventWrite(latency time.Duration, err error) {
	atomic.AddInt64(&c.EventsWritten, 1)
	atomic.AddInt64(&c.EventWriteLatSum, int64(latency))

	if int64(latency) > atomic.LoadInt64(&c.EventWriteLatMax) {
		atomic.StoreInt64(&c.EventWriteLatMax, int64(latency))
	}

	if err != nil {
		atomic.AddInt64(&c.EventWriteErrors, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	eventsWritten := atomic.LoadInt64(&c.EventsWritten)
	var eventAvg float64
	if eventsWritten > 0 {
		eventAvg = float64(atomic.LoadInt64(&c.EventWriteLatSum)) / float64(eventsWritten) / 1e6 // ms
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"game": map[string]interface{}{
			"sessions_started":   atomic.LoadInt64(&c.SessionsStarted),
			"sessions_completed": atomic.LoadInt64(&c.SessionsCompleted),
			"messages_generated": atomic.LoadInt64(&c.MessagesGenerated),
			"replies_sent":       atomic.LoadInt64(&c.RepliesSent),
			"autopilot_mistakes": atomic.LoadInt64(&c.AutopilotMistakes),
		},

		"events": map[string]interface{}{
			"written":          eventsWritten,
			"avg_write_lat_ms": eventAvg,
			"max_write_lat_ms": float64(atomic.LoadInt64(&c.EventWriteLatMax)) / 1e6,
			"errors":           atomic.LoadInt64(&c.EventWriteErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		snapshot := collector.Snapshot()
		json.NewEncoder(w).Encode(snapshot)
	}
}

// PrometheusHandler returns metrics in Prometheus format.
func PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		c := collector

		fmt.Fprintf(w, "# HELP overload_sessions_started Total sessions started\n")
		fmt.Fprintf(w, "# TYPE overload_sessions_started counter\n")
		fmt.Fprintf(w, "overload_sessions_started %d\n\n", atomic.LoadInt64(&c.SessionsStarted))

		fmt.Fprintf(w, "# HELP overload_sessions_completed Total sessions that reached the time cap\n")
		fmt.Fprintf(w, "# TYPE overload_sessions_completed counter\n")
		fmt.Fprintf(w, "overload_sessions_completed %d\n\n", atomic.LoadInt64(&c.SessionsCompleted))

		fmt.Fprintf(w, "# HELP overload_messages_generated Total synthetic messages generated\n")
		fmt.Fprintf(w, "# TYPE overload_messages_generated counter\n")
		fmt.Fprintf(w, "overload_messages_generated %d\n\n", atomic.LoadInt64(&c.MessagesGenerated))

		fmt.Fprintf(w, "# HELP overload_replies_sent Total player replies\n")
		fmt.Fprintf(w, "# TYPE overload_replies_sent counter\n")
		fmt.Fprintf(w, "overload_replies_sent %d\n\n", atomic.LoadInt64(&c.RepliesSent))

		fmt.Fprintf(w, "# HELP overload_autopilot_mistakes Total autopilot mistakes\n")
		fmt.Fprintf(w, "# TYPE overload_autopilot_mistakes counter\n")
		fmt.Fprintf(w, "overload_autopilot_mistakes %d\n\n", atomic.LoadInt64(&c.AutopilotMistakes))

		fmt.Fprintf(w, "# HELP overload_events_written Total events written\n")
		fmt.Fprintf(w, "# TYPE overload_events_written counter\n")
		fmt.Fprintf(w, "overload_events_written %d\n\n", atomic.LoadInt64(&c.EventsWritten))

		fmt.Fprintf(w, "# HELP overload_event_write_errors Total event write errors\n")
		fmt.Fprintf(w, "# TYPE overload_event_write_errors counter\n")
		fmt.Fprintf(w, "overload_event_write_errors %d\n\n", atomic.LoadInt64(&c.EventWriteErrors))

		fmt.Fprintf(w, "# HELP overload_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE overload_ws_connections gauge\n")
		fmt.Fprintf(w, "overload_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP overload_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE overload_ws_messages_total counter\n")
		fmt.Fprintf(w, "overload_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "overload_ws_messages_total{direction=\"out\"} %d\n", atomic.LoadInt64(&c.WSMessagesOut))
	}
}
