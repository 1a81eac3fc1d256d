package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/MTorresVidal/InboxOverload/server/internal/engine"
	"github.com/MTorresVidal/InboxOverload/server/internal/events"
	"github.com/MTorresVidal/InboxOverload/server/internal/platform/logger"
	"github.com/MTorresVidal/InboxOverload/server/internal/platform/metrics"
)

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	logger     *logger.Logger
	session    *engine.Session
}

// NewHub initializes a new WebSocket Hub bound to a game session.
func NewHub(log *logger.Logger, session *engine.Session, broadcastBuffer int) *Hub {
	return &Hub{
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     log,
		session:    session,
	}
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down.")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.Get().RecordWSConnection(1)
			h.logger.Info("New WebSocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.Get().RecordWSConnection(-1)
				h.logger.Info("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					metrics.Get().RecordWSMessage(false)
				default:
					close(client.send)
					delete(h.clients, client)
					metrics.Get().RecordWSConnection(-1)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastEvent serializes an Event to JSON and sends it to all connected clients.
func (h *Hub) BroadcastEvent(event events.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to serialize event for WebSocket broadcast: " + err.Error())
		metrics.Get().RecordWSError()
		return
	}
	h.broadcast <- payload
}

// snapshotFrame wraps a state snapshot so clients can tell it apart from events.
type snapshotFrame struct {
	Type     string          `json:"type"`
	Snapshot engine.Snapshot `json:"snapshot"`
}

// BroadcastSnapshot pushes a full state snapshot to all clients. Clients use it
// to render meters and the inbox list without replaying the event stream.
func (h *Hub) BroadcastSnapshot() {
	frame := snapshotFrame{Type: "SNAPSHOT", Snapshot: h.session.Snapshot()}
	payload, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("Failed to serialize snapshot for WebSocket broadcast: " + err.Error())
		metrics.Get().RecordWSError()
		return
	}
	h.broadcast <- payload
}

// StartEventPoller spawns a goroutine that polls the event log and pushes new
// events to the Hub. The Hub runs independently from the engine's timers while
// picking up the same events. Gameplay counters are derived here so the engine
// never touches the metrics package directly.
func (h *Hub) StartEventPoller(ctx context.Context, eventLog *events.Log) {
	go func() {
		pollInterval := time.NewTicker(200 * time.Millisecond)
		defer pollInterval.Stop()

		cursor := 0

		for {
			select {
			case <-ctx.Done():
				return
			case <-pollInterval.C:
				newEvents, next := eventLog.Since(cursor)
				if len(newEvents) == 0 {
					continue
				}
				for _, event := range newEvents {
					h.countEvent(event)
					h.BroadcastEvent(event)
				}
				cursor = next
				h.BroadcastSnapshot()
			}
		}
	}()
}

func (h *Hub) countEvent(event events.Event) {
	switch event.Type {
	case events.EventTypeSessionStarted:
		metrics.Get().RecordSessionStart()
	case events.EventTypeSessionEnded:
		metrics.Get().RecordSessionEnd()
	case events.EventTypeMessageArrived:
		metrics.Get().RecordMessageGenerated()
	case events.EventTypeReplySent:
		metrics.Get().RecordReply()
	case events.EventTypeAgentMistake:
		metrics.Get().RecordAutopilotMistake()
	}
}
