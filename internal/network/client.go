package network

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MTorresVidal/InboxOverload/server/internal/domain/message"
	"github.com/MTorresVidal/InboxOverload/server/internal/platform/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// PlayerAction represents an incoming command from the frontend.
type PlayerAction struct {
	Type    string          `json:"type"` // "START", "SELECT", "REPLY", etc.
	Payload json.RawMessage `json:"payload"`
}

// Client holds one WebSocket connection and its outbound queue.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewClient creates a new WebSocket client and returns it.
func NewClient(hub *Hub, conn *websocket.Conn, sendBuffer int) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// ReadPump pumps messages from the websocket connection to the engine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}
		metrics.Get().RecordWSMessage(true)

		var action PlayerAction
		if err := json.Unmarshal(payload, &action); err != nil {
			c.hub.logger.Error("Failed to parse PlayerAction from WebSocket. err: " + err.Error())
			metrics.Get().RecordWSError()
			continue
		}

		c.handlePlayerAction(action)
	}
}

// messageActionPayload covers every command that targets a single message.
type messageActionPayload struct {
	MessageID int            `json:"message_id"`
	Folder    message.Folder `json:"folder,omitempty"`
	Text      string         `json:"text,omitempty"`
}

// togglePayload covers boolean switches such as autopilot.
type togglePayload struct {
	Enabled bool `json:"enabled"`
}

func (c *Client) handlePlayerAction(action PlayerAction) {
	session := c.hub.session

	switch action.Type {
	case "START":
		session.Start()
		c.hub.logger.Event("PLAYER_ACTION_START", session.ID(), "New session started from client")
	case "SELECT":
		var p messageActionPayload
		if !c.parsePayload(action, &p) {
			return
		}
		session.SelectMessage(p.MessageID)
	case "STAR":
		var p messageActionPayload
		if !c.parsePayload(action, &p) {
			return
		}
		session.ToggleStar(p.MessageID)
	case "MOVE":
		var p messageActionPayload
		if !c.parsePayload(action, &p) {
			return
		}
		if !message.ValidFolder(p.Folder) {
			c.hub.logger.Warn("MOVE with unknown folder: " + string(p.Folder))
			return
		}
		session.MoveMessage(p.MessageID, p.Folder)
	case "DELETE":
		var p messageActionPayload
		if !c.parsePayload(action, &p) {
			return
		}
		session.DeleteMessage(p.MessageID)
	case "COMPOSE":
		var p messageActionPayload
		if !c.parsePayload(action, &p) {
			return
		}
		session.OpenComposer(p.MessageID)
	case "SAVE_DRAFT":
		var p messageActionPayload
		if !c.parsePayload(action, &p) {
			return
		}
		session.SaveDraft(p.MessageID, p.Text)
	case "REPLY":
		var p messageActionPayload
		if !c.parsePayload(action, &p) {
			return
		}
		session.SendReply(p.MessageID, p.Text)
	case "ACK_ALERT":
		session.AcknowledgeAlert()
	case "AUTOPILOT":
		var p togglePayload
		if !c.parsePayload(action, &p) {
			return
		}
		session.SetAutopilotEnabled(p.Enabled)
	case "DISMISS_PROMPT":
		session.DismissAutopilotPrompt()
	default:
		c.hub.logger.Warn("Unknown PlayerAction type: " + action.Type)
	}
}

func (c *Client) parsePayload(action PlayerAction, dst interface{}) bool {
	if err := json.Unmarshal(action.Payload, dst); err != nil {
		c.hub.logger.Warn("Failed to parse payload for action " + action.Type)
		metrics.Get().RecordWSError()
		return false
	}
	return true
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(payload)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
