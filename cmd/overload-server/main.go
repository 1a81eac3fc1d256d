// Package main is the entry point for the Inbox Overload game server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MTorresVidal/InboxOverload/server/internal/engine"
	"github.com/MTorresVidal/InboxOverload/server/internal/events"
	"github.com/MTorresVidal/InboxOverload/server/internal/infra/storage"
	"github.com/MTorresVidal/InboxOverload/server/internal/network"
	"github.com/MTorresVidal/InboxOverload/server/internal/platform/config"
	"github.com/MTorresVidal/InboxOverload/server/internal/platform/logger"
	"github.com/MTorresVidal/InboxOverload/server/internal/platform/metrics"
)

// SQLitePersisterAdapter translates domain events to storage events and
// keeps the session scoreboard current.
type SQLitePersisterAdapter struct {
	eventRepo   storage.EventRepository
	sessionRepo storage.SessionRepository
}

func (a *SQLitePersisterAdapter) Append(event events.Event) error {
	payloadBytes, _ := json.Marshal(event.Payload)
	var payloadMap map[string]interface{}
	json.Unmarshal(payloadBytes, &payloadMap)

	storageEvent := storage.SessionEvent{
		ID:        event.ID,
		SessionID: event.SessionID,
		Timestamp: event.Timestamp,
		ClockMs:   event.ClockMs,
		EventType: string(event.Type),
		MessageID: event.MessageID,
		Payload:   payloadMap,
	}

	start := time.Now()
	err := a.eventRepo.Append(context.Background(), storageEvent)
	metrics.Get().RecordEventWrite(time.Since(start), err)
	if err != nil {
		return err
	}

	if event.Type == events.EventTypeSessionEnded {
		a.recordSummary(event, payloadMap)
	}
	return nil
}

// recordSummary upserts the scoreboard row when a session reaches its end.
func (a *SQLitePersisterAdapter) recordSummary(event events.Event, payload map[string]interface{}) {
	summary := storage.SessionSummary{
		SessionID:  event.SessionID,
		StartedAt:  event.Timestamp.Add(-time.Duration(event.ClockMs) * time.Millisecond),
		EndedAt:    event.Timestamp,
		DurationMs: event.ClockMs,
	}
	if v, ok := payload["score"].(float64); ok {
		summary.Score = int(v)
	}
	if v, ok := payload["focus"].(float64); ok {
		summary.Focus = v
	}
	if v, ok := payload["processed"].(float64); ok {
		summary.Processed = int(v)
	}
	if v, ok := payload["mistakes"].(float64); ok {
		summary.Mistakes = int(v)
	}
	if v, ok := payload["grade"].(string); ok {
		summary.Grade = v
	}
	_ = a.sessionRepo.Upsert(context.Background(), summary)
}

func main() {
	log.Println("[OVERLOAD-SERVER] Initializing 'Inbox Overload' Authoritative Server...")

	appLogger := logger.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		appLogger.Error("Invalid configuration: " + err.Error())
		os.Exit(1)
	}

	appLogger.Info("Initializing SQLite database '" + cfg.DBPath + "'...")
	db, err := storage.InitSQLite(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to initialize SQLite: " + err.Error())
		os.Exit(1)
	}
	eventRepo := storage.NewSQLiteEventRepository(db)
	sessionRepo := storage.NewSQLiteSessionRepository(db)
	eventPersister := &SQLitePersisterAdapter{eventRepo: eventRepo, sessionRepo: sessionRepo}

	appLogger.Info("Bootstrapping EventLog...")
	eventLog := events.NewLog(eventPersister)

	appLogger.Info("Bootstrapping Session Engine...")
	scheduler := engine.NewWallScheduler(cfg.Speed)
	rng := engine.NewRand(cfg.Seed)
	session, err := engine.NewSession(cfg.Engine, appLogger, eventLog, scheduler, rng)
	if err != nil {
		appLogger.Error("Failed to build session: " + err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(appLogger, session, cfg.BroadcastBuffer)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, eventLog)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r, appLogger, cfg.ClientSendBuffer)
	})

	stateAPI := network.NewStateAPI(session, sessionRepo, appLogger)
	stateAPI.RegisterRoutes(mux)

	reconstructor := storage.NewReconstructor(eventRepo)
	replayHandler := network.NewReplayHandler(eventLog, reconstructor, appLogger)
	replayHandler.RegisterRoutes(mux)

	mux.HandleFunc("/metrics", metrics.Handler())
	mux.HandleFunc("/metrics/prometheus", metrics.PrometheusHandler())

	server := &http.Server{Addr: ":" + cfg.Port, Handler: mux}
	go func() {
		log.Println("[OVERLOAD-SERVER] HTTP API & WS Server listening on :" + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Println("[OVERLOAD-SERVER] Server running. Press Ctrl+C to exit.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[OVERLOAD-SERVER] Shutting down...")
	scheduler.CancelAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
	_ = db.Close()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow cross-origin requests for the dev frontend
	},
}

// serveWs handles websocket requests from the peer.
func serveWs(hub *network.Hub, w http.ResponseWriter, r *http.Request, log *logger.Logger, sendBuffer int) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("Failed to upgrade websocket connection")
		return
	}

	client := network.NewClient(hub, conn, sendBuffer)
	client.Register()

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.WritePump()
	go client.ReadPump()
}
