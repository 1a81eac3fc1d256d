// Package logger provides structured logging for the simulation server.
// Everything the engine does on the player's behalf should be traceable here.
package logger

import (
	"log"
	"os"
)

// Logger provides leveled logging with an event channel for game actions.
type Logger struct {
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
}

// NewLogger creates a new logger instance.
func NewLogger() *Logger {
	return &Logger{
		infoLogger:  log.New(os.Stdout, "[OVERLOAD-INFO] ", log.Ldate|log.Ltime|log.Lshortfile),
		warnLogger:  log.New(os.Stdout, "[OVERLOAD-WARN] ", log.Ldate|log.Ltime|log.Lshortfile),
		errorLogger: log.New(os.Stderr, "[OVERLOAD-ERROR] ", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

// Info logs informational messages.
func (l *Logger) Info(msg string) {
	l.infoLogger.Println(msg)
}

// Warn logs warning messages.
func (l *Logger) Warn(msg string) {
	l.warnLogger.Println(msg)
}

// Error logs error messages.
func (l *Logger) Error(msg string) {
	l.errorLogger.Println(msg)
}

// Event logs a game event with its session context.
func (l *Logger) Event(eventType string, sessionID string, details string) {
	l.infoLogger.Printf("[EVENT:%s] Session:%s | %s", eventType, sessionID, details)
}
