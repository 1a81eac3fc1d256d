// Package config reads server configuration from the environment and
// validates it before anything else starts. Bad timing or meter settings are
// the one fatal condition in the system; everything downstream is no-op safe.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/MTorresVidal/InboxOverload/server/internal/engine"
)

// Config holds everything the server needs at boot.
type Config struct {
	Port   string
	DBPath string

	// Speed divides every scheduled duration: 2 plays at double speed.
	// Scoring is expressed in simulated time, so speed never changes it.
	Speed float64

	// Seed for the randomness source; 0 means seed from the wall clock.
	Seed int64

	// Channel buffer tuning for the WebSocket layer.
	ClientSendBuffer int
	BroadcastBuffer  int

	Engine engine.Config
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt64Env(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

// Load reads env vars, applies defaults and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("OVERLOAD_PORT", "8080"),
		DBPath:           getEnv("OVERLOAD_DB", "overload.db"),
		ClientSendBuffer: 64,
		BroadcastBuffer:  256,
		Engine:           engine.DefaultConfig(),
	}

	var err error
	if cfg.Speed, err = getFloatEnv("OVERLOAD_SPEED", 1); err != nil {
		return nil, err
	}
	if cfg.Seed, err = getInt64Env("OVERLOAD_SEED", 0); err != nil {
		return nil, err
	}
	if cfg.Engine.SessionDurationMs, err = getInt64Env("OVERLOAD_SESSION_MS", cfg.Engine.SessionDurationMs); err != nil {
		return nil, err
	}
	if cfg.Engine.EmailIntervalMs, err = getInt64Env("OVERLOAD_EMAIL_INTERVAL_MS", cfg.Engine.EmailIntervalMs); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast on degenerate settings.
func (c *Config) Validate() error {
	if c.Speed <= 0 || c.Speed > 16 {
		return fmt.Errorf("speed %.2f outside (0, 16]", c.Speed)
	}
	if c.ClientSendBuffer <= 0 || c.BroadcastBuffer <= 0 {
		return fmt.Errorf("channel buffers must be positive")
	}
	return c.Engine.Validate()
}
