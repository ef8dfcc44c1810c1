// Package config loads typed settings from the environment via envconfig.
// Connection strings for Postgres/Redis stay in their platform packages; this
// holds the game-rule and runtime knobs.
package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// --- HTTP / sockets ---
	HTTPAddr      string `envconfig:"HTTP_ADDR" default:":4101"`
	SocketAddr    string `envconfig:"SOCKET_ADDR" default:":8000"`
	AllowedOrigin string `envconfig:"ALLOWED_ORIGIN" default:"http://localhost:3000"`
	JWTSecret     string `envconfig:"JWT_SECRET" default:"secret"`

	// --- Game rules ---
	StartingBalance int `envconfig:"STARTING_BALANCE" default:"1500"`
	GoSalary        int `envconfig:"GO_SALARY" default:"200"`
	JailFine        int `envconfig:"JAIL_FINE" default:"50"`

	// --- Economy ---
	InitialPhase      string  `envconfig:"INITIAL_PHASE" default:"normal"`
	InitialInflation  float64 `envconfig:"INITIAL_INFLATION" default:"1.0"`
	PhaseDriftChance  float64 `envconfig:"PHASE_DRIFT_CHANCE" default:"0.15"`
	MinPriceFloorFrac float64 `envconfig:"MIN_PRICE_FLOOR_FRAC" default:"0.55"`

	// --- Bots ---
	BotEventChance float64 `envconfig:"BOT_EVENT_CHANCE" default:"0.35"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
