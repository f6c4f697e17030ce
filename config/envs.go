package config

import (
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/fogmaze/model"
)

// Config holds the application's configuration values.
type Config struct {
	Port     string           // Port the HTTP server listens on
	LogLevel log.Level        // Minimum level written by logrus
	Maze     model.Dimensions // Dimensions used when a client does not ask for any
	Seed     int64            // Seed for maze randomness
	Seeded   bool             // Seed came from MAZE_SEED rather than the clock

	// MaxSessions caps concurrent browser sessions, zero disables the cap
	MaxSessions int
}

const DefaultMaxSessions = 64

// Load reads a .env file if present and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Debugf(".env file not found or could not be loaded: %v", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from any environment source.
func FromLookup(lookup func(string) (string, bool)) Config {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok {
			return v
		}
		return def
	}

	cfg := Config{
		Port: get("PORT", "8080"),
		Maze: model.ParseDimensions(
			get("MAZE_SIZE", ""),
			get("MAZE_ROWS", ""),
			get("MAZE_COLUMNS", "")),
		LogLevel:    log.InfoLevel,
		Seed:        time.Now().UnixNano(),
		MaxSessions: DefaultMaxSessions,
	}

	if raw, ok := lookup("LOG_LEVEL"); ok {
		level, err := log.ParseLevel(raw)
		if err != nil {
			log.Warnf("LOG_LEVEL %q not understood, using %s", raw, cfg.LogLevel)
		} else {
			cfg.LogLevel = level
		}
	}

	if raw, ok := lookup("MAZE_SEED"); ok {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Warnf("MAZE_SEED %q is not an integer, using the clock", raw)
		} else {
			cfg.Seed = seed
			cfg.Seeded = true
		}
	}

	if raw, ok := lookup("MAX_SESSIONS"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			log.Warnf("MAX_SESSIONS %q is not a count, using %d", raw, cfg.MaxSessions)
		} else {
			cfg.MaxSessions = n
		}
	}
	return cfg
}

// Apply configures the standard logrus logger.
func (c Config) Apply() {
	log.SetLevel(c.LogLevel)
}

// Rand hands out sources derived from the configured seed, so a seeded run
// yields the same sequence of mazes.
type Rand struct {
	seeds *rand.Rand
}

func (c Config) Rand() *Rand {
	return &Rand{seeds: rand.New(rand.NewSource(c.Seed))}
}

func (r *Rand) Next() *rand.Rand {
	return rand.New(rand.NewSource(r.seeds.Int63()))
}
