package internal

import (
	"fmt"
	"time"
)

type Config struct {
	Host              string        `env:"HOST,default=0.0.0.0"`
	Port              int           `env:"PORT,default=8080"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath     string        `env:"BLUGE_FILEPATH,required=true"`
	SweepInterval     time.Duration `env:"SWEEP_INTERVAL,default=30s"`
	PersistBufferSize int           `env:"PERSIST_BUFFER_SIZE,default=1024"`
	HistoryLimit      int           `env:"HISTORY_LIMIT,default=2000"`
	MaxFrameSize      int64         `env:"MAX_FRAME_SIZE,default=65536"`
	SearchLimit       int           `env:"SEARCH_LIMIT,default=50"`
	TokenKey          string        `env:"TOKEN_KEY,required=true"`
	TokenTTL          time.Duration `env:"TOKEN_TTL,default=12h"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

// Validate rejects values the runtime cannot start with. A zero or negative
// sweep interval would panic the liveness ticker; a non-positive buffer size
// would panic the persistence queue allocation.
func (c Config) Validate() error {
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}
	if c.PersistBufferSize <= 0 {
		return fmt.Errorf("PERSIST_BUFFER_SIZE must be positive, got %d", c.PersistBufferSize)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	return nil
}
