package server

import (
	"fmt"
	"time"

	"github.com/dekarrin/cfgnorm/internal/config"
	"github.com/dekarrin/cfgnorm/internal/recognize"
	"github.com/dekarrin/cfgnorm/server/normsvc"
)

// Config is a configuration for a server. It contains all parameters that can
// be used to configure the operation of a Server.
type Config struct {

	// DB is the configuration to use for connecting to the database. If
	// not provided, it will be set to a configuration for using an in-memory
	// persistence layer.
	DB config.Database

	// ErrDelayMillis is the amount of additional time to wait (in
	// milliseconds) before sending an HTTP-500 response. If not set it will
	// default to 1 second (1000ms). Set this to any negative number to disable
	// the delay.
	ErrDelayMillis int

	// MaxSteps is the recognizer step budget of a single query. If not set it
	// defaults to recognize.DefaultMaxSteps.
	MaxSteps int

	// CacheSize is the number of recognition results kept in memory. If not
	// set it defaults to normsvc.DefaultCacheSize.
	CacheSize int

	// RawUnicode disables putting grammar source and queries in Unicode
	// normalization form C.
	RawUnicode bool
}

// ErrDelay returns the configured time for the ErrDelay as a time.Duration. If
// cfg.ErrDelayMillis is set to a number less than 0, this will return a
// zero-valued time.Duration.
func (cfg Config) ErrDelay() time.Duration {
	if cfg.ErrDelayMillis < 1 {
		var dur time.Duration
		return dur
	}
	return time.Millisecond * time.Duration(cfg.ErrDelayMillis)
}

// FillDefaults returns a new Config identitical to cfg but with unset values
// set to their defaults.
func (cfg Config) FillDefaults() Config {
	newCFG := cfg

	if newCFG.DB.Type == "" || newCFG.DB.Type == config.DatabaseNone {
		newCFG.DB = config.Database{Type: config.DatabaseInMemory}
	}
	if newCFG.ErrDelayMillis == 0 {
		newCFG.ErrDelayMillis = 1000
	}
	if newCFG.MaxSteps == 0 {
		newCFG.MaxSteps = recognize.DefaultMaxSteps
	}
	if newCFG.CacheSize == 0 {
		newCFG.CacheSize = normsvc.DefaultCacheSize
	}

	return newCFG
}

// Validate returns an error if the Config has invalid field values set. Empty
// and unset values are considered invalid; if defaults are intended to be used,
// call Validate on the return value of FillDefaults.
func (cfg Config) Validate() error {
	if err := cfg.DB.Validate(); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if cfg.MaxSteps < 1 {
		return fmt.Errorf("max steps: must be at least 1, but is %d", cfg.MaxSteps)
	}
	if cfg.CacheSize < 1 {
		return fmt.Errorf("cache size: must be at least 1, but is %d", cfg.CacheSize)
	}

	// all possible values for ErrDelayMillis are valid, so no need to check it

	return nil
}
