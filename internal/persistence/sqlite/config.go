package sqlite

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// Config describes how the SQLite database is opened.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	BusyTimeout     time.Duration
	JournalMode     string
}

// DefaultConfig returns the settings used by the service for dsn.
// In-memory databases are pinned to a single connection because every
// connection would otherwise see its own empty database.
func DefaultConfig(dsn string) Config {
	if dsn == "" {
		dsn = MemoryDSN
	}
	cfg := Config{
		DSN:             dsn,
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
		BusyTimeout:     5 * time.Second,
		JournalMode:     "WAL",
	}
	if IsMemory(dsn) {
		cfg.MaxOpenConns = 1
		cfg.MaxIdleConns = 1
		cfg.ConnMaxLifetime = 0
		cfg.JournalMode = "MEMORY"
	}
	return cfg
}

// IsMemory reports whether dsn names an in-memory database.
func IsMemory(dsn string) bool {
	return strings.HasPrefix(dsn, MemoryDSN) || strings.Contains(dsn, "mode=memory")
}

// Validate reports configuration values the driver cannot honour.
func (c Config) Validate() error {
	var problems []string
	if c.DSN == "" {
		problems = append(problems, "dsn is required")
	}
	if c.MaxOpenConns < 1 {
		problems = append(problems, "max open connections must be at least 1")
	}
	if c.MaxIdleConns < 0 || c.MaxIdleConns > c.MaxOpenConns {
		problems = append(problems, "max idle connections must be between 0 and max open connections")
	}
	if c.BusyTimeout < 0 {
		problems = append(problems, "busy timeout must not be negative")
	}
	if IsMemory(c.DSN) && c.MaxOpenConns != 1 {
		problems = append(problems, "in-memory databases require exactly one open connection")
	}
	if len(problems) > 0 {
		return errors.New("sqlite: invalid config: " + strings.Join(problems, "; "))
	}
	return nil
}

// driverDSN appends the connection pragmas understood by modernc.org/sqlite.
func (c Config) driverDSN() string {
	params := url.Values{}
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", c.BusyTimeout.Milliseconds()))
	params.Add("_pragma", "foreign_keys(1)")
	if c.JournalMode != "" {
		params.Add("_pragma", fmt.Sprintf("journal_mode(%s)", c.JournalMode))
	}

	sep := "?"
	if strings.Contains(c.DSN, "?") {
		sep = "&"
	}
	return c.DSN + sep + params.Encode()
}
