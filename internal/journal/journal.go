package journal

import (
	"fmt"
	"strings"
	"time"
)

// Package journal keeps a local, TTL-bounded record of calls made against the API.

// Outcome values recorded for an entry.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Entry describes one completed call.
type Entry struct {
	ID          string    `json:"id"`
	Operation   string    `json:"operation"`
	ResourceID  string    `json:"resource_id,omitempty"`
	Environment string    `json:"environment"`
	Outcome     string    `json:"outcome"`
	StatusCode  int       `json:"status_code,omitempty"`
	Message     string    `json:"message,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Store persists journal entries.
type Store interface {
	Close() error
	Record(e Entry) (Entry, error)
	Recent(limit int) ([]Entry, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	EntryTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	defaultEntryTTL        = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured journal backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt journal requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported journal type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.EntryTTL <= 0 {
		opts.EntryTTL = defaultEntryTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                  { return nil }
func (noopStore) Record(e Entry) (Entry, error) { return e, nil }
func (noopStore) Recent(int) ([]Entry, error)   { return nil, nil }
