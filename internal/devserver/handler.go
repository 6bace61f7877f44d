// Package devserver implements a development collection endpoint: an HTTP
// server that accepts sync chunks, issues and rotates JWT pairs, and keeps
// an in-memory tally of received records. It exists so the engine can be
// exercised end to end without a real backend; it is not meant for
// production use.
package devserver

import (
	"sync"
	"sync/atomic"

	"github.com/the-momentum/open-wearables-sync/internal/logger"
)

type Handler struct {
	tokens *TokenIssuer
	log    *logger.Logger

	// apiKey, when non-empty, is accepted in the configured header as an
	// alternative to bearer auth.
	apiKey       string
	apiKeyHeader string

	// failEvery makes every Nth sync request answer 503. Zero disables
	// the behaviour. Used to exercise outbox recovery against a live
	// engine.
	failEvery int64
	requests  atomic.Int64

	mu       sync.Mutex
	received map[string]int // user key -> accepted sample count
	deleted  map[string]int
}

type Options struct {
	APIKey       string
	APIKeyHeader string
	FailEvery    int
}

func NewHandler(opts Options, tokens *TokenIssuer, log *logger.Logger) *Handler {
	if opts.APIKeyHeader == "" {
		opts.APIKeyHeader = "X-Api-Key"
	}
	log.Info().Msg("devserver handler created")
	return &Handler{
		tokens:       tokens,
		log:          log,
		apiKey:       opts.APIKey,
		apiKeyHeader: opts.APIKeyHeader,
		failEvery:    int64(opts.FailEvery),
		received:     make(map[string]int),
		deleted:      make(map[string]int),
	}
}

func (h *Handler) record(userKey string, samples, deleted int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.received[userKey] += samples
	h.deleted[userKey] += deleted
}

// Received returns the accepted sample count for a user. Intended for
// tests and the stats endpoint.
func (h *Handler) Received(userKey string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.received[userKey]
}
