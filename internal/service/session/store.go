// Package session keeps per-session conversation history in memory.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/minqi/ai-chat/backend/internal/model/chat"
)

const (
	// MaxStoredTurns caps how much history a session retains. Appending
	// beyond the cap evicts the oldest turns first.
	MaxStoredTurns = 50

	// DefaultRecentExchanges bounds how many exchanges (user turn plus
	// assistant turn) are replayed into an outbound prompt.
	DefaultRecentExchanges = 10
)

// Store maps opaque session tokens to ordered conversation histories.
// It is safe for concurrent use; all operations on a session are
// serialized under the store lock.
type Store struct {
	mu        sync.RWMutex
	histories map[string][]chat.Turn
}

// NewStore bootstraps an empty in-memory session store.
func NewStore() *Store {
	return &Store{histories: make(map[string][]chat.Turn)}
}

// NewToken mints an opaque session token.
func NewToken() string {
	return uuid.NewString()
}

// GetOrCreate ensures a history exists for the token and returns a copy
// of it. Sessions are created lazily on first contact.
func (s *Store) GetOrCreate(_ context.Context, token string) []chat.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.histories[token]
	if !ok {
		s.histories[token] = make([]chat.Turn, 0, 16)
		return nil
	}

	copied := make([]chat.Turn, len(history))
	copy(copied, history)
	return copied
}

// Append adds one turn to the end of the session's history, creating the
// session if needed. When the history exceeds MaxStoredTurns the oldest
// turns are dropped, preserving the order of the remainder.
func (s *Store) Append(_ context.Context, token string, turn chat.Turn) {
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.histories[token], turn)
	if len(history) > MaxStoredTurns {
		history = history[len(history)-MaxStoredTurns:]
	}
	s.histories[token] = history
}

// Recent returns up to 2*exchangeLimit of the most recent turns in
// chronological order, without mutating stored history. Non-positive
// limits fall back to DefaultRecentExchanges.
func (s *Store) Recent(_ context.Context, token string, exchangeLimit int) []chat.Turn {
	if exchangeLimit <= 0 {
		exchangeLimit = DefaultRecentExchanges
	}
	limit := 2 * exchangeLimit

	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.histories[token]
	start := 0
	if len(history) > limit {
		start = len(history) - limit
	}

	copied := make([]chat.Turn, len(history)-start)
	copy(copied, history[start:])
	return copied
}

// Clear resets the session's history to empty. Clearing an unknown token
// is a no-op.
func (s *Store) Clear(_ context.Context, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.histories[token]; ok {
		s.histories[token] = s.histories[token][:0]
	}
}
