// Package csrf issues and validates per-session anti-forgery tokens.
// Tokens are delivered to the client in a readable cookie and echoed back
// in a request header on state-changing calls.
package csrf

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"sync"
	"time"
)

const tokenBytes = 32

type record struct {
	token     string
	expiresAt time.Time
}

// Store keeps one active token per session id. Issue overwrites any prior
// token for the session; Validate never reveals through timing whether the
// session id or the token was the mismatch.
type Store struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	tokens map[string]record

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewStore(ttl, sweepInterval time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if sweepInterval <= 0 {
		sweepInterval = 5 * time.Minute
	}

	s := &Store{
		ttl:    ttl,
		now:    time.Now,
		tokens: make(map[string]record),
		done:   make(chan struct{}),
	}

	s.wg.Add(1)
	go s.sweepLoop(sweepInterval)

	return s
}

// Issue generates a 256-bit random token for the session, replacing any
// existing one.
func (s *Store) Issue(sessionID string) (string, error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating csrf token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	s.mu.Lock()
	s.tokens[sessionID] = record{token: token, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()

	return token, nil
}

// Validate reports whether the supplied token matches the session's active
// token. Comparison runs over fixed-length digests, so unknown sessions,
// expired tokens and wrong-length input all take the same code path.
func (s *Store) Validate(sessionID, token string) bool {
	s.mu.Lock()
	rec, ok := s.tokens[sessionID]
	if ok && !s.now().Before(rec.expiresAt) {
		delete(s.tokens, sessionID)
		ok = false
	}
	s.mu.Unlock()

	stored := ""
	if ok {
		stored = rec.token
	}

	want := sha256.Sum256([]byte(stored))
	got := sha256.Sum256([]byte(token))
	match := subtle.ConstantTimeCompare(want[:], got[:]) == 1

	return ok && match
}

// Revoke drops the session's token, if any.
func (s *Store) Revoke(sessionID string) {
	s.mu.Lock()
	delete(s.tokens, sessionID)
	s.mu.Unlock()
}

// Close stops the background sweeper.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
}

func (s *Store) sweepLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.done:
			return
		}
	}
}

func (s *Store) sweep() {
	now := s.now()

	s.mu.Lock()
	for sessionID, rec := range s.tokens {
		if !now.Before(rec.expiresAt) {
			delete(s.tokens, sessionID)
		}
	}
	s.mu.Unlock()
}

// size reports the tracked session count, for tests.
func (s *Store) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}
