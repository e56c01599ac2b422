// Package session owns the live order-editing sessions. Each session wraps
// one cart engine instance together with the identity of the user driving it
// and the confirm re-entrancy guard. Sessions are explicit context objects:
// there is no package-level cart, so any number of terminals can edit
// different orders concurrently.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/tavolo-pos/api/internal/cart"
)

var (
	ErrConfirmInProgress = errors.New("confirm already in progress")
	ErrMissingUser       = errors.New("user id is required to confirm an order")
	ErrSessionNotFound   = errors.New("session not found")
)

// ValidationError carries the submission-gate messages when a confirm is
// rejected; callers render them inline rather than treating them as faults.
type ValidationError struct {
	Result cart.ValidationResult
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("order validation failed: %v", e.Result.Errors)
}

// SubmitFunc ships a built payload to the order service. The engine performs
// no I/O itself; transport lives entirely behind this function.
type SubmitFunc func(ctx context.Context, p cart.Payload) error

// Session is one open order-editing session.
type Session struct {
	ID     uuid.UUID
	UserID string

	mu   sync.Mutex
	cart *cart.Cart

	// confirming guards against duplicate submissions from rapid repeated
	// triggers. Confirm transitions it idle->confirming atomically and
	// always restores it, success or failure.
	confirming atomic.Bool
}

// With runs fn while holding the session's cart exclusively. All mutation
// entry points go through here, so state updates never interleave.
func (s *Session) With(fn func(c *cart.Cart) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.cart)
}

// Confirm builds the outbound payload, hands it to submit, and on success
// re-captures the diff baseline. A second Confirm while one is in flight
// fails with ErrConfirmInProgress instead of double-submitting.
func (s *Session) Confirm(ctx context.Context, submit SubmitFunc) (*cart.Payload, error) {
	if s.UserID == "" {
		return nil, ErrMissingUser
	}
	if !s.confirming.CompareAndSwap(false, true) {
		return nil, ErrConfirmInProgress
	}
	defer s.confirming.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()

	payload, res := s.cart.BuildPayload(s.UserID)
	if !res.IsValid {
		return nil, &ValidationError{Result: res}
	}
	if submit != nil {
		if err := submit(ctx, *payload); err != nil {
			return nil, fmt.Errorf("submit order: %w", err)
		}
	}
	s.cart.MarkSaved()
	return payload, nil
}

// Manager tracks the open sessions by id.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	resolve  cart.ModifierResolver
}

// NewManager creates a Manager resolving modifier references through the
// given menu lookup.
func NewManager(resolve cart.ModifierResolver) *Manager {
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		resolve:  resolve,
	}
}

// Create opens a creation-mode session for a new order.
func (m *Manager) Create(userID string) *Session {
	s := &Session{
		ID:     uuid.New(),
		UserID: userID,
		cart:   cart.New(),
	}
	m.put(s)
	return s
}

// Load opens an edit-mode session seeded from an existing order snapshot.
func (m *Manager) Load(userID string, order cart.OrderSnapshot) *Session {
	s := &Session{
		ID:     uuid.New(),
		UserID: userID,
		cart:   cart.Load(order, m.resolve),
	}
	m.put(s)
	return s
}

// Get returns the session with the given id.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close discards a session and its in-memory state. Returns false when the
// session does not exist.
func (m *Manager) Close(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

func (m *Manager) put(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
}
