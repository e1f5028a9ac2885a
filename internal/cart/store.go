package cart

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// SessionTTL is how long an idle cart session is kept before it is
	// dropped, the server-side equivalent of a page reload losing the cart.
	SessionTTL = 30 * time.Minute

	// CleanupInterval is how often the background cleanup runs
	CleanupInterval = time.Minute
)

// Common errors returned by the store
var (
	ErrSessionNotFound    = errors.New("cart session not found")
	ErrSubmissionInFlight = errors.New("order submission already in progress")
)

type session struct {
	cart      *Cart
	inFlight  bool
	expiresAt time.Time
}

// SessionStore keeps one cart per browsing session in memory. Sessions are
// never persisted; they expire after SessionTTL of inactivity.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

// NewSessionStore creates an in-memory session store and starts its
// background expiry loop.
func NewSessionStore() *SessionStore {
	return newSessionStore(SessionTTL, CleanupInterval)
}

func newSessionStore(ttl, cleanupEvery time.Duration) *SessionStore {
	s := &SessionStore{
		sessions:    make(map[string]*session),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop(cleanupEvery)

	return s
}

func (s *SessionStore) cleanupLoop(every time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expireSessions()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *SessionStore) expireSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, sess := range s.sessions {
		// an in-flight submission keeps its session alive
		if !sess.inFlight && now.After(sess.expiresAt) {
			delete(s.sessions, id)
		}
	}
}

// Create opens a new session with an empty cart and returns its ID.
func (s *SessionStore) Create() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	s.sessions[id] = &session{
		cart:      New(),
		expiresAt: time.Now().Add(s.ttl),
	}
	return id
}

// get returns the live session. Callers must hold the store lock.
func (s *SessionStore) get(id string) (*session, error) {
	sess, ok := s.sessions[id]
	if !ok || time.Now().After(sess.expiresAt) {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// touch extends the session's lifetime; mutating operations call it so an
// active shopper never loses the cart mid-session.
func (s *session) touch(ttl time.Duration) {
	s.expiresAt = time.Now().Add(ttl)
}

// AddItem adds a product to the session's cart.
func (s *SessionStore) AddItem(id, product string, unitPrice decimal.Decimal) (Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.get(id)
	if err != nil {
		return Notice{}, err
	}
	sess.touch(s.ttl)
	return sess.cart.AddItem(product, unitPrice), nil
}

// RemoveItem removes the line at the given position. Out of range indices
// are a silent no-op.
func (s *SessionStore) RemoveItem(id string, index int) (Notice, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.get(id)
	if err != nil {
		return Notice{}, false, err
	}
	sess.touch(s.ttl)
	notice, removed := sess.cart.RemoveItem(index)
	return notice, removed, nil
}

// View returns a detached copy of the session's cart.
func (s *SessionStore) View(id string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return sess.cart.Clone(), nil
}

// BeginSubmit marks the session as having a submission in flight and returns
// a snapshot of its cart. A second submit while the flag is set fails with
// ErrSubmissionInFlight; this is the only concurrency control over the
// checkout flow.
func (s *SessionStore) BeginSubmit(id string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if sess.inFlight {
		return nil, ErrSubmissionInFlight
	}
	sess.touch(s.ttl)
	sess.inFlight = true
	return sess.cart.Clone(), nil
}

// EndSubmit releases the in-flight flag. When clear is true the cart is
// emptied (successful order); otherwise it is left intact so the customer
// can retry without re-entering anything.
func (s *SessionStore) EndSubmit(id string, clear bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return
	}
	sess.inFlight = false
	if clear {
		sess.cart.Clear()
	}
}

// Close stops the background cleanup and waits for it to finish
func (s *SessionStore) Close() {
	close(s.stopCleanup)
	s.wg.Wait()
}
