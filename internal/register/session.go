package register

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"cepbook/internal/address/models"
	addressservice "cepbook/internal/address/service"
	registermetrics "cepbook/internal/register/metrics"
	id "cepbook/pkg/domain"
	dErrors "cepbook/pkg/domain-errors"
)

// DefaultSessionTTL bounds how long an untouched draft survives.
const DefaultSessionTTL = 30 * time.Minute

// Lookuper resolves a completed postal code to an address.
type Lookuper interface {
	Lookup(ctx context.Context, code string) (*models.Address, error)
}

// RecordCreator commits a finished draft.
type RecordCreator interface {
	CreateRecord(ctx context.Context, cmd addressservice.CreateRecordCommand) (*models.AddressRecord, error)
}

type session struct {
	mu        sync.Mutex
	form      *Form
	expiresAt time.Time
	consumed  bool
}

// Manager owns the in-flight registration drafts. Each session serializes
// its edits behind its own mutex; lookups run asynchronously and deliver
// their result through the same mutex.
type Manager struct {
	lookup  Lookuper
	records RecordCreator
	logger  *slog.Logger
	metrics *registermetrics.Metrics
	ttl     time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[id.SessionID]*session
}

type ManagerOption func(*Manager)

func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

func WithMetrics(metrics *registermetrics.Metrics) ManagerOption {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

func WithSessionTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock overrides the expiry clock, used in tests.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

func NewManager(lookup Lookuper, records RecordCreator, opts ...ManagerOption) *Manager {
	m := &Manager{
		lookup:   lookup,
		records:  records,
		logger:   slog.Default(),
		ttl:      DefaultSessionTTL,
		now:      time.Now,
		sessions: make(map[id.SessionID]*session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start opens a fresh draft and returns its id with the initial snapshot.
func (m *Manager) Start(ctx context.Context) (id.SessionID, Snapshot) {
	sessionID := id.NewSessionID()
	s := &session{
		form:      NewForm(),
		expiresAt: m.now().Add(m.ttl),
	}

	m.mu.Lock()
	m.sessions[sessionID] = s
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "registration session started", "session_id", sessionID)
	if m.metrics != nil {
		m.metrics.IncrementSessionsStarted()
	}
	return sessionID, s.form.Snapshot()
}

// Edit applies one field change. Completing the postal code triggers the
// lookup asynchronously; the returned snapshot will show lookup_pending and
// a later Snapshot call observes the outcome.
func (m *Manager) Edit(ctx context.Context, sessionID id.SessionID, field Field, value string) (Snapshot, error) {
	s, err := m.get(sessionID)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.consumed {
		return Snapshot{}, errSessionNotFound()
	}

	res, err := s.form.Edit(field, value)
	if err != nil {
		return Snapshot{}, err
	}
	s.expiresAt = m.now().Add(m.ttl)

	if res.LookupCode != "" {
		go m.runLookup(ctx, sessionID, s, res.LookupCode, res.Generation)
	}
	return s.form.Snapshot(), nil
}

// runLookup resolves the code and delivers the outcome under the session
// mutex. A result for a superseded postal code is discarded by the form.
func (m *Manager) runLookup(ctx context.Context, sessionID id.SessionID, s *session, code string, generation uint64) {
	address, err := m.lookup.Lookup(context.WithoutCancel(ctx), code)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.consumed {
		return
	}
	if !s.form.ApplyLookup(generation, address, err) {
		m.logger.InfoContext(ctx, "stale lookup result discarded",
			"session_id", sessionID, "cep", code)
		if m.metrics != nil {
			m.metrics.IncrementLookupsDiscarded()
		}
	}
}

// Snapshot returns the current draft state.
func (m *Manager) Snapshot(_ context.Context, sessionID id.SessionID) (Snapshot, error) {
	s, err := m.get(sessionID)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.consumed {
		return Snapshot{}, errSessionNotFound()
	}
	return s.form.Snapshot(), nil
}

// Submit commits the draft. The session is consumed atomically, so a second
// submit fails with not-found instead of creating a duplicate record.
func (m *Manager) Submit(ctx context.Context, sessionID id.SessionID) (*models.AddressRecord, error) {
	s, err := m.get(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.consumed {
		return nil, errSessionNotFound()
	}
	if !s.form.CanSubmit() {
		return nil, dErrors.New(dErrors.CodeValidation, "form is not complete")
	}

	record, err := m.records.CreateRecord(ctx, s.form.Command())
	if err != nil {
		// Draft intact for retry.
		return nil, err
	}

	s.consumed = true
	m.remove(sessionID)
	m.logger.InfoContext(ctx, "registration session submitted",
		"session_id", sessionID, "record_id", record.ID)
	if m.metrics != nil {
		m.metrics.IncrementSessionsSubmitted()
	}
	return record, nil
}

// Abandon discards the draft.
func (m *Manager) Abandon(ctx context.Context, sessionID id.SessionID) error {
	s, err := m.get(sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.consumed {
		return errSessionNotFound()
	}
	s.consumed = true
	m.remove(sessionID)
	m.logger.InfoContext(ctx, "registration session abandoned", "session_id", sessionID)
	return nil
}

// Start runs the expiry sweep until ctx is cancelled.
func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.PurgeExpired(); n > 0 {
				m.logger.InfoContext(ctx, "expired registration sessions purged", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}

// PurgeExpired drops every session past its deadline and reports how many.
func (m *Manager) PurgeExpired() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	purged := 0
	for sessionID, s := range m.sessions {
		if now.After(s.expiresAt) {
			delete(m.sessions, sessionID)
			purged++
		}
	}
	if purged > 0 && m.metrics != nil {
		m.metrics.AddSessionsExpired(purged)
	}
	return purged
}

func (m *Manager) get(sessionID id.SessionID) (*session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, errSessionNotFound()
	}
	if m.now().After(s.expiresAt) {
		delete(m.sessions, sessionID)
		if m.metrics != nil {
			m.metrics.AddSessionsExpired(1)
		}
		return nil, errSessionNotFound()
	}
	return s, nil
}

func (m *Manager) remove(sessionID id.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

func errSessionNotFound() error {
	return dErrors.New(dErrors.CodeNotFound, "registration session not found")
}
