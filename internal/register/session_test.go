package register

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cepbook/internal/address/models"
	addressservice "cepbook/internal/address/service"
	"cepbook/internal/address/store"
	"cepbook/internal/sentinel"
	id "cepbook/pkg/domain"
	dErrors "cepbook/pkg/domain-errors"
)

type fakeLookup struct {
	mu        sync.Mutex
	addresses map[string]*models.Address
	err       error
	release   chan struct{}
	calls     []string
}

func (f *fakeLookup) Lookup(_ context.Context, code string) (*models.Address, error) {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	f.calls = append(f.calls, code)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if address, ok := f.addresses[code]; ok {
		return address, nil
	}
	return nil, sentinel.ErrNotFound
}

func newTestManager(t *testing.T, lookup Lookuper, opts ...ManagerOption) *Manager {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	records := addressservice.New(store.NewInMemory(), addressservice.WithLogger(logger))
	opts = append([]ManagerOption{WithLogger(logger)}, opts...)
	return NewManager(lookup, records, opts...)
}

func paulistaLookup() *fakeLookup {
	return &fakeLookup{addresses: map[string]*models.Address{
		"01310100": {PostalCode: "01310-100", Street: "Avenida Paulista", City: "São Paulo", StateCode: "SP"},
	}}
}

func fillValidDraft(t *testing.T, m *Manager, sessionID id.SessionID) {
	t.Helper()
	ctx := context.Background()
	_, err := m.Edit(ctx, sessionID, FieldName, "Maria Souza")
	require.NoError(t, err)
	_, err = m.Edit(ctx, sessionID, FieldNumber, "1000")
	require.NoError(t, err)
	_, err = m.Edit(ctx, sessionID, FieldPostalCode, "01310100")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snap, err := m.Snapshot(ctx, sessionID)
		return err == nil && snap.State == StateLookupResolved
	}, time.Second, 5*time.Millisecond)
}

func TestManagerLookupRunsAsynchronously(t *testing.T) {
	lookup := paulistaLookup()
	m := newTestManager(t, lookup)
	ctx := context.Background()

	sessionID, snap := m.Start(ctx)
	assert.Equal(t, StateEmpty, snap.State)

	snap, err := m.Edit(ctx, sessionID, FieldPostalCode, "01310-100")
	require.NoError(t, err)
	assert.Equal(t, StateLookupPending, snap.State)

	require.Eventually(t, func() bool {
		snap, err := m.Snapshot(ctx, sessionID)
		return err == nil && snap.State == StateLookupResolved
	}, time.Second, 5*time.Millisecond)

	snap, err = m.Snapshot(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, "Avenida Paulista", snap.Values[FieldStreet])
	assert.True(t, snap.Locked)
}

func TestManagerLookupFailureLeavesManualEntry(t *testing.T) {
	m := newTestManager(t, &fakeLookup{err: sentinel.ErrUnavailable})
	ctx := context.Background()

	sessionID, _ := m.Start(ctx)
	_, err := m.Edit(ctx, sessionID, FieldPostalCode, "01310-100")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snap, err := m.Snapshot(ctx, sessionID)
		return err == nil && snap.State == StateLookupFailed
	}, time.Second, 5*time.Millisecond)

	_, err = m.Edit(ctx, sessionID, FieldStreet, "Rua Manual")
	require.NoError(t, err)
}

func TestManagerStaleLookupDiscarded(t *testing.T) {
	lookup := paulistaLookup()
	lookup.release = make(chan struct{})
	m := newTestManager(t, lookup)
	ctx := context.Background()

	sessionID, _ := m.Start(ctx)
	_, err := m.Edit(ctx, sessionID, FieldPostalCode, "01310-100")
	require.NoError(t, err)

	// Supersede the pending lookup before its response arrives.
	_, err = m.Edit(ctx, sessionID, FieldPostalCode, "20040-020")
	require.NoError(t, err)
	close(lookup.release)

	require.Eventually(t, func() bool {
		snap, err := m.Snapshot(ctx, sessionID)
		return err == nil && snap.State == StateLookupFailed
	}, time.Second, 5*time.Millisecond)

	// The first code's address never landed.
	snap, err := m.Snapshot(ctx, sessionID)
	require.NoError(t, err)
	assert.Empty(t, snap.Values[FieldStreet])
	assert.Equal(t, "20040-020", snap.Values[FieldPostalCode])
}

func TestManagerSubmitCreatesRecordAndConsumesSession(t *testing.T) {
	m := newTestManager(t, paulistaLookup())
	ctx := context.Background()

	sessionID, _ := m.Start(ctx)
	fillValidDraft(t, m, sessionID)

	record, err := m.Submit(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", record.Name)
	assert.Equal(t, "01310-100", record.PostalCode)

	// Second submit observes a consumed session.
	_, err = m.Submit(ctx, sessionID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestManagerSubmitIncompleteDraftRejected(t *testing.T) {
	m := newTestManager(t, paulistaLookup())
	ctx := context.Background()

	sessionID, _ := m.Start(ctx)
	_, err := m.Submit(ctx, sessionID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	// The session survives the failed submit.
	_, err = m.Snapshot(ctx, sessionID)
	require.NoError(t, err)
}

func TestManagerAbandon(t *testing.T) {
	m := newTestManager(t, paulistaLookup())
	ctx := context.Background()

	sessionID, _ := m.Start(ctx)
	require.NoError(t, m.Abandon(ctx, sessionID))

	_, err := m.Snapshot(ctx, sessionID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestManagerUnknownSessionIsNotFound(t *testing.T) {
	m := newTestManager(t, paulistaLookup())

	_, err := m.Snapshot(context.Background(), id.NewSessionID())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestManagerSessionsExpire(t *testing.T) {
	current := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	m := newTestManager(t, paulistaLookup(),
		WithSessionTTL(10*time.Minute),
		WithClock(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return current
		}),
	)
	ctx := context.Background()

	sessionID, _ := m.Start(ctx)
	_, err := m.Snapshot(ctx, sessionID)
	require.NoError(t, err)

	mu.Lock()
	current = current.Add(11 * time.Minute)
	mu.Unlock()

	_, err = m.Snapshot(ctx, sessionID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestManagerPurgeExpired(t *testing.T) {
	current := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	m := newTestManager(t, paulistaLookup(),
		WithSessionTTL(10*time.Minute),
		WithClock(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return current
		}),
	)
	ctx := context.Background()

	m.Start(ctx)
	m.Start(ctx)
	assert.Zero(t, m.PurgeExpired())

	mu.Lock()
	current = current.Add(time.Hour)
	mu.Unlock()
	assert.Equal(t, 2, m.PurgeExpired())
}
