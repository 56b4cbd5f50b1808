// Package search debounces name queries against the record service so a
// burst of keystrokes costs one lookup.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"cepbook/internal/address/models"
)

// DefaultDelay is how long the query must be stable before a search runs.
const DefaultDelay = 500 * time.Millisecond

// Results is delivered to the subscriber after each settled query.
type Results struct {
	Query   string
	Records []models.AddressRecord
	// HasSearched distinguishes "no matches" from "nothing searched yet".
	// Clearing the query resets it so an empty query never shows a
	// no-results message.
	HasSearched bool
}

// RecordSearcher is the slice of the record service the debouncer needs.
type RecordSearcher interface {
	SearchRecords(ctx context.Context, query string) ([]models.AddressRecord, error)
}

// Searcher debounces SetQuery calls. Only the response to the newest settled
// query is delivered; results that arrive for a superseded query are dropped.
type Searcher struct {
	service RecordSearcher
	deliver func(Results)
	delay   time.Duration

	mu         sync.Mutex
	generation uint64
	timer      *time.Timer
	closed     bool
}

type Option func(*Searcher)

// WithDelay overrides the settle delay, used in tests.
func WithDelay(d time.Duration) Option {
	return func(s *Searcher) {
		s.delay = d
	}
}

// New builds a Searcher that delivers settled results to deliver. The
// callback runs on the timer goroutine; subscribers serialize their own
// state.
func New(service RecordSearcher, deliver func(Results), opts ...Option) *Searcher {
	s := &Searcher{
		service: service,
		deliver: deliver,
		delay:   DefaultDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetQuery registers the latest keystroke state. Each call restarts the
// settle timer. An empty query cancels any pending search and immediately
// delivers a reset result without touching the store.
func (s *Searcher) SetQuery(ctx context.Context, query string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.generation++
	gen := s.generation
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	if strings.TrimSpace(query) == "" {
		s.mu.Unlock()
		s.deliver(Results{Query: query})
		return
	}

	s.timer = time.AfterFunc(s.delay, func() {
		s.run(ctx, gen, query)
	})
	s.mu.Unlock()
}

func (s *Searcher) run(ctx context.Context, gen uint64, query string) {
	if !s.current(gen) {
		return
	}

	// Read failures degrade to an empty result inside the service, so err
	// only tracks context cancellation here.
	records, err := s.service.SearchRecords(ctx, query)
	if err != nil {
		return
	}

	// A newer keystroke may have landed while the search ran.
	if !s.current(gen) {
		return
	}
	s.deliver(Results{Query: query, Records: records, HasSearched: true})
}

func (s *Searcher) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && gen == s.generation
}

// Close cancels any pending search. Subsequent SetQuery calls are no-ops.
func (s *Searcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
