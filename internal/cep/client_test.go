package cep

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cepbook/internal/sentinel"
	dErrors "cepbook/pkg/domain-errors"
)

const paulistaJSON = `{
	"cep": "01310-100",
	"logradouro": "Avenida Paulista",
	"complemento": "de 612 a 1510 - lado par",
	"localidade": "São Paulo",
	"uf": "SP"
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second)
}

func TestLookupSuccess(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(paulistaJSON))
	})

	address, err := client.Lookup(context.Background(), "01310-100")
	require.NoError(t, err)
	assert.Equal(t, "/ws/01310100/json/", gotPath)
	assert.Equal(t, "01310-100", address.PostalCode)
	assert.Equal(t, "Avenida Paulista", address.Street)
	assert.Equal(t, "São Paulo", address.City)
	assert.Equal(t, "SP", address.StateCode)
	assert.Equal(t, "de 612 a 1510 - lado par", address.Complement)
}

func TestLookupAcceptsBareDigits(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ws/01310100/json/", r.URL.Path)
		_, _ = w.Write([]byte(paulistaJSON))
	})

	_, err := client.Lookup(context.Background(), "01310100")
	require.NoError(t, err)
}

func TestLookupRejectsShortCode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("provider must not be called for an incomplete code")
	})

	_, err := client.Lookup(context.Background(), "0131010")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestLookupNoMatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"erro": true}`))
	})

	_, err := client.Lookup(context.Background(), "99999-999")
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	assert.NotErrorIs(t, err, sentinel.ErrUnavailable)
}

func TestLookupProviderErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Lookup(context.Background(), "01310-100")
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}

func TestLookupNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on
	client := NewClient(srv.URL, time.Second)

	_, err := client.Lookup(context.Background(), "01310-100")
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}

func TestLookupGarbageBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	})

	_, err := client.Lookup(context.Background(), "01310-100")
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}

func TestLookupCollapsesConcurrentRequests(t *testing.T) {
	var calls atomic.Int64
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		_, _ = w.Write([]byte(paulistaJSON))
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Lookup(context.Background(), "01310-100")
			assert.NoError(t, err)
		}()
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()
	assert.EqualValues(t, 1, calls.Load())
}

func TestHealthReachableProvider(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	assert.NoError(t, client.Health(context.Background()))
}

func TestHealthUnreachableProvider(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewClient(srv.URL, time.Second)

	require.Error(t, client.Health(context.Background()))
}
