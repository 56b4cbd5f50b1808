package metadata

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"

	"cepbook/pkg/requestcontext"
)

func capture(m *Middleware, r *http.Request) (ip, ua string) {
	h := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ip = requestcontext.ClientIP(req.Context())
		ua = requestcontext.UserAgent(req.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), r)
	return ip, ua
}

func TestHandler_ExtractsRemoteAddrAndUserAgent(t *testing.T) {
	m := NewMiddleware(nil)
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.9:4321"
	r.Header.Set("User-Agent", "cepbook-app/1.0 (Android 14)")

	ip, ua := capture(m, r)
	assert.Equal(t, "203.0.113.9", ip)
	assert.Equal(t, "cepbook-app/1.0 (Android 14)", ua)
}

func TestHandler_IgnoresXFFFromUntrustedProxy(t *testing.T) {
	m := NewMiddleware(nil)
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.9:4321"
	r.Header.Set("X-Forwarded-For", "198.51.100.1")

	ip, _ := capture(m, r)
	assert.Equal(t, "203.0.113.9", ip)
}

func TestHandler_TrustsXFFFromTrustedProxy(t *testing.T) {
	m := NewMiddleware(&Config{
		TrustedProxies: []netip.Prefix{netip.MustParsePrefix("203.0.113.0/24")},
	})
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.9:4321"
	r.Header.Set("X-Forwarded-For", "198.51.100.1, 203.0.113.9")

	ip, _ := capture(m, r)
	assert.Equal(t, "198.51.100.1", ip)
}

func TestParseRemoteAddr_IPv6(t *testing.T) {
	assert.Equal(t, "::1", parseRemoteAddr("[::1]:8080"))
}
