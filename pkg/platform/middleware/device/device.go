// Package device tags each request with a coarse client platform label derived
// from the User-Agent, so logs can separate the mobile apps from other callers.
package device

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"cepbook/pkg/requestcontext"
)

// Platform reduces a User-Agent string to a coarse platform label:
// "ios", "android", "mobile" (other mobile OS), "desktop", or "unknown".
func Platform(userAgentString string) string {
	if userAgentString == "" {
		return "unknown"
	}

	ua := useragent.New(userAgentString)
	os := strings.ToLower(ua.OS())

	switch {
	case strings.Contains(os, "iphone"), strings.Contains(os, "ios"), strings.Contains(os, "cpu os"):
		return "ios"
	case strings.Contains(os, "android"):
		return "android"
	case ua.Mobile():
		return "mobile"
	default:
		return "desktop"
	}
}

// Middleware injects the platform label into the request context.
// It should be registered after the metadata middleware (which extracts User-Agent).
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if ua := requestcontext.UserAgent(ctx); ua != "" {
			ctx = requestcontext.WithDevicePlatform(ctx, Platform(ua))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
