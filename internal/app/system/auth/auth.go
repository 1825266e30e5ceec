// Package auth guards the service's trigger endpoints with a shared
// service key.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/dalemusser/rantrio/internal/app/system/httpjson"
	"go.uber.org/zap"
)

// KeyHeader is an alternative to the Authorization header for callers that
// send the key as-is.
const KeyHeader = "apikey"

// RequireServiceKey rejects requests that do not carry key, either as
// "Authorization: Bearer <key>" or in the apikey header. An empty key
// disables the check.
func RequireServiceKey(key string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		want := []byte(key)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := presentedKey(r)
			if got == "" {
				httpjson.Error(w, http.StatusUnauthorized, "unauthorized", "missing service key")
				return
			}
			if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				logger.Warn("rejected request with invalid service key",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr))
				httpjson.Error(w, http.StatusUnauthorized, "unauthorized", "invalid service key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func presentedKey(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.Header.Get(KeyHeader))
}
