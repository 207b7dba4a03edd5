package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	com "github.com/citizenwallet/custody/internal/common"
)

type Auth struct {
	apiKey string
}

// New returns an Auth that lets everything through when apiKey is empty.
func New(apiKey string) *Auth {
	return &Auth{apiKey: apiKey}
}

// AuthMiddleware is a middleware that checks for a valid API key
func (a *Auth) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.apiKey == "" || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		apiKey := r.Header.Get("Authorization")
		apiKey = strings.TrimPrefix(apiKey, "Bearer ")
		if apiKey == "" {
			com.Error(w, http.StatusUnauthorized, "missing api key")
			return
		}

		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(a.apiKey)) != 1 {
			com.Error(w, http.StatusUnauthorized, "invalid api key")
			return
		}

		next.ServeHTTP(w, r)
	})
}
