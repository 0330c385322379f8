package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/cloo-solutions/shopmate/internal/api"
	"github.com/cloo-solutions/shopmate/internal/domain"
)

type contextKey string

const authenticatedKey contextKey = "authenticated"

// APIKeyHeader is accepted as an alternative to a bearer token.
const APIKeyHeader = "X-API-Key"

type AuthValidator interface {
	ValidateAPIKey(ctx context.Context, token string) error
}

// StaticKeyValidator accepts exactly one configured key.
type StaticKeyValidator struct {
	key []byte
}

func NewStaticKeyValidator(key string) *StaticKeyValidator {
	return &StaticKeyValidator{key: []byte(key)}
}

func (v *StaticKeyValidator) ValidateAPIKey(_ context.Context, token string) error {
	if len(v.key) == 0 || subtle.ConstantTimeCompare(v.key, []byte(token)) != 1 {
		return domain.ErrInvalidAPIKey
	}
	return nil
}

func APIKeyAuth(validator AuthValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(APIKeyHeader)
			if token == "" {
				authHeader := r.Header.Get("Authorization")
				if authHeader == "" {
					api.Error(w, http.StatusUnauthorized, "missing authorization header")
					return
				}
				if !strings.HasPrefix(authHeader, "Bearer ") {
					api.Error(w, http.StatusUnauthorized, "invalid authorization format")
					return
				}
				token = strings.TrimPrefix(authHeader, "Bearer ")
			}

			if err := validator.ValidateAPIKey(r.Context(), token); err != nil {
				api.Error(w, http.StatusUnauthorized, "invalid api key")
				return
			}

			ctx := context.WithValue(r.Context(), authenticatedKey, true)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsAuthenticated reports whether APIKeyAuth accepted the request.
func IsAuthenticated(ctx context.Context) bool {
	ok, _ := ctx.Value(authenticatedKey).(bool)
	return ok
}
