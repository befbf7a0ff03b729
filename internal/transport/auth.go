package transport

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type operatorKey struct{}

// OperatorResolver resolves an operator name from a bearer token.
type OperatorResolver interface {
	ResolveOperator(ctx context.Context, token string) (string, error)
}

// OperatorFromContext returns the operator from context, if present.
func OperatorFromContext(ctx context.Context) (string, bool) {
	operator, ok := ctx.Value(operatorKey{}).(string)
	return operator, ok
}

// StaticTokenResolver accepts a single configured token.
type StaticTokenResolver struct {
	operator string
	hash     [sha256.Size]byte
}

// NewStaticTokenResolver returns a resolver mapping token to operator.
func NewStaticTokenResolver(token, operator string) *StaticTokenResolver {
	return &StaticTokenResolver{operator: operator, hash: sha256.Sum256([]byte(token))}
}

func (r *StaticTokenResolver) ResolveOperator(_ context.Context, token string) (string, error) {
	sum := sha256.Sum256([]byte(token))
	if token == "" || subtle.ConstantTimeCompare(sum[:], r.hash[:]) != 1 {
		return "", ErrUnauthorized
	}
	return r.operator, nil
}

// AuthMiddleware enforces bearer token authentication.
func AuthMiddleware(resolver OperatorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			operator, err := resolver.ResolveOperator(r.Context(), token)
			if err != nil || operator == "" {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), operatorKey{}, operator)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
