package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"linkbio/pkg/store"

	"github.com/golang-jwt/jwt/v5"
)

type AuthConfig struct {
	Secret   string
	Audience string
}

// AuthMiddleware validates bearer tokens issued to wallet holders. The
// token's sub claim is the wallet address and becomes the caller
// identity for every store operation downstream.
type AuthMiddleware struct {
	secret   []byte
	audience string
}

type contextKey string

const callerKey contextKey = "caller"

func NewAuthMiddleware(config AuthConfig) (*AuthMiddleware, error) {
	if config.Secret == "" {
		return nil, errors.New("auth middleware requires a signing secret")
	}
	return &AuthMiddleware{
		secret:   []byte(config.Secret),
		audience: config.Audience,
	}, nil
}

func (m *AuthMiddleware) Authenticate() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := m.parseAndValidateToken(tokenString)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			sub, err := claims.GetSubject()
			if err != nil || sub == "" {
				http.Error(w, "token missing subject", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), callerKey, store.Principal(sub))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (m *AuthMiddleware) parseAndValidateToken(tokenString string) (jwt.Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return token.Claims, nil
}

// IssueToken mints a token for the given wallet address. Used by tests
// and local tooling; production tokens come from the wallet connector.
func (m *AuthMiddleware) IssueToken(address store.Principal) (string, error) {
	claims := jwt.MapClaims{"sub": string(address)}
	if m.audience != "" {
		claims["aud"] = m.audience
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// GetCallerFromContext returns the authenticated caller identity, or
// the empty principal when the request was not authenticated.
func GetCallerFromContext(ctx context.Context) store.Principal {
	if caller, ok := ctx.Value(callerKey).(store.Principal); ok {
		return caller
	}
	return ""
}
