package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret   string
	Enabled     bool
	PublicPaths []string
}

// Claims represents JWT claims. Graphs lists the registered graph names the
// token may read; an empty list grants every graph.
type Claims struct {
	UserID string   `json:"user_id"`
	Graphs []string `json:"graphs,omitempty"`
	jwt.RegisteredClaims
}

// contextKey is a custom type for context keys
type contextKey string

const (
	// UserContextKey is the key for user claims in context
	UserContextKey contextKey = "user"
)

// AuthMiddleware creates a JWT authentication middleware
func AuthMiddleware(config AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			for _, path := range config.PublicPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, "Missing authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeJSONError(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			token, err := jwt.ParseWithClaims(parts[1], &Claims{}, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(config.JWTSecret), nil
			})
			if err != nil {
				writeJSONError(w, fmt.Sprintf("Invalid token: %v", err), http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(*Claims)
			if !ok || !token.Valid {
				writeJSONError(w, "Invalid token claims", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaimsFromContext retrieves user claims from request context
func GetClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*Claims)
	return claims, ok
}

// CanReadGraph reports whether the claims grant access to the named graph.
func (c *Claims) CanReadGraph(graph string) bool {
	if len(c.Graphs) == 0 {
		return true
	}
	for _, g := range c.Graphs {
		if g == graph {
			return true
		}
	}
	return false
}

// GenerateToken creates a JWT token for testing/development
func GenerateToken(userID string, graphs []string, secret string) (string, error) {
	claims := &Claims{
		UserID: userID,
		Graphs: graphs,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "kgraph",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// writeJSONError writes a JSON error response
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	fmt.Fprintf(w, `{"error": %q, "status": %d}`, message, statusCode)
}
