package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"go-storefront/services"
	"go-storefront/utils"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// Auth verifies bearer credentials and attaches the caller's identity to the
// request context.
type Auth struct {
	tokens     *utils.TokenIssuer
	serviceKey string
}

// NewAuth creates an Auth. An empty serviceKey disables service callers.
func NewAuth(tokens *utils.TokenIssuer, serviceKey string) *Auth {
	return &Auth{tokens: tokens, serviceKey: serviceKey}
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *services.Identity) context.Context {
	return context.WithValue(ctx, UserContextKey, id)
}

// IdentityFrom returns the caller attached by Auth, or nil.
func IdentityFrom(ctx context.Context) *services.Identity {
	id, _ := ctx.Value(UserContextKey).(*services.Identity)
	return id
}

func bearerToken(r *http.Request) (string, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", "Authorization header missing"
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "Invalid Authorization header format"
	}
	return parts[1], ""
}

func (a *Auth) isServiceKey(token string) bool {
	return a.serviceKey != "" && subtle.ConstantTimeCompare([]byte(token), []byte(a.serviceKey)) == 1
}

// Identify resolves a bearer token to an identity. Verification tokens are
// not accepted as sessions.
func (a *Auth) Identify(token string, allowService bool) *services.Identity {
	if allowService && a.isServiceKey(token) {
		return &services.Identity{Service: true}
	}
	claims, err := a.tokens.Parse(token)
	if err != nil || claims.Purpose != utils.PurposeSession || claims.UserID == "" {
		return nil
	}
	return &services.Identity{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}
}

// Required rejects requests without a valid session token
func (a *Auth) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, problem := bearerToken(r)
		if problem != "" {
			http.Error(w, problem, http.StatusUnauthorized)
			return
		}
		id := a.Identify(token, false)
		if id == nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// Optional attaches the identity when a valid token is present and lets
// anonymous requests through.
func (a *Auth) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, problem := bearerToken(r); problem == "" {
			if id := a.Identify(token, false); id != nil {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Admin ensures that the user has admin privileges. It must run after Required.
func (a *Auth) Admin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IdentityFrom(r.Context()).IsAdmin() {
			http.Error(w, "Forbidden: Admins only", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Privileged accepts the service key or a user session. Handlers must still
// check that a user caller acts only on their own rows.
func (a *Auth) Privileged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, problem := bearerToken(r)
		if problem != "" {
			http.Error(w, problem, http.StatusUnauthorized)
			return
		}
		id := a.Identify(token, true)
		if id == nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}
