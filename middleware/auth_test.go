package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/models"
	"go-storefront/services"
	"go-storefront/utils"
)

func newTestAuth() (*Auth, *utils.TokenIssuer) {
	tokens := utils.NewTokenIssuer("secret", time.Hour)
	return NewAuth(tokens, "service-key"), tokens
}

// echoIdentity answers 200 with the caller's user id, or "anonymous".
func echoIdentity() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := IdentityFrom(r.Context())
		switch {
		case id == nil:
			w.Write([]byte("anonymous"))
		case id.Service:
			w.Write([]byte("service"))
		default:
			w.Write([]byte(id.UserID))
		}
	})
}

func serve(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRequired(t *testing.T) {
	auth, tokens := newTestAuth()
	session, err := tokens.Issue("u1", "u1@example.com", models.RoleCustomer)
	require.NoError(t, err)
	verify, err := tokens.IssueVerification("u1", "u1@example.com")
	require.NoError(t, err)
	h := auth.Required(echoIdentity())

	rr := serve(h, "Bearer "+session)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "u1", rr.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Token "+session).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer junk").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer "+verify).Code, "verification tokens are not sessions")
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer service-key").Code, "service key only opens privileged routes")
}

func TestOptional(t *testing.T) {
	auth, tokens := newTestAuth()
	session, err := tokens.Issue("u1", "", models.RoleCustomer)
	require.NoError(t, err)
	h := auth.Optional(echoIdentity())

	assert.Equal(t, "u1", serve(h, "Bearer "+session).Body.String())
	assert.Equal(t, "anonymous", serve(h, "").Body.String())
	assert.Equal(t, "anonymous", serve(h, "Bearer junk").Body.String())
}

func TestAdmin(t *testing.T) {
	auth, tokens := newTestAuth()
	customer, err := tokens.Issue("u1", "", models.RoleCustomer)
	require.NoError(t, err)
	admin, err := tokens.Issue("a1", "", models.RoleAdmin)
	require.NoError(t, err)
	h := auth.Required(auth.Admin(echoIdentity()))

	assert.Equal(t, http.StatusForbidden, serve(h, "Bearer "+customer).Code)
	assert.Equal(t, http.StatusOK, serve(h, "Bearer "+admin).Code)
}

func TestPrivileged(t *testing.T) {
	auth, tokens := newTestAuth()
	session, err := tokens.Issue("u1", "", models.RoleCustomer)
	require.NoError(t, err)
	h := auth.Privileged(echoIdentity())

	assert.Equal(t, "service", serve(h, "Bearer service-key").Body.String())
	assert.Equal(t, "u1", serve(h, "Bearer "+session).Body.String())
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer wrong-key").Code)
}

func TestServiceKeyDisabledWhenEmpty(t *testing.T) {
	auth := NewAuth(utils.NewTokenIssuer("secret", time.Hour), "")
	assert.Nil(t, auth.Identify("", true))
}

func TestIdentityFromEmptyContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, IdentityFrom(req.Context()))

	ctx := WithIdentity(req.Context(), &services.Identity{UserID: "u1"})
	assert.Equal(t, "u1", IdentityFrom(ctx).UserID)
}
