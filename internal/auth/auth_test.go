package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/auth"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newManager(t *testing.T) *auth.Manager {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	return auth.NewManager(auth.Config{
		JWTSecret:     "test-secret",
		JWTExpiration: 5,
		APIKeys:       []string{"key-1"},
		AllowedUsers:  []auth.User{{Username: "operator", PasswordHash: string(hash), Role: "operator"}},
	})
}

func TestAuthenticateUser(t *testing.T) {
	am := newManager(t)

	role, err := am.AuthenticateUser("operator", "secret")
	require.NoError(t, err)
	require.Equal(t, "operator", role)

	_, err = am.AuthenticateUser("operator", "wrong")
	require.ErrorIs(t, err, auth.ErrInvalidPassword)

	_, err = am.AuthenticateUser("ghost", "secret")
	require.ErrorIs(t, err, auth.ErrUnknownUser)
}

func TestJWTRoundTrip(t *testing.T) {
	am := newManager(t)

	token, err := am.GenerateJWT("operator", "operator")
	require.NoError(t, err)

	claims, err := am.ValidateJWT(token)
	require.NoError(t, err)
	require.Equal(t, "operator", claims.Username)

	other := auth.NewManager(auth.Config{JWTSecret: "different"})
	_, err = other.ValidateJWT(token)
	require.Error(t, err)

	_, err = auth.NewManager(auth.Config{}).GenerateJWT("a", "b")
	require.ErrorIs(t, err, auth.ErrNoSecret)
}

func TestAuthenticateMiddleware(t *testing.T) {
	am := newManager(t)
	token, err := am.GenerateJWT("operator", "operator")
	require.NoError(t, err)

	var sawClaims bool
	h := am.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawClaims = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name    string
		headers map[string]string
		status  int
		claims  bool
	}{
		{"none", nil, http.StatusUnauthorized, false},
		{"api key", map[string]string{"X-API-Key": "key-1"}, http.StatusNoContent, false},
		{"bad api key", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized, false},
		{"bearer", map[string]string{"Authorization": "Bearer " + token}, http.StatusNoContent, true},
		{"bad bearer", map[string]string{"Authorization": "Bearer abc"}, http.StatusUnauthorized, false},
		{"basic", map[string]string{"Authorization": "Basic abc"}, http.StatusUnauthorized, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sawClaims = false
			req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, tc.claims, sawClaims)
		})
	}
}

func TestAPIKeyMiddleware(t *testing.T) {
	am := newManager(t)
	h := am.APIKeyMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodPost, "/api/replay", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req.Header.Set("X-API-Key", "key-1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
