package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func protected() http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub, err := GetSubjectFromContext(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("X-Subject", sub)
		w.WriteHeader(http.StatusOK)
	})
	return Authenticate(testSecret)(Authorize(RoleOrganizer, RoleAdmin)(ok))
}

func call(t *testing.T, h http.Handler, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/tournaments", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthorizeAllowsOrganizer(t *testing.T) {
	token, err := IssueToken(testSecret, "referee-1", RoleOrganizer, time.Hour)
	require.NoError(t, err)

	rec := call(t, protected(), "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "referee-1", rec.Header().Get("X-Subject"))
}

func TestAuthorizeRejectsViewer(t *testing.T) {
	token, err := IssueToken(testSecret, "fan", RoleViewer, time.Hour)
	require.NoError(t, err)

	rec := call(t, protected(), "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	expired, err := IssueToken(testSecret, "late", RoleAdmin, -time.Minute)
	require.NoError(t, err)
	foreign, err := IssueToken("another-secret", "spy", RoleAdmin, time.Hour)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x", "role": "admin"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"expired":        "Bearer " + expired,
		"wrong secret":   "Bearer " + foreign,
		"unsigned":       "Bearer " + none,
		"garbage":        "Bearer not-a-jwt",
		"empty token":    "Bearer ",
	}
	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			rec := call(t, protected(), header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestIssueTokenRejectsUnknownRole(t *testing.T) {
	_, err := IssueToken(testSecret, "x", Role("superuser"), time.Hour)
	assert.Error(t, err)
}
