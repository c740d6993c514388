package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisc "github.com/Kent0710/classroom-announcement-app/internal/redis"
)

func TestJWTMiddleware_Success(t *testing.T) {
	_, _, _, rdb := setupAuthTest(t)

	token, claims, err := GenerateToken("user-1", "alice", testSecret, time.Hour)
	require.NoError(t, err)
	require.NoError(t, redisc.SaveSession(rdb, claims.ID, "user-1", time.Hour))

	var gotUserID, gotUsername, gotSessionID string
	handler := JWTMiddleware(testSecret, rdb)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = r.Context().Value(UserIDKey).(string)
		gotUsername = r.Context().Value(UsernameKey).(string)
		gotSessionID = r.Context().Value(SessionIDKey).(string)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", gotUserID)
	assert.Equal(t, "alice", gotUsername)
	assert.Equal(t, claims.ID, gotSessionID)
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	_, _, _, rdb := setupAuthTest(t)

	handler := JWTMiddleware(testSecret, rdb)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddleware_BadScheme(t *testing.T) {
	_, _, _, rdb := setupAuthTest(t)

	handler := JWTMiddleware(testSecret, rdb)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	req.Header.Set("Authorization", "Basic abc123")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddleware_RevokedSession(t *testing.T) {
	_, _, _, rdb := setupAuthTest(t)

	// Valid token but no session saved, as after a logout.
	token, _, err := GenerateToken("user-1", "alice", testSecret, time.Hour)
	require.NoError(t, err)

	handler := JWTMiddleware(testSecret, rdb)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "session expired")
}

func TestLogoutRevokesToken(t *testing.T) {
	_, _, _, rdb := setupAuthTest(t)

	token, claims, err := GenerateToken("user-1", "alice", testSecret, time.Hour)
	require.NoError(t, err)
	require.NoError(t, redisc.SaveSession(rdb, claims.ID, "user-1", time.Hour))

	logout := JWTMiddleware(testSecret, rdb)(LogoutHandler(rdb))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	logout.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	// The same token no longer authenticates.
	protected := JWTMiddleware(testSecret, rdb)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req = httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
