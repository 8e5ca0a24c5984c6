package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/pawshop-api/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth map[string]*auth.Claims

func (s stubAuth) Authenticate(_ context.Context, raw string) (*auth.Claims, error) {
	if raw == "revoked" {
		return nil, auth.ErrTokenRevoked
	}
	claims, ok := s[raw]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return claims, nil
}

type stubAdmins struct {
	ids map[string]bool
	err error
}

func (s stubAdmins) IsAdmin(_ context.Context, userID string) (bool, error) {
	return s.ids[userID], s.err
}

func claims(sub, role string) *auth.Claims {
	c := &auth.Claims{Role: role}
	c.Subject = sub
	return c
}

var tokens = stubAuth{
	"user-token":  claims("u1", auth.RoleUser),
	"admin-token": claims("a1", auth.RoleUser),
	"guest-token": claims("g1", auth.RoleGuest),
}

func serve(h gin.HandlerFunc, header, value string) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/x", h, func(c *gin.Context) {
		key, _ := CartKey(c)
		c.JSON(http.StatusOK, gin.H{"cart": key})
	})
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireSession(t *testing.T) {
	w := serve(RequireSession(tokens), "Authorization", "Bearer guest-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"cart":"guest:g1"}`, w.Body.String())

	w = serve(RequireSession(tokens), "Authorization", "user-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"cart":"user:u1"}`, w.Body.String())

	w = serve(RequireSession(tokens), "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(RequireSession(tokens), "Authorization", "Bearer revoked")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "signed out")
}

func TestRequireUserRejectsGuests(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, serve(RequireUser(tokens), "Authorization", "Bearer guest-token").Code)
	assert.Equal(t, http.StatusOK, serve(RequireUser(tokens), "Authorization", "Bearer user-token").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(RequireUser(tokens), "Authorization", "Bearer bogus").Code)
}

func TestRequireAdmin(t *testing.T) {
	admins := stubAdmins{ids: map[string]bool{"a1": true}}
	h := RequireAdmin(tokens, admins, "s3cret", zap.NewNop())

	assert.Equal(t, http.StatusOK, serve(h, "X-API-KEY", "s3cret").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "X-API-KEY", "wrong").Code)
	assert.Equal(t, http.StatusOK, serve(h, "Authorization", "Bearer admin-token").Code)
	assert.Equal(t, http.StatusForbidden, serve(h, "Authorization", "Bearer user-token").Code)
	assert.Equal(t, http.StatusForbidden, serve(h, "Authorization", "Bearer guest-token").Code)

	failing := RequireAdmin(tokens, stubAdmins{err: errors.New("db down")}, "", zap.NewNop())
	assert.Equal(t, http.StatusBadGateway, serve(failing, "Authorization", "Bearer admin-token").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(failing, "X-API-KEY", "").Code, "an empty configured key never matches")
}

func TestValidateAPIKey(t *testing.T) {
	assert.Equal(t, http.StatusOK, serve(ValidateAPIKey("k"), "X-API-KEY", "k").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(ValidateAPIKey("k"), "X-API-KEY", "nope").Code)
}

func TestRateLimiter(t *testing.T) {
	defer goleak.VerifyNone(t)

	rl := NewIPRateLimiter(0.001, 2)
	defer rl.Close()

	r := gin.New()
	r.GET("/track", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/track", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/track", nil)
	req.RemoteAddr = "198.51.100.1:4000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code, "buckets are per IP")
}

func TestRateLimiterSweep(t *testing.T) {
	rl := NewIPRateLimiter(1, 1)
	defer rl.Close()
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.limiter("203.0.113.7")
	now = now.Add(4 * time.Minute)
	rl.limiter("198.51.100.1")
	rl.sweep()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	require.Len(t, rl.visitors, 1)
	_, ok := rl.visitors["198.51.100.1"]
	assert.True(t, ok)
}
