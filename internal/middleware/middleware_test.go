package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskr/domain"
	"github.com/fastygo/taskr/internal/infrastructure/token"
	"github.com/fastygo/taskr/pkg/httpcontext"
)

type stubResolver struct {
	sessions map[string]*domain.Session
	err      error
}

func (s stubResolver) CurrentSession(_ context.Context, id string) (*domain.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	if session, ok := s.sessions[id]; ok {
		return session, nil
	}
	return nil, domain.ErrNotAuthenticated
}

func newRequestCtx(authorization string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	return ctx
}

func TestSessionAuth(t *testing.T) {
	tokens := token.NewService("secret", "taskr")
	now := time.Now()
	session := &domain.Session{ID: "s1", UserID: "u1", Role: domain.RoleUser, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	signed, err := tokens.Issue(session)
	require.NoError(t, err)

	var seen *domain.Session
	next := func(ctx *fasthttp.RequestCtx) { seen = httpcontext.Session(ctx) }

	t.Run("valid token and live session", func(t *testing.T) {
		seen = nil
		handler := SessionAuth(tokens, stubResolver{sessions: map[string]*domain.Session{"s1": session}}, nil)(next)
		ctx := newRequestCtx("Bearer " + signed)
		handler(ctx)
		require.NotNil(t, seen)
		assert.Equal(t, "u1", seen.UserID)
	})

	t.Run("missing token", func(t *testing.T) {
		seen = nil
		handler := SessionAuth(tokens, stubResolver{}, nil)(next)
		ctx := newRequestCtx("")
		handler(ctx)
		assert.Nil(t, seen)
		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
		assert.Equal(t, "You need to login first.", body["error"])
	})

	t.Run("session ended", func(t *testing.T) {
		seen = nil
		handler := SessionAuth(tokens, stubResolver{sessions: map[string]*domain.Session{}}, nil)(next)
		ctx := newRequestCtx("Bearer " + signed)
		handler(ctx)
		assert.Nil(t, seen)
		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
	})

	t.Run("session store down", func(t *testing.T) {
		handler := SessionAuth(tokens, stubResolver{err: errors.New("redis down")}, nil)(next)
		ctx := newRequestCtx("Bearer " + signed)
		handler(ctx)
		assert.Equal(t, fasthttp.StatusInternalServerError, ctx.Response.StatusCode())
	})
}

func TestRequireCapability(t *testing.T) {
	called := false
	handler := RequireCapability(domain.CapReadAudit)(func(*fasthttp.RequestCtx) { called = true })

	ctx := newRequestCtx("")
	handler(ctx)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())

	ctx = newRequestCtx("")
	httpcontext.SetSession(ctx, &domain.Session{UserID: "u1", Role: domain.RoleUser})
	handler(ctx)
	assert.Equal(t, fasthttp.StatusForbidden, ctx.Response.StatusCode())
	assert.False(t, called)

	ctx = newRequestCtx("")
	httpcontext.SetSession(ctx, &domain.Session{UserID: "admin", Role: domain.RoleAdmin})
	handler(ctx)
	assert.True(t, called)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(60, 2)
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "limits are per client")

	calls := 0
	handler := rl.Wrap(func(*fasthttp.RequestCtx) { calls++ })
	ctx := newRequestCtx("")
	handler(ctx)
	handler(ctx)
	handler(ctx)
	assert.Equal(t, 2, calls)
	assert.Equal(t, fasthttp.StatusTooManyRequests, ctx.Response.StatusCode())
}

func requestFrom(remote, forwarded string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	if forwarded != "" {
		req.Header.Set("X-Forwarded-For", forwarded)
	}
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, &net.TCPAddr{IP: net.ParseIP(remote), Port: 40000}, nil)
	return ctx
}

func TestRateLimiter_IgnoresSpoofedForwardedFor(t *testing.T) {
	rl := NewRateLimiter(60, 2)

	passed := 0
	handler := rl.Wrap(func(*fasthttp.RequestCtx) { passed++ })
	for i := 0; i < 50; i++ {
		handler(requestFrom("203.0.113.7", fmt.Sprintf("198.51.100.%d", i)))
	}
	assert.Equal(t, 2, passed)
}

func TestRateLimiter_TrustedProxy(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	require.NoError(t, rl.TrustProxies([]string{"10.0.0.0/8", "192.168.1.1"}))

	assert.Equal(t, "203.0.113.7", rl.clientKey(requestFrom("10.1.2.3", "203.0.113.7")))
	assert.Equal(t, "203.0.113.7", rl.clientKey(requestFrom("10.1.2.3", "1.1.1.1, 203.0.113.7, 192.168.1.1")))
	assert.Equal(t, "10.1.2.3", rl.clientKey(requestFrom("10.1.2.3", "")))
	assert.Equal(t, "10.1.2.3", rl.clientKey(requestFrom("10.1.2.3", "garbage")))
	assert.Equal(t, "203.0.113.9", rl.clientKey(requestFrom("203.0.113.9", "1.1.1.1")))

	passed := 0
	handler := rl.Wrap(func(*fasthttp.RequestCtx) { passed++ })
	handler(requestFrom("10.1.2.3", "203.0.113.7"))
	handler(requestFrom("10.1.2.3", "203.0.113.7"))
	handler(requestFrom("10.1.2.3", "203.0.113.8"))
	assert.Equal(t, 2, passed, "each forwarded client has its own bucket")

	assert.Error(t, rl.TrustProxies([]string{"not-an-ip"}))
	assert.Error(t, rl.TrustProxies([]string{"10.0.0.0/99"}))
}
