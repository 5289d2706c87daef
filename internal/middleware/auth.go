package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskr/api/transport"
	"github.com/fastygo/taskr/domain"
	"github.com/fastygo/taskr/internal/infrastructure/token"
	"github.com/fastygo/taskr/pkg/httpcontext"
)

// SessionResolver is the Session Guard lookup used to validate bearer tokens.
type SessionResolver interface {
	CurrentSession(ctx context.Context, sessionID string) (*domain.Session, error)
}

// SessionAuth verifies the bearer token, then resolves the live session so
// logged-out tokens are rejected even before they expire.
func SessionAuth(tokens *token.Service, sessions SessionResolver, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				rejectUnauthenticated(ctx)
				return
			}

			claims, err := tokens.Parse(tokenString)
			if err != nil {
				logger.Warn("invalid jwt token", zap.Error(err))
				rejectUnauthenticated(ctx)
				return
			}

			lookupCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()

			session, err := sessions.CurrentSession(lookupCtx, claims.SessionID)
			if err != nil {
				if !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
					logger.Error("session lookup failed", zap.Error(err))
					writeError(ctx, fasthttp.StatusInternalServerError, string(domain.ErrCodeInternal), "session lookup failed")
					return
				}
				rejectUnauthenticated(ctx)
				return
			}

			httpcontext.SetSession(ctx, session)
			next(ctx)
		}
	}
}

// RequireCapability rejects sessions whose role lacks the capability. It must run after SessionAuth.
func RequireCapability(capability domain.Capability) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			session := httpcontext.Session(ctx)
			if session == nil {
				rejectUnauthenticated(ctx)
				return
			}
			if !session.Actor().Can(capability) {
				writeError(ctx, fasthttp.StatusForbidden, string(domain.ErrCodeForbidden), domain.ErrInsufficientRole.Message)
				return
			}
			next(ctx)
		}
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}

func rejectUnauthenticated(ctx *fasthttp.RequestCtx) {
	writeError(ctx, fasthttp.StatusUnauthorized, string(domain.ErrCodeUnauthorized), domain.ErrNotAuthenticated.Message)
}

func writeError(ctx *fasthttp.RequestCtx, status int, code, message string) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBodyString(transport.NewError(code, message, nil).String())
}
