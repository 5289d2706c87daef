package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskr/api/transport"
	"github.com/fastygo/taskr/domain"
	"github.com/fastygo/taskr/internal/infrastructure/token"
	"github.com/fastygo/taskr/pkg/httpcontext"
	authUC "github.com/fastygo/taskr/usecase/auth"
	credentialUC "github.com/fastygo/taskr/usecase/credential"
)

type AuthHandler struct {
	baseHandler
	credentials *credentialUC.UseCase
	sessions    *authUC.UseCase
	tokens      *token.Service
	defaultTTL  time.Duration
}

func NewAuthHandler(credentials *credentialUC.UseCase, sessions *authUC.UseCase, tokens *token.Service, adapter *httpcontext.Adapter, logger *zap.Logger, ttl time.Duration) *AuthHandler {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		credentials: credentials,
		sessions:    sessions,
		tokens:      tokens,
		defaultTTL:  ttl,
	}
}

// @Summary Register a new account
// @Tags auth
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	var req transport.RegisterRequest
	if !h.decode(ctx, &req) {
		return
	}
	if req.Password != req.Confirm {
		h.respondError(ctx, domain.NewValidationError("confirm", "Passwords do not match."))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.credentials.Register(stdCtx, req.Name, req.Email, req.Password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, user)
}

// @Summary Issue a new session
// @Tags auth
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, err := h.sessions.Login(stdCtx, req.Name, req.Password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSession(ctx, http.StatusCreated, session)
}

// @Summary End the current session
// @Tags auth
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	session := h.session(ctx)
	if session == nil {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.sessions.EndSession(stdCtx, session.ID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.MessageResponse{Message: "You have been logged out."})
}

// @Summary Refresh the current session
// @Tags auth
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(ctx *fasthttp.RequestCtx) {
	session := h.session(ctx)
	if session == nil {
		return
	}

	var req transport.RefreshRequest
	if len(ctx.PostBody()) > 0 && !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	refreshed, err := h.sessions.RefreshSession(stdCtx, session.ID, h.ttlFromRequest(req.TTL))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSession(ctx, http.StatusOK, refreshed)
}

func (h *AuthHandler) respondSession(ctx *fasthttp.RequestCtx, status int, session *domain.Session) {
	signed, err := h.tokens.Issue(session)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, status, transport.LoginResponse{
		Token:     signed,
		ExpiresIn: int(token.TTL(session).Seconds()),
		ExpiresAt: session.ExpiresAt,
		Session:   session,
	})
}

// ttlFromRequest honours a shorter requested lifetime only; anything else gets the default.
func (h *AuthHandler) ttlFromRequest(ttlSeconds int) time.Duration {
	if ttlSeconds <= 0 || int64(ttlSeconds) > int64(h.defaultTTL/time.Second) {
		return h.defaultTTL
	}
	return time.Duration(ttlSeconds) * time.Second
}
