package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskr/internal/services"
	"github.com/fastygo/taskr/pkg/httpcontext"
	"github.com/fastygo/taskr/repository"
)

const defaultAuditLimit = 50

type AuditHandler struct {
	baseHandler
	recorder *services.AuditRecorder
}

func NewAuditHandler(recorder *services.AuditRecorder, adapter *httpcontext.Adapter, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		baseHandler: newBaseHandler(adapter, logger),
		recorder:    recorder,
	}
}

// @Summary Recent task access decisions
// @Tags admin
// @Router /api/v1/admin/audit [get]
func (h *AuditHandler) Recent(ctx *fasthttp.RequestCtx) {
	if h.session(ctx) == nil {
		return
	}

	limit := repository.ClampLimit(parseInt(string(ctx.QueryArgs().Peek("limit")), defaultAuditLimit))
	entries, err := h.recorder.Recent(limit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, entries)
}
