package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskr/domain"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrNotAuthenticated, http.StatusUnauthorized, "UNAUTHORIZED"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "UNAUTHORIZED"},
		{domain.NewForbiddenError(domain.ActionDelete), http.StatusForbidden, "FORBIDDEN"},
		{domain.NewValidationError("name", "required"), http.StatusBadRequest, "INVALID"},
		{domain.ErrTaskNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrDuplicateUser, http.StatusConflict, "CONFLICT"},
		{fmt.Errorf("complete: %w", domain.ErrTaskConflict), http.StatusConflict, "CONFLICT"},
		{domain.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tc := range cases {
		status, code := mapError(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}

func TestRespondErrorHidesInternalDetails(t *testing.T) {
	h := newBaseHandler(nil, nil)
	ctx := &fasthttp.RequestCtx{}

	h.respondError(ctx, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, ctx.Response.StatusCode())
	assert.NotContains(t, string(ctx.Response.Body()), "pq:")
}

func TestRespondErrorCarriesMeta(t *testing.T) {
	h := newBaseHandler(nil, nil)

	ctx := &fasthttp.RequestCtx{}
	h.respondError(ctx, domain.NewValidationError("due_date", "Invalid date."))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
	assert.Equal(t, "Invalid date.", body["error"])
	assert.Equal(t, map[string]interface{}{"field": "due_date"}, body["meta"])

	ctx = &fasthttp.RequestCtx{}
	h.respondError(ctx, domain.NewForbiddenError(domain.ActionUpdate))

	body = nil
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
	assert.Equal(t, map[string]interface{}{"action": "update"}, body["meta"])
}
