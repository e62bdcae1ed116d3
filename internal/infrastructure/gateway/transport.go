package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/feedbackhub/feedback-client/internal/core/ports"
	"github.com/feedbackhub/feedback-client/internal/pkg/metrics"
)

const (
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"
)

// RejectFunc is told which credential the backend answered 401 to.
type RejectFunc func(ctx context.Context, token string)

type credentialsCallKey struct{}

// credentialsCall marks ctx as a login or registration call. A 401 there is
// about the submitted credentials, not the stored token.
func credentialsCall(ctx context.Context) context.Context {
	return context.WithValue(ctx, credentialsCallKey{}, true)
}

func isCredentialsCall(ctx context.Context) bool {
	v, _ := ctx.Value(credentialsCallKey{}).(bool)
	return v
}

// bearerTransport attaches the persisted credential to every outbound request.
// The token is read right before dispatch, so a login or logout that finished
// earlier is always reflected.
type bearerTransport struct {
	base     http.RoundTripper
	tokens   ports.TokenStore
	onReject RejectFunc
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.tokens.Load(req.Context())
	if err != nil {
		metrics.GatewayRequestsTotal.WithLabelValues(req.Method, "error", "none").Inc()
		return nil, fmt.Errorf("read credential: %w", err)
	}

	out := req.Clone(req.Context())
	auth := "none"
	if token != "" {
		out.Header.Set(headerAuthorization, "Bearer "+token)
		auth = "bearer"
	} else {
		out.Header.Del(headerAuthorization)
	}
	if out.Header.Get(headerRequestID) == "" {
		out.Header.Set(headerRequestID, uuid.NewString())
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(out)
	metrics.GatewayRequestDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GatewayRequestsTotal.WithLabelValues(req.Method, "error", auth).Inc()
		return nil, err
	}
	metrics.GatewayRequestsTotal.WithLabelValues(req.Method, strconv.Itoa(resp.StatusCode), auth).Inc()
	if resp.StatusCode == http.StatusUnauthorized && token != "" && t.onReject != nil && !isCredentialsCall(req.Context()) {
		t.onReject(req.Context(), token)
	}
	return resp, nil
}
