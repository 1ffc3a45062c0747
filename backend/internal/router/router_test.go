package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itchan-dev/newsletter/backend/internal/handler"
	"github.com/itchan-dev/newsletter/backend/internal/setup"
	"github.com/itchan-dev/newsletter/shared/config"
	"github.com/itchan-dev/newsletter/shared/domain"
	"github.com/itchan-dev/newsletter/shared/logger"
)

type stubSubscription struct{}

func (stubSubscription) Subscribe(ctx context.Context, name, email string) error { return nil }
func (stubSubscription) Confirm(ctx context.Context, token domain.SubscriptionToken) error {
	return nil
}

type stubNewsletter struct{}

func (stubNewsletter) Publish(ctx context.Context, issue domain.NewsletterIssue, creds *domain.Credentials) error {
	return nil
}

type stubPinger struct{}

func (stubPinger) Ping(ctx context.Context) error { return nil }

func newTestRouter(origins ...string) http.Handler {
	cfg := &config.Config{}
	cfg.Public.HTTP.AllowedOrigins = origins
	return New(&setup.Dependencies{
		Config:   cfg,
		Log:      logger.Discard(),
		Handler:  handler.New(stubSubscription{}, stubNewsletter{}, stubPinger{}, logger.Discard()),
		Registry: prometheus.NewRegistry(),
	})
}

func TestRoutes(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		method, path, body string
		status             int
	}{
		{http.MethodGet, "/health_check", "", http.StatusOK},
		{http.MethodGet, "/ready", "", http.StatusOK},
		{http.MethodPost, "/subscriptions", url.Values{"name": {"le guin"}, "email": {"ursula_le_guin@gmail.com"}}.Encode(), http.StatusOK},
		{http.MethodGet, "/subscriptions/confirm?subscription_token=abc", "", http.StatusOK},
		{http.MethodGet, "/subscriptions/confirm", "", http.StatusBadRequest},
		{http.MethodPost, "/newsletter", `{"title":"t","content":{"html":"h","text":"t"}}`, http.StatusOK},
		{http.MethodGet, "/subscriptions", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.path == "/subscriptions" {
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter()

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health_check", nil))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `http_requests_total{method="GET",path="/health_check",status="200"} 1`)
}

func TestCORS(t *testing.T) {
	r := newTestRouter("https://example.com")

	req := httptest.NewRequest(http.MethodOptions, "/subscriptions", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, "https://example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestHSTSFollowsConfig(t *testing.T) {
	for _, on := range []bool{false, true} {
		cfg := &config.Config{}
		cfg.Public.HTTP.HSTS = on
		r := New(&setup.Dependencies{
			Config:   cfg,
			Log:      logger.Discard(),
			Handler:  handler.New(stubSubscription{}, stubNewsletter{}, stubPinger{}, logger.Discard()),
			Registry: prometheus.NewRegistry(),
		})

		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health_check", nil))

		assert.Equal(t, on, rr.Header().Get("Strict-Transport-Security") != "", "hsts=%v", on)
	}
}
