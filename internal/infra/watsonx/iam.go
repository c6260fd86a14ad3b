// Package watsonx provides clients for the IBM Cloud IAM identity
// endpoint and the watsonx.ai text-generation endpoint.
package watsonx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/boddenberg/citizen-ai-portal/internal/domain"
	"github.com/boddenberg/citizen-ai-portal/internal/infra/observability"
	"github.com/boddenberg/citizen-ai-portal/internal/port"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("watsonx")

// grantType is the fixed IAM grant for API-key exchange.
const grantType = "urn:ibm:params:oauth:grant-type:apikey"

// IAMClient exchanges a long-lived API key for a short-lived bearer
// token. Every AcquireToken call performs a fresh network request;
// wrap it in a CachedTokenSource to reuse tokens.
type IAMClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	cb         *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewIAMClient creates an IAM token client for the given credential.
func NewIAMClient(httpClient *http.Client, endpoint, apiKey string, cb *gobreaker.CircuitBreaker, logger *zap.Logger) *IAMClient {
	return &IAMClient{
		httpClient: httpClient,
		endpoint:   endpoint,
		apiKey:     apiKey,
		cb:         cb,
		logger:     logger,
	}
}

// AcquireToken performs the token exchange. All transport and parse
// faults come back as *domain.ErrAuthFailure; nothing escapes this
// boundary as a raw fault.
func (c *IAMClient) AcquireToken(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "IAMClient.AcquireToken")
	defer span.End()

	if c.apiKey == "" {
		return "", &domain.ErrConfigMissing{Service: "iam", Fields: []string{"api key"}}
	}

	result, err := c.cb.Execute(func() (any, error) {
		form := url.Values{}
		form.Set("apikey", c.apiKey)
		form.Set("grant_type", grantType)

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(resp.Body)
			return nil, fmt.Errorf("iam returned status %d: %s", resp.StatusCode, string(body))
		}

		var tokenResp domain.IAMTokenResponse
		if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
			return nil, fmt.Errorf("decode iam response: %w", err)
		}
		if tokenResp.AccessToken == "" {
			return nil, fmt.Errorf("iam response has no access_token")
		}
		return tokenResp.AccessToken, nil
	})

	if err != nil {
		c.logger.Warn("iam token exchange failed", zap.Error(err))
		return "", &domain.ErrAuthFailure{Err: err}
	}

	return result.(string), nil
}

// CachedTokenSource wraps a TokenSource with a TTL cache. Leaving the
// source unwrapped fetches a fresh token per call.
type CachedTokenSource struct {
	source  port.TokenSource
	cache   port.Cache[string]
	key     string
	metrics *observability.Metrics
}

// NewCachedTokenSource creates a caching decorator around source.
// key distinguishes credentials sharing one cache.
func NewCachedTokenSource(source port.TokenSource, cache port.Cache[string], key string, metrics *observability.Metrics) *CachedTokenSource {
	return &CachedTokenSource{
		source:  source,
		cache:   cache,
		key:     key,
		metrics: metrics,
	}
}

// AcquireToken returns the cached token if present, otherwise fetches
// a fresh one and caches it. Failures are never cached.
func (s *CachedTokenSource) AcquireToken(ctx context.Context) (string, error) {
	if token, ok := s.cache.Get(s.key); ok {
		s.metrics.IncrTokenCacheHit()
		return token, nil
	}
	s.metrics.IncrTokenCacheMiss()

	token, err := s.source.AcquireToken(ctx)
	if err != nil {
		return "", err
	}
	s.cache.Set(s.key, token)
	return token, nil
}
