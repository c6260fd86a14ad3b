package watsonx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/boddenberg/citizen-ai-portal/internal/domain"
	"github.com/boddenberg/citizen-ai-portal/internal/infra/cache"
	"github.com/boddenberg/citizen-ai-portal/internal/infra/observability"
	"github.com/boddenberg/citizen-ai-portal/internal/infra/resilience"
	"github.com/boddenberg/citizen-ai-portal/internal/infra/watsonx"

	"go.uber.org/zap"
)

func TestAcquireToken_Success(t *testing.T) {
	var gotContentType, gotAPIKey, gotGrantType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotAPIKey = r.PostForm.Get("apikey")
		gotGrantType = r.PostForm.Get("grant_type")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "tok-123", "token_type": "Bearer", "expires_in": 3600}`))
	}))
	defer server.Close()

	client := watsonx.NewIAMClient(server.Client(), server.URL, "my-api-key", resilience.NewCircuitBreaker("iam-test"), zap.NewNop())

	token, err := client.AcquireToken(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token != "tok-123" {
		t.Errorf("expected token 'tok-123', got %q", token)
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Errorf("unexpected content type: %q", gotContentType)
	}
	if gotAPIKey != "my-api-key" {
		t.Errorf("unexpected apikey field: %q", gotAPIKey)
	}
	if gotGrantType != "urn:ibm:params:oauth:grant-type:apikey" {
		t.Errorf("unexpected grant_type field: %q", gotGrantType)
	}
}

func TestAcquireToken_MissingCredential(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	client := watsonx.NewIAMClient(server.Client(), server.URL, "", resilience.NewCircuitBreaker("iam-test"), zap.NewNop())

	_, err := client.AcquireToken(context.Background())

	var configMissing *domain.ErrConfigMissing
	if !errors.As(err, &configMissing) {
		t.Fatalf("expected ErrConfigMissing, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected zero network calls, got %d", calls)
	}
}

func TestAcquireToken_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusBadRequest)
	}))
	defer server.Close()

	client := watsonx.NewIAMClient(server.Client(), server.URL, "bad-key", resilience.NewCircuitBreaker("iam-test"), zap.NewNop())

	_, err := client.AcquireToken(context.Background())

	var authFailure *domain.ErrAuthFailure
	if !errors.As(err, &authFailure) {
		t.Fatalf("expected ErrAuthFailure, got %v", err)
	}
}

func TestAcquireToken_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected": true}`))
	}))
	defer server.Close()

	client := watsonx.NewIAMClient(server.Client(), server.URL, "key", resilience.NewCircuitBreaker("iam-test"), zap.NewNop())

	_, err := client.AcquireToken(context.Background())

	var authFailure *domain.ErrAuthFailure
	if !errors.As(err, &authFailure) {
		t.Fatalf("expected ErrAuthFailure for missing access_token, got %v", err)
	}
}

func TestCachedTokenSource_ReusesToken(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"access_token": "tok-cached"}`))
	}))
	defer server.Close()

	inner := watsonx.NewIAMClient(server.Client(), server.URL, "key", resilience.NewCircuitBreaker("iam-test"), zap.NewNop())
	source := watsonx.NewCachedTokenSource(inner, cache.New[string](1*time.Minute), "test", observability.NewMetrics())

	for i := 0; i < 3; i++ {
		token, err := source.AcquireToken(context.Background())
		if err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
		if token != "tok-cached" {
			t.Errorf("acquire %d: unexpected token %q", i, token)
		}
	}

	if calls != 1 {
		t.Errorf("expected 1 IAM call with caching, got %d", calls)
	}
}

func TestCachedTokenSource_DoesNotCacheFailures(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	inner := watsonx.NewIAMClient(server.Client(), server.URL, "key", resilience.NewCircuitBreaker("iam-test"), zap.NewNop())
	source := watsonx.NewCachedTokenSource(inner, cache.New[string](1*time.Minute), "test", observability.NewMetrics())

	if _, err := source.AcquireToken(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if _, err := source.AcquireToken(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	if calls != 2 {
		t.Errorf("expected 2 IAM calls (failures not cached), got %d", calls)
	}
}
