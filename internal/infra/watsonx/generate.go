package watsonx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/boddenberg/citizen-ai-portal/internal/domain"
	"github.com/boddenberg/citizen-ai-portal/internal/port"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// apiVersion is the date-stamped query parameter the generation
// endpoint is versioned by.
const apiVersion = "2024-05-01"

// decoding parameters are fixed: greedy decoding, bounded reply length.
const (
	decodingMethod = "greedy"
	maxNewTokens   = 200
)

// GenerationClient calls the watsonx.ai text-generation endpoint.
// Faults come back as typed errors; the conversation service decides
// how to render them to the citizen.
type GenerationClient struct {
	httpClient *http.Client
	baseURL    string
	modelID    string
	projectID  string
	apiKey     string
	tokens     port.TokenSource
	cb         *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewGenerationClient creates the inference client. apiKey is only
// inspected for presence — the token source holds the credential used
// on the wire.
func NewGenerationClient(httpClient *http.Client, baseURL, modelID, projectID, apiKey string, tokens port.TokenSource, cb *gobreaker.CircuitBreaker, logger *zap.Logger) *GenerationClient {
	return &GenerationClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		modelID:    modelID,
		projectID:  projectID,
		apiKey:     apiKey,
		tokens:     tokens,
		cb:         cb,
		logger:     logger,
	}
}

// Generate runs one synchronous generation call.
//
// Preconditions are checked before any network traffic: a missing
// credential or project id returns *domain.ErrConfigMissing without
// touching the network. A failed token exchange surfaces as
// *domain.ErrAuthFailure, a non-2xx response as *domain.ErrRemoteStatus
// carrying the response body, and anything else as
// *domain.ErrExternalService.
func (c *GenerationClient) Generate(ctx context.Context, prompt string) (*domain.Generation, error) {
	ctx, span := tracer.Start(ctx, "GenerationClient.Generate")
	defer span.End()
	span.SetAttributes(attribute.Int("prompt.length", len(prompt)))

	if c.apiKey == "" || c.projectID == "" {
		return nil, &domain.ErrConfigMissing{
			Service: "watsonx",
			Fields:  []string{"api key", "project id"},
		}
	}

	token, err := c.tokens.AcquireToken(ctx)
	if err != nil {
		var authErr *domain.ErrAuthFailure
		if errors.As(err, &authErr) {
			return nil, err
		}
		return nil, &domain.ErrAuthFailure{Err: err}
	}

	var generated string

	_, err = c.cb.Execute(func() (any, error) {
		payload := domain.GenerationRequest{
			ModelID:   c.modelID,
			ProjectID: c.projectID,
			Input:     prompt,
			Parameters: domain.GenerationParameters{
				DecodingMethod: decodingMethod,
				MaxNewTokens:   maxNewTokens,
			},
		}

		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal generation request: %w", err)
		}

		url := fmt.Sprintf("%s/ml/v1/text/generation?version=%s", c.baseURL, apiVersion)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create generation request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			respBody, _ := io.ReadAll(resp.Body)
			return nil, &domain.ErrRemoteStatus{
				Service: "watsonx",
				Status:  resp.StatusCode,
				Body:    string(respBody),
			}
		}

		var genResp domain.GenerationResponse
		if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
			return nil, fmt.Errorf("decode generation response: %w", err)
		}
		if len(genResp.Results) == 0 {
			return nil, fmt.Errorf("generation response has no results")
		}

		generated = strings.TrimSpace(genResp.Results[0].GeneratedText)
		return nil, nil
	})

	if err != nil {
		c.logger.Warn("generation call failed", zap.Error(err))
		var remoteErr *domain.ErrRemoteStatus
		if errors.As(err, &remoteErr) {
			return nil, remoteErr
		}
		return nil, &domain.ErrExternalService{Service: "watsonx", Err: err}
	}

	return &domain.Generation{Text: generated}, nil
}
