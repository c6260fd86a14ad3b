package domain

// ============================================================
// Watsonx — wire types for IAM and text generation
// ============================================================

// IAMTokenResponse is the JSON body returned by the IBM Cloud IAM
// identity endpoint. Only the access token is used; expiry handling
// is a caching policy concern, not part of the wire contract.
type IAMTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
}

// GenerationParameters controls decoding on the watsonx side.
type GenerationParameters struct {
	DecodingMethod string `json:"decoding_method"`
	MaxNewTokens   int    `json:"max_new_tokens"`
}

// GenerationRequest is the payload for POST /ml/v1/text/generation.
type GenerationRequest struct {
	ModelID    string               `json:"model_id"`
	ProjectID  string               `json:"project_id"`
	Input      string               `json:"input"`
	Parameters GenerationParameters `json:"parameters"`
}

// GenerationResult is one generated candidate in the response.
type GenerationResult struct {
	GeneratedText string `json:"generated_text"`
	StopReason    string `json:"stop_reason,omitempty"`
}

// GenerationResponse is the JSON body of a successful generation call.
type GenerationResponse struct {
	Results []GenerationResult `json:"results"`
}

// Generation is the service-level result of an inference call:
// the generated text with surrounding whitespace trimmed.
type Generation struct {
	Text string
}

// ============================================================
// NLU — wire types for document sentiment
// ============================================================

// SentimentAnalyzeRequest is the payload for POST /v1/analyze,
// requesting document-level sentiment only.
type SentimentAnalyzeRequest struct {
	Text     string            `json:"text"`
	Features SentimentFeatures `json:"features"`
}

// SentimentFeatures selects the sentiment feature. The empty object
// requests document sentiment with default options.
type SentimentFeatures struct {
	Sentiment struct{} `json:"sentiment"`
}

// SentimentAnalyzeResponse is the JSON body of a successful analyze
// call; only sentiment.document is extracted.
type SentimentAnalyzeResponse struct {
	Sentiment struct {
		Document Sentiment `json:"document"`
	} `json:"sentiment"`
}
