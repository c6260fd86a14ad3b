package domain

// ============================================================
// Auth — login request/response
// ============================================================

// LoginRequest is the body of POST /v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the signed access token. The portal issues
// access tokens only; there is no refresh flow because sessions do
// not outlive the process.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Identity    string `json:"identity"`
}

// PortalMetrics is the snapshot served by GET /v1/metrics/portal.
type PortalMetrics struct {
	TotalRequests   int64              `json:"totalRequests"`
	ErrorRate       float64            `json:"errorRate"`
	ExternalErrors  map[string]float64 `json:"externalErrors"`
	SentimentCounts map[string]float64 `json:"sentimentCounts"`
	TokenCacheHits  float64            `json:"tokenCacheHits"`
	TokenCacheMiss  float64            `json:"tokenCacheMisses"`
	Period          string             `json:"period"`
}
