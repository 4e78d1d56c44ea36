//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	jwttoken "certifier/internal/jwt_token"
	"certifier/internal/seeder"
)

// TestContext holds state between test steps
type TestContext struct {
	BaseURL          string
	CallbackToken    string
	HTTPClient       *http.Client
	Tokens           *jwttoken.JWTService
	AccessToken      string
	LastResponse     *http.Response
	LastResponseBody []byte
}

// NewTestContext creates a new test context. The server under test must run
// with SEED_DEMO_DATA=true and the same JWT_SIGNING_KEY.
func NewTestContext() *TestContext {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	signingKey := os.Getenv("JWT_SIGNING_KEY")
	if signingKey == "" {
		signingKey = jwttoken.DevSigningKey
	}

	return &TestContext{
		BaseURL:       baseURL,
		CallbackToken: os.Getenv("CALLBACK_TOKEN"),
		HTTPClient:    &http.Client{Timeout: 30 * time.Second},
		Tokens: jwttoken.NewJWTService(signingKey,
			jwttoken.DefaultIssuer, jwttoken.DefaultAudience, jwttoken.DefaultTokenTTL),
	}
}

// SignInAs mints a bearer token for a seeded demo learner.
func (tc *TestContext) SignInAs(username string) error {
	token, err := tc.Tokens.GenerateLearnerToken(context.Background(), seeder.DemoLearnerID(username))
	if err != nil {
		return fmt.Errorf("failed to mint token for %s: %w", username, err)
	}
	tc.AccessToken = token
	return nil
}

// POST makes a POST request with a JSON body and stores the response
func (tc *TestContext) POST(path string, body interface{}, headers map[string]string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	return tc.do(http.MethodPost, path, "application/json", bytes.NewReader(data), headers)
}

// POSTRaw sends body as-is with the given content type.
func (tc *TestContext) POSTRaw(path, contentType, body string, headers map[string]string) error {
	return tc.do(http.MethodPost, path, contentType, strings.NewReader(body), headers)
}

// GET makes a GET request and stores the response
func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.do(http.MethodGet, path, "", nil, headers)
}

func (tc *TestContext) do(method, path, contentType string, body io.Reader, headers map[string]string) error {
	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// AuthHeaders returns the bearer header when a learner is signed in.
func (tc *TestContext) AuthHeaders() map[string]string {
	if tc.AccessToken == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + tc.AccessToken}
}

// GetResponseField extracts a top-level field from the JSON response
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}
	return value, nil
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}
