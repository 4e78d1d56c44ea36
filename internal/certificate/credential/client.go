// Package credential is the HTTP client for the external credential provider.
package credential

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"certifier/internal/platform/config"
	"certifier/pkg/platform/circuit"
	"certifier/pkg/platform/tracer"
	"certifier/pkg/platform/validation"
)

const (
	maxResponseBytes = 4 << 20
	maxErrorExcerpt  = 256
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the credential provider's REST API.
type Client struct {
	baseURL   string
	viewerURL string
	apiKey    string
	timeout   time.Duration
	http      HTTPDoer
	tracer    tracer.Tracer
	breaker   *circuit.Breaker
	logger    *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		c.http = doer
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

// WithBreaker refuses calls while the provider keeps failing.
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(cfg config.CredentialConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultCredentialTimeout
	}
	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		viewerURL: strings.TrimRight(cfg.ViewerBaseURL, "/"),
		apiKey:    cfg.APIKey,
		timeout:   timeout,
		http:      &http.Client{Timeout: timeout},
		tracer:    tracer.NewNoop(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create issues a new credential.
func (c *Client) Create(ctx context.Context, issuance Issuance) (cred *Credential, err error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanCredentialCreate,
		tracer.String(tracer.AttrCourseID, issuance.AchievementID),
		tracer.String(tracer.AttrRecipientHash, tracer.HashEmail(issuance.Recipient.Email)),
		tracer.Bool(tracer.AttrApprove, issuance.Approve),
	)
	defer func() { endSpan(span, err) }()

	var resp createResponse
	if err = c.do(ctx, "create", http.MethodPost, "/credentials", credentialEnvelope[Issuance]{Credential: issuance}, &resp); err != nil {
		return nil, err
	}
	if resp.Credential.ID == "" {
		return nil, &ServiceError{Op: "create", Category: CategoryDecode, Message: "response carries no credential id"}
	}

	out := resp.Credential
	if resp.Private != nil && *resp.Private {
		out.Private = true
	}
	if out.PrivateKey == "" {
		out.PrivateKey = resp.PrivateKey
	}
	span.SetAttributes(tracer.String(tracer.AttrCredentialID, out.ID.String()))
	return &out, nil
}

// SearchByRecipient lists the credentials issued to an email address.
func (c *Client) SearchByRecipient(ctx context.Context, email string) (creds []Credential, err error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanCredentialSearch,
		tracer.String(tracer.AttrRecipientHash, tracer.HashEmail(email)),
	)
	defer func() { endSpan(span, err) }()

	var req searchRequest
	req.Recipient.Email = email

	var resp listResponse
	if err = c.do(ctx, "search", http.MethodPost, "/credentials/search", req, &resp); err != nil {
		return nil, err
	}
	span.SetAttributes(tracer.Int(tracer.AttrResultCount, len(resp.Credentials)))
	return resp.Credentials, nil
}

// Update changes the approval flag and grade of an existing credential.
func (c *Client) Update(ctx context.Context, externalID string, update Update) (err error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanCredentialUpdate,
		tracer.String(tracer.AttrCredentialID, externalID),
		tracer.Bool(tracer.AttrApprove, update.Approve),
	)
	defer func() { endSpan(span, err) }()

	path := "/credentials/" + url.PathEscape(externalID)
	return c.do(ctx, "update", http.MethodPut, path, credentialEnvelope[Update]{Credential: update}, nil)
}

// ListByAchievement lists every credential issued for an achievement (course).
func (c *Client) ListByAchievement(ctx context.Context, achievementID string) (creds []Credential, err error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanCredentialList,
		tracer.String(tracer.AttrCourseID, achievementID),
	)
	defer func() { endSpan(span, err) }()

	q := url.Values{}
	q.Set("achievement_id", achievementID)
	q.Set("full_view", "true")

	var resp listResponse
	if err = c.do(ctx, "list", http.MethodGet, "/credentials?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	span.SetAttributes(tracer.Int(tracer.AttrResultCount, len(resp.Credentials)))
	return resp.Credentials, nil
}

// DownloadURL is the public viewer link for a credential. Private
// credentials carry their access key.
func (c *Client) DownloadURL(cred *Credential) string {
	link := c.ViewerURL(cred.ID.String())
	if cred.Private && cred.PrivateKey != "" {
		link += "?key=" + url.QueryEscape(cred.PrivateKey)
	}
	return link
}

// ViewerURL is the public viewer link for a credential id.
func (c *Client) ViewerURL(externalID string) string {
	return c.viewerURL + "/" + externalID
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	if c.breaker == nil {
		return c.roundTrip(ctx, op, method, path, body, out)
	}
	if !c.breaker.Allow() {
		return &ServiceError{Op: op, Category: CategoryCircuitOpen, Message: "provider circuit open"}
	}

	err := c.roundTrip(ctx, op, method, path, body, out)
	var change circuit.StateChange
	if countsAsOutage(err) {
		change = c.breaker.RecordFailure()
	} else {
		change = c.breaker.RecordSuccess()
	}
	switch {
	case change.Opened:
		c.logger.WarnContext(ctx, "credential provider circuit opened", "breaker", c.breaker.Name(), "op", op, "error", err)
	case change.Closed:
		c.logger.InfoContext(ctx, "credential provider circuit closed", "breaker", c.breaker.Name())
	}
	return err
}

// countsAsOutage is true for failures that say the provider is unhealthy.
// Client errors (4xx) and malformed bodies do not trip the breaker.
func countsAsOutage(err error) bool {
	var se *ServiceError
	if !errors.As(err, &se) {
		return false
	}
	switch se.Category {
	case CategoryTimeout, CategoryTransport:
		return true
	case CategoryStatus:
		return se.StatusCode >= http.StatusInternalServerError || se.StatusCode == http.StatusTooManyRequests
	default:
		return false
	}
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &ServiceError{Op: op, Category: CategoryEncode, Message: "failed to marshal request", Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &ServiceError{Op: op, Category: CategoryEncode, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Authorization", "Token token="+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return &ServiceError{Op: op, Category: CategoryTimeout, Message: "request timeout", Err: err}
		}
		return &ServiceError{Op: op, Category: CategoryTransport, Message: "failed to execute request", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &ServiceError{Op: op, Category: CategoryTransport, StatusCode: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	c.logger.DebugContext(ctx, "credential provider call",
		"op", op,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServiceError{
			Op:         op,
			Category:   CategoryStatus,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected status: %s", excerpt(respBody)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &ServiceError{Op: op, Category: CategoryDecode, StatusCode: resp.StatusCode, Message: "failed to parse response", Err: err}
	}
	return nil
}

func endSpan(span tracer.Span, err error) {
	var se *ServiceError
	if errors.As(err, &se) {
		span.SetAttributes(tracer.String(tracer.AttrErrorCategory, string(se.Category)))
		if se.StatusCode != 0 {
			span.SetAttributes(tracer.Int(tracer.AttrHTTPStatus, se.StatusCode))
		}
	}
	span.End(err)
}

// excerpt is the start of an error body, kept valid UTF-8 so it can be stored
// as the record's error reason.
func excerpt(body []byte) string {
	text := strings.ToValidUTF8(strings.TrimSpace(string(body)), "\uFFFD")
	return validation.Truncate(text, maxErrorExcerpt)
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
