// Package tracer is a small tracing abstraction over OpenTelemetry.
//
// Callers depend on Tracer and Span only. OTelTracer is used in production;
// NoopTracer keeps tests free of exporter setup.
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span and marks it failed when err is non-nil.
	// It must be called exactly once.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
//
//	ctx, span := t.Start(ctx, tracer.SpanCredentialCreate,
//	    tracer.String(tracer.AttrCourseID, courseID),
//	)
//	defer func() { span.End(err) }()
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashEmail returns a short digest of a recipient email so traces can be
// correlated without carrying the address itself.
func HashEmail(email string) string {
	if email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:8])
}

// Span names for outbound credential provider calls.
const (
	SpanCredentialCreate = "credential.create"
	SpanCredentialSearch = "credential.search"
	SpanCredentialUpdate = "credential.update"
	SpanCredentialList   = "credential.list"
)

// Attribute keys.
const (
	AttrCourseID      = "course_id"
	AttrCredentialID  = "credential_id"
	AttrRecipientHash = "recipient_hash"
	AttrHTTPStatus    = "http.status_code"
	AttrResultCount   = "result_count"
	AttrErrorCategory = "error.category"
	AttrApprove       = "approve"
)
