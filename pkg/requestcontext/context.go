// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets the values; services and the Kafka callback intake read
// them without importing net/http:
//
//	learnerID := requestcontext.LearnerID(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
package requestcontext

import (
	"context"
	"time"

	id "certifier/pkg/domain"
)

type (
	learnerIDKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// LearnerID returns the authenticated learner, or the nil id for anonymous requests.
func LearnerID(ctx context.Context) id.LearnerID {
	if learnerID, ok := ctx.Value(learnerIDKey{}).(id.LearnerID); ok {
		return learnerID
	}
	return id.LearnerID{}
}

func WithLearnerID(ctx context.Context, learnerID id.LearnerID) context.Context {
	return context.WithValue(ctx, learnerIDKey{}, learnerID)
}

// RequestID returns the correlation id for logs. Empty outside HTTP requests.
func RequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return requestID
	}
	return ""
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now returns the request-scoped time so every timestamp written while
// handling one request agrees. Falls back to time.Now() for workers, CLIs
// and tests that did not inject a time.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
