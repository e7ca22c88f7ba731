// Package reqctx carries a per-scrape request ID through contexts and errors.
package reqctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"
)

type key int

const requestKey key = 0

// HeaderName is the HTTP header used to propagate request IDs
const HeaderName = "X-Request-ID"

var validID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

type RequestContext struct {
	RequestID string
	StartTime time.Time
}

// Elapsed returns the time since the request started
func (rc *RequestContext) Elapsed() time.Duration {
	return time.Since(rc.StartTime)
}

// WithRequestContext attaches a fresh request ID
func WithRequestContext(ctx context.Context) context.Context {
	return WithRequestID(ctx, "")
}

// WithRequestID attaches id, or a generated one when id is empty or malformed
func WithRequestID(ctx context.Context, id string) context.Context {
	if !validID.MatchString(id) {
		id = generateID()
	}
	return context.WithValue(ctx, requestKey, &RequestContext{
		RequestID: id,
		StartTime: time.Now(),
	})
}

func GetRequestContext(ctx context.Context) *RequestContext {
	if ctx != nil {
		if rc, ok := ctx.Value(requestKey).(*RequestContext); ok {
			return rc
		}
	}
	return &RequestContext{
		RequestID: "unknown",
		StartTime: time.Now(),
	}
}

func generateID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// RequestError wraps an error with request context
type RequestError struct {
	RequestID string
	Err       error
}

// Error implements the error interface
func (e *RequestError) Error() string {
	return fmt.Sprintf("[%s] %v", e.RequestID, e.Err)
}

// Unwrap returns the underlying error
func (e *RequestError) Unwrap() error {
	return e.Err
}

// NewRequestError creates a new RequestError from context
func NewRequestError(ctx context.Context, err error) error {
	rc := GetRequestContext(ctx)
	return &RequestError{
		RequestID: rc.RequestID,
		Err:       err,
	}
}
