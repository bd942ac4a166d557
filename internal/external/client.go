// Package external wraps the third-party HTTP APIs the app depends on:
// OpenWeather, the transcript sidecar, Gemini, Google OAuth and ImgBB.
package external

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kbomate/internal/observability"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrUpstream marks every failure that originates in a third-party API.
var ErrUpstream = errors.New("upstream api")

const defaultTimeout = 15 * time.Second

func newRestyClient(baseURL string, timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
}

// statusError converts a non-2xx response into an ErrUpstream chain.
func statusError(provider string, resp *resty.Response) error {
	body := resp.String()
	if len(body) > 200 {
		body = body[:200]
	}
	return errors.Join(ErrUpstream, fmt.Errorf("%s (HTTP Status: %d)- %s", provider, resp.StatusCode(), body))
}

// call runs one outbound request inside a client span and records its latency and outcome.
func call(ctx context.Context, provider, operation string, fn func(ctx context.Context) (*resty.Response, error)) (*resty.Response, error) {
	ctx, span := observability.GetTraceLayer().TraceExternalCall(ctx, provider, operation)
	defer span.End()
	start := time.Now()

	resp, err := fn(ctx)
	if err == nil && resp.IsError() {
		err = statusError(provider, resp)
	} else if err != nil {
		err = errors.Join(ErrUpstream, fmt.Errorf("%s: %w", provider, err))
	}
	if resp != nil {
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	observability.ObserveExternal(provider, start, err)
	return resp, err
}
