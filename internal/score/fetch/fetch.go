// Package fetch calls the upstream scoring service. This is the only
// network-facing, retry-bearing code in the system.
package fetch

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"enrolld/internal/score/normalize"
)

var (
	// ErrUnreachable means retries are exhausted: the upstream is down,
	// slow, or rejecting the token. Definitive for this attempt.
	ErrUnreachable = errors.New("scoring service unreachable")
	// ErrInvalidResponse means the upstream answered 2xx with a body we
	// cannot parse. Retrying cannot help, so it is fatal immediately.
	ErrInvalidResponse = errors.New("invalid scoring service response")
)

var (
	fetchAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enrolld_score_fetch_attempts_total",
		Help: "Total HTTP attempts against the scoring service, including retries",
	})
	fetchOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enrolld_score_fetch_outcomes_total",
		Help: "Final outcomes of score fetches",
	}, []string{"outcome"})
)

const requestTimeout = 15 * time.Second

// retryableError marks transport-level failures and non-2xx statuses.
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// IsRetryable is the default retryable-error predicate: network failures and
// bad statuses retry, a malformed 2xx body does not.
func IsRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// Client fetches score records for a validation token.
type Client struct {
	url    string
	http   *http.Client
	policy Policy
}

// Option configures a Client.
type Option func(*Client)

// WithPolicy overrides the retry policy, mainly for tests.
func WithPolicy(p Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithInsecureTLS disables certificate verification. The upstream serves an
// incomplete certificate chain.
func WithInsecureTLS() Option {
	return func(c *Client) {
		c.http.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
}

// New builds a Client against the configured upstream endpoint.
func New(url string, opts ...Option) *Client {
	c := &Client{
		url:    url,
		http:   &http.Client{Timeout: requestTimeout},
		policy: DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch posts the token and returns the typed payload, or a definitive
// failure. It never returns a partially-populated payload: either the body
// decoded, or the caller gets ErrUnreachable/ErrInvalidResponse.
func (c *Client) Fetch(ctx context.Context, token string) (*normalize.Payload, error) {
	ctx, span := otel.Tracer("score/fetch").Start(ctx, "score.Fetch")
	defer span.End()

	var payload *normalize.Payload
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		fetchAttempts.Inc()
		p, err := c.attempt(ctx, token)
		if err != nil {
			return err
		}
		payload = p
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidResponse) {
			fetchOutcomes.WithLabelValues("invalid_response").Inc()
			span.SetAttributes(attribute.String("outcome", "invalid_response"))
			return nil, err
		}
		fetchOutcomes.WithLabelValues("unreachable").Inc()
		span.SetAttributes(attribute.String("outcome", "unreachable"))
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	fetchOutcomes.WithLabelValues("ok").Inc()
	span.SetAttributes(attribute.String("outcome", "ok"))
	return payload, nil
}

func (c *Client) attempt(ctx context.Context, token string) (*normalize.Payload, error) {
	body, err := json.Marshal(map[string]string{"hash": token})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	// The upstream rejects non-browser clients, so the request imitates one.
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Connection", "keep-alive")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &retryableError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &retryableError{err: fmt.Errorf("upstream returned status %d", resp.StatusCode)}
	}

	var payload normalize.Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &payload, nil
}
