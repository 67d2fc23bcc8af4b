package quayio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httputil"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Transport fetches a URL and decodes its JSON body into v.
type Transport interface {
	GetJSON(ctx context.Context, uri string, v interface{}) error
}

// HTTPTransport retries network errors, 429 and 5xx responses with
// exponential backoff until RetryTimeLimit has elapsed. A zero
// RetryTimeLimit disables retries.
type HTTPTransport struct {
	Client         *http.Client
	RetryTimeLimit time.Duration
	Logger         zerolog.Logger
}

func NewHTTPTransport(retryTimeLimit time.Duration, logger zerolog.Logger) HTTPTransport {
	return HTTPTransport{
		Client:         http.DefaultClient,
		RetryTimeLimit: retryTimeLimit,
		Logger:         logger,
	}
}

func (t HTTPTransport) GetJSON(ctx context.Context, uri string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var policy backoff.BackOff = &backoff.StopBackOff{}
	if t.RetryTimeLimit > 0 {
		exponentialBackoff := backoff.NewExponentialBackOff()
		exponentialBackoff.MaxElapsedTime = t.RetryTimeLimit
		policy = exponentialBackoff
	}

	err = backoff.RetryNotify(func() error {
		return t.get(req, v)
	},
		backoff.WithContext(policy, ctx),
		func(err error, d time.Duration) {
			t.Logger.Warn().Err(err).Str("url", uri).Msgf("Retrying in %s", d)
		},
	)
	if err != nil {
		return err
	}

	return nil
}

func (t HTTPTransport) get(req *http.Request, v interface{}) error {
	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to complete request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		dump, _ := httputil.DumpResponse(resp, true)
		err = fmt.Errorf("unexpected response: %s", dump)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return err
		}

		return backoff.Permanent(err)
	}

	err = json.NewDecoder(resp.Body).Decode(v)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
	}

	return nil
}
