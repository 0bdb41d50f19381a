package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/deployprobe/deployprobe/internal/circuitbreaker"
)

// ErrInvalidURL is returned for targets that are not absolute http(s) URLs.
var ErrInvalidURL = errors.New("probe target must be an absolute http or https URL")

// Client performs the outbound GET requests behind /external and /slow
// (http mode), guarded by a shared circuit breaker.
type Client struct {
	http    *http.Client
	breaker *circuitbreaker.CircuitBreaker
}

// Result captures one outbound call.
type Result struct {
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers"`
	Data       any               `json:"json"`
	ElapsedSec float64           `json:"elapsed_sec"`
}

func NewClient(timeout time.Duration, breaker *circuitbreaker.CircuitBreaker) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		breaker: breaker,
	}
}

// Get fetches rawURL once and decodes the response body as JSON when it is
// JSON; other bodies are carried as plain text.
func (c *Client) Get(ctx context.Context, rawURL string) (*Result, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, ErrInvalidURL
	}

	var result *Result
	started := time.Now()

	call := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return fmt.Errorf("reading response body: %w", err)
		}

		headers := make(map[string]string, len(resp.Header))
		for key := range resp.Header {
			headers[key] = resp.Header.Get(key)
		}

		result = &Result{
			StatusCode: resp.StatusCode,
			Headers:    headers,
			Data:       decodeBody(body),
		}
		return nil
	}

	if c.breaker != nil {
		err = c.breaker.Call(call)
	} else {
		err = call()
	}
	if err != nil {
		return nil, err
	}

	result.ElapsedSec = time.Since(started).Seconds()
	return result, nil
}

// Breaker exposes the guarding breaker for status reporting.
func (c *Client) Breaker() *circuitbreaker.CircuitBreaker {
	return c.breaker
}

func decodeBody(body []byte) any {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return string(body)
	}
	return data
}
