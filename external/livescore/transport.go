package livescore

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/livescore-tracker/internal/platform/resilience"
	"github.com/riskibarqy/livescore-tracker/internal/usecase"
)

var credentialParamRegex = regexp.MustCompile(`(key|secret)=[^&\s"']+`)

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string) (apiEnvelope, error) {
	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	values.Set("key", c.apiKey)
	values.Set("secret", c.apiSecret)
	fullURL := c.baseURL + path + "?" + values.Encode()

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		var raw []byte
		call := func() error {
			var reqErr error
			raw, reqErr = c.executeWithRetry(ctx, fullURL)
			return reqErr
		}

		if !c.circuitEnabled {
			err := call()
			return raw, err
		}
		if err := c.breaker.Execute(call, isCircuitFailure); err != nil {
			if stderrors.Is(err, resilience.ErrCircuitOpen) {
				c.logger.WarnContext(ctx, "live score api circuit breaker rejected request", "state", c.breaker.State())
				return nil, fmt.Errorf("%w: live score api is temporarily unavailable", usecase.ErrDependencyUnavailable)
			}
			return nil, err
		}
		return raw, nil
	})
	if err != nil {
		return apiEnvelope{}, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return apiEnvelope{}, fmt.Errorf("unexpected response payload type %T", out)
	}

	var envelope apiEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return apiEnvelope{}, fmt.Errorf("decode live score payload: %w", err)
	}
	return envelope, nil
}

// executeWithRetry performs the GET, retrying transient failures with
// exponential backoff. An API-level success=false counts as transient.
func (c *Client) executeWithRetry(ctx context.Context, fullURL string) ([]byte, error) {
	var body []byte
	err := resilience.Retry(ctx, c.retry, isRetryable, func(ctx context.Context, attempt int) error {
		raw, err := c.executeRequest(ctx, fullURL)
		if err == nil {
			err = checkAPIStatus(raw)
		}
		if err != nil {
			c.logger.DebugContext(ctx, "live score api attempt failed",
				"url", redactAPIURL(fullURL),
				"attempt", attempt+1,
				"max_attempts", c.retry.MaxAttempts,
				"error", err,
			)
			return err
		}
		body = raw
		return nil
	})
	if err != nil {
		c.logger.WarnContext(ctx, "live score api request failed", "url", redactAPIURL(fullURL), "error", err)
		return nil, err
	}
	return body, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %s", errTransient, c.sanitizeSensitiveText(err.Error()))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", errTransient, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	if isRetryableStatus(resp.StatusCode) {
		return nil, fmt.Errorf("%w: live score api status=%d body=%s", errTransient, resp.StatusCode, abbreviateBody(raw))
	}
	return nil, fmt.Errorf("live score api status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
}

func checkAPIStatus(raw []byte) error {
	var status struct {
		Success *bool `json:"success"`
		Error   any   `json:"error"`
	}
	if err := sonic.Unmarshal(raw, &status); err != nil {
		return fmt.Errorf("decode live score payload: %w", err)
	}
	if status.Success != nil && !*status.Success {
		return fmt.Errorf("%w: %w: %v", errTransient, ErrAPIFailure, status.Error)
	}
	return nil
}

func isRetryable(err error) bool {
	return stderrors.Is(err, errTransient)
}

func isCircuitFailure(err error) bool {
	return err != nil && stderrors.Is(err, errTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func (c *Client) sanitizeSensitiveText(value string) string {
	value = strings.TrimSpace(value)
	for _, secret := range []string{c.apiKey, c.apiSecret} {
		if secret != "" {
			value = strings.ReplaceAll(value, secret, "REDACTED")
		}
	}
	return credentialParamRegex.ReplaceAllString(value, "$1=REDACTED")
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	for _, key := range []string{"key", "secret"} {
		if query.Has(key) {
			query.Set(key, "REDACTED")
		}
	}
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
