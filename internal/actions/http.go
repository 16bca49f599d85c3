package actions

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shaiso/Plankit/internal/pipeline"
	"github.com/shaiso/Plankit/internal/telemetry"
)

const (
	// ActionHTTP — HTTP запрос.
	ActionHTTP = "http"

	defaultHTTPTimeout = 30 * time.Second
	maxErrorBody       = 4 * 1024
)

// Ключи конфигурации HTTP действия.
const (
	configMethod          = "method"
	configURL             = "url"
	configHeaders         = "headers"
	configBody            = "body"
	configFollowRedirects = "follow_redirects"
	configValidateSSL     = "validate_ssl"
	configTimeoutSec      = "timeout_sec"
)

// httpConfig — распарсенная конфигурация HTTP действия.
type httpConfig struct {
	Method          string
	URL             string
	Headers         map[string]string
	Body            []byte
	FollowRedirects bool
	ValidateSSL     bool
	Timeout         time.Duration
}

// NewHTTP создаёт действие HTTP запроса.
//
// Конфигурация:
//
//	with:
//	  method: POST
//	  url: https://deploy.example.com/hooks/release
//	  headers:
//	    Authorization: Bearer xxx
//	  body: {"version": "1.2.3"}
//	  follow_redirects: true
//	  validate_ssl: true
//	  timeout_sec: 30
//
// Ответ со статусом >= 400 — ошибка *HTTPError.
func NewHTTP(cfg map[string]any) (pipeline.ActionFunc, error) {
	c, err := parseHTTPConfig(cfg)
	if err != nil {
		return nil, err
	}

	client := buildClient(c)

	return func(ctx context.Context) error {
		req, err := buildRequest(ctx, c)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: %w", ErrActionCancelled, ctx.Err())
			}
			return fmt.Errorf("http request failed: %w", err)
		}
		defer resp.Body.Close()

		telemetry.FromContext(ctx).Debug("http response",
			"method", c.Method,
			"url", c.URL,
			"status_code", resp.StatusCode,
		)

		if resp.StatusCode >= http.StatusBadRequest {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			return &HTTPError{
				StatusCode: resp.StatusCode,
				Status:     http.StatusText(resp.StatusCode),
				Body:       string(body),
			}
		}

		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}, nil
}

// parseHTTPConfig парсит и проверяет конфигурацию.
func parseHTTPConfig(cfg map[string]any) (*httpConfig, error) {
	c := &httpConfig{
		Method:          GetConfigString(cfg, configMethod),
		URL:             GetConfigString(cfg, configURL),
		Headers:         GetConfigMapString(cfg, configHeaders),
		FollowRedirects: GetConfigBool(cfg, configFollowRedirects, true),
		ValidateSSL:     GetConfigBool(cfg, configValidateSSL, true),
		Timeout:         defaultHTTPTimeout,
	}

	if c.URL == "" {
		return nil, fmt.Errorf("%w: %s: url is required", ErrInvalidConfig, ActionHTTP)
	}
	if !strings.HasPrefix(c.URL, "http://") && !strings.HasPrefix(c.URL, "https://") {
		return nil, fmt.Errorf("%w: %s: url must be http(s): %q", ErrInvalidConfig, ActionHTTP, c.URL)
	}

	if c.Method == "" {
		c.Method = http.MethodGet
	}
	c.Method = strings.ToUpper(c.Method)

	if c.Headers == nil {
		c.Headers = make(map[string]string)
	}

	if sec := GetConfigInt(cfg, configTimeoutSec); sec > 0 {
		c.Timeout = time.Duration(sec) * time.Second
	}

	if body, ok := cfg[configBody]; ok && body != nil {
		b, err := serializeBody(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: body: %v", ErrInvalidConfig, ActionHTTP, err)
		}
		c.Body = b

		if _, hasContentType := c.Headers["Content-Type"]; !hasContentType {
			c.Headers["Content-Type"] = "application/json"
		}
	}

	return c, nil
}

// buildClient создаёт HTTP клиент с нужными настройками.
func buildClient(c *httpConfig) *http.Client {
	var checkRedirect func(*http.Request, []*http.Request) error
	if !c.FollowRedirects {
		checkRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return &http.Client{
		Timeout:       c.Timeout,
		CheckRedirect: checkRedirect,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: !c.ValidateSSL},
		},
	}
}

// buildRequest создаёт HTTP запрос. Body читается заново на каждый вызов.
func buildRequest(ctx context.Context, c *httpConfig) (*http.Request, error) {
	var body io.Reader
	if c.Body != nil {
		body = bytes.NewReader(c.Body)
	}

	req, err := http.NewRequestWithContext(ctx, c.Method, c.URL, body)
	if err != nil {
		return nil, err
	}

	for key, value := range c.Headers {
		req.Header.Set(key, value)
	}

	return req, nil
}

// serializeBody сериализует body в bytes.
func serializeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return json.Marshal(v)
	}
}

// HTTPError — ответ со статусом >= 400.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

// Error реализует интерфейс error.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

// Unwrap возвращает ErrHTTPStatus.
func (e *HTTPError) Unwrap() error {
	return ErrHTTPStatus
}

// IsHTTPError проверяет, является ли ошибка HTTP ошибкой.
func IsHTTPError(err error) bool {
	var herr *HTTPError
	return errors.As(err, &herr)
}
