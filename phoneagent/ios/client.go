package ios

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	json "github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// WebDriverError is a W3C WebDriver error payload.
type WebDriverError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"error"`
	Message    string `json:"message"`
	Stacktrace string `json:"stacktrace,omitempty"`
}

func (e *WebDriverError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("webdriver error (status %d): %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("webdriver error (status %d): %s: %s", e.StatusCode, e.Code, e.Message)
}

type wdResponse[T any] struct {
	Value     T      `json:"value"`
	SessionID string `json:"sessionId,omitempty"`
}

type wdErrorResponse struct {
	Value WebDriverError `json:"value"`
}

// NewHTTPClient returns a resty client speaking JSON to a WebDriver server.
func NewHTTPClient(baseURL string) *resty.Client {
	return resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)
}

// call performs one WebDriver command and decodes its "value".
func call[T any](ctx context.Context, client *resty.Client, timeout time.Duration, method, path string, body any) (*wdResponse[T], error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var result wdResponse[T]
	var errBody wdErrorResponse

	req := client.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&errBody)
	if body != nil {
		req.SetBody(body)
	}

	log.Debug().Str("method", method).Str("path", path).Msg("[WebDriver] request")

	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		log.Error().Err(err).Str("method", method).Str("path", path).Msg("[WebDriver] request failed")
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode()).
		Dur("elapsed", time.Since(start)).
		Msg("[WebDriver] response")

	if resp.IsError() {
		wdErr := errBody.Value
		wdErr.StatusCode = resp.StatusCode()
		if wdErr.Code == "" {
			wdErr.Code = http.StatusText(resp.StatusCode())
			wdErr.Message = strings.TrimSpace(string(resp.Body()))
		}
		return nil, &wdErr
	}
	return &result, nil
}
