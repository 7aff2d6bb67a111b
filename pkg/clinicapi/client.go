// Package clinicapi is the REST client for the clinic backend that owns the
// patient queue, consultation records and the diagnosis/medicine catalogues.
package clinicapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIError is a non-2xx answer from the backend. Message carries the
// backend's human-readable "error" field when it sent one.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("clinicapi: %s %s: %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("clinicapi: %s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
}

// ErrorMessage returns the backend-provided message carried by err, or
// fallback when err is a transport failure or the backend sent no message.
func ErrorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for the backend rooted at baseURL
// (for example http://localhost:8000/api).
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewClientWithHTTP lets callers supply their own transport.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: hc}
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, req, res interface{}) error {
	var body io.Reader
	if req != nil {
		b := &bytes.Buffer{}
		if err := json.NewEncoder(b).Encode(req); err != nil {
			return fmt.Errorf("clinicapi: encode %s %s: %w", method, path, err)
		}
		body = b
	}

	u := c.baseURL + path
	if len(params) != 0 {
		u += "?" + params.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Accept", "application/json")
	if req != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	httpRes, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("clinicapi: %s %s: %w", method, path, err)
	}
	defer httpRes.Body.Close()

	if httpRes.StatusCode >= 200 && httpRes.StatusCode < 300 {
		if res == nil || httpRes.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(httpRes.Body).Decode(res); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("clinicapi: decode %s %s: %w", method, path, err)
		}
		return nil
	}

	apiErr := &APIError{StatusCode: httpRes.StatusCode, Method: method, Path: path}
	var e errorBody
	if err := json.NewDecoder(httpRes.Body).Decode(&e); err == nil {
		apiErr.Message = e.Error
		if apiErr.Message == "" {
			apiErr.Message = e.Message
		}
	}
	return apiErr
}
