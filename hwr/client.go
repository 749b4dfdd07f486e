package hwr

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const DefaultURL = "https://cloud.myscript.com/api/v4.0/iink/batch"

const jiixMimeType = "application/vnd.myscript.jiix"

// MaxResponseSize bounds the response body read from the service.
const MaxResponseSize = 1 << 20

var (
	// ErrUnauthorized is returned for HTTP 401; the credentials will not
	// start working by retrying.
	ErrUnauthorized = errors.New("hwr: unauthorized")

	// ErrNotConfigured is returned when either key is missing.
	ErrNotConfigured = errors.New("hwr: application key and hmac key are required")

	// ErrResponseTooLarge is returned when the body exceeds MaxResponseSize.
	ErrResponseTooLarge = errors.New("hwr: response too large")
)

// StatusError is a non-2xx answer other than 401.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hwr: API error: status %d, response: %s", e.StatusCode, e.Body)
}

// Client talks to the MyScript batch endpoint.
type Client struct {
	ApplicationKey string
	HMACKey        string
	URL            string
	HTTPClient     *http.Client
}

func NewClient(applicationKey, hmacKey string) *Client {
	return &Client{
		ApplicationKey: applicationKey,
		HMACKey:        hmacKey,
		URL:            DefaultURL,
		HTTPClient:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether both keys are present.
func (c *Client) Configured() bool {
	return c != nil && c.ApplicationKey != "" && c.HMACKey != ""
}

// Sign returns the hex HMAC-SHA512 of data keyed by applicationKey+hmacKey.
func Sign(applicationKey, hmacKey string, data []byte) string {
	mac := hmac.New(sha512.New, []byte(applicationKey+hmacKey))
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

// SendRequest posts a signed JSON body and returns the raw response.
func (c *Client) SendRequest(ctx context.Context, data []byte, mimeType string) ([]byte, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	url := c.URL
	if url == "" {
		url = DefaultURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", mimeType+", application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("applicationKey", c.ApplicationKey)
	req.Header.Set("hmac", Sign(c.ApplicationKey, c.HMACKey, data))

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	res, err := httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, MaxResponseSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}
	if len(body) > MaxResponseSize {
		return nil, ErrResponseTooLarge
	}

	switch {
	case res.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case res.StatusCode < 200 || res.StatusCode > 299:
		return nil, &StatusError{StatusCode: res.StatusCode, Body: string(body)}
	}

	return body, nil
}
