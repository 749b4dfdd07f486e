// Package vision reads handwritten math from images through a
// chat-completion model and solves typed expressions with the same model.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/ddvk/inkcalc/log"
)

const (
	DefaultURL   = "https://api.openai.com/v1/chat/completions"
	DefaultModel = "gpt-4o-mini"
)

var (
	ErrUnauthorized     = errors.New("vision: unauthorized")
	ErrNotConfigured    = errors.New("vision: api key is required")
	ErrResponseTooLarge = errors.New("vision: response too large")

	errEmptyCluster = errors.New("vision: empty cluster")
)

// MaxResponseSize bounds the response body read from the API.
const MaxResponseSize = 1 << 20

// StatusError is a non-2xx answer other than 401.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("vision: API error (%d): %s", e.StatusCode, e.Message)
}

// Client calls an OpenAI compatible chat-completion endpoint.
type Client struct {
	apiKey     string
	model      string
	url        string
	maxRetries int
	limiter    *rate.Limiter
	httpClient *http.Client
}

type Option func(*Client)

func WithURL(url string) Option {
	return func(c *Client) { c.url = url }
}

func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithRateLimit allows perSecond requests with the given burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithRetries retries transient failures with exponential backoff.
func WithRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		model:      DefaultModel,
		url:        DefaultURL,
		maxRetries: 1,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// complete sends one user message made of parts and returns the reply text.
func (c *Client) complete(ctx context.Context, parts []contentPart, maxTokens int) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Model:     c.model,
		Messages:  []chatMessage{{Role: "user", Content: parts}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal request")
	}

	attempts := c.maxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * 500 * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		reply, err := c.send(ctx, body)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		var se *StatusError
		if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrResponseTooLarge) || ctx.Err() != nil ||
			errors.As(err, &se) && se.StatusCode < 500 && se.StatusCode != http.StatusTooManyRequests {
			break
		}
		log.Trace.Printf("vision: attempt %d failed: %v", i+1, err)
	}
	return "", lastErr
}

func (c *Client) send(ctx context.Context, body []byte) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", errors.Wrap(err, "rate limit")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return "", errors.Wrap(err, "failed to read response")
	}
	if len(data) > MaxResponseSize {
		return "", ErrResponseTooLarge
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return "", ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			return "", &StatusError{StatusCode: resp.StatusCode, Message: apiErr.Error.Message}
		}
		return "", &StatusError{StatusCode: resp.StatusCode, Message: string(data)}
	}

	var out chatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", errors.Wrap(err, "failed to parse response")
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// Read asks the model to transcribe and solve the math in a PNG image.
func (c *Client) Read(ctx context.Context, png []byte) (Reading, error) {
	reply, err := c.complete(ctx, []contentPart{
		{Type: "text", Text: readPrompt},
		{Type: "image_url", ImageURL: &imageURL{URL: DataURL(png)}},
	}, 100)
	if err != nil {
		return Reading{}, err
	}
	return ParseReply(reply), nil
}

// Solve returns only the final simplified result of a typed expression.
func (c *Client) Solve(ctx context.Context, expression string) (string, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return "", errors.New("vision: empty expression")
	}
	reply, err := c.complete(ctx, []contentPart{
		{Type: "text", Text: fmt.Sprintf(solvePrompt, expression)},
	}, 60)
	if err != nil {
		return "", err
	}
	return cleanAnswer(reply), nil
}
