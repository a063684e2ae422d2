package messages

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultBaseURL    = "https://api.anthropic.com/v1"
	defaultPath       = "/messages"
	defaultAPIVersion = "2023-06-01"
	errorBodyLimit    = 4 << 10
)

// ErrMissingContent reports a success status whose body has no content list.
var ErrMissingContent = errors.New("missing content")

// Message is a single conversational turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the payload sent to the generation endpoint.
type Request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []Message `json:"messages"`
}

// ContentBlock is one element of a response's content list.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Usage reports token accounting when the endpoint provides it.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Response captures the success body.
type Response struct {
	Content []ContentBlock `json:"content"`
	Usage   *Usage         `json:"usage,omitempty"`
}

// Text concatenates every text block in order.
func (r Response) Text() string {
	var b strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// APIError is returned when the endpoint answers with an error payload or a
// non-success status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("messages request failed: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("messages request failed: status=%d message=%s", e.StatusCode, e.Message)
}

type errorEnvelope struct {
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Options configures a Client.
type Options struct {
	APIKey     string
	BaseURL    string
	Path       string
	APIVersion string
	HTTPClient *http.Client
}

// Client performs HTTP requests to a Messages-style generation endpoint.
type Client struct {
	apiKey     string
	apiVersion string
	endpoint   string
	httpClient *http.Client
}

// NewClient constructs a client. The API key is optional so the client can
// target an authenticating proxy.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	path := strings.TrimSpace(opts.Path)
	if path == "" {
		path = defaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	version := strings.TrimSpace(opts.APIVersion)
	if version == "" {
		version = defaultAPIVersion
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		// Per-call deadlines come from the caller's context.
		httpClient = &http.Client{}
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		apiVersion: version,
		endpoint:   strings.TrimRight(baseURL, "/") + path,
		httpClient: httpClient,
	}
}

// CreateMessage issues a single generation request.
func (c *Client) CreateMessage(ctx context.Context, req Request) (Response, error) {
	var out Response

	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return out, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return out, fmt.Errorf("request message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return out, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(payload)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, fmt.Errorf("read message response: %w", err)
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return out, fmt.Errorf("decode message response: %w", err)
	}
	if envelope.Error != nil {
		return out, &APIError{StatusCode: resp.StatusCode, Message: envelope.Error.Message}
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("decode message response: %w", err)
	}
	// An empty list is a valid reply; an absent or null one is not.
	if out.Content == nil {
		return out, fmt.Errorf("decode message response: %w", ErrMissingContent)
	}
	return out, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("messages request requires at least one message")
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode message request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build message request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("x-api-key", c.apiKey)
		httpReq.Header.Set("anthropic-version", c.apiVersion)
	}
	return httpReq, nil
}

func errorMessage(payload []byte) string {
	var envelope errorEnvelope
	if err := json.Unmarshal(payload, &envelope); err == nil && envelope.Error != nil {
		return envelope.Error.Message
	}
	return strings.TrimSpace(string(payload))
}
