package messages

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCreateMessageSuccess(t *testing.T) {
	var captured Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/generate", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Equal(t, "secret", r.Header.Get("x-api-key"))
		require.Equal(t, defaultAPIVersion, r.Header.Get("anthropic-version"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Mars "},{"type":"tool_use","id":"x"},{"type":"text","text":"hums."}],"usage":{"input_tokens":12,"output_tokens":4}}`))
	}))
	defer server.Close()

	client := NewClient(Options{APIKey: "secret", BaseURL: server.URL, Path: "api/generate"})
	resp, err := client.CreateMessage(context.Background(), Request{
		Model:     "model-x",
		MaxTokens: 1000,
		Messages:  []Message{{Role: "user", Content: "prompt"}},
	})
	require.NoError(t, err)
	require.Equal(t, "Mars hums.", resp.Text())
	require.NotNil(t, resp.Usage)
	require.Equal(t, 12, resp.Usage.InputTokens)

	require.Equal(t, "model-x", captured.Model)
	require.Equal(t, 1000, captured.MaxTokens)
	require.Equal(t, []Message{{Role: "user", Content: "prompt"}}, captured.Messages)
}

func TestCreateMessageOmitsAuthHeadersWithoutKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("x-api-key"))
		require.Empty(t, r.Header.Get("anthropic-version"))
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	resp, err := NewClient(Options{BaseURL: server.URL}).CreateMessage(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "p"}},
	})
	require.NoError(t, err)
	require.Empty(t, resp.Text())
}

func TestCreateMessageErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer server.Close()

	_, err := NewClient(Options{BaseURL: server.URL}).CreateMessage(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "p"}},
	})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	require.Equal(t, "slow down", apiErr.Message)
}

func TestCreateMessageErrorPayloadWithSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	}))
	defer server.Close()

	_, err := NewClient(Options{BaseURL: server.URL}).CreateMessage(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "p"}},
	})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "overloaded", apiErr.Message)
}

func TestCreateMessageMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway</html>`))
	}))
	defer server.Close()

	_, err := NewClient(Options{BaseURL: server.URL}).CreateMessage(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "p"}},
	})
	require.ErrorContains(t, err, "decode message response")
}

func TestCreateMessageRejectsMissingContent(t *testing.T) {
	for _, body := range []string{`{}`, `null`, `{"id":"msg_1"}`, `{"content":null}`} {
		t.Run(body, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			_, err := NewClient(Options{BaseURL: server.URL}).CreateMessage(context.Background(), Request{
				Messages: []Message{{Role: "user", Content: "p"}},
			})
			require.ErrorIs(t, err, ErrMissingContent)
			require.ErrorContains(t, err, "decode message response")
		})
	}
}

func TestCreateMessageHonoursContextDeadline(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewClient(Options{BaseURL: server.URL}).CreateMessage(ctx, Request{
		Messages: []Message{{Role: "user", Content: "p"}},
	})
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCreateMessageRequiresMessages(t *testing.T) {
	_, err := NewClient(Options{}).CreateMessage(context.Background(), Request{Model: "m"})
	require.Error(t, err)
}
