package generation

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/astroml/internal/infra/llm/messages"
)

func TestGenerateSuccess(t *testing.T) {
	stub := &stubMessageClient{resp: messages.Response{
		Content: []messages.ContentBlock{{Type: "text", Text: "Venus "}, {Type: "image"}, {Type: "text", Text: "listens."}},
		Usage:   &messages.Usage{InputTokens: 40, OutputTokens: 9},
	}}
	client := newTestClient(stub, Config{Model: "m", MaxTokens: 1000})

	res := client.Generate(context.Background(), "the prompt", NatalFallback)
	require.Equal(t, "Venus listens.", res.Text)
	require.False(t, res.Fallback)
	require.Equal(t, 49, res.Usage.Total())

	require.Equal(t, 1, stub.calls)
	require.Equal(t, "m", stub.last.Model)
	require.Equal(t, 1000, stub.last.MaxTokens)
	require.Equal(t, []messages.Message{{Role: "user", Content: "the prompt"}}, stub.last.Messages)
}

func TestGenerateEmptyContent(t *testing.T) {
	client := newTestClient(&stubMessageClient{}, Config{})
	res := client.Generate(context.Background(), "p", NatalFallback)
	require.Empty(t, res.Text)
	require.False(t, res.Fallback)
}

func TestGenerateFallsBackOnError(t *testing.T) {
	for _, fallback := range []string{NatalFallback, DailyFallback} {
		stub := &stubMessageClient{err: &messages.APIError{StatusCode: 500, Message: "boom"}}
		res := newTestClient(stub, Config{}).Generate(context.Background(), "p", fallback)
		require.Equal(t, fallback, res.Text)
		require.True(t, res.Fallback)
		require.Equal(t, 1, stub.calls, "no retry")
	}
	require.NotEqual(t, NatalFallback, DailyFallback)
}

func TestGenerateFallsBackOnMalformedSuccessBody(t *testing.T) {
	for _, body := range []string{`{}`, `null`, `{"id":"msg_1"}`, `not json`} {
		t.Run(body, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			client := newTestClient(messages.NewClient(messages.Options{BaseURL: server.URL}), Config{Model: "m", MaxTokens: 10, Timeout: time.Second})
			res := client.Generate(context.Background(), "p", NatalFallback)
			require.True(t, res.Fallback)
			require.Equal(t, NatalFallback, res.Text)
		})
	}
}

func TestGenerateEmptyContentListFromEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	client := newTestClient(messages.NewClient(messages.Options{BaseURL: server.URL}), Config{Model: "m", MaxTokens: 10, Timeout: time.Second})
	res := client.Generate(context.Background(), "p", DailyFallback)
	require.False(t, res.Fallback)
	require.Empty(t, res.Text)
}

func TestGenerateTimesOut(t *testing.T) {
	stub := &stubMessageClient{block: true}
	client := newTestClient(stub, Config{Timeout: 20 * time.Millisecond})

	done := make(chan Result, 1)
	go func() { done <- client.Generate(context.Background(), "p", DailyFallback) }()

	select {
	case res := <-done:
		require.True(t, res.Fallback)
		require.Equal(t, DailyFallback, res.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("generate did not honour its timeout")
	}
}

func TestGenerateHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := newTestClient(&stubMessageClient{block: true}, Config{}).Generate(ctx, "p", NatalFallback)
	require.True(t, res.Fallback)
}

func newTestClient(stub MessageClient, cfg Config) *Client {
	return NewClient(cfg, stub, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type stubMessageClient struct {
	resp  messages.Response
	err   error
	block bool
	calls int
	last  messages.Request
}

func (s *stubMessageClient) CreateMessage(ctx context.Context, req messages.Request) (messages.Response, error) {
	s.calls++
	s.last = req
	if s.block {
		<-ctx.Done()
		return messages.Response{}, ctx.Err()
	}
	if s.err != nil {
		return messages.Response{}, s.err
	}
	return s.resp, nil
}

var _ MessageClient = (*stubMessageClient)(nil)
