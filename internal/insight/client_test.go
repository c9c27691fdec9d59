package insight

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, key string) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(Config{
		Endpoint:         srv.URL + "/v1beta/",
		Model:            "test-model",
		APIKey:           key,
		Timeout:          2 * time.Second,
		BreakerThreshold: 2,
		BreakerTimeout:   time.Minute,
	}, srv.Client(), nil)
	return c, srv
}

func TestGenerateSendsPromptAndReadsFirstCandidate(t *testing.T) {
	var got generateRequest
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Nice saving!"},{"text":"ignored"}]}}]}`))
	}, "secret")

	text, err := c.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "Nice saving!", text)
	require.Len(t, got.Contents, 1)
	assert.Equal(t, "user", got.Contents[0].Role)
	assert.Equal(t, "hello", got.Contents[0].Parts[0].Text)
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantErr   error
		transport bool
	}{
		{"no candidates", http.StatusOK, `{"candidates":[]}`, ErrNoCandidates, false},
		{"missing parts", http.StatusOK, `{"candidates":[{"content":{"parts":[]}}]}`, ErrNoCandidates, false},
		{"empty object", http.StatusOK, `{}`, ErrNoCandidates, false},
		{"server error", http.StatusInternalServerError, `oops`, ErrTransport, true},
		{"forbidden", http.StatusForbidden, `denied`, ErrTransport, true},
		{"malformed json", http.StatusOK, `{not json`, ErrTransport, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, "k")

			_, err := c.Generate(context.Background(), "p")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.transport, errors.Is(err, ErrTransport))
		})
	}
}

func TestGenerateStatusError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}, "k")

	_, err := c.Generate(context.Background(), "p")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
}

func TestGenerateWithoutKeyFailsFast(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}, "")

	_, err := c.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Zero(t, calls.Load())
}

func TestGenerateHonoursContext(t *testing.T) {
	release := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}, "k")
	// runs before srv.Close so a handler the server never cancels cannot block it
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Generate(ctx, "p")
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, "k")

	for i := 0; i < 2; i++ {
		_, err := c.Generate(context.Background(), "p")
		require.ErrorIs(t, err, ErrTransport)
	}
	assert.Equal(t, "open", c.State())

	_, err := c.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, int32(2), calls.Load())
}

func TestNoCandidatesDoesNotTripBreaker(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}, "k")

	for i := 0; i < 4; i++ {
		_, err := c.Generate(context.Background(), "p")
		require.ErrorIs(t, err, ErrNoCandidates)
	}
	assert.Equal(t, "closed", c.State())
}
