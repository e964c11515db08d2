package fetch

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

func testPolicy() Policy {
	return Policy{Attempts: 5, Delay: time.Millisecond, Retryable: IsRetryable}
}

func TestFetchRetryBound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(srv.URL, WithPolicy(testPolicy()))
	payload, err := client.Fetch(context.Background(), "abc==")

	require.ErrorIs(t, err, ErrUnreachable)
	assert.Nil(t, payload)
	assert.Equal(t, int32(5), calls.Load(), "an always-failing upstream gets exactly 5 attempts")
}

func TestFetchInvalidResponseIsFatal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	client := New(srv.URL, WithPolicy(testPolicy()))
	_, err := client.Fetch(context.Background(), "abc==")

	require.ErrorIs(t, err, ErrInvalidResponse)
	assert.Equal(t, int32(1), calls.Load(), "a malformed 2xx body must not be retried")
}

func TestFetchRecoversMidway(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"hash": "abc==", "nome": "José Silva", "redacao": {"nota": "650,4"}}`))
	}))
	defer srv.Close()

	client := New(srv.URL, WithPolicy(testPolicy()))
	payload, err := client.Fetch(context.Background(), "abc==")

	require.NoError(t, err)
	require.NotNil(t, payload)
	assert.Equal(t, "abc==", payload.Hash)
	assert.Equal(t, "José Silva", payload.Name)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchSendsTokenAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "tok==", body["hash"])

		_, _ = w.Write([]byte(`{"hash": "tok=="}`))
	}))
	defer srv.Close()

	client := New(srv.URL, WithPolicy(testPolicy()))
	_, err := client.Fetch(context.Background(), "tok==")
	require.NoError(t, err)
}

func TestPolicyDo(t *testing.T) {
	t.Run("stops on non-retryable error", func(t *testing.T) {
		fatal := errors.New("fatal")
		calls := 0
		p := Policy{Attempts: 5, Delay: time.Millisecond, Retryable: func(error) bool { return false }}
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			return fatal
		})
		assert.ErrorIs(t, err, fatal)
		assert.Equal(t, 1, calls)
	})

	t.Run("last error wins", func(t *testing.T) {
		first := errors.New("first")
		last := errors.New("last")
		calls := 0
		p := Policy{Attempts: 2, Delay: time.Millisecond, Retryable: func(error) bool { return true }}
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			if calls == 1 {
				return first
			}
			return last
		})
		assert.ErrorIs(t, err, last)
		assert.NotErrorIs(t, err, first)
	})

	t.Run("context cancellation stops the wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		p := Policy{Attempts: 5, Delay: time.Hour, Retryable: func(error) bool { return true }}
		done := make(chan error, 1)
		go func() {
			done <- p.Do(ctx, func(context.Context) error { return errors.New("boom") })
		}()
		cancel()
		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(5 * time.Second):
			t.Fatal("Do did not return after context cancellation")
		}
	})
}
