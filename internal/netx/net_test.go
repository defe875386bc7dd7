package netx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTimeout(t *testing.T) {
	t.Run("http client timeout", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer ts.Close()

		c := &http.Client{Timeout: 20 * time.Millisecond}
		_, err := c.Get(ts.URL)
		require.Error(t, err)
		assert.True(t, IsTimeout(err))
		assert.True(t, IsRetryable(err))
	})

	t.Run("wrapped context deadline", func(t *testing.T) {
		err := fmt.Errorf("upload: %w", context.DeadlineExceeded)
		assert.True(t, IsTimeout(err))
	})

	t.Run("plain error", func(t *testing.T) {
		assert.False(t, IsTimeout(errors.New("boom")))
		assert.False(t, IsTimeout(nil))
	})
}

func TestIsNetworkError(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		url := ts.URL
		ts.Close()

		_, err := http.Get(url)
		require.Error(t, err)
		assert.True(t, IsNetworkError(err))
		assert.True(t, IsRetryable(err))
	})

	t.Run("application error", func(t *testing.T) {
		assert.False(t, IsNetworkError(errors.New("400 bad request")))
		assert.False(t, IsNetworkError(nil))
		assert.False(t, IsRetryable(errors.New("nope")))
	})
}
