package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><main>Senior Go Engineer</main></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, result.HTML, "Senior Go Engineer")
	assert.Contains(t, result.ContentType, "text/html")
}

func TestURL_InvalidURL(t *testing.T) {
	for _, bad := range []string{"not-a-url", "", "ftp://example.com/jobs", "http://"} {
		_, err := URL(context.Background(), bad, nil)
		require.Error(t, err, "url %q should be rejected", bad)

		var ferr *Error
		require.ErrorAs(t, err, &ferr)
		assert.Equal(t, KindInvalidURL, ferr.Kind)
	}
}

func TestURL_HTTPError_NoRetry(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)

	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, KindHTTP, ferr.Kind)
	assert.Equal(t, http.StatusNotFound, ferr.StatusCode)
	assert.False(t, ferr.Retryable())
	assert.Equal(t, int32(1), attempts.Load(), "4xx responses must not be retried")

	// The raw body still comes back with the error for diagnostics.
	require.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
}

func TestURL_ConnectionFailure_RetriedOnce(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			// Drop the first connection mid-request to simulate a transient failure.
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			_ = conn.Close()
			return
		}
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Contains(t, result.HTML, "ok")
	assert.Equal(t, int32(2), attempts.Load())
}

func TestURL_ConnectionFailure_Exhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Refuse all connections.

	_, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)

	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, KindConnection, ferr.Kind)
}

func TestURL_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	opts := &Options{Timeout: 50 * time.Millisecond, UserAgent: DefaultUserAgent, MaxRetries: 1}
	_, err := URL(context.Background(), server.URL, opts)
	require.Error(t, err)

	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, KindTimeout, ferr.Kind)
	assert.False(t, ferr.Retryable(), "timeouts are bounded, not retried")
}

func TestURL_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := URL(ctx, server.URL, nil)
	require.Error(t, err)

	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	assert.True(t, errors.Is(ferr.Cause, context.Canceled) || ferr.Kind == KindConnection)
}

func TestExtractMainText_ContentSelector(t *testing.T) {
	html := `<html><body>
		<nav>Home | Jobs</nav>
		<main>We are hiring a Go engineer.</main>
		<footer>© Example</footer>
	</body></html>`

	text, err := ExtractMainText(html, []string{"main"})
	require.NoError(t, err)
	assert.Contains(t, text, "We are hiring a Go engineer.")
	assert.NotContains(t, text, "Home | Jobs")
	assert.NotContains(t, text, "© Example")
}

func TestExtractMainText_NoiseSelectors(t *testing.T) {
	html := `<html><body>
		<div class="content">Role description here.<div class="apply-box">Apply now!</div></div>
	</body></html>`

	text, err := ExtractMainText(html, []string{".content"}, ".apply-box")
	require.NoError(t, err)
	assert.Contains(t, text, "Role description here.")
	assert.NotContains(t, text, "Apply now!")
}

func TestExtractMainText_BodyFallback(t *testing.T) {
	html := `<html><body><p>Plain listing text</p></body></html>`

	text, err := ExtractMainText(html, []string{".does-not-exist"})
	require.NoError(t, err)
	assert.Contains(t, text, "Plain listing text")
}
