package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSONRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"status": "OK"}`))
	}))
	defer srv.Close()

	c := New(WithRetries(3, time.Millisecond))

	var resp struct {
		Status string `json:"status"`
	}
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, &resp))
	assert.Equal(t, "OK", resp.Status)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetJSONDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("no such thing"))
	}))
	defer srv.Close()

	c := New(WithRetries(3, time.Millisecond))

	err := c.GetJSON(context.Background(), srv.URL, nil)
	require.Error(t, err)

	var se *StatusError
	require.True(t, asStatusError(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx must not be retried")
}

func TestGetJSONExhaustsRetryBudget(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(WithRetries(2, time.Millisecond))

	err := c.GetJSON(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "initial attempt plus two retries")
}

func TestGetJSONHonoursContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(WithRetries(5, 50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.GetJSON(ctx, srv.URL, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBearerTokenAttached(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(WithToken("abc123"))
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, nil))
	assert.Equal(t, "Bearer abc123", got)
}

func TestPostJSONSingleShot(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(WithRetries(3, time.Millisecond))

	err := c.PostJSON(context.Background(), srv.URL, map[string]string{"a": "b"}, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "mutating requests are never retried")
}
