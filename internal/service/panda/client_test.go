package panda

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fanhub/fanhub-core/internal/config"
)

func newTestClient(url string) *Client {
	return NewClient(&config.SyncConfig{
		LiveListURL:    url,
		RequestTimeout: 5 * time.Second,
	})
}

func TestCheckLiveByListMembership(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"list":[{"userId":"Rina","userNick":"rina","title":"evening stream","user":321,"thumbUrl":"https://cdn.example/rina.jpg"}]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	status, err := c.Check(context.Background(), "rina")
	require.NoError(t, err)
	assert.True(t, status.IsLive, "userId match is case insensitive")
	assert.Equal(t, 321, status.ViewerCount)
	assert.Equal(t, "evening stream", status.StreamTitle)
	assert.Equal(t, "https://cdn.example/rina.jpg", status.ThumbnailURL)

	status, err = c.Check(context.Background(), "other")
	require.NoError(t, err)
	assert.False(t, status.IsLive, "absence from the list means offline")
}

func TestCheckSharesOneListFetch(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = w.Write([]byte(`{"list":[]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	for _, key := range []string{"ch-a", "ch-b", "ch-c"} {
		_, err := c.Check(context.Background(), key)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, requests)
}

func TestCheckErrorWithoutCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	_, err := c.Check(context.Background(), "rina")
	assert.Error(t, err, "an unreachable platform is an error, not offline")
}

func TestCheckFallsBackToStaleCache(t *testing.T) {
	failing := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"list":[{"userId":"rina","title":"t","user":1}]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	_, err := c.Check(context.Background(), "rina")
	require.NoError(t, err)

	failing = true
	c.fetchedAt = time.Now().Add(-time.Minute) // expire the cache

	status, err := c.Check(context.Background(), "rina")
	require.NoError(t, err)
	assert.True(t, status.IsLive, "stale list still answers when the fetch fails")
}
