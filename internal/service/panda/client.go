// Package panda is a client for the PandaTV live-list API. The API
// returns every channel that is currently broadcasting, so a channel's
// live state is decided by membership in that list.
package panda

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fanhub/fanhub-core/internal/config"
	"github.com/fanhub/fanhub-core/internal/livestatus"
)

const (
	listCacheTTL = 30 * time.Second
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

type liveItem struct {
	UserID   string `json:"userId"`
	UserNick string `json:"userNick"`
	Title    string `json:"title"`
	User     int    `json:"user"` // viewer count
	ThumbURL string `json:"thumbUrl"`
}

type liveListResponse struct {
	List []liveItem `json:"list"`
}

// Client polls channel live state against the PandaTV live list. One
// list fetch serves all channels of a sync pass; the list is cached
// briefly so concurrent checks share a single upstream request.
type Client struct {
	httpClient *http.Client
	listURL    string

	mu        sync.Mutex
	cached    []liveItem
	fetchedAt time.Time
}

// NewClient creates a PandaTV client from the sync configuration.
func NewClient(cfg *config.SyncConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		listURL:    cfg.LiveListURL,
	}
}

// Check reports the live state of one channel. A channel absent from
// the live list is offline; a failed list fetch with no usable cache is
// an error, never "offline".
func (c *Client) Check(ctx context.Context, channelKey string) (*livestatus.Status, error) {
	list, err := c.liveList(ctx)
	if err != nil {
		return nil, err
	}

	for _, item := range list {
		if strings.EqualFold(item.UserID, channelKey) {
			return &livestatus.Status{
				ChannelKey:   channelKey,
				IsLive:       true,
				ViewerCount:  item.User,
				StreamTitle:  item.Title,
				ThumbnailURL: item.ThumbURL,
			}, nil
		}
	}

	return &livestatus.Status{ChannelKey: channelKey, IsLive: false}, nil
}

func (c *Client) liveList(ctx context.Context) ([]liveItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && time.Since(c.fetchedAt) < listCacheTTL {
		return c.cached, nil
	}

	list, err := c.fetchLiveList(ctx)
	if err != nil {
		// A stale list beats reporting everyone offline.
		if c.cached != nil {
			return c.cached, nil
		}
		return nil, err
	}

	c.cached = list
	c.fetchedAt = time.Now()
	return list, nil
}

func (c *Client) fetchLiveList(ctx context.Context) ([]liveItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build live-list request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch live list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("live list returned HTTP %d", resp.StatusCode)
	}

	var parsed liveListResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode live list: %w", err)
	}

	return parsed.List, nil
}
