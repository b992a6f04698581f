// Package livestatus keeps the persisted live flags of member channels
// in step with the external streaming platform.
package livestatus

import "context"

// Status is the observed live state of one channel at poll time.
type Status struct {
	ChannelKey   string
	IsLive       bool
	ViewerCount  int
	StreamTitle  string
	ThumbnailURL string
}

// StatusChecker polls one channel's live state from the upstream
// platform. Implementations must treat an upstream failure as an error,
// never as "offline".
type StatusChecker interface {
	Check(ctx context.Context, channelKey string) (*Status, error)
}
