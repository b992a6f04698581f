package models

import "time"

// ChannelLiveState is the persisted live flag for one external channel.
// Rows are owned exclusively by the live-status synchronizer: a
// successful poll overwrites the row, a failed poll leaves it untouched.
type ChannelLiveState struct {
	ChannelKey    string    `db:"channel_key" json:"channel_key"`
	IsLive        bool      `db:"is_live" json:"is_live"`
	ViewerCount   int       `db:"viewer_count" json:"viewer_count"`
	StreamTitle   string    `db:"stream_title" json:"stream_title"`
	ThumbnailURL  string    `db:"thumbnail_url" json:"thumbnail_url"`
	LastCheckedAt time.Time `db:"last_checked_at" json:"last_checked_at"`
}

// Member is a roster entry for the community. ChannelKey links the
// member to their external streaming channel; IsLive is the denormalized
// summary flag the rendering layer reads.
type Member struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	ChannelKey string    `db:"channel_key" json:"channel_key"`
	IsLive     bool      `db:"is_live" json:"is_live"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
