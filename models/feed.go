package models

import "time"

// CalendarFeed is an external calendar subscription for one unit.
type CalendarFeed struct {
	ID             string     `bson:"id" json:"id"`
	UnitID         string     `bson:"unit_id" json:"unit_id"`
	Name           string     `bson:"name" json:"name"`
	URL            string     `bson:"url" json:"url"`
	Active         bool       `bson:"active" json:"active"`
	LastSyncedAt   *time.Time `bson:"last_synced_at,omitempty" json:"last_synced_at,omitempty"`
	EventsImported int        `bson:"events_imported" json:"events_imported"`
	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `bson:"updated_at" json:"updated_at"`
}

// FeedInput is the admin payload for a new feed.
type FeedInput struct {
	UnitID string `json:"unit_id" validate:"required"`
	Name   string `json:"name" validate:"required,max=200"`
	URL    string `json:"url" validate:"required,url"`
	Active *bool  `json:"active"`
}

// FeedUpdate enumerates the editable feed fields.
type FeedUpdate struct {
	Name   *string `json:"name" validate:"omitempty,max=200"`
	URL    *string `json:"url" validate:"omitempty,url"`
	Active *bool   `json:"active"`
}

// FeedFilter narrows feed listings.
type FeedFilter struct {
	UnitID     string
	FeedID     string
	ActiveOnly bool
}

// FeedEvent is one normalized event read from a feed.
type FeedEvent struct {
	DateRange
	Label  string `json:"label"`
	UID    string `json:"uid,omitempty"`
	FeedID string `json:"feed_id,omitempty"`
}

// SyncResult reports the outcome of syncing one feed.
type SyncResult struct {
	FeedID        string `json:"feed_id"`
	FeedName      string `json:"feed_name"`
	UnitID        string `json:"unit_id"`
	EventsFound   int    `json:"events_found"`
	BlocksCreated int    `json:"blocks_created"`
	Error         string `json:"error,omitempty"`
}
