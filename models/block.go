package models

import "time"

// BlockSource tags where a date block came from.
type BlockSource string

const (
	BlockSourceManual  BlockSource = "manual"
	BlockSourceBooking BlockSource = "booking"
	BlockSourceAirbnb  BlockSource = "airbnb"
	BlockSourceICal    BlockSource = "ical"
)

// DefaultBlockReason is reported when a block carries no reason.
const DefaultBlockReason = "blocked"

// DateBlock marks a unit unavailable over a date range. Blocks with a
// FeedID belong to that feed and are replaced wholesale on every sync.
type DateBlock struct {
	ID        string `bson:"id" json:"id"`
	UnitID    string `bson:"unit_id" json:"unit_id"`
	DateRange `bson:",inline"`
	Reason    string      `bson:"reason,omitempty" json:"reason,omitempty"`
	Source    BlockSource `bson:"source" json:"source"`
	FeedID    string      `bson:"feed_id,omitempty" json:"feed_id,omitempty"`
	EventUID  string      `bson:"event_uid,omitempty" json:"event_uid,omitempty"`
	CreatedAt time.Time   `bson:"created_at" json:"created_at"`
}

// DisplayReason returns the reason or the generic marker.
func (b DateBlock) DisplayReason() string {
	if b.Reason != "" {
		return b.Reason
	}
	return DefaultBlockReason
}

// BlockInput is the admin payload for a manual block.
type BlockInput struct {
	UnitID string `json:"unit_id" validate:"required"`
	Start  string `json:"start" validate:"required"`
	End    string `json:"end" validate:"required"`
	Reason string `json:"reason" validate:"max=500"`
}

// Availability is the answer of an availability check.
type Availability struct {
	Available bool        `json:"available"`
	Reason    string      `json:"reason,omitempty"`
	Price     *PriceQuote `json:"price,omitempty"`
}
