package models

import "time"

// Unit is a rentable property.
type Unit struct {
	ID           string    `bson:"id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Description  string    `bson:"description,omitempty" json:"description,omitempty"`
	MaxOccupancy int       `bson:"max_occupancy" json:"max_occupancy"`
	BasePrice    float64   `bson:"base_price" json:"base_price"`
	WeekendPrice *float64  `bson:"weekend_price,omitempty" json:"weekend_price,omitempty"`
	MinimumStay  int       `bson:"minimum_stay" json:"minimum_stay"`
	Active       bool      `bson:"active" json:"active"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// UnitInput is the admin payload for creating or replacing a unit.
type UnitInput struct {
	Name         string   `json:"name" validate:"required,max=200"`
	Description  string   `json:"description" validate:"max=5000"`
	MaxOccupancy int      `json:"max_occupancy" validate:"min=1,max=50"`
	BasePrice    float64  `json:"base_price" validate:"gt=0"`
	WeekendPrice *float64 `json:"weekend_price" validate:"omitempty,gt=0"`
	MinimumStay  int      `json:"minimum_stay" validate:"min=0"`
	Active       *bool    `json:"active"`
}

// UnitPricingUpdate lists the pricing fields an admin may change. A
// weekend price of zero clears it.
type UnitPricingUpdate struct {
	BasePrice    *float64 `json:"base_price" validate:"omitempty,gt=0"`
	WeekendPrice *float64 `json:"weekend_price" validate:"omitempty,gte=0"`
	MinimumStay  *int     `json:"minimum_stay" validate:"omitempty,min=0"`
}

// UnitPricing is the pricing view of a unit.
type UnitPricing struct {
	UnitID       string   `json:"unit_id"`
	BasePrice    float64  `json:"base_price"`
	WeekendPrice *float64 `json:"weekend_price,omitempty"`
	MinimumStay  int      `json:"minimum_stay"`
}

// UnitCalendar is the public availability overview used by calendar
// views. It carries no guest data.
type UnitCalendar struct {
	UnitID      string         `json:"unit_id"`
	Bookings    []BookedDates  `json:"bookings"`
	Blocks      []BlockedDates `json:"blocks"`
	RatePeriods []RatePeriod   `json:"rate_periods"`
}

// BookedDates is the public view of a booking.
type BookedDates struct {
	ID string `json:"id"`
	DateRange
	Status BookingStatus `json:"status"`
}

// BlockedDates is the public view of a date block.
type BlockedDates struct {
	DateRange
	Source BlockSource `json:"source"`
}
