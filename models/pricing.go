package models

import "time"

// RatePeriod overrides a unit's nightly price between Start and End, both
// dates included.
type RatePeriod struct {
	ID          string `bson:"id" json:"id"`
	UnitID      string `bson:"unit_id" json:"unit_id"`
	Name        string `bson:"name" json:"name"`
	DateRange   `bson:",inline"`
	NightlyRate float64   `bson:"nightly_rate" json:"nightly_rate"`
	WeekendRate *float64  `bson:"weekend_rate,omitempty" json:"weekend_rate,omitempty"`
	MinimumStay int       `bson:"minimum_stay,omitempty" json:"minimum_stay,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// Covers reports whether day (YYYY-MM-DD) falls inside the period.
func (p RatePeriod) Covers(day string) bool {
	return p.Start <= day && day <= p.End
}

// RatePeriodInput is the admin payload for a rate period.
type RatePeriodInput struct {
	UnitID      string   `json:"unit_id" validate:"required"`
	Name        string   `json:"name" validate:"required,max=200"`
	Start       string   `json:"start" validate:"required"`
	End         string   `json:"end" validate:"required"`
	NightlyRate float64  `json:"nightly_rate" validate:"gt=0"`
	WeekendRate *float64 `json:"weekend_rate" validate:"omitempty,gt=0"`
	MinimumStay int      `json:"minimum_stay" validate:"min=0"`
}

// LongStayDiscount grants Percent off stays of at least MinNights nights.
type LongStayDiscount struct {
	ID        string    `bson:"id" json:"id"`
	UnitID    string    `bson:"unit_id" json:"unit_id"`
	MinNights int       `bson:"min_nights" json:"min_nights"`
	Percent   float64   `bson:"percent" json:"percent"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// DiscountInput is the admin payload for a long-stay discount.
type DiscountInput struct {
	UnitID    string  `json:"unit_id" validate:"required"`
	MinNights int     `json:"min_nights" validate:"min=1"`
	Percent   float64 `json:"percent" validate:"gt=0,lte=100"`
}

// Season applies Multiplier to nights falling in Months (1-12).
type Season struct {
	Name       string  `bson:"name" json:"name"`
	Months     []int   `bson:"months" json:"months"`
	Multiplier float64 `bson:"multiplier" json:"multiplier"`
}

// PricingSettingsID is the id of the single settings document.
const PricingSettingsID = "global"

// PricingSettings drives the settings-based calculator.
type PricingSettings struct {
	ID                    string    `bson:"id" json:"id"`
	BasePrice             float64   `bson:"base_price" json:"base_price"`
	WeekendPrice          float64   `bson:"weekend_price" json:"weekend_price"`
	GuestSurcharge        float64   `bson:"guest_surcharge" json:"guest_surcharge"`
	IncludedGuests        int       `bson:"included_guests" json:"included_guests"`
	WeeklyDiscountPct     float64   `bson:"weekly_discount_pct" json:"weekly_discount_pct"`
	MonthlyDiscountPct    float64   `bson:"monthly_discount_pct" json:"monthly_discount_pct"`
	Seasons               []Season  `bson:"seasons" json:"seasons"`
	MinimumStay           int       `bson:"minimum_stay" json:"minimum_stay"`
	HighSeasonMinimumStay int       `bson:"high_season_minimum_stay" json:"high_season_minimum_stay"`
	UpdatedAt             time.Time `bson:"updated_at" json:"updated_at"`
}

// DefaultPricingSettings is stored on first read.
func DefaultPricingSettings() PricingSettings {
	return PricingSettings{
		ID:                 PricingSettingsID,
		BasePrice:          100,
		WeekendPrice:       120,
		GuestSurcharge:     15,
		IncludedGuests:     2,
		WeeklyDiscountPct:  10,
		MonthlyDiscountPct: 20,
		Seasons: []Season{
			{Name: "Alta", Months: []int{7, 8}, Multiplier: 1.5},
			{Name: "Media", Months: []int{4, 5, 6, 9, 10}, Multiplier: 1.2},
			{Name: "Bassa", Months: []int{1, 2, 3, 11, 12}, Multiplier: 1.0},
		},
		MinimumStay:           2,
		HighSeasonMinimumStay: 3,
	}
}

// PricingSettingsUpdate enumerates the editable settings fields.
type PricingSettingsUpdate struct {
	BasePrice             *float64  `json:"base_price" validate:"omitempty,gt=0"`
	WeekendPrice          *float64  `json:"weekend_price" validate:"omitempty,gt=0"`
	GuestSurcharge        *float64  `json:"guest_surcharge" validate:"omitempty,gte=0"`
	IncludedGuests        *int      `json:"included_guests" validate:"omitempty,min=0"`
	WeeklyDiscountPct     *float64  `json:"weekly_discount_pct" validate:"omitempty,gte=0,lte=100"`
	MonthlyDiscountPct    *float64  `json:"monthly_discount_pct" validate:"omitempty,gte=0,lte=100"`
	Seasons               *[]Season `json:"seasons"`
	MinimumStay           *int      `json:"minimum_stay" validate:"omitempty,min=0"`
	HighSeasonMinimumStay *int      `json:"high_season_minimum_stay" validate:"omitempty,min=0"`
}

// NightPrice is one line of a price breakdown.
type NightPrice struct {
	Date      string  `json:"date"`
	Price     float64 `json:"price"`
	Label     string  `json:"label"`
	IsWeekend bool    `json:"is_weekend"`
}

// PriceQuote is the itemized price of a stay.
type PriceQuote struct {
	Strategy         string       `json:"strategy"`
	UnitID           string       `json:"unit_id,omitempty"`
	Start            string       `json:"start"`
	End              string       `json:"end"`
	Nights           int          `json:"nights"`
	PartySize        int          `json:"party_size"`
	Breakdown        []NightPrice `json:"breakdown"`
	NightsSubtotal   float64      `json:"nights_subtotal"`
	GuestSurcharge   float64      `json:"guest_surcharge"`
	Subtotal         float64      `json:"subtotal"`
	DiscountPct      float64      `json:"discount_pct"`
	DiscountLabel    string       `json:"discount_label,omitempty"`
	DiscountAmount   float64      `json:"discount_amount"`
	Total            float64      `json:"total"`
	MinimumStay      int          `json:"minimum_stay"`
	MeetsMinimumStay bool         `json:"meets_minimum_stay"`
}
