package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
}

// OccupyingStatuses are the states that hold calendar dates.
func OccupyingStatuses() []BookingStatus {
	return []BookingStatus{StatusPending, StatusConfirmed}
}

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Occupying reports whether a booking in this state blocks its dates.
func (s BookingStatus) Occupying() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanTransitionTo reports whether next is reachable from s. Staying in
// the same state is always allowed.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s == next {
		return next.Valid()
	}
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// GuestInfo identifies the person staying.
type GuestInfo struct {
	Name  string `bson:"guest_name" json:"guest_name" validate:"required,max=200"`
	Email string `bson:"guest_email" json:"guest_email" validate:"required,email"`
	Phone string `bson:"guest_phone,omitempty" json:"guest_phone,omitempty" validate:"max=40"`
}

// Booking is a reservation of one unit over one date range.
type Booking struct {
	ID         string `bson:"id" json:"id"`
	UnitID     string `bson:"unit_id" json:"unit_id"`
	UnitName   string `bson:"unit_name,omitempty" json:"unit_name,omitempty"`
	GuestID    string `bson:"guest_id,omitempty" json:"guest_id,omitempty"`
	Code       string `bson:"code" json:"code"`
	DateRange  `bson:",inline"`
	GuestInfo  `bson:",inline"`
	PartySize  int           `bson:"party_size" json:"party_size"`
	TotalPrice float64       `bson:"total_price" json:"total_price"`
	Status     BookingStatus `bson:"status" json:"status"`
	Note       string        `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt  time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `bson:"updated_at" json:"updated_at"`
}

// BookingRequest is the guest-facing booking payload.
type BookingRequest struct {
	UnitID    string `json:"unit_id" validate:"required"`
	Start     string `json:"start" validate:"required"`
	End       string `json:"end" validate:"required"`
	PartySize int    `json:"party_size" validate:"min=1,max=5"`
	GuestInfo
	Note string `json:"note" validate:"max=2000"`
}

// AdminBookingRequest adds the admin-only fields. An empty Status means
// confirmed; TotalPrice overrides the computed price.
type AdminBookingRequest struct {
	BookingRequest
	GuestID    string        `json:"guest_id"`
	Status     BookingStatus `json:"status"`
	TotalPrice *float64      `json:"total_price" validate:"omitempty,gte=0"`
}

// BookingUpdate enumerates the fields an admin may edit on a booking.
type BookingUpdate struct {
	GuestName  *string        `json:"guest_name" validate:"omitempty,max=200"`
	GuestEmail *string        `json:"guest_email" validate:"omitempty,email"`
	GuestPhone *string        `json:"guest_phone" validate:"omitempty,max=40"`
	Start      *string        `json:"start"`
	End        *string        `json:"end"`
	PartySize  *int           `json:"party_size" validate:"omitempty,min=1,max=5"`
	Note       *string        `json:"note" validate:"omitempty,max=2000"`
	TotalPrice *float64       `json:"total_price" validate:"omitempty,gte=0"`
	Status     *BookingStatus `json:"status"`
}

// BookingFilter narrows booking listings. Empty fields match everything.
type BookingFilter struct {
	UnitID   string
	Statuses []BookingStatus
}
