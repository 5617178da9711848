package models

// BookingNotification is the payload sent to the admin when a booking is
// created.
type BookingNotification struct {
	BookingID  string        `json:"booking_id"`
	Code       string        `json:"code"`
	UnitID     string        `json:"unit_id"`
	UnitName   string        `json:"unit_name"`
	Start      string        `json:"start"`
	End        string        `json:"end"`
	Nights     int           `json:"nights"`
	PartySize  int           `json:"party_size"`
	GuestName  string        `json:"guest_name"`
	GuestEmail string        `json:"guest_email"`
	GuestPhone string        `json:"guest_phone,omitempty"`
	TotalPrice float64       `json:"total_price"`
	Status     BookingStatus `json:"status"`
	Source     string        `json:"source"`
	Note       string        `json:"note,omitempty"`
	CreatedBy  string        `json:"created_by"`
}
