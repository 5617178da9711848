package notification

import (
	"context"
	"fmt"
	"strings"

	"maisonette/models"
)

// BookingNotifier tells the admin about new bookings. Callers treat
// failures as non-fatal.
type BookingNotifier interface {
	NotifyBookingCreated(ctx context.Context, n models.BookingNotification) error
}

// Mailer delivers a plain-text e-mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// PushSender delivers a push notification to a topic.
type PushSender interface {
	SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) error
}

// Booking sources derived from note tags.
const (
	SourceDirect   = "direct"
	SourceAirbnb   = "airbnb"
	SourceBooking  = "booking"
	SourceWhatsApp = "whatsapp"
	SourcePhone    = "phone"
)

// DetectBookingSource reads the channel tag an admin put in the note,
// e.g. "[airbnb]" or "[booking.com]".
func DetectBookingSource(note string) string {
	n := strings.ToLower(note)
	switch {
	case strings.Contains(n, "[airbnb]"):
		return SourceAirbnb
	case strings.Contains(n, "[booking"):
		return SourceBooking
	case strings.Contains(n, "[whatsapp]"):
		return SourceWhatsApp
	case strings.Contains(n, "[phone]"), strings.Contains(n, "[telefono]"):
		return SourcePhone
	}
	return SourceDirect
}

// NewBookingNotification builds the payload for a stored booking.
func NewBookingNotification(b models.Booking, createdBy string) models.BookingNotification {
	return models.BookingNotification{
		BookingID:  b.ID,
		Code:       b.Code,
		UnitID:     b.UnitID,
		UnitName:   b.UnitName,
		Start:      b.Start,
		End:        b.End,
		Nights:     b.Nights(),
		PartySize:  b.PartySize,
		GuestName:  b.GuestInfo.Name,
		GuestEmail: b.GuestInfo.Email,
		GuestPhone: b.GuestInfo.Phone,
		TotalPrice: b.TotalPrice,
		Status:     b.Status,
		Source:     DetectBookingSource(b.Note),
		Note:       b.Note,
		CreatedBy:  createdBy,
	}
}

// RenderBookingMessage returns the title and text body sent to the admin.
func RenderBookingMessage(n models.BookingNotification) (string, string) {
	title := fmt.Sprintf("New booking %s (%s)", n.Code, n.Source)

	var b strings.Builder
	fmt.Fprintf(&b, "Unit: %s\n", firstNonEmpty(n.UnitName, n.UnitID))
	fmt.Fprintf(&b, "Dates: %s -> %s (%d nights)\n", n.Start, n.End, n.Nights)
	fmt.Fprintf(&b, "Guest: %s <%s>", n.GuestName, n.GuestEmail)
	if n.GuestPhone != "" {
		fmt.Fprintf(&b, " %s", n.GuestPhone)
	}
	fmt.Fprintf(&b, "\nGuests: %d\n", n.PartySize)
	fmt.Fprintf(&b, "Total: EUR %.2f\n", n.TotalPrice)
	fmt.Fprintf(&b, "Status: %s\n", n.Status)
	fmt.Fprintf(&b, "Source: %s (created by %s)\n", n.Source, n.CreatedBy)
	if n.Note != "" {
		fmt.Fprintf(&b, "Note: %s\n", n.Note)
	}
	return title, b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
