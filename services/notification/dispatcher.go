package notification

import (
	"context"
	"errors"
	"fmt"

	"maisonette/models"

	"go.uber.org/zap"
)

// Dispatcher delivers booking notifications by e-mail and push. Either
// channel may be nil.
type Dispatcher struct {
	Mailer     Mailer
	AdminEmail string
	Push       PushSender
	AdminTopic string
	Logger     *zap.Logger
}

func (d *Dispatcher) NotifyBookingCreated(ctx context.Context, n models.BookingNotification) error {
	title, body := RenderBookingMessage(n)
	var errs []error

	if d.Mailer != nil && d.AdminEmail != "" {
		if err := d.Mailer.Send(ctx, d.AdminEmail, title, body); err != nil {
			errs = append(errs, fmt.Errorf("email: %w", err))
		}
	}

	if d.Push != nil && d.AdminTopic != "" {
		data := map[string]string{
			"type":      "booking_created",
			"bookingId": n.BookingID,
			"code":      n.Code,
			"unitId":    n.UnitID,
			"source":    n.Source,
		}
		pushBody := fmt.Sprintf("%s, %s -> %s, EUR %.2f", n.GuestName, n.Start, n.End, n.TotalPrice)
		if err := d.Push.SendToTopic(ctx, d.AdminTopic, title, pushBody, data); err != nil {
			errs = append(errs, fmt.Errorf("push: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	d.Logger.Info("booking notification delivered", zap.String("bookingID", n.BookingID), zap.String("code", n.Code))
	return nil
}
