package notifications

import (
	"context"
	"fmt"
	"ridepoint/internal/events"
	"ridepoint/pkg/kafka"
	"ridepoint/pkg/logger"
)

// Notifier consumes booking events and emits renter/owner notifications.
// Delivery is a structured log line per recipient; a real channel (mail,
// push) would slot in behind notify.
type Notifier struct {
	log *logger.Logger
}

func NewNotifier(log *logger.Logger) *Notifier {
	return &Notifier{log: log}
}

// Handle is the kafka.MessageHandler for the booking events topic.
func (n *Notifier) Handle(ctx context.Context, msg kafka.Message) error {
	var event events.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("failed to decode booking event", err)
	}

	switch event.Type {
	case events.TypeBookingCreated:
		n.notify(event, event.RenterID, fmt.Sprintf(
			"Your booking %s is confirmed: %s to %s", event.BookingID, event.StartDate, event.EndDate,
		))
		n.notify(event, event.OwnerID, fmt.Sprintf(
			"Your vehicle %s is booked from %s to %s", event.VehicleID, event.StartDate, event.EndDate,
		))
	case events.TypeBookingCancelled:
		n.notify(event, "", fmt.Sprintf("Booking %s was cancelled", event.BookingID))
	case events.TypeBookingCompleted:
		n.notify(event, "", fmt.Sprintf("Booking %s was completed", event.BookingID))
	default:
		n.log.Warn("Skipping unknown booking event type",
			"event_type", event.Type,
			"event_id", msg.GetEventID(),
		)
	}

	return nil
}

func (n *Notifier) notify(event events.BookingEvent, recipient, text string) {
	n.log.Info("Notification sent",
		"event_type", event.Type,
		"booking_id", event.BookingID,
		"recipient", recipient,
		"text", text,
	)
}
