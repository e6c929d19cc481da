package events

import (
	"context"
	"ridepoint/pkg/kafka"
	"ridepoint/pkg/logger"
	"ridepoint/pkg/model"
	"time"
)

// Booking event types published to the events topic.
const (
	TypeBookingCreated   = "booking_created"
	TypeBookingCancelled = "booking_cancelled"
	TypeBookingCompleted = "booking_completed"
)

// BookingEvent is the payload consumed by notification listeners.
type BookingEvent struct {
	Type        string    `json:"type"`
	BookingID   string    `json:"booking_id"`
	VehicleID   string    `json:"vehicle_id,omitempty"`
	RenterID    string    `json:"renter_id,omitempty"`
	OwnerID     string    `json:"owner_id,omitempty"`
	StartDate   string    `json:"start_date,omitempty"`
	EndDate     string    `json:"end_date,omitempty"`
	TotalAmount int64     `json:"total_amount,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Publisher emits booking lifecycle events. Delivery is fire-and-forget:
// implementations log failures and never propagate them to the reservation
// path.
type Publisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking)
	BookingCancelled(ctx context.Context, bookingID string)
	BookingCompleted(ctx context.Context, bookingID string)
	Close() error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, source string, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		source:   source,
		log:      log,
	}
}

func (p *kafkaPublisher) BookingCreated(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, BookingEvent{
		Type:        TypeBookingCreated,
		BookingID:   booking.ID,
		VehicleID:   booking.VehicleID,
		RenterID:    booking.RenterID,
		OwnerID:     booking.OwnerID,
		StartDate:   booking.StartDate,
		EndDate:     booking.EndDate,
		TotalAmount: booking.TotalAmount,
		OccurredAt:  time.Now().UTC(),
	})
}

func (p *kafkaPublisher) BookingCancelled(ctx context.Context, bookingID string) {
	p.publish(ctx, BookingEvent{
		Type:       TypeBookingCancelled,
		BookingID:  bookingID,
		OccurredAt: time.Now().UTC(),
	})
}

func (p *kafkaPublisher) BookingCompleted(ctx context.Context, bookingID string) {
	p.publish(ctx, BookingEvent{
		Type:       TypeBookingCompleted,
		BookingID:  bookingID,
		OccurredAt: time.Now().UTC(),
	})
}

func (p *kafkaPublisher) publish(ctx context.Context, event BookingEvent) {
	msg := kafka.NewMessage().
		WithKey(event.BookingID).
		WithValue(event).
		WithEventType(event.Type).
		WithSource(p.source).
		WithCorrelationID(event.BookingID).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish booking event",
			"event_type", event.Type,
			"booking_id", event.BookingID,
			"error", err,
		)
	}
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher discards events. Used in tests and when no broker is
// configured.
type NoopPublisher struct{}

func (NoopPublisher) BookingCreated(context.Context, *model.Booking) {}
func (NoopPublisher) BookingCancelled(context.Context, string)       {}
func (NoopPublisher) BookingCompleted(context.Context, string)       {}
func (NoopPublisher) Close() error                                   { return nil }
