package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrSlotTaken maps the store's duplicate-key rejection of a slot lock
	// whose (vehicle_id, iso_date) is already actively held.
	ErrSlotTaken = errors.New("slot lock already held for this vehicle-day")

	ErrInvalidDateRange = errors.New("start date must not be after end date")
)
