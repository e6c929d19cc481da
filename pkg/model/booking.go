package model

import (
	"time"
)

// Booking status lifecycle. Completed and cancelled are terminal.
const (
	StatusUpcoming  = "upcoming"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

type Booking struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	VehicleID   string    `json:"vehicle_id" bson:"vehicle_id" validate:"required,mongodb"`
	RenterID    string    `json:"renter_id" bson:"renter_id" validate:"required,min=1,max=100"`
	OwnerID     string    `json:"owner_id" bson:"owner_id" validate:"required,min=1,max=100"`
	StartDate   string    `json:"start_date" bson:"start_date" validate:"required,isodate"`
	EndDate     string    `json:"end_date" bson:"end_date" validate:"required,isodate"`
	Status      string    `json:"status" bson:"status" validate:"required,oneof=upcoming active completed cancelled"`
	TotalAmount int64     `json:"total_amount" bson:"total_amount" validate:"min=0"`
	SlotIDs     []string  `json:"slot_ids" bson:"slot_ids" validate:"omitempty,dive,required"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// statusTransitions is the single authority for the booking state machine.
var statusTransitions = map[string]map[string]bool{
	StatusUpcoming: {
		StatusActive:    true,
		StatusCompleted: true,
		StatusCancelled: true,
	},
	StatusActive: {
		StatusCompleted: true,
		StatusCancelled: true,
	},
	StatusCompleted: {},
	StatusCancelled: {},
}

func CanTransition(from, to string) bool {
	allowed, known := statusTransitions[from]
	if !known {
		return false
	}
	return allowed[to]
}

func IsTerminalStatus(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}
