package model

import "time"

// SlotLock is an exclusivity claim on one vehicle for one calendar day.
// At most one lock per (vehicle_id, iso_date) may have voided_at == null;
// a partial unique index enforces this at the store level. Voided locks are
// retained for audit and are invisible to availability checks.
type SlotLock struct {
	ID        string     `json:"id,omitempty" bson:"_id,omitempty"`
	VehicleID string     `json:"vehicle_id" bson:"vehicle_id"`
	IsoDate   string     `json:"iso_date" bson:"iso_date"`
	HolderID  string     `json:"holder_id" bson:"holder_id"`
	BookingID string     `json:"booking_id,omitempty" bson:"booking_id,omitempty"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	VoidedAt  *time.Time `json:"voided_at,omitempty" bson:"voided_at,omitempty"`
}
