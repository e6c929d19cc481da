package model

// Duration units accepted by a reservation request.
const (
	UnitHours = "hours"
	UnitDays  = "days"
	UnitWeeks = "weeks"
)

// Duration expresses how long a vehicle is rented for. The unit drives both
// the end-date derivation and the amount formula; the two always agree.
type Duration struct {
	Quantity int    `json:"quantity" validate:"required,min=1,max=365"`
	Unit     string `json:"unit" validate:"required,oneof=hours days weeks"`
}

// ReservationRequest carries either an explicit inclusive end date or a
// duration. Exactly one of the two must be set.
type ReservationRequest struct {
	VehicleID string    `json:"vehicle_id" validate:"required,mongodb"`
	RenterID  string    `json:"renter_id" validate:"required,min=1,max=100"`
	StartDate string    `json:"start_date" validate:"required,isodate"`
	EndDate   string    `json:"end_date,omitempty" validate:"omitempty,isodate"`
	Duration  *Duration `json:"duration,omitempty"`
}

// DateWindow is an inclusive calendar-day range.
type DateWindow struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Availability is the advisory result of a range check. When OK is false,
// Conflict spans the locked days actually found inside the requested range,
// not the whole requested range.
type Availability struct {
	OK       bool        `json:"ok"`
	Conflict *DateWindow `json:"conflict,omitempty"`
}
