package service

import (
	"fmt"
	"ridepoint/pkg/dates"
	apperrors "ridepoint/pkg/errors"
	"ridepoint/pkg/model"
)

// Schedule is the resolved calendar footprint and price of a reservation.
// End date and amount always derive from the same day count, so a booking
// never pays for days it does not lock.
type Schedule struct {
	StartDate string
	EndDate   string
	Days      []string
	Amount    int64
}

// ResolveSchedule turns a reservation request into the inclusive day range to
// lock and the total amount owed, priced off the vehicle's daily rate:
//   - hours: one calendar day, amount = price_per_day/24 per hour, rounded
//   - days: n calendar days, amount = price_per_day * n
//   - weeks: 7n calendar days, amount = price_per_day * 7n
//
// An explicit end date is priced as whole days over the inclusive range.
func ResolveSchedule(req *model.ReservationRequest, pricePerDay int64) (*Schedule, error) {
	if req.EndDate != "" {
		return resolveExplicit(req.StartDate, req.EndDate, pricePerDay)
	}
	if req.Duration != nil {
		return resolveDuration(req.StartDate, req.Duration, pricePerDay)
	}
	return nil, apperrors.InvalidInput("Either end_date or duration must be provided")
}

func resolveExplicit(startDate, endDate string, pricePerDay int64) (*Schedule, error) {
	days, err := dates.Range(startDate, endDate)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	return &Schedule{
		StartDate: startDate,
		EndDate:   endDate,
		Days:      days,
		Amount:    pricePerDay * int64(len(days)),
	}, nil
}

func resolveDuration(startDate string, d *model.Duration, pricePerDay int64) (*Schedule, error) {
	qty := int64(d.Quantity)

	var dayCount int
	var amount int64
	switch d.Unit {
	case model.UnitHours:
		dayCount = 1
		// Hourly rate rounded half up to the nearest whole unit.
		amount = (pricePerDay*qty + 12) / 24
	case model.UnitDays:
		dayCount = d.Quantity
		amount = pricePerDay * qty
	case model.UnitWeeks:
		dayCount = 7 * d.Quantity
		amount = pricePerDay * 7 * qty
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("Unsupported duration unit: %s", d.Unit))
	}

	endDate, err := dates.AddDays(startDate, dayCount-1)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	days, err := dates.Range(startDate, endDate)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	return &Schedule{
		StartDate: startDate,
		EndDate:   endDate,
		Days:      days,
		Amount:    amount,
	}, nil
}
