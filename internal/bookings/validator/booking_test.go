package validator

import (
	"ridepoint/pkg/logger"
	"ridepoint/pkg/model"
	"strings"
	"testing"
)

func newTestValidator() *BookingValidator {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	return NewBookingValidator(log)
}

func validRequest() *model.ReservationRequest {
	return &model.ReservationRequest{
		VehicleID: "64a0b1c2d3e4f5a6b7c8d9e0",
		RenterID:  "renter-1",
		StartDate: "2024-06-10",
		EndDate:   "2024-06-12",
	}
}

func TestValidateRequest_Valid(t *testing.T) {
	v := newTestValidator()

	t.Run("explicit end date", func(t *testing.T) {
		if err := v.ValidateRequest(validRequest()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("duration instead of end date", func(t *testing.T) {
		req := validRequest()
		req.EndDate = ""
		req.Duration = &model.Duration{Quantity: 3, Unit: model.UnitDays}
		if err := v.ValidateRequest(req); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("full day of hours", func(t *testing.T) {
		req := validRequest()
		req.EndDate = ""
		req.Duration = &model.Duration{Quantity: 24, Unit: model.UnitHours}
		if err := v.ValidateRequest(req); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("same day range", func(t *testing.T) {
		req := validRequest()
		req.EndDate = req.StartDate
		if err := v.ValidateRequest(req); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestValidateRequest_Invalid(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		mutate  func(req *model.ReservationRequest)
		wantMsg string
	}{
		{
			name:    "missing vehicle id",
			mutate:  func(req *model.ReservationRequest) { req.VehicleID = "" },
			wantMsg: "required",
		},
		{
			name:    "vehicle id not an object id",
			mutate:  func(req *model.ReservationRequest) { req.VehicleID = "not-hex" },
			wantMsg: "ObjectID",
		},
		{
			name:    "missing renter id",
			mutate:  func(req *model.ReservationRequest) { req.RenterID = "" },
			wantMsg: "required",
		},
		{
			name:    "malformed start date",
			mutate:  func(req *model.ReservationRequest) { req.StartDate = "10/06/2024" },
			wantMsg: "YYYY-MM-DD",
		},
		{
			name:    "malformed end date",
			mutate:  func(req *model.ReservationRequest) { req.EndDate = "June 12" },
			wantMsg: "YYYY-MM-DD",
		},
		{
			name: "both end date and duration",
			mutate: func(req *model.ReservationRequest) {
				req.Duration = &model.Duration{Quantity: 2, Unit: model.UnitDays}
			},
			wantMsg: "exactly one",
		},
		{
			name: "neither end date nor duration",
			mutate: func(req *model.ReservationRequest) {
				req.EndDate = ""
			},
			wantMsg: "exactly one",
		},
		{
			name: "end before start",
			mutate: func(req *model.ReservationRequest) {
				req.EndDate = "2024-06-09"
			},
			wantMsg: "before start_date",
		},
		{
			name: "more than a day of hours",
			mutate: func(req *model.ReservationRequest) {
				req.EndDate = ""
				req.Duration = &model.Duration{Quantity: 25, Unit: model.UnitHours}
			},
			wantMsg: "24 hours",
		},
		{
			name: "unknown duration unit",
			mutate: func(req *model.ReservationRequest) {
				req.EndDate = ""
				req.Duration = &model.Duration{Quantity: 2, Unit: "fortnights"}
			},
			wantMsg: "one of",
		},
		{
			name: "zero duration quantity",
			mutate: func(req *model.ReservationRequest) {
				req.EndDate = ""
				req.Duration = &model.Duration{Quantity: 0, Unit: model.UnitDays}
			},
			wantMsg: "required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			err := v.ValidateRequest(req)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error containing %q, got: %v", tt.wantMsg, err)
			}
		})
	}
}

func TestValidateBooking(t *testing.T) {
	v := newTestValidator()

	booking := &model.Booking{
		VehicleID:   "64a0b1c2d3e4f5a6b7c8d9e0",
		RenterID:    "renter-1",
		OwnerID:     "owner-1",
		StartDate:   "2024-06-10",
		EndDate:     "2024-06-12",
		Status:      model.StatusUpcoming,
		TotalAmount: 300,
	}
	if err := v.ValidateBooking(booking); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	inverted := *booking
	inverted.StartDate, inverted.EndDate = inverted.EndDate, inverted.StartDate
	if err := v.ValidateBooking(&inverted); err == nil {
		t.Error("expected error for inverted date range, got nil")
	}
}
