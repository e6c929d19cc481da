package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	apperrors "ridepoint/pkg/errors"
	"ridepoint/pkg/logger"
	"ridepoint/pkg/model"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
)

// Mock service for testing
type mockReservationService struct {
	reserveFunc      func(ctx context.Context, req *model.ReservationRequest) (*model.Booking, error)
	getByIDFunc      func(ctx context.Context, id string) (*model.Booking, error)
	getAllFunc       func(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	getByRenterFunc  func(ctx context.Context, renterID string, limit int, offset int64) ([]*model.Booking, error)
	cancelFunc       func(ctx context.Context, id string) (*model.Booking, error)
	availabilityFunc func(ctx context.Context, vehicleID, startDate, endDate string) (*model.Availability, error)
}

func (m *mockReservationService) Reserve(ctx context.Context, req *model.ReservationRequest) (*model.Booking, error) {
	if m.reserveFunc != nil {
		return m.reserveFunc(ctx, req)
	}
	return &model.Booking{}, nil
}

func (m *mockReservationService) CheckAvailability(ctx context.Context, vehicleID, startDate, endDate string) (*model.Availability, error) {
	if m.availabilityFunc != nil {
		return m.availabilityFunc(ctx, vehicleID, startDate, endDate)
	}
	return &model.Availability{OK: true}, nil
}

func (m *mockReservationService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &model.Booking{ID: id}, nil
}

func (m *mockReservationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	if m.getAllFunc != nil {
		return m.getAllFunc(ctx, limit, offset)
	}
	return []*model.Booking{}, 0, nil
}

func (m *mockReservationService) GetByRenter(ctx context.Context, renterID string, limit int, offset int64) ([]*model.Booking, error) {
	if m.getByRenterFunc != nil {
		return m.getByRenterFunc(ctx, renterID, limit, offset)
	}
	return []*model.Booking{}, nil
}

func (m *mockReservationService) GetByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Booking, error) {
	return []*model.Booking{}, nil
}

func (m *mockReservationService) GetByVehicle(ctx context.Context, vehicleID string, limit int, offset int64) ([]*model.Booking, error) {
	return []*model.Booking{}, nil
}

func (m *mockReservationService) Activate(ctx context.Context, id string) (*model.Booking, error) {
	return &model.Booking{ID: id, Status: model.StatusActive}, nil
}

func (m *mockReservationService) Complete(ctx context.Context, id string) (*model.Booking, error) {
	return &model.Booking{ID: id, Status: model.StatusCompleted}, nil
}

func (m *mockReservationService) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, id)
	}
	return &model.Booking{ID: id, Status: model.StatusCancelled}, nil
}

func newTestHandler(service *mockReservationService) *BookingHandler {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return NewBookingHandler(service, log)
}

func TestReserve_Created(t *testing.T) {
	handler := newTestHandler(&mockReservationService{
		reserveFunc: func(ctx context.Context, req *model.ReservationRequest) (*model.Booking, error) {
			return &model.Booking{
				ID:        "booking-1",
				VehicleID: req.VehicleID,
				RenterID:  req.RenterID,
				Status:    model.StatusUpcoming,
			}, nil
		},
	})

	body := `{"vehicle_id":"64a0b1c2d3e4f5a6b7c8d9e0","renter_id":"renter-1","start_date":"2024-06-10","end_date":"2024-06-12"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Reserve(w, req, httprouter.Params{})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var result struct {
		Data model.Booking `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Data.ID != "booking-1" {
		t.Errorf("expected booking id booking-1, got %s", result.Data.ID)
	}
	if result.Data.Status != model.StatusUpcoming {
		t.Errorf("expected status %q, got %q", model.StatusUpcoming, result.Data.Status)
	}
}

func TestReserve_InvalidBody(t *testing.T) {
	handler := newTestHandler(&mockReservationService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	handler.Reserve(w, req, httprouter.Params{})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestReserve_ConflictStatus(t *testing.T) {
	handler := newTestHandler(&mockReservationService{
		reserveFunc: func(ctx context.Context, req *model.ReservationRequest) (*model.Booking, error) {
			return nil, apperrors.ConflictWindow("Vehicle is not available for the requested dates", "2024-06-11", "2024-06-12")
		},
	})

	body := `{"vehicle_id":"64a0b1c2d3e4f5a6b7c8d9e0","renter_id":"renter-1","start_date":"2024-06-10","end_date":"2024-06-14"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Reserve(w, req, httprouter.Params{})

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, w.Code)
	}

	var errResp struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	}
	if err := json.NewDecoder(w.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp.Code != apperrors.CodeConflict {
		t.Errorf("expected code %s, got %s", apperrors.CodeConflict, errResp.Code)
	}
	if errResp.Details["conflict_start_date"] != "2024-06-11" {
		t.Errorf("expected conflict start 2024-06-11, got %v", errResp.Details["conflict_start_date"])
	}
}

func TestGetAll_InvalidQueryParameters(t *testing.T) {
	serviceCalled := false
	handler := newTestHandler(&mockReservationService{
		getAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
			serviceCalled = true
			return []*model.Booking{}, 0, nil
		},
	})

	tests := []struct {
		name        string
		queryString string
	}{
		{name: "alphabetic limit", queryString: "?limit=abc&offset=0"},
		{name: "alphabetic offset", queryString: "?limit=10&offset=xyz"},
		{name: "both invalid", queryString: "?limit=abc&offset=xyz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceCalled = false
			req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings"+tt.queryString, nil)
			w := httptest.NewRecorder()

			handler.GetAll(w, req, httprouter.Params{})

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
			}
			if serviceCalled {
				t.Error("service must not be called for invalid pagination parameters")
			}
		})
	}
}

func TestGetAll_NormalizesNegativeValues(t *testing.T) {
	var receivedLimit int
	var receivedOffset int64
	handler := newTestHandler(&mockReservationService{
		getAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
			receivedLimit = limit
			receivedOffset = offset
			return []*model.Booking{}, 0, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?limit=-10&offset=-5", nil)
	w := httptest.NewRecorder()

	handler.GetAll(w, req, httprouter.Params{})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if receivedLimit <= 0 {
		t.Errorf("expected normalized positive limit, got %d", receivedLimit)
	}
	if receivedOffset != 0 {
		t.Errorf("expected normalized offset 0, got %d", receivedOffset)
	}
}

func TestSearch_RequiresExactlyOneParty(t *testing.T) {
	handler := newTestHandler(&mockReservationService{})

	tests := []struct {
		name        string
		queryString string
		wantCode    int
	}{
		{name: "no parameters", queryString: "", wantCode: http.StatusBadRequest},
		{name: "two parameters", queryString: "?renter_id=a&owner_id=b", wantCode: http.StatusBadRequest},
		{name: "renter only", queryString: "?renter_id=renter-1", wantCode: http.StatusOK},
		{name: "vehicle only", queryString: "?vehicle_id=64a0b1c2d3e4f5a6b7c8d9e0", wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/search"+tt.queryString, nil)
			w := httptest.NewRecorder()

			handler.Search(w, req, httprouter.Params{})

			if w.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
		})
	}
}

func TestCancel_NotFoundStatus(t *testing.T) {
	handler := newTestHandler(&mockReservationService{
		cancelFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/missing/cancel", nil)
	w := httptest.NewRecorder()

	handler.Cancel(w, req, httprouter.Params{{Key: "id", Value: "missing"}})

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}
