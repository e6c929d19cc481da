package common

import (
	"ridepoint/pkg/client"
	"ridepoint/pkg/model"
	"testing"

	"github.com/google/uuid"
)

func RequireStatus(t *testing.T, resp *client.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %s", want, resp.ToString())
	}
}

// UniqueID namespaces test data so runs never collide on shared environments.
func UniqueID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// CreateTestVehicle registers a fresh vehicle and returns it. Each call uses
// a unique owner so searches stay isolated between test runs.
func (s *IntegrationTestSuite) CreateTestVehicle(t *testing.T, pricePerDay int64) *model.Vehicle {
	t.Helper()

	resp, err := s.Vehicles.Create(map[string]any{
		"type":          model.VehicleTypeCar,
		"price_per_day": pricePerDay,
		"location":      "Tel Aviv",
		"owner_id":      UniqueID("owner"),
	})
	if err != nil {
		t.Fatalf("failed to create vehicle: %v", err)
	}
	RequireStatus(t, resp, 201)

	vehicle, err := s.Vehicles.DecodeVehicle(resp)
	if err != nil {
		t.Fatalf("failed to decode vehicle: %v", err)
	}
	return vehicle
}
