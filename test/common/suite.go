package common

import (
	"os"
	"ridepoint/pkg/client"
	"testing"
)

// IntegrationTestSuite talks to a running service over HTTP. The suite is
// skipped unless TEST_SERVER_URL points at a live instance.
type IntegrationTestSuite struct {
	BaseURL  string
	Bookings *client.BookingClient
	Vehicles *client.VehicleClient
}

func NewIntegrationTestSuite(t *testing.T) *IntegrationTestSuite {
	t.Helper()

	serverURL := os.Getenv("TEST_SERVER_URL")
	if serverURL == "" {
		t.Skip("TEST_SERVER_URL not set, skipping integration tests")
	}

	return &IntegrationTestSuite{
		BaseURL:  serverURL,
		Bookings: client.NewBookingClient(serverURL),
		Vehicles: client.NewVehicleClient(serverURL),
	}
}
