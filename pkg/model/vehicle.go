package model

import "time"

const (
	VehicleTypeBike    = "bike"
	VehicleTypeScooter = "scooter"
	VehicleTypeCar     = "car"
)

type Vehicle struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Type        string    `json:"type" bson:"type" validate:"required,oneof=bike scooter car"`
	PricePerDay int64     `json:"price_per_day" bson:"price_per_day" validate:"required,gt=0"`
	Location    string    `json:"location" bson:"location" validate:"required,min=2,max=200"`
	IsAvailable bool      `json:"is_available" bson:"is_available"`
	OwnerID     string    `json:"owner_id" bson:"owner_id" validate:"required,min=1,max=100"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type VehicleUpdate struct {
	Type        string `json:"type,omitempty" validate:"omitempty,oneof=bike scooter car"`
	PricePerDay *int64 `json:"price_per_day,omitempty" validate:"omitempty,gt=0"`
	Location    string `json:"location,omitempty" validate:"omitempty,min=2,max=200"`
}
