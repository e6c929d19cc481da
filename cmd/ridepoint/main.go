package main

import (
	bookingshandler "ridepoint/internal/bookings/handler"
	bookingsrepo "ridepoint/internal/bookings/repository"
	bookingsservice "ridepoint/internal/bookings/service"
	bookingsvalidator "ridepoint/internal/bookings/validator"
	"ridepoint/internal/events"
	vehicleshandler "ridepoint/internal/vehicles/handler"
	vehiclesrepo "ridepoint/internal/vehicles/repository"
	vehiclesservice "ridepoint/internal/vehicles/service"
	vehiclesvalidator "ridepoint/internal/vehicles/validator"
	"ridepoint/pkg/app"
	"ridepoint/pkg/config"
	"ridepoint/pkg/kafka"
	kafka_config "ridepoint/pkg/kafka/config"
	kafkamw "ridepoint/pkg/kafka/middleware"
)

const ServiceName = "ridepoint"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting RidePoint service")

	publisher := initPublisher(cfg)
	reservationService, vehicleService := initServices(cfg, publisher)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg,
		bookingshandler.NewBookingHandler(reservationService, cfg.Log),
		vehicleshandler.NewVehicleHandler(vehicleService, reservationService, cfg.Log),
	)
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Warn("Failed to close event publisher", "error", err)
		}
	})
	serverApp.Run()
}

func initPublisher(cfg *config.Config) events.Publisher {
	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic)
	if err != nil {
		cfg.Log.Warn("Kafka producer unavailable, booking events disabled", "error", err)
		return events.NoopPublisher{}
	}

	if kafkaCfg.EnableMiddleware {
		producer.Use(kafkamw.LoggingProducerMiddleware())
		producer.Use(kafkamw.MetricsProducerMiddleware())
	}

	return events.NewKafkaPublisher(producer, ServiceName, cfg.Log)
}

func initServices(cfg *config.Config, publisher events.Publisher) (bookingsservice.ReservationService, vehiclesservice.VehicleService) {
	vehicleRepo := vehiclesrepo.NewMongoVehicleRepository(cfg)
	vehicleService := vehiclesservice.NewVehicleService(
		vehicleRepo,
		vehiclesvalidator.NewVehicleValidator(),
		cfg,
	)

	reservationService := bookingsservice.NewReservationService(
		bookingsrepo.NewMongoBookingRepository(cfg),
		bookingsrepo.NewSlotLockRepository(cfg),
		vehicleRepo,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)
	return reservationService, vehicleService
}
