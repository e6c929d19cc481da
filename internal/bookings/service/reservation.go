package service

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "ridepoint/internal/bookings/errors"
	"ridepoint/internal/bookings/repository"
	"ridepoint/internal/bookings/validator"
	"ridepoint/internal/events"
	vehicleserrors "ridepoint/internal/vehicles/errors"
	vehiclesrepo "ridepoint/internal/vehicles/repository"
	"ridepoint/pkg/config"
	"ridepoint/pkg/dates"
	apperrors "ridepoint/pkg/errors"
	"ridepoint/pkg/model"
	"ridepoint/pkg/sanitizer"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
)

type ReservationService interface {
	Reserve(ctx context.Context, req *model.ReservationRequest) (*model.Booking, error)
	CheckAvailability(ctx context.Context, vehicleID, startDate, endDate string) (*model.Availability, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	GetByRenter(ctx context.Context, renterID string, limit int, offset int64) ([]*model.Booking, error)
	GetByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Booking, error)
	GetByVehicle(ctx context.Context, vehicleID string, limit int, offset int64) ([]*model.Booking, error)
	Activate(ctx context.Context, id string) (*model.Booking, error)
	Complete(ctx context.Context, id string) (*model.Booking, error)
	Cancel(ctx context.Context, id string) (*model.Booking, error)
}

type reservationService struct {
	repo        repository.BookingRepository
	lockRepo    repository.SlotLockRepository
	vehicleRepo vehiclesrepo.VehicleRepository
	validator   *validator.BookingValidator
	publisher   events.Publisher
	cfg         *config.Config
}

func NewReservationService(
	repo repository.BookingRepository,
	lockRepo repository.SlotLockRepository,
	vehicleRepo vehiclesrepo.VehicleRepository,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:        repo,
		lockRepo:    lockRepo,
		vehicleRepo: vehicleRepo,
		validator:   validator,
		publisher:   publisher,
		cfg:         cfg,
	}
}

// Reserve claims one slot lock per calendar day in the resolved range, then
// creates the booking. Lock claims are optimistic: each insert either
// succeeds or hits the store's uniqueness guarantee, so two overlapping
// requests can never both win a day regardless of what any earlier
// availability check reported. On a lost day every lock claimed by this
// request is voided before the conflict is returned.
func (s *reservationService) Reserve(ctx context.Context, req *model.ReservationRequest) (*model.Booking, error) {
	s.sanitize(req)
	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "error", err)
		return nil, apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}

	vehicle, err := s.findVehicle(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}

	schedule, err := ResolveSchedule(req, vehicle.PricePerDay)
	if err != nil {
		return nil, err
	}
	if len(schedule.Days) > s.cfg.MaxReservationDays {
		return nil, apperrors.InvalidInput(fmt.Sprintf(
			"Reservation spans %d days, maximum is %d", len(schedule.Days), s.cfg.MaxReservationDays,
		))
	}

	// Advisory pre-check. Catches already-booked ranges before any write,
	// but the lock inserts below remain the authority.
	blocked, err := s.lockRepo.FindActive(ctx, req.VehicleID, schedule.Days)
	if err != nil {
		return nil, apperrors.Internal("Failed to check slot availability", err)
	}
	if len(blocked) > 0 {
		return nil, conflictFromLocks(blocked)
	}

	lockIDs, err := s.claimSlots(ctx, req, schedule)
	if err != nil {
		return nil, err
	}

	booking := &model.Booking{
		VehicleID:   req.VehicleID,
		RenterID:    req.RenterID,
		OwnerID:     vehicle.OwnerID,
		StartDate:   schedule.StartDate,
		EndDate:     schedule.EndDate,
		Status:      model.StatusUpcoming,
		TotalAmount: schedule.Amount,
		SlotIDs:     lockIDs,
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		if err := s.lockRepo.AssignBooking(sessCtx, lockIDs, booking.ID); err != nil {
			return apperrors.Internal("Failed to link slot locks to booking", err)
		}
		return nil
	})
	if err != nil {
		s.rollbackSlots(lockIDs)
		s.cfg.Log.Error("Failed to create booking", "vehicle_id", req.VehicleID, "error", err)
		return nil, err
	}

	if s.coversToday(schedule.StartDate, schedule.EndDate) {
		s.setVehicleAvailability(ctx, booking.VehicleID, false)
	}

	s.publisher.BookingCreated(ctx, booking)
	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"vehicle_id", booking.VehicleID,
		"renter_id", booking.RenterID,
		"start_date", booking.StartDate,
		"end_date", booking.EndDate,
		"total_amount", booking.TotalAmount,
	)
	return booking, nil
}

// CheckAvailability is advisory: a true result can be invalidated by a
// concurrent reservation before the caller acts on it.
func (s *reservationService) CheckAvailability(ctx context.Context, vehicleID, startDate, endDate string) (*model.Availability, error) {
	if vehicleID == "" {
		return nil, apperrors.InvalidInput("Vehicle ID cannot be empty")
	}
	if _, err := s.findVehicle(ctx, vehicleID); err != nil {
		return nil, err
	}

	days, err := dates.Range(startDate, endDate)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	if len(days) > s.cfg.MaxReservationDays {
		return nil, apperrors.InvalidInput(fmt.Sprintf(
			"Range spans %d days, maximum is %d", len(days), s.cfg.MaxReservationDays,
		))
	}

	locks, err := s.lockRepo.FindActive(ctx, vehicleID, days)
	if err != nil {
		return nil, apperrors.Internal("Failed to check slot availability", err)
	}
	if len(locks) == 0 {
		return &model.Availability{OK: true}, nil
	}

	return &model.Availability{
		OK: false,
		Conflict: &model.DateWindow{
			StartDate: locks[0].IsoDate,
			EndDate:   locks[len(locks)-1].IsoDate,
		},
	}, nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *reservationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *reservationService) GetByRenter(ctx context.Context, renterID string, limit int, offset int64) ([]*model.Booking, error) {
	if renterID == "" {
		return nil, apperrors.InvalidInput("Renter ID cannot be empty")
	}
	bookings, err := s.repo.FindByRenter(ctx, sanitizer.NormalizeIdentity(renterID), limit, offset)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve bookings by renter", err)
	}
	return bookings, nil
}

func (s *reservationService) GetByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Booking, error) {
	if ownerID == "" {
		return nil, apperrors.InvalidInput("Owner ID cannot be empty")
	}
	bookings, err := s.repo.FindByOwner(ctx, sanitizer.NormalizeIdentity(ownerID), limit, offset)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve bookings by owner", err)
	}
	return bookings, nil
}

func (s *reservationService) GetByVehicle(ctx context.Context, vehicleID string, limit int, offset int64) ([]*model.Booking, error) {
	if vehicleID == "" {
		return nil, apperrors.InvalidInput("Vehicle ID cannot be empty")
	}
	bookings, err := s.repo.FindByVehicle(ctx, vehicleID, limit, offset)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve bookings by vehicle", err)
	}
	return bookings, nil
}

// Activate marks a booking as picked up. Activating an already-active booking
// is a no-op.
func (s *reservationService) Activate(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == model.StatusActive {
		return booking, nil
	}
	if !model.CanTransition(booking.Status, model.StatusActive) {
		return nil, apperrors.InvalidTransition(booking.Status, model.StatusActive)
	}

	if err := s.repo.UpdateStatus(ctx, id, model.StatusActive); err != nil {
		s.cfg.Log.Error("Failed to activate booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to activate booking", err)
	}

	booking.Status = model.StatusActive
	s.setVehicleAvailability(ctx, booking.VehicleID, false)
	s.cfg.Log.Info("Booking activated", "id", id, "vehicle_id", booking.VehicleID)
	return booking, nil
}

// Complete finishes a booking. The day locks stay in place for audit and
// statistics; only cancellation releases the calendar. Completing an
// already-completed booking is a no-op.
func (s *reservationService) Complete(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == model.StatusCompleted {
		return booking, nil
	}
	if !model.CanTransition(booking.Status, model.StatusCompleted) {
		return nil, apperrors.InvalidTransition(booking.Status, model.StatusCompleted)
	}

	if err := s.repo.UpdateStatus(ctx, id, model.StatusCompleted); err != nil {
		s.cfg.Log.Error("Failed to complete booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to complete booking", err)
	}

	booking.Status = model.StatusCompleted
	s.setVehicleAvailability(ctx, booking.VehicleID, true)
	s.publisher.BookingCompleted(ctx, id)
	s.cfg.Log.Info("Booking completed", "id", id, "vehicle_id", booking.VehicleID)
	return booking, nil
}

// Cancel aborts a booking and releases its day locks so the vehicle can be
// rebooked. The status write and the lock release commit together; a booking
// is never cancelled while its locks still block the calendar. Cancelling an
// already-cancelled booking is a no-op.
func (s *reservationService) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == model.StatusCancelled {
		return booking, nil
	}
	if !model.CanTransition(booking.Status, model.StatusCancelled) {
		return nil, apperrors.InvalidTransition(booking.Status, model.StatusCancelled)
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.UpdateStatus(sessCtx, id, model.StatusCancelled); err != nil {
			return apperrors.Internal("Failed to update booking status", err)
		}
		if err := s.lockRepo.Void(sessCtx, booking.SlotIDs); err != nil {
			return apperrors.Internal("Failed to release slot locks", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to cancel booking", "id", id, "error", err)
		return nil, err
	}

	booking.Status = model.StatusCancelled
	s.setVehicleAvailability(ctx, booking.VehicleID, true)
	s.publisher.BookingCancelled(ctx, id)
	s.cfg.Log.Info("Booking cancelled", "id", id, "released_locks", len(booking.SlotIDs))
	return booking, nil
}

// --- Helpers ---

func (s *reservationService) sanitize(req *model.ReservationRequest) {
	req.VehicleID = strings.TrimSpace(req.VehicleID)
	req.RenterID = sanitizer.NormalizeIdentity(req.RenterID)
	req.StartDate = strings.TrimSpace(req.StartDate)
	req.EndDate = strings.TrimSpace(req.EndDate)
}

func (s *reservationService) findVehicle(ctx context.Context, vehicleID string) (*model.Vehicle, error) {
	vehicle, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, vehicleserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Vehicle", vehicleID)
		}
		if errors.Is(err, vehicleserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid vehicle ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve vehicle", err)
	}
	return vehicle, nil
}

// claimSlots inserts one lock per day, in day order. On the first lost day it
// voids every lock claimed so far and reports the blocking window.
func (s *reservationService) claimSlots(ctx context.Context, req *model.ReservationRequest, schedule *Schedule) ([]string, error) {
	lockIDs := make([]string, 0, len(schedule.Days))
	for _, day := range schedule.Days {
		lock, err := s.lockRepo.Create(ctx, &model.SlotLock{
			VehicleID: req.VehicleID,
			IsoDate:   day,
			HolderID:  req.RenterID,
		})
		if err != nil {
			s.rollbackSlots(lockIDs)
			if errors.Is(err, bookingserrors.ErrSlotTaken) {
				return nil, s.conflictWindow(ctx, req.VehicleID, schedule.Days, day)
			}
			return nil, apperrors.Internal("Failed to claim slot lock", err)
		}
		lockIDs = append(lockIDs, lock.ID)
	}
	return lockIDs, nil
}

// rollbackSlots voids partially-claimed locks. Runs on a detached context so
// a cancelled request cannot strand its own locks.
func (s *reservationService) rollbackSlots(lockIDs []string) {
	if len(lockIDs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
	defer cancel()

	if err := s.lockRepo.Void(ctx, lockIDs); err != nil {
		s.cfg.Log.Error("Failed to roll back slot locks", "lock_ids", lockIDs, "error", err)
	}
}

// conflictWindow reports the blocking range after a lost claim: the span of
// active locks actually found inside the requested days, not the whole
// request. Falls back to the single lost day if the re-read fails.
func (s *reservationService) conflictWindow(ctx context.Context, vehicleID string, days []string, lostDay string) error {
	blocked, err := s.lockRepo.FindActive(ctx, vehicleID, days)
	if err != nil || len(blocked) == 0 {
		return apperrors.ConflictWindow("Vehicle is already booked for part of the requested range", lostDay, lostDay)
	}
	return conflictFromLocks(blocked)
}

func conflictFromLocks(locks []*model.SlotLock) error {
	return apperrors.ConflictWindow(
		"Vehicle is already booked for part of the requested range",
		locks[0].IsoDate,
		locks[len(locks)-1].IsoDate,
	)
}

func (s *reservationService) coversToday(startDate, endDate string) bool {
	today := dates.Today()
	return startDate <= today && today <= endDate
}

// setVehicleAvailability updates the derived flag. Failures are logged only:
// the slot locks stay authoritative for booking decisions.
func (s *reservationService) setVehicleAvailability(ctx context.Context, vehicleID string, available bool) {
	if err := s.vehicleRepo.SetAvailability(ctx, vehicleID, available); err != nil {
		s.cfg.Log.Warn("Failed to update vehicle availability flag",
			"vehicle_id", vehicleID,
			"available", available,
			"error", err,
		)
	}
}
