package service

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "ridepoint/internal/bookings/errors"
	"ridepoint/internal/bookings/validator"
	vehicleserrors "ridepoint/internal/vehicles/errors"
	"ridepoint/pkg/config"
	mongotx "ridepoint/pkg/db/mongo"
	apperrors "ridepoint/pkg/errors"
	"ridepoint/pkg/logger"
	"ridepoint/pkg/model"
	"sort"
	"sync"
	"testing"
	"time"
)

// ────────────────────────────────────────────────
// Mock repositories for testing
// ────────────────────────────────────────────────

type mockBookingRepository struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
	nextID   int

	createErr error
}

func newMockBookingRepository() *mockBookingRepository {
	return &mockBookingRepository{bookings: make(map[string]*model.Booking)}
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	booking.ID = fmt.Sprintf("booking-%d", m.nextID)
	booking.CreatedAt = time.Now().UTC()
	booking.UpdatedAt = booking.CreatedAt
	stored := *booking
	m.bookings[booking.ID] = &stored
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	copied := *booking
	return &copied, nil
}

func (m *mockBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*model.Booking
	for _, b := range m.bookings {
		copied := *b
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (m *mockBookingRepository) FindByRenter(ctx context.Context, renterID string, limit int, offset int64) ([]*model.Booking, error) {
	return m.findBy(func(b *model.Booking) bool { return b.RenterID == renterID })
}

func (m *mockBookingRepository) FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Booking, error) {
	return m.findBy(func(b *model.Booking) bool { return b.OwnerID == ownerID })
}

func (m *mockBookingRepository) FindByVehicle(ctx context.Context, vehicleID string, limit int, offset int64) ([]*model.Booking, error) {
	return m.findBy(func(b *model.Booking) bool { return b.VehicleID == vehicleID })
}

func (m *mockBookingRepository) findBy(match func(*model.Booking) bool) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Booking
	for _, b := range m.bookings {
		if match(b) {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	booking.Status = status
	booking.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *mockBookingRepository) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.bookings)), nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

// memorySlotLockRepository mirrors the store's partial unique index: one
// active lock per (vehicle_id, iso_date), voided locks kept around.
type memorySlotLockRepository struct {
	mu     sync.Mutex
	byID   map[string]*model.SlotLock
	nextID int
}

func newMemorySlotLockRepository() *memorySlotLockRepository {
	return &memorySlotLockRepository{byID: make(map[string]*model.SlotLock)}
}

func (m *memorySlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.VoidedAt == nil && existing.VehicleID == lock.VehicleID && existing.IsoDate == lock.IsoDate {
			return nil, bookingserrors.ErrSlotTaken
		}
	}
	m.nextID++
	lock.ID = fmt.Sprintf("lock-%d", m.nextID)
	lock.CreatedAt = time.Now().UTC()
	stored := *lock
	m.byID[lock.ID] = &stored
	return lock, nil
}

func (m *memorySlotLockRepository) FindActive(ctx context.Context, vehicleID string, isoDates []string) ([]*model.SlotLock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := make(map[string]bool, len(isoDates))
	for _, d := range isoDates {
		wanted[d] = true
	}
	var out []*model.SlotLock
	for _, lock := range m.byID {
		if lock.VoidedAt == nil && lock.VehicleID == vehicleID && wanted[lock.IsoDate] {
			copied := *lock
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IsoDate < out[j].IsoDate })
	return out, nil
}

func (m *memorySlotLockRepository) FindByBooking(ctx context.Context, bookingID string) ([]*model.SlotLock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.SlotLock
	for _, lock := range m.byID {
		if lock.BookingID == bookingID {
			copied := *lock
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IsoDate < out[j].IsoDate })
	return out, nil
}

func (m *memorySlotLockRepository) AssignBooking(ctx context.Context, lockIDs []string, bookingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range lockIDs {
		if lock, ok := m.byID[id]; ok {
			lock.BookingID = bookingID
		}
	}
	return nil
}

func (m *memorySlotLockRepository) Void(ctx context.Context, lockIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	for _, id := range lockIDs {
		if lock, ok := m.byID[id]; ok && lock.VoidedAt == nil {
			voidedAt := now
			lock.VoidedAt = &voidedAt
		}
	}
	return nil
}

func (m *memorySlotLockRepository) activeCount(vehicleID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, lock := range m.byID {
		if lock.VoidedAt == nil && lock.VehicleID == vehicleID {
			count++
		}
	}
	return count
}

func (m *memorySlotLockRepository) seed(vehicleID, holderID string, days ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, day := range days {
		m.nextID++
		id := fmt.Sprintf("lock-%d", m.nextID)
		m.byID[id] = &model.SlotLock{
			ID:        id,
			VehicleID: vehicleID,
			IsoDate:   day,
			HolderID:  holderID,
			CreatedAt: time.Now().UTC(),
		}
	}
}

type mockVehicleRepository struct {
	mu       sync.Mutex
	vehicles map[string]*model.Vehicle

	availabilityCalls []bool
}

func newMockVehicleRepository(vehicles ...*model.Vehicle) *mockVehicleRepository {
	m := &mockVehicleRepository{vehicles: make(map[string]*model.Vehicle)}
	for _, v := range vehicles {
		m.vehicles[v.ID] = v
	}
	return m
}

func (m *mockVehicleRepository) Create(ctx context.Context, vehicle *model.Vehicle) error {
	return nil
}

func (m *mockVehicleRepository) FindByID(ctx context.Context, id string) (*model.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return nil, vehicleserrors.ErrNotFound
	}
	copied := *vehicle
	return &copied, nil
}

func (m *mockVehicleRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Vehicle, error) {
	return nil, nil
}

func (m *mockVehicleRepository) FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Vehicle, error) {
	return nil, nil
}

func (m *mockVehicleRepository) Update(ctx context.Context, id string, vehicle *model.Vehicle) error {
	return nil
}

func (m *mockVehicleRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if vehicle, ok := m.vehicles[id]; ok {
		vehicle.IsAvailable = available
	}
	m.availabilityCalls = append(m.availabilityCalls, available)
	return nil
}

func (m *mockVehicleRepository) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

type recordingPublisher struct {
	mu        sync.Mutex
	created   int
	cancelled int
	completed int
}

func (p *recordingPublisher) BookingCreated(ctx context.Context, booking *model.Booking) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created++
}

func (p *recordingPublisher) BookingCancelled(ctx context.Context, bookingID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelled++
}

func (p *recordingPublisher) BookingCompleted(ctx context.Context, bookingID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed++
}

func (p *recordingPublisher) Close() error { return nil }

// ────────────────────────────────────────────────
// Test fixture
// ────────────────────────────────────────────────

const (
	testVehicleID = "64a0b1c2d3e4f5a6b7c8d9e0"
	testOwnerID   = "owner-1"
	testRenterID  = "renter-1"
)

type fixture struct {
	service   ReservationService
	bookings  *mockBookingRepository
	locks     *memorySlotLockRepository
	vehicles  *mockVehicleRepository
	publisher *recordingPublisher
	cfg       *config.Config
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
}

func newFixture(t *testing.T, pricePerDay int64) *fixture {
	t.Helper()

	log := testLogger()
	cfg := &config.Config{
		Log:                log,
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       5 * time.Second,
		MaxReservationDays: 90,
	}

	bookings := newMockBookingRepository()
	locks := newMemorySlotLockRepository()
	vehicles := newMockVehicleRepository(&model.Vehicle{
		ID:          testVehicleID,
		Type:        model.VehicleTypeCar,
		PricePerDay: pricePerDay,
		Location:    "Tel Aviv",
		IsAvailable: true,
		OwnerID:     testOwnerID,
	})
	publisher := &recordingPublisher{}

	return &fixture{
		service: NewReservationService(
			bookings,
			locks,
			vehicles,
			validator.NewBookingValidator(log),
			publisher,
			cfg,
		),
		bookings:  bookings,
		locks:     locks,
		vehicles:  vehicles,
		publisher: publisher,
		cfg:       cfg,
	}
}

func durationReq(qty int, unit string) *model.ReservationRequest {
	return &model.ReservationRequest{
		VehicleID: testVehicleID,
		RenterID:  testRenterID,
		StartDate: "2024-06-10",
		Duration:  &model.Duration{Quantity: qty, Unit: unit},
	}
}

func asAppError(t *testing.T, err error) *apperrors.AppError {
	t.Helper()
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	return appErr
}

// ────────────────────────────────────────────────
// Reserve
// ────────────────────────────────────────────────

func TestReserve_DaysDuration(t *testing.T) {
	f := newFixture(t, 150)

	booking, err := f.service.Reserve(context.Background(), durationReq(2, model.UnitDays))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.ID == "" {
		t.Error("expected booking to have an ID")
	}
	if booking.Status != model.StatusUpcoming {
		t.Errorf("expected status %q, got %q", model.StatusUpcoming, booking.Status)
	}
	if booking.EndDate != "2024-06-11" {
		t.Errorf("expected end date 2024-06-11, got %s", booking.EndDate)
	}
	if booking.TotalAmount != 300 {
		t.Errorf("expected total amount 300, got %d", booking.TotalAmount)
	}
	if booking.OwnerID != testOwnerID {
		t.Errorf("expected owner %q, got %q", testOwnerID, booking.OwnerID)
	}
	if len(booking.SlotIDs) != 2 {
		t.Errorf("expected 2 slot locks, got %d", len(booking.SlotIDs))
	}
	if got := f.locks.activeCount(testVehicleID); got != 2 {
		t.Errorf("expected 2 active locks, got %d", got)
	}
	if f.publisher.created != 1 {
		t.Errorf("expected 1 created event, got %d", f.publisher.created)
	}

	linked, err := f.locks.FindByBooking(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(linked) != 2 {
		t.Errorf("expected 2 locks linked to booking, got %d", len(linked))
	}
}

func TestReserve_HoursPricing(t *testing.T) {
	f := newFixture(t, 150)

	booking, err := f.service.Reserve(context.Background(), durationReq(4, model.UnitHours))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.EndDate != "2024-06-10" {
		t.Errorf("hourly rental should stay on one day, got end date %s", booking.EndDate)
	}
	if booking.TotalAmount != 25 {
		t.Errorf("expected total amount 25, got %d", booking.TotalAmount)
	}
	if got := f.locks.activeCount(testVehicleID); got != 1 {
		t.Errorf("expected 1 active lock, got %d", got)
	}
}

func TestReserve_WeeksPricing(t *testing.T) {
	f := newFixture(t, 150)

	booking, err := f.service.Reserve(context.Background(), durationReq(1, model.UnitWeeks))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.EndDate != "2024-06-16" {
		t.Errorf("expected end date 2024-06-16, got %s", booking.EndDate)
	}
	if booking.TotalAmount != 1050 {
		t.Errorf("expected total amount 1050, got %d", booking.TotalAmount)
	}
	if got := f.locks.activeCount(testVehicleID); got != 7 {
		t.Errorf("expected 7 active locks, got %d", got)
	}
}

func TestReserve_ExplicitEndDate(t *testing.T) {
	f := newFixture(t, 100)

	booking, err := f.service.Reserve(context.Background(), &model.ReservationRequest{
		VehicleID: testVehicleID,
		RenterID:  testRenterID,
		StartDate: "2024-06-10",
		EndDate:   "2024-06-12",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.TotalAmount != 300 {
		t.Errorf("expected total amount 300 for 3 inclusive days, got %d", booking.TotalAmount)
	}
	if got := f.locks.activeCount(testVehicleID); got != 3 {
		t.Errorf("expected 3 active locks, got %d", got)
	}
}

func TestReserve_ConflictWindowIsMinimal(t *testing.T) {
	f := newFixture(t, 150)
	f.locks.seed(testVehicleID, "renter-other", "2024-06-10", "2024-06-11", "2024-06-12")

	_, err := f.service.Reserve(context.Background(), &model.ReservationRequest{
		VehicleID: testVehicleID,
		RenterID:  testRenterID,
		StartDate: "2024-06-11",
		EndDate:   "2024-06-14",
	})
	if err == nil {
		t.Fatal("expected conflict error, got nil")
	}

	appErr := asAppError(t, err)
	if appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected code %s, got %s", apperrors.CodeConflict, appErr.Code)
	}
	if got := appErr.Details["conflict_start_date"]; got != "2024-06-11" {
		t.Errorf("expected conflict start 2024-06-11, got %v", got)
	}
	if got := appErr.Details["conflict_end_date"]; got != "2024-06-12" {
		t.Errorf("expected conflict end 2024-06-12, got %v", got)
	}
	if f.publisher.created != 0 {
		t.Errorf("expected no created events after conflict, got %d", f.publisher.created)
	}
}

// racingSlotLockRepository hides existing locks from the first FindActive
// call, simulating a competing reservation that lands between the advisory
// pre-check and the lock inserts.
type racingSlotLockRepository struct {
	*memorySlotLockRepository
	precheckDone bool
}

func (r *racingSlotLockRepository) FindActive(ctx context.Context, vehicleID string, isoDates []string) ([]*model.SlotLock, error) {
	if !r.precheckDone {
		r.precheckDone = true
		return nil, nil
	}
	return r.memorySlotLockRepository.FindActive(ctx, vehicleID, isoDates)
}

func TestReserve_ConflictRollsBackClaimedLocks(t *testing.T) {
	f := newFixture(t, 150)
	// The competing lock lands mid-range. Hiding it from the pre-check makes
	// the first two days get claimed before the insert on 06-12 loses.
	f.locks.seed(testVehicleID, "renter-other", "2024-06-12")
	racing := &racingSlotLockRepository{memorySlotLockRepository: f.locks}
	f.service = NewReservationService(
		f.bookings,
		racing,
		f.vehicles,
		validator.NewBookingValidator(testLogger()),
		f.publisher,
		f.cfg,
	)

	_, err := f.service.Reserve(context.Background(), &model.ReservationRequest{
		VehicleID: testVehicleID,
		RenterID:  testRenterID,
		StartDate: "2024-06-10",
		EndDate:   "2024-06-13",
	})
	if err == nil {
		t.Fatal("expected conflict error, got nil")
	}

	appErr := asAppError(t, err)
	if appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected code %s, got %s", apperrors.CodeConflict, appErr.Code)
	}

	// Only the pre-existing lock may remain active: the partially claimed
	// days must have been voided.
	if got := f.locks.activeCount(testVehicleID); got != 1 {
		t.Errorf("expected 1 active lock after rollback, got %d", got)
	}

	// The freed days are immediately reservable.
	booking, err := f.service.Reserve(context.Background(), &model.ReservationRequest{
		VehicleID: testVehicleID,
		RenterID:  testRenterID,
		StartDate: "2024-06-10",
		EndDate:   "2024-06-11",
	})
	if err != nil {
		t.Fatalf("expected rolled-back days to be reservable, got: %v", err)
	}
	if booking.TotalAmount != 300 {
		t.Errorf("expected total amount 300, got %d", booking.TotalAmount)
	}
}

func TestReserve_NoDoubleBookingUnderConcurrency(t *testing.T) {
	f := newFixture(t, 150)

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := f.service.Reserve(context.Background(), &model.ReservationRequest{
				VehicleID: testVehicleID,
				RenterID:  fmt.Sprintf("renter-%d", n),
				StartDate: "2024-06-10",
				EndDate:   "2024-06-12",
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if asAppError(t, err).Code != apperrors.CodeConflict {
			t.Errorf("expected conflict error, got %v", err)
		}
	}

	if succeeded != 1 {
		t.Errorf("expected exactly 1 winning reservation, got %d", succeeded)
	}
	if got := f.locks.activeCount(testVehicleID); got != 3 {
		t.Errorf("expected 3 active locks held by the winner, got %d", got)
	}
}

func TestReserve_VehicleNotFound(t *testing.T) {
	f := newFixture(t, 150)

	req := durationReq(1, model.UnitDays)
	req.VehicleID = "64ffffffffffffffffffffff"
	_, err := f.service.Reserve(context.Background(), req)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if appErr := asAppError(t, err); appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected code %s, got %s", apperrors.CodeNotFound, appErr.Code)
	}
}

func TestReserve_RejectsBothEndDateAndDuration(t *testing.T) {
	f := newFixture(t, 150)

	req := durationReq(2, model.UnitDays)
	req.EndDate = "2024-06-12"
	_, err := f.service.Reserve(context.Background(), req)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if appErr := asAppError(t, err); appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected code %s, got %s", apperrors.CodeValidation, appErr.Code)
	}
}

func TestReserve_RejectsRangeOverMaxDays(t *testing.T) {
	f := newFixture(t, 150)

	_, err := f.service.Reserve(context.Background(), durationReq(91, model.UnitDays))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if appErr := asAppError(t, err); appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected code %s, got %s", apperrors.CodeInvalidInput, appErr.Code)
	}
	if got := f.locks.activeCount(testVehicleID); got != 0 {
		t.Errorf("expected no locks claimed, got %d", got)
	}
}

// ────────────────────────────────────────────────
// CheckAvailability
// ────────────────────────────────────────────────

func TestCheckAvailability(t *testing.T) {
	f := newFixture(t, 150)
	f.locks.seed(testVehicleID, "renter-other", "2024-06-11", "2024-06-12")

	free, err := f.service.CheckAvailability(context.Background(), testVehicleID, "2024-06-13", "2024-06-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !free.OK || free.Conflict != nil {
		t.Errorf("expected free range, got %+v", free)
	}

	blocked, err := f.service.CheckAvailability(context.Background(), testVehicleID, "2024-06-10", "2024-06-14")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blocked.OK {
		t.Fatal("expected blocked range")
	}
	if blocked.Conflict == nil {
		t.Fatal("expected conflict window")
	}
	if blocked.Conflict.StartDate != "2024-06-11" || blocked.Conflict.EndDate != "2024-06-12" {
		t.Errorf("expected conflict window 2024-06-11..2024-06-12, got %+v", blocked.Conflict)
	}
}

func TestCheckAvailability_InvertedRange(t *testing.T) {
	f := newFixture(t, 150)

	_, err := f.service.CheckAvailability(context.Background(), testVehicleID, "2024-06-14", "2024-06-10")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if appErr := asAppError(t, err); appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected code %s, got %s", apperrors.CodeInvalidInput, appErr.Code)
	}
}

// ────────────────────────────────────────────────
// Lifecycle
// ────────────────────────────────────────────────

func TestCancel_ReleasesDaysAndIsIdempotent(t *testing.T) {
	f := newFixture(t, 150)

	booking, err := f.service.Reserve(context.Background(), durationReq(3, model.UnitDays))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cancelled, err := f.service.Cancel(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != model.StatusCancelled {
		t.Errorf("expected status %q, got %q", model.StatusCancelled, cancelled.Status)
	}
	if got := f.locks.activeCount(testVehicleID); got != 0 {
		t.Errorf("expected all locks released, got %d active", got)
	}

	// Second cancel is a no-op, not an error.
	again, err := f.service.Cancel(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("expected idempotent cancel, got: %v", err)
	}
	if again.Status != model.StatusCancelled {
		t.Errorf("expected status %q, got %q", model.StatusCancelled, again.Status)
	}
	if f.publisher.cancelled != 1 {
		t.Errorf("expected exactly 1 cancelled event, got %d", f.publisher.cancelled)
	}

	// Released days can be booked by someone else.
	req := durationReq(3, model.UnitDays)
	req.RenterID = "renter-2"
	if _, err := f.service.Reserve(context.Background(), req); err != nil {
		t.Fatalf("expected released days to be reservable, got: %v", err)
	}
}

func TestLifecycle_FullFlow(t *testing.T) {
	f := newFixture(t, 150)

	booking, err := f.service.Reserve(context.Background(), durationReq(2, model.UnitDays))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	active, err := f.service.Activate(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if active.Status != model.StatusActive {
		t.Errorf("expected status %q, got %q", model.StatusActive, active.Status)
	}

	completed, err := f.service.Complete(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if completed.Status != model.StatusCompleted {
		t.Errorf("expected status %q, got %q", model.StatusCompleted, completed.Status)
	}

	// Completion keeps the historical locks in place.
	if got := f.locks.activeCount(testVehicleID); got != 2 {
		t.Errorf("expected locks retained on completion, got %d active", got)
	}
	if f.publisher.completed != 1 {
		t.Errorf("expected 1 completed event, got %d", f.publisher.completed)
	}

	// Terminal bookings reject further transitions.
	_, err = f.service.Cancel(context.Background(), booking.ID)
	if err == nil {
		t.Fatal("expected invalid transition error, got nil")
	}
	if appErr := asAppError(t, err); appErr.Code != apperrors.CodeInvalidTransition {
		t.Errorf("expected code %s, got %s", apperrors.CodeInvalidTransition, appErr.Code)
	}

	_, err = f.service.Activate(context.Background(), booking.ID)
	if err == nil {
		t.Fatal("expected invalid transition error, got nil")
	}
	if appErr := asAppError(t, err); appErr.Code != apperrors.CodeInvalidTransition {
		t.Errorf("expected code %s, got %s", apperrors.CodeInvalidTransition, appErr.Code)
	}
}

func TestActivate_Idempotent(t *testing.T) {
	f := newFixture(t, 150)

	booking, err := f.service.Reserve(context.Background(), durationReq(2, model.UnitDays))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := f.service.Activate(context.Background(), booking.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, err := f.service.Activate(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("expected idempotent activate, got: %v", err)
	}
	if again.Status != model.StatusActive {
		t.Errorf("expected status %q, got %q", model.StatusActive, again.Status)
	}
}

func TestCancel_NotFound(t *testing.T) {
	f := newFixture(t, 150)

	_, err := f.service.Cancel(context.Background(), "booking-missing")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if appErr := asAppError(t, err); appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected code %s, got %s", apperrors.CodeNotFound, appErr.Code)
	}
}
