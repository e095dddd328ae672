package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"ride-dispatch/internal/dispatch-service/core/domain/dto"
	"ride-dispatch/internal/dispatch-service/core/domain/model"
	"ride-dispatch/internal/dispatch-service/core/myerrors"
)

type bookingFixture struct {
	users    *fakeUserRepo
	requests *fakeSearchRequestRepo
	bookings *fakeBookingRepo
	ledger   *fakeLedger
	notifier *fakeNotifier
	service  *BookingService
	cancels  *BookingCancelService

	customerID uuid.UUID
	driverID   uuid.UUID
	requestID  uuid.UUID
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	users := newFakeUserRepo()
	ledger := newFakeLedger()
	requests := newFakeSearchRequestRepo(ledger)
	bookings := newFakeBookingRepo(ledger)
	notifier := &fakeNotifier{}

	customerID := users.addUser(model.RoleCustomer, model.DefaultCustomerPriority)
	driverID := users.addUser(model.RoleDriver, model.DefaultDriverPriority)
	ledger.addWallet(customerID, 50000)

	requestID := uuid.New()
	vehicleID := uuid.New()
	requests.requests[requestID] = model.SearchRequest{
		ID:          requestID,
		CustomerID:  customerID,
		Price:       20000,
		Status:      model.SearchRequestStatusProcessing,
		VehicleID:   vehicleID,
		DateCreated: time.Now(),
		DateUpdated: time.Now(),
	}
	requests.vehicles[vehicleID] = model.BookingVehicle{ID: vehicleID, LicensePlate: "A123BC"}

	return &bookingFixture{
		users:      users,
		requests:   requests,
		bookings:   bookings,
		ledger:     ledger,
		notifier:   notifier,
		service:    NewBookingService(testLogger(), users, requests, bookings).(*BookingService),
		cancels:    NewBookingCancelService(testLogger(), users, requests, bookings, notifier).(*BookingCancelService),
		customerID: customerID,
		driverID:   driverID,
		requestID:  requestID,
	}
}

func (fx *bookingFixture) createBooking(t *testing.T) dto.BookingDto {
	t.Helper()
	b, err := fx.service.Create(context.Background(), dto.BookingCreateDto{
		SearchRequestID: uuidptr(fx.requestID),
		DriverID:        uuidptr(fx.driverID),
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

func TestBookingCreate(t *testing.T) {
	fx := newBookingFixture(t)

	b := fx.createBooking(t)
	if b.Status != string(model.BookingStatusOnTheWay) {
		t.Errorf("status = %s, want OnTheWay", b.Status)
	}
	if b.DriverID != fx.driverID || b.SearchRequestID != fx.requestID {
		t.Errorf("booking = %+v", b)
	}
}

func TestBookingCreateRejectsBusyDriver(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	fx.createBooking(t)

	if _, err := fx.service.Create(ctx, dto.BookingCreateDto{
		SearchRequestID: uuidptr(fx.requestID),
		DriverID:        uuidptr(fx.driverID),
	}); myerrors.KindOf(err) != myerrors.KindInvalidState {
		t.Errorf("second booking for the same driver: got %v, want InvalidState", err)
	}
}

func TestBookingCreateRejectsSettledRequest(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	r := fx.requests.requests[fx.requestID]
	r.Status = model.SearchRequestStatusCancel
	fx.requests.requests[fx.requestID] = r

	if _, err := fx.service.Create(ctx, dto.BookingCreateDto{
		SearchRequestID: uuidptr(fx.requestID),
		DriverID:        uuidptr(fx.driverID),
	}); myerrors.KindOf(err) != myerrors.KindInvalidState {
		t.Errorf("got %v, want InvalidState", err)
	}
}

func TestBookingCreateMissingIDs(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	if _, err := fx.service.Create(ctx, dto.BookingCreateDto{}); myerrors.KindOf(err) != myerrors.KindNotFound {
		t.Errorf("got %v, want NotFound", err)
	}
}

func TestBookingAdvanceSequence(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	b := fx.createBooking(t)

	steps := []struct {
		call func(context.Context, uuid.UUID, uuid.UUID) (dto.BookingDto, error)
		want model.BookingStatus
	}{
		{fx.service.ChangeStatusToArrived, model.BookingStatusArrived},
		{fx.service.ChangeStatusToCheckIn, model.BookingStatusCheckIn},
		{fx.service.ChangeStatusToOnGoing, model.BookingStatusOnGoing},
		{fx.service.ChangeStatusToCheckOut, model.BookingStatusCheckOut},
		{fx.service.ChangeStatusToComplete, model.BookingStatusComplete},
	}
	for _, step := range steps {
		got, err := step.call(ctx, b.ID, fx.driverID)
		if err != nil {
			t.Fatalf("advance to %s: %v", step.want, err)
		}
		if got.Status != string(step.want) {
			t.Fatalf("status = %s, want %s", got.Status, step.want)
		}
	}

	final, err := fx.service.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if final.PickUpTime == nil || final.DropOffTime == nil {
		t.Errorf("trip timestamps not stamped: %+v", final)
	}
}

func TestBookingAdvanceOnlyAssignedDriver(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	b := fx.createBooking(t)
	otherDriver := fx.users.addUser(model.RoleDriver, model.DefaultDriverPriority)

	if _, err := fx.service.ChangeStatusToArrived(ctx, b.ID, otherDriver); myerrors.KindOf(err) != myerrors.KindForbidden {
		t.Errorf("other driver: got %v, want Forbidden", err)
	}
	if _, err := fx.service.ChangeStatusToArrived(ctx, b.ID, fx.customerID); myerrors.KindOf(err) != myerrors.KindForbidden {
		t.Errorf("customer: got %v, want Forbidden", err)
	}
}

func TestBookingAdvanceRejectsSkip(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	b := fx.createBooking(t)

	// OnTheWay straight to CheckIn skips Arrived.
	if _, err := fx.service.ChangeStatusToCheckIn(ctx, b.ID, fx.driverID); myerrors.KindOf(err) != myerrors.KindInvalidState {
		t.Errorf("skip: got %v, want InvalidState", err)
	}

	// Backward moves are rejected too.
	if _, err := fx.service.ChangeStatusToArrived(ctx, b.ID, fx.driverID); err != nil {
		t.Fatalf("arrive: %v", err)
	}
	if _, err := fx.service.ChangeStatusToCheckIn(ctx, b.ID, fx.driverID); err != nil {
		t.Fatalf("check in: %v", err)
	}
	if _, err := fx.service.ChangeStatusToArrived(ctx, b.ID, fx.driverID); myerrors.KindOf(err) != myerrors.KindInvalidState {
		t.Errorf("backward: got %v, want InvalidState", err)
	}
}

func TestBookingCheckNotes(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	b := fx.createBooking(t)

	// Not at CheckIn yet.
	if _, err := fx.service.AddCheckInNote(ctx, b.ID, fx.driverID, "waiting at entrance"); myerrors.KindOf(err) != myerrors.KindInvalidState {
		t.Errorf("early note: got %v, want InvalidState", err)
	}

	if _, err := fx.service.ChangeStatusToArrived(ctx, b.ID, fx.driverID); err != nil {
		t.Fatalf("arrive: %v", err)
	}
	if _, err := fx.service.ChangeStatusToCheckIn(ctx, b.ID, fx.driverID); err != nil {
		t.Fatalf("check in: %v", err)
	}

	got, err := fx.service.AddCheckInNote(ctx, b.ID, fx.driverID, "passenger on board")
	if err != nil {
		t.Fatalf("AddCheckInNote: %v", err)
	}
	if got.CheckInNote != "passenger on board" {
		t.Errorf("check in note = %q", got.CheckInNote)
	}

	// Check out note belongs to the CheckOut checkpoint.
	if _, err := fx.service.AddCheckOutNote(ctx, b.ID, fx.driverID, "done"); myerrors.KindOf(err) != myerrors.KindInvalidState {
		t.Errorf("check out note at CheckIn: got %v, want InvalidState", err)
	}

	if _, err := fx.service.AddCheckInNote(ctx, b.ID, fx.customerID, "nope"); myerrors.KindOf(err) != myerrors.KindForbidden {
		t.Errorf("note by customer: got %v, want Forbidden", err)
	}
}
