package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"

	"ride-dispatch/internal/dispatch-service/core/domain/dto"
	"ride-dispatch/internal/dispatch-service/core/domain/model"
	"ride-dispatch/internal/dispatch-service/core/myerrors"
)

func TestCustomerCancelRefundsRequestPrice(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	b := fx.createBooking(t)
	before, _ := fx.ledger.FindWallet(ctx, fx.customerID)

	record, err := fx.cancels.CustomerCancel(ctx, dto.BookingCancelCreateDto{
		BookingID: uuidptr(b.ID),
		Reason:    "changed my mind",
	}, fx.customerID)
	if err != nil {
		t.Fatalf("CustomerCancel: %v", err)
	}
	if record.Initiator != string(model.RoleCustomer) {
		t.Errorf("initiator = %s", record.Initiator)
	}
	if record.Reason != "changed my mind" {
		t.Errorf("reason = %q", record.Reason)
	}

	got, _ := fx.service.GetByID(ctx, b.ID)
	if got.Status != string(model.BookingStatusCustomerCancel) {
		t.Errorf("status = %s, want CustomerCancel", got.Status)
	}

	after, _ := fx.ledger.FindWallet(ctx, fx.customerID)
	if after.TotalMoney != before.TotalMoney+20000 {
		t.Errorf("balance = %d, want %d", after.TotalMoney, before.TotalMoney+20000)
	}
	if fx.ledger.txnSum() != 20000 {
		t.Errorf("transaction log sum = %d, want 20000", fx.ledger.txnSum())
	}

	topics := fx.notifier.topics()
	want := []string{model.TopicBookingCustomerCancel, model.TopicWalletRefundCustomer}
	if len(topics) != 2 || topics[0] != want[0] || topics[1] != want[1] {
		t.Fatalf("topics = %v, want %v", topics, want)
	}
	// The cancel goes to the driver, the wallet change to the customer.
	if r := fx.notifier.events[0].Recipients; len(r) != 1 || r[0] != fx.driverID {
		t.Errorf("cancel recipients = %v", r)
	}
	if r := fx.notifier.events[1].Recipients; len(r) != 1 || r[0] != fx.customerID {
		t.Errorf("wallet recipients = %v", r)
	}
}

func TestDriverCancelNotifiesCustomer(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	b := fx.createBooking(t)

	record, err := fx.cancels.DriverCancel(ctx, dto.BookingCancelCreateDto{
		BookingID: uuidptr(b.ID),
		Reason:    "flat tire",
	}, fx.driverID)
	if err != nil {
		t.Fatalf("DriverCancel: %v", err)
	}
	if record.Initiator != string(model.RoleDriver) {
		t.Errorf("initiator = %s", record.Initiator)
	}

	got, _ := fx.service.GetByID(ctx, b.ID)
	if got.Status != string(model.BookingStatusDriverCancel) {
		t.Errorf("status = %s, want DriverCancel", got.Status)
	}

	// The customer is refunded even when the driver walks away.
	if fx.ledger.txnSum() != 20000 {
		t.Errorf("transaction log sum = %d, want 20000", fx.ledger.txnSum())
	}

	topics := fx.notifier.topics()
	want := []string{model.TopicBookingDriverCancel, model.TopicWalletRefundCustomer}
	if len(topics) != 2 || topics[0] != want[0] || topics[1] != want[1] {
		t.Fatalf("topics = %v, want %v", topics, want)
	}
	if r := fx.notifier.events[0].Recipients; len(r) != 1 || r[0] != fx.customerID {
		t.Errorf("cancel recipients = %v", r)
	}
}

func TestDoubleCancelRefundsOnce(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	b := fx.createBooking(t)
	req := dto.BookingCancelCreateDto{BookingID: uuidptr(b.ID)}

	if _, err := fx.cancels.CustomerCancel(ctx, req, fx.customerID); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if _, err := fx.cancels.DriverCancel(ctx, req, fx.driverID); myerrors.KindOf(err) != myerrors.KindAlreadyCancelled {
		t.Errorf("second cancel: got %v, want AlreadyCancelled", err)
	}
	if _, err := fx.cancels.CustomerCancel(ctx, req, fx.customerID); myerrors.KindOf(err) != myerrors.KindAlreadyCancelled {
		t.Errorf("repeat by initiator: got %v, want AlreadyCancelled", err)
	}
	if fx.ledger.txnSum() != 20000 {
		t.Errorf("transaction log sum = %d, want a single refund", fx.ledger.txnSum())
	}
}

func TestCancelAfterComplete(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	b := fx.createBooking(t)
	for _, call := range []func(context.Context, uuid.UUID, uuid.UUID) (dto.BookingDto, error){
		fx.service.ChangeStatusToArrived,
		fx.service.ChangeStatusToCheckIn,
		fx.service.ChangeStatusToOnGoing,
		fx.service.ChangeStatusToCheckOut,
		fx.service.ChangeStatusToComplete,
	} {
		if _, err := call(ctx, b.ID, fx.driverID); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}

	req := dto.BookingCancelCreateDto{BookingID: uuidptr(b.ID)}
	if _, err := fx.cancels.CustomerCancel(ctx, req, fx.customerID); myerrors.KindOf(err) != myerrors.KindInvalidState {
		t.Errorf("cancel after complete: got %v, want InvalidState", err)
	}
	if fx.ledger.txnSum() != 0 {
		t.Errorf("refund issued for a completed trip: %d", fx.ledger.txnSum())
	}
}

func TestCancelForbiddenForOutsiders(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	b := fx.createBooking(t)
	req := dto.BookingCancelCreateDto{BookingID: uuidptr(b.ID)}

	otherCustomer := fx.users.addUser(model.RoleCustomer, model.DefaultCustomerPriority)
	otherDriver := fx.users.addUser(model.RoleDriver, model.DefaultDriverPriority)

	if _, err := fx.cancels.CustomerCancel(ctx, req, otherCustomer); myerrors.KindOf(err) != myerrors.KindForbidden {
		t.Errorf("foreign customer: got %v, want Forbidden", err)
	}
	if _, err := fx.cancels.DriverCancel(ctx, req, otherDriver); myerrors.KindOf(err) != myerrors.KindForbidden {
		t.Errorf("foreign driver: got %v, want Forbidden", err)
	}
	// Role gates come before ownership.
	if _, err := fx.cancels.CustomerCancel(ctx, req, fx.driverID); myerrors.KindOf(err) != myerrors.KindRoleMismatch {
		t.Errorf("driver on customer path: got %v, want RoleMismatch", err)
	}
}

func TestConcurrentCancelSingleWinner(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	b := fx.createBooking(t)
	req := dto.BookingCancelCreateDto{BookingID: uuidptr(b.ID)}

	var wg sync.WaitGroup
	errs := make([]error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = fx.cancels.CustomerCancel(ctx, req, fx.customerID)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = fx.cancels.DriverCancel(ctx, req, fx.driverID)
	}()
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case myerrors.KindOf(err) == myerrors.KindAlreadyCancelled:
			lost++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if won != 1 || lost != 1 {
		t.Errorf("winners = %d, losers = %d, want 1 and 1", won, lost)
	}
	if fx.ledger.txnSum() != 20000 {
		t.Errorf("transaction log sum = %d, want a single refund", fx.ledger.txnSum())
	}

	got, _ := fx.service.GetByID(ctx, b.ID)
	if status := model.BookingStatus(got.Status); !status.Cancelled() {
		t.Errorf("final status = %s, not a cancel terminal", got.Status)
	}
}

func TestGetCancelRecord(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	b := fx.createBooking(t)

	if _, err := fx.cancels.GetByBookingID(ctx, b.ID); myerrors.KindOf(err) != myerrors.KindNotFound {
		t.Errorf("record before cancel: got %v, want NotFound", err)
	}

	record, err := fx.cancels.DriverCancel(ctx, dto.BookingCancelCreateDto{
		BookingID: uuidptr(b.ID),
		Reason:    "no show",
	}, fx.driverID)
	if err != nil {
		t.Fatalf("DriverCancel: %v", err)
	}

	got, err := fx.cancels.GetByBookingID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByBookingID: %v", err)
	}
	if got.ID != record.ID || got.Reason != "no show" {
		t.Errorf("record = %+v, want %+v", got, record)
	}
}
