package model

import (
	"time"

	"github.com/google/uuid"

	"ride-dispatch/internal/dispatch-service/core/myerrors"
)

type BookingStatus string

const (
	BookingStatusOnTheWay       BookingStatus = "OnTheWay"
	BookingStatusArrived        BookingStatus = "Arrived"
	BookingStatusCheckIn        BookingStatus = "CheckIn"
	BookingStatusOnGoing        BookingStatus = "OnGoing"
	BookingStatusCheckOut       BookingStatus = "CheckOut"
	BookingStatusComplete       BookingStatus = "Complete"
	BookingStatusDriverCancel   BookingStatus = "DriverCancel"
	BookingStatusCustomerCancel BookingStatus = "CustomerCancel"
)

// forwardPredecessor maps each checkpoint to the exact status a booking must
// hold before moving there. No edge may be skipped.
var forwardPredecessor = map[BookingStatus]BookingStatus{
	BookingStatusArrived:  BookingStatusOnTheWay,
	BookingStatusCheckIn:  BookingStatusArrived,
	BookingStatusOnGoing:  BookingStatusCheckIn,
	BookingStatusCheckOut: BookingStatusOnGoing,
	BookingStatusComplete: BookingStatusCheckOut,
}

// Terminal reports whether no transition may leave the status.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusComplete || s.Cancelled()
}

// Cancelled reports whether the status is a cancellation terminal.
func (s BookingStatus) Cancelled() bool {
	return s == BookingStatusDriverCancel || s == BookingStatusCustomerCancel
}

// Booking is the accepted, executing trip behind a search request.
type Booking struct {
	ID              uuid.UUID
	DriverID        uuid.UUID
	SearchRequestID uuid.UUID
	Status          BookingStatus
	PickUpTime      *time.Time
	DropOffTime     *time.Time
	CheckInNote     string
	CheckOutNote    string
	IsDeleted       bool
	DateCreated     time.Time
	DateUpdated     time.Time
}

// BookingCancel is the immutable audit record of one cancellation. Written
// once, never mutated.
type BookingCancel struct {
	ID          uuid.UUID
	BookingID   uuid.UUID
	Initiator   Role
	Reason      string
	DateCreated time.Time
}

// Advance moves the booking one checkpoint forward. The target's exact
// predecessor must be the current status; checkpoint timestamps are stamped
// on the transitions that define them.
func (b Booking) Advance(target BookingStatus, now time.Time) (Booking, error) {
	prev, ok := forwardPredecessor[target]
	if !ok {
		return b, myerrors.InvalidState("not a forward booking status")
	}
	if b.Status.Cancelled() {
		return b, myerrors.AlreadyCancelled("booking has been cancelled")
	}
	if b.Status != prev {
		return b, myerrors.InvalidState("booking status not suitable")
	}

	b.Status = target
	b.DateUpdated = now
	switch target {
	case BookingStatusCheckIn:
		t := now
		b.PickUpTime = &t
	case BookingStatusCheckOut:
		t := now
		b.DropOffTime = &t
	}
	return b, nil
}

// CancelBy terminates the booking on behalf of the initiating party and
// returns the audit record to append. A second cancellation is a terminal
// error, never a silent success.
func (b Booking) CancelBy(initiator Role, reason string, now time.Time) (Booking, BookingCancel, error) {
	if b.Status.Cancelled() {
		return b, BookingCancel{}, myerrors.AlreadyCancelled("booking has already been cancelled")
	}
	if b.Status == BookingStatusComplete {
		return b, BookingCancel{}, myerrors.InvalidState("booking has been completed")
	}

	switch initiator {
	case RoleCustomer:
		b.Status = BookingStatusCustomerCancel
	case RoleDriver:
		b.Status = BookingStatusDriverCancel
	default:
		return b, BookingCancel{}, myerrors.Forbidden("only the customer or the driver may cancel")
	}
	b.DateUpdated = now

	record := BookingCancel{
		ID:          uuid.New(),
		BookingID:   b.ID,
		Initiator:   initiator,
		Reason:      reason,
		DateCreated: now,
	}
	return b, record, nil
}
