package model

import (
	"time"

	"github.com/google/uuid"

	"ride-dispatch/internal/dispatch-service/core/myerrors"
)

type SearchRequestStatus string

const (
	SearchRequestStatusProcessing SearchRequestStatus = "Processing"
	SearchRequestStatusCompleted  SearchRequestStatus = "Completed"
	SearchRequestStatusCancel     SearchRequestStatus = "Cancel"
)

// Terminal reports whether the status admits no further transition.
func (s SearchRequestStatus) Terminal() bool {
	return s == SearchRequestStatusCompleted || s == SearchRequestStatusCancel
}

type BookingType string

const (
	BookingTypeMySelf  BookingType = "MySelf"
	BookingTypeSomeone BookingType = "Someone"
)

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "Cash"
	PaymentMethodWallet PaymentMethod = "Wallet"
)

// SearchRequest is a customer's ride intent before a driver is locked in.
// Never hard-deleted; IsDeleted hides it from every read path.
type SearchRequest struct {
	ID              uuid.UUID
	CustomerID      uuid.UUID
	PickupLatitude  float64
	PickupLongitude float64
	PickupAddress   string
	DropOffLatitude float64
	DropOffLongitude float64
	DropOffAddress  string
	Price           int64 // minor currency units
	Distance        float64
	Note            string
	IsFemaleDriver  bool
	PaymentMethod   PaymentMethod
	BookingType     BookingType
	Status          SearchRequestStatus
	VehicleID       uuid.UUID
	OnBehalfID      *uuid.UUID
	IsDeleted       bool
	DateCreated     time.Time
	DateUpdated     time.Time
}

type BookingVehicle struct {
	ID           uuid.UUID
	LicensePlate string
	Brand        string
	Model        string
	Color        string
	DateCreated  time.Time
}

// CustomerBookedOnBehalf is the passenger record for BookingType Someone,
// created atomically with its request.
type CustomerBookedOnBehalf struct {
	ID          uuid.UUID
	Name        string
	PhoneNumber string
	Note        string
	DateCreated time.Time
}

// Complete moves a request off the market: Processing is the only state a
// completion may start from.
func (r SearchRequest) Complete(now time.Time) (SearchRequest, error) {
	if r.Status != SearchRequestStatusProcessing {
		return r, myerrors.InvalidState("search request status not suitable")
	}
	r.Status = SearchRequestStatusCompleted
	r.DateUpdated = now
	return r, nil
}

// Cancel marks the request cancelled and returns the refund the customer is
// owed as an effect value. The caller commits the state and the credit as
// one atomic unit before acting on any notification.
func (r SearchRequest) Cancel(now time.Time) (SearchRequest, CreditEffect, error) {
	if r.Status != SearchRequestStatusProcessing {
		return r, CreditEffect{}, myerrors.InvalidState("search request status not suitable")
	}
	r.Status = SearchRequestStatusCancel
	r.DateUpdated = now

	credit := CreditEffect{
		UserID: r.CustomerID,
		Amount: r.Price,
		Type:   WalletTransactionRefund,
	}
	return r, credit, nil
}
