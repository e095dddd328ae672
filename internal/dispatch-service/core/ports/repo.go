package ports

import (
	"context"

	"github.com/google/uuid"

	"ride-dispatch/internal/dispatch-service/core/domain/model"
)

type IUserRepo interface {
	// FindActive returns the user unless absent or soft-deleted.
	FindActive(ctx context.Context, id uuid.UUID) (model.User, error)
	IsInRole(ctx context.Context, id uuid.UUID, role model.Role) (bool, error)
	FindDriverStatus(ctx context.Context, driverID uuid.UUID) (model.DriverStatus, error)
	// ApplyDriverMiss commits one miss as a single unit: the driver goes
	// offline and unfree, priority and counters are written, and the account
	// is deactivated when the penalty says so. The priority write is a
	// compare-and-set against fromPriority; a concurrent miss in between
	// yields InvalidState so no decrement is ever lost.
	ApplyDriverMiss(ctx context.Context, driverID uuid.UUID, fromPriority float64, penalty model.DriverPenalty) (model.User, model.DriverStatus, error)
}

type ISearchRequestRepo interface {
	// Create persists the request together with its vehicle and optional
	// on-behalf record in one transaction.
	Create(ctx context.Context, req model.SearchRequest, vehicle model.BookingVehicle, onBehalf *model.CustomerBookedOnBehalf) (model.SearchRequest, error)
	FindByID(ctx context.Context, id uuid.UUID) (model.SearchRequest, error)
	FindForCustomer(ctx context.Context, id, customerID uuid.UUID) (model.SearchRequest, error)
	// LatestProcessing returns the newest Processing request, or nil when
	// the customer has none.
	LatestProcessing(ctx context.Context, customerID uuid.UUID) (*model.SearchRequest, error)
	// UpdateStatus is a compare-and-set: the write succeeds only while the
	// stored status still equals from, otherwise InvalidState.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.SearchRequestStatus) (model.SearchRequest, error)
	// CancelAndRefund commits the Processing→Cancel transition and the
	// wallet credit as one transaction. The status write is a
	// compare-and-set; losing the race yields InvalidState and no credit.
	CancelAndRefund(ctx context.Context, id uuid.UUID, credit model.CreditEffect) (model.SearchRequest, model.Wallet, model.WalletTransaction, error)
	// Associations loads the vehicle and on-behalf rows of a request.
	Associations(ctx context.Context, req model.SearchRequest) (model.BookingVehicle, *model.CustomerBookedOnBehalf, error)
}

type IBookingRepo interface {
	Create(ctx context.Context, b model.Booking) (model.Booking, error)
	FindByID(ctx context.Context, id uuid.UUID) (model.Booking, error)
	// UpdateStatus writes the advanced booking conditioned on the stored
	// status still being from; 0 rows affected yields InvalidState.
	UpdateStatus(ctx context.Context, b model.Booking, from model.BookingStatus) (model.Booking, error)
	SetCheckInNote(ctx context.Context, id uuid.UUID, note string) (model.Booking, error)
	SetCheckOutNote(ctx context.Context, id uuid.UUID, note string) (model.Booking, error)
	// ExistsNotComplete reports whether the driver holds a booking that is
	// neither completed nor cancelled.
	ExistsNotComplete(ctx context.Context, driverID uuid.UUID) (bool, error)
	// CancelWithRefund commits the cancellation terminal, the immutable
	// BookingCancel record and the refund credit as one transaction.
	CancelWithRefund(ctx context.Context, b model.Booking, from model.BookingStatus, record model.BookingCancel, credit model.CreditEffect) (model.Booking, model.Wallet, model.WalletTransaction, error)
	FindCancelByBookingID(ctx context.Context, bookingID uuid.UUID) (model.BookingCancel, error)
}

// ILedgerRepo applies atomic balance changes and appends the immutable
// transaction that explains each one.
type ILedgerRepo interface {
	Credit(ctx context.Context, userID uuid.UUID, amount int64, txnType model.TypeWalletTransaction) (model.Wallet, model.WalletTransaction, error)
	FindWallet(ctx context.Context, userID uuid.UUID) (model.Wallet, error)
}
