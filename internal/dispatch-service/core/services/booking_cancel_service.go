package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ride-dispatch/internal/dispatch-service/core/domain/dto"
	"ride-dispatch/internal/dispatch-service/core/domain/model"
	"ride-dispatch/internal/dispatch-service/core/myerrors"
	"ride-dispatch/internal/dispatch-service/core/ports"
	"ride-dispatch/internal/mylogger"
)

// BookingCancelService validates who may cancel at what status, appends the
// immutable BookingCancel record, and pairs it with the refund credit in one
// storage transaction.
type BookingCancelService struct {
	mylog    mylogger.Logger
	users    ports.IUserRepo
	requests ports.ISearchRequestRepo
	bookings ports.IBookingRepo
	notifier ports.INotifier
	now      func() time.Time
}

func NewBookingCancelService(
	log mylogger.Logger,
	users ports.IUserRepo,
	requests ports.ISearchRequestRepo,
	bookings ports.IBookingRepo,
	notifier ports.INotifier,
) ports.IBookingCancelService {
	return &BookingCancelService{
		mylog:    log,
		users:    users,
		requests: requests,
		bookings: bookings,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *BookingCancelService) CustomerCancel(ctx context.Context, req dto.BookingCancelCreateDto, customerID uuid.UUID) (dto.BookingCancelDto, error) {
	if _, err := requireRole(ctx, s.users, customerID, model.RoleCustomer); err != nil {
		return dto.BookingCancelDto{}, err
	}
	return s.cancel(ctx, req, model.RoleCustomer, customerID)
}

func (s *BookingCancelService) DriverCancel(ctx context.Context, req dto.BookingCancelCreateDto, driverID uuid.UUID) (dto.BookingCancelDto, error) {
	if _, err := requireRole(ctx, s.users, driverID, model.RoleDriver); err != nil {
		return dto.BookingCancelDto{}, err
	}
	return s.cancel(ctx, req, model.RoleDriver, driverID)
}

// cancel is the single cancellation path. A charge is assumed taken once a
// booking exists, so the customer is always refunded the request price —
// atomically with the terminal status write and the audit insert.
func (s *BookingCancelService) cancel(ctx context.Context, req dto.BookingCancelCreateDto, initiator model.Role, actorID uuid.UUID) (dto.BookingCancelDto, error) {
	log := s.mylog.Action("CancelBooking").With("initiator", string(initiator))

	if req.BookingID == nil {
		return dto.BookingCancelDto{}, myerrors.NotFound("booking missing from request")
	}

	booking, err := s.bookings.FindByID(ctx, *req.BookingID)
	if err != nil {
		return dto.BookingCancelDto{}, err
	}
	request, err := s.requests.FindByID(ctx, booking.SearchRequestID)
	if err != nil {
		return dto.BookingCancelDto{}, err
	}

	switch initiator {
	case model.RoleCustomer:
		if request.CustomerID != actorID {
			return dto.BookingCancelDto{}, myerrors.Forbidden("only the booking's customer may cancel it")
		}
	case model.RoleDriver:
		if booking.DriverID != actorID {
			return dto.BookingCancelDto{}, myerrors.Forbidden("only the assigned driver may cancel this booking")
		}
	}

	from := booking.Status
	cancelled, record, err := booking.CancelBy(initiator, req.Reason, s.now())
	if err != nil {
		return dto.BookingCancelDto{}, err
	}

	credit := model.CreditEffect{
		UserID: request.CustomerID,
		Amount: request.Price,
		Type:   model.WalletTransactionRefund,
	}

	committed, wallet, txn, err := s.bookings.CancelWithRefund(ctx, cancelled, from, record, credit)
	if err != nil {
		log.Error("cannot cancel booking", err, "booking_id", booking.ID)
		return dto.BookingCancelDto{}, err
	}

	// The non-initiating party hears about the cancellation, the customer
	// about the wallet change.
	effects := make([]model.NotifyEffect, 0, 2)
	switch initiator {
	case model.RoleCustomer:
		effects = append(effects, model.NotifyEffect{
			Topic:      model.TopicBookingCustomerCancel,
			Recipients: []uuid.UUID{booking.DriverID},
			Payload:    dto.NewBookingDto(committed),
		})
	case model.RoleDriver:
		effects = append(effects, model.NotifyEffect{
			Topic:      model.TopicBookingDriverCancel,
			Recipients: []uuid.UUID{request.CustomerID},
			Payload:    dto.NewBookingDto(committed),
		})
	}
	effects = append(effects, model.NotifyEffect{
		Topic:      model.TopicWalletRefundCustomer,
		Recipients: []uuid.UUID{request.CustomerID},
		Payload:    dto.NewWalletDto(wallet),
	})
	publishAll(ctx, log, s.notifier, effects)

	log.Info("booking cancelled",
		"booking_id", booking.ID, "refund", txn.TotalMoney, "status", string(committed.Status))
	return dto.NewBookingCancelDto(record), nil
}

func (s *BookingCancelService) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (dto.BookingCancelDto, error) {
	record, err := s.bookings.FindCancelByBookingID(ctx, bookingID)
	if err != nil {
		return dto.BookingCancelDto{}, err
	}
	return dto.NewBookingCancelDto(record), nil
}
