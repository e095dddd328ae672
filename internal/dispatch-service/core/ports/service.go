package ports

import (
	"context"

	"github.com/google/uuid"

	"ride-dispatch/internal/dispatch-service/core/domain/dto"
)

type ISearchRequestService interface {
	Create(ctx context.Context, req dto.SearchRequestCreateDto, customerID uuid.UUID) (uuid.UUID, error)
	UpdateStatusToComplete(ctx context.Context, requestID, customerID uuid.UUID) (dto.SearchRequestDto, error)
	UpdateStatusToCancel(ctx context.Context, requestID, customerID uuid.UUID, driverID *uuid.UUID) (dto.SearchRequestDto, error)
	DriverMiss(ctx context.Context, customerID, driverID uuid.UUID) (dto.UserDto, error)
	Reassign(ctx context.Context, req dto.NewDriverDto) (dto.SearchRequestDto, error)
	ActiveForCustomer(ctx context.Context, customerID uuid.UUID) (*dto.SearchRequestDto, error)
	SendToDriver(ctx context.Context, requestID, driverID uuid.UUID) error
}

type IBookingService interface {
	Create(ctx context.Context, req dto.BookingCreateDto) (dto.BookingDto, error)
	ChangeStatusToArrived(ctx context.Context, bookingID, actorID uuid.UUID) (dto.BookingDto, error)
	ChangeStatusToCheckIn(ctx context.Context, bookingID, actorID uuid.UUID) (dto.BookingDto, error)
	ChangeStatusToOnGoing(ctx context.Context, bookingID, actorID uuid.UUID) (dto.BookingDto, error)
	ChangeStatusToCheckOut(ctx context.Context, bookingID, actorID uuid.UUID) (dto.BookingDto, error)
	ChangeStatusToComplete(ctx context.Context, bookingID, actorID uuid.UUID) (dto.BookingDto, error)
	AddCheckInNote(ctx context.Context, bookingID, actorID uuid.UUID, note string) (dto.BookingDto, error)
	AddCheckOutNote(ctx context.Context, bookingID, actorID uuid.UUID, note string) (dto.BookingDto, error)
	GetByID(ctx context.Context, bookingID uuid.UUID) (dto.BookingDto, error)
	ExistsNotComplete(ctx context.Context, driverID uuid.UUID) (bool, error)
}

type IWalletService interface {
	TopUp(ctx context.Context, userID uuid.UUID, req dto.WalletTopUpDto) (dto.WalletDto, error)
	Balance(ctx context.Context, userID uuid.UUID) (dto.WalletDto, error)
}

type IBookingCancelService interface {
	CustomerCancel(ctx context.Context, req dto.BookingCancelCreateDto, customerID uuid.UUID) (dto.BookingCancelDto, error)
	DriverCancel(ctx context.Context, req dto.BookingCancelCreateDto, driverID uuid.UUID) (dto.BookingCancelDto, error)
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (dto.BookingCancelDto, error)
}
