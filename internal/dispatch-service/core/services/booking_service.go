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

type BookingService struct {
	mylog    mylogger.Logger
	users    ports.IUserRepo
	requests ports.ISearchRequestRepo
	bookings ports.IBookingRepo
	now      func() time.Time
}

func NewBookingService(
	log mylogger.Logger,
	users ports.IUserRepo,
	requests ports.ISearchRequestRepo,
	bookings ports.IBookingRepo,
) ports.IBookingService {
	return &BookingService{
		mylog:    log,
		users:    users,
		requests: requests,
		bookings: bookings,
		now:      time.Now,
	}
}

// Create attaches a driver to a search request: the trip starts in OnTheWay.
// A driver may hold only one booking that is neither completed nor
// cancelled.
func (s *BookingService) Create(ctx context.Context, req dto.BookingCreateDto) (dto.BookingDto, error) {
	log := s.mylog.Action("CreateBooking")

	if req.SearchRequestID == nil || req.DriverID == nil {
		return dto.BookingDto{}, myerrors.NotFound("search request or driver missing from request")
	}

	driver, err := requireRole(ctx, s.users, *req.DriverID, model.RoleDriver)
	if err != nil {
		return dto.BookingDto{}, err
	}

	request, err := s.requests.FindByID(ctx, *req.SearchRequestID)
	if err != nil {
		return dto.BookingDto{}, err
	}
	if request.Status != model.SearchRequestStatusProcessing {
		return dto.BookingDto{}, myerrors.InvalidState("search request status not suitable")
	}

	busy, err := s.bookings.ExistsNotComplete(ctx, driver.ID)
	if err != nil {
		return dto.BookingDto{}, err
	}
	if busy {
		return dto.BookingDto{}, myerrors.InvalidState("the driver already has an active booking")
	}

	booking := model.Booking{
		ID:              uuid.New(),
		DriverID:        driver.ID,
		SearchRequestID: request.ID,
		Status:          model.BookingStatusOnTheWay,
		DateCreated:     s.now(),
		DateUpdated:     s.now(),
	}
	created, err := s.bookings.Create(ctx, booking)
	if err != nil {
		log.Error("cannot create booking", err)
		return dto.BookingDto{}, err
	}

	log.Info("booking created", "booking_id", created.ID, "driver_id", driver.ID, "request_id", request.ID)
	return dto.NewBookingDto(created), nil
}

func (s *BookingService) ChangeStatusToArrived(ctx context.Context, bookingID, actorID uuid.UUID) (dto.BookingDto, error) {
	return s.advance(ctx, bookingID, actorID, model.BookingStatusArrived)
}

func (s *BookingService) ChangeStatusToCheckIn(ctx context.Context, bookingID, actorID uuid.UUID) (dto.BookingDto, error) {
	return s.advance(ctx, bookingID, actorID, model.BookingStatusCheckIn)
}

func (s *BookingService) ChangeStatusToOnGoing(ctx context.Context, bookingID, actorID uuid.UUID) (dto.BookingDto, error) {
	return s.advance(ctx, bookingID, actorID, model.BookingStatusOnGoing)
}

func (s *BookingService) ChangeStatusToCheckOut(ctx context.Context, bookingID, actorID uuid.UUID) (dto.BookingDto, error) {
	return s.advance(ctx, bookingID, actorID, model.BookingStatusCheckOut)
}

func (s *BookingService) ChangeStatusToComplete(ctx context.Context, bookingID, actorID uuid.UUID) (dto.BookingDto, error) {
	return s.advance(ctx, bookingID, actorID, model.BookingStatusComplete)
}

// advance runs one forward checkpoint transition. Only the assigned driver
// may advance a booking; the compare-and-set in the repository keeps
// concurrent attempts from overwriting each other.
func (s *BookingService) advance(ctx context.Context, bookingID, actorID uuid.UUID, target model.BookingStatus) (dto.BookingDto, error) {
	log := s.mylog.Action("ChangeBookingStatus").With("target", string(target))

	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return dto.BookingDto{}, err
	}
	if booking.DriverID != actorID {
		return dto.BookingDto{}, myerrors.Forbidden("only the assigned driver may advance this booking")
	}

	from := booking.Status
	advanced, err := booking.Advance(target, s.now())
	if err != nil {
		return dto.BookingDto{}, err
	}

	updated, err := s.bookings.UpdateStatus(ctx, advanced, from)
	if err != nil {
		log.Error("cannot update booking status", err, "booking_id", bookingID)
		return dto.BookingDto{}, err
	}

	log.Info("booking status changed", "booking_id", bookingID, "status", string(updated.Status))
	return dto.NewBookingDto(updated), nil
}

// AddCheckInNote attaches a note at the CheckIn checkpoint. Notes never
// transition state.
func (s *BookingService) AddCheckInNote(ctx context.Context, bookingID, actorID uuid.UUID, note string) (dto.BookingDto, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return dto.BookingDto{}, err
	}
	if booking.DriverID != actorID {
		return dto.BookingDto{}, myerrors.Forbidden("only the assigned driver may add a check in note")
	}
	if booking.Status != model.BookingStatusCheckIn {
		return dto.BookingDto{}, myerrors.InvalidState("booking status not suitable")
	}

	updated, err := s.bookings.SetCheckInNote(ctx, bookingID, note)
	if err != nil {
		return dto.BookingDto{}, err
	}
	return dto.NewBookingDto(updated), nil
}

func (s *BookingService) AddCheckOutNote(ctx context.Context, bookingID, actorID uuid.UUID, note string) (dto.BookingDto, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return dto.BookingDto{}, err
	}
	if booking.DriverID != actorID {
		return dto.BookingDto{}, myerrors.Forbidden("only the assigned driver may add a check out note")
	}
	if booking.Status != model.BookingStatusCheckOut {
		return dto.BookingDto{}, myerrors.InvalidState("booking status not suitable")
	}

	updated, err := s.bookings.SetCheckOutNote(ctx, bookingID, note)
	if err != nil {
		return dto.BookingDto{}, err
	}
	return dto.NewBookingDto(updated), nil
}

func (s *BookingService) GetByID(ctx context.Context, bookingID uuid.UUID) (dto.BookingDto, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return dto.BookingDto{}, err
	}
	return dto.NewBookingDto(booking), nil
}

func (s *BookingService) ExistsNotComplete(ctx context.Context, driverID uuid.UUID) (bool, error) {
	return s.bookings.ExistsNotComplete(ctx, driverID)
}
