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

type SearchRequestService struct {
	mylog    mylogger.Logger
	users    ports.IUserRepo
	requests ports.ISearchRequestRepo
	notifier ports.INotifier
	now      func() time.Time
}

func NewSearchRequestService(
	log mylogger.Logger,
	users ports.IUserRepo,
	requests ports.ISearchRequestRepo,
	notifier ports.INotifier,
) ports.ISearchRequestService {
	return &SearchRequestService{
		mylog:    log,
		users:    users,
		requests: requests,
		notifier: notifier,
		now:      time.Now,
	}
}

// Create validates both parties, persists the request with its vehicle and
// optional on-behalf record in one transaction, and offers it to the driver.
func (s *SearchRequestService) Create(ctx context.Context, req dto.SearchRequestCreateDto, customerID uuid.UUID) (uuid.UUID, error) {
	log := s.mylog.Action("CreateSearchRequest")

	if err := validateSearchRequestCreate(req); err != nil {
		return uuid.Nil, err
	}

	customer, err := s.requireRole(ctx, customerID, model.RoleCustomer)
	if err != nil {
		return uuid.Nil, err
	}
	driver, err := s.requireRole(ctx, *req.DriverID, model.RoleDriver)
	if err != nil {
		return uuid.Nil, err
	}

	bookingType := model.BookingType(req.BookingType)
	if bookingType == "" {
		bookingType = model.BookingTypeMySelf
	}

	var onBehalf *model.CustomerBookedOnBehalf
	if bookingType == model.BookingTypeSomeone {
		if req.OnBehalf == nil {
			return uuid.Nil, myerrors.MissingOnBehalfData("booking for Someone requires CustomerBookedOnBehalf")
		}
		onBehalf = &model.CustomerBookedOnBehalf{
			ID:          uuid.New(),
			Name:        req.OnBehalf.Name,
			PhoneNumber: req.OnBehalf.PhoneNumber,
			Note:        req.OnBehalf.Note,
			DateCreated: s.now(),
		}
	}

	vehicle := model.BookingVehicle{
		ID:           uuid.New(),
		LicensePlate: req.BookingVehicle.LicensePlate,
		Brand:        req.BookingVehicle.Brand,
		Model:        req.BookingVehicle.Model,
		Color:        req.BookingVehicle.Color,
		DateCreated:  s.now(),
	}

	request := model.SearchRequest{
		ID:               uuid.New(),
		CustomerID:       customer.ID,
		PickupLatitude:   *req.PickupLatitude,
		PickupLongitude:  *req.PickupLongitude,
		PickupAddress:    *req.PickupAddress,
		DropOffLatitude:  *req.DropOffLatitude,
		DropOffLongitude: *req.DropOffLongitude,
		DropOffAddress:   *req.DropOffAddress,
		Price:            *req.Price,
		Distance:         *req.Distance,
		Note:             req.Note,
		IsFemaleDriver:   req.IsFemaleDriver,
		PaymentMethod:    model.PaymentMethod(req.PaymentMethod),
		BookingType:      bookingType,
		Status:           model.SearchRequestStatusProcessing,
		VehicleID:        vehicle.ID,
		DateCreated:      s.now(),
		DateUpdated:      s.now(),
	}
	if onBehalf != nil {
		request.OnBehalfID = &onBehalf.ID
	}

	created, err := s.requests.Create(ctx, request, vehicle, onBehalf)
	if err != nil {
		log.Error("cannot create search request", err)
		return uuid.Nil, err
	}

	payload := dto.NewSearchRequestDto(created)
	payload.DriverID = driver.ID
	payload.Customer = dto.NewUserDto(customer)
	payload.BookingVehicle = dto.NewBookingVehicleDto(vehicle)
	payload.OnBehalf = dto.NewOnBehalfDto(onBehalf)

	publishAll(ctx, log, s.notifier, []model.NotifyEffect{{
		Topic:      model.TopicSearchRequestCreate,
		Recipients: []uuid.UUID{driver.ID},
		Payload:    payload,
	}})

	log.Info("search request created", "request_id", created.ID, "customer_id", customer.ID, "driver_id", driver.ID)
	return created.ID, nil
}

// UpdateStatusToComplete moves a Processing request to Completed.
func (s *SearchRequestService) UpdateStatusToComplete(ctx context.Context, requestID, customerID uuid.UUID) (dto.SearchRequestDto, error) {
	log := s.mylog.Action("CompleteSearchRequest")

	if _, err := s.requireRole(ctx, customerID, model.RoleCustomer); err != nil {
		return dto.SearchRequestDto{}, err
	}

	request, err := s.requests.FindForCustomer(ctx, requestID, customerID)
	if err != nil {
		return dto.SearchRequestDto{}, err
	}
	if _, err := request.Complete(s.now()); err != nil {
		return dto.SearchRequestDto{}, err
	}

	updated, err := s.requests.UpdateStatus(ctx, requestID, model.SearchRequestStatusProcessing, model.SearchRequestStatusCompleted)
	if err != nil {
		return dto.SearchRequestDto{}, err
	}

	log.Info("search request completed", "request_id", requestID)
	return dto.NewSearchRequestDto(updated), nil
}

// UpdateStatusToCancel cancels a Processing request and refunds the full
// price to the customer's wallet. The status transition and the refund
// commit as one atomic unit; notifications go out only after the commit.
func (s *SearchRequestService) UpdateStatusToCancel(ctx context.Context, requestID, customerID uuid.UUID, driverID *uuid.UUID) (dto.SearchRequestDto, error) {
	log := s.mylog.Action("CancelSearchRequest")

	if _, err := s.requireRole(ctx, customerID, model.RoleCustomer); err != nil {
		return dto.SearchRequestDto{}, err
	}
	var driver model.User
	if driverID != nil {
		var err error
		driver, err = s.requireRole(ctx, *driverID, model.RoleDriver)
		if err != nil {
			return dto.SearchRequestDto{}, err
		}
	}

	request, err := s.requests.FindForCustomer(ctx, requestID, customerID)
	if err != nil {
		return dto.SearchRequestDto{}, err
	}

	_, credit, err := request.Cancel(s.now())
	if err != nil {
		return dto.SearchRequestDto{}, err
	}

	committed, wallet, txn, err := s.requests.CancelAndRefund(ctx, requestID, credit)
	if err != nil {
		log.Error("cannot cancel search request", err, "request_id", requestID)
		return dto.SearchRequestDto{}, err
	}

	effects := make([]model.NotifyEffect, 0, 2)
	if driverID != nil {
		effects = append(effects, model.NotifyEffect{
			Topic:      model.TopicCustomerCancel,
			Recipients: []uuid.UUID{driver.ID},
			Payload:    dto.NewSearchRequestDto(committed),
		})
	}
	effects = append(effects, model.NotifyEffect{
		Topic:      model.TopicWalletRefundCustomer,
		Recipients: []uuid.UUID{customerID},
		Payload:    dto.NewWalletDto(wallet),
	})
	publishAll(ctx, log, s.notifier, effects)

	log.Info("search request cancelled",
		"request_id", requestID, "refund", txn.TotalMoney, "wallet_id", wallet.ID)
	return dto.NewSearchRequestDto(committed), nil
}

// DriverMiss penalizes a non-responsive driver: offline and unfree, priority
// decayed one step, counters bumped, and the parties informed.
func (s *SearchRequestService) DriverMiss(ctx context.Context, customerID, driverID uuid.UUID) (dto.UserDto, error) {
	log := s.mylog.Action("DriverMiss")

	if _, err := s.requireRole(ctx, customerID, model.RoleCustomer); err != nil {
		return dto.UserDto{}, err
	}
	driver, err := s.requireRole(ctx, driverID, model.RoleDriver)
	if err != nil {
		return dto.UserDto{}, err
	}
	if _, err := s.users.FindDriverStatus(ctx, driverID); err != nil {
		return dto.UserDto{}, err
	}

	penalty := model.ApplyDriverMiss(driver.Priority, driver.IsActive)

	updated, status, err := s.users.ApplyDriverMiss(ctx, driverID, driver.Priority, penalty)
	if err != nil {
		log.Error("cannot apply driver miss", err, "driver_id", driverID)
		return dto.UserDto{}, err
	}

	effects := make([]model.NotifyEffect, 0, 3)
	if penalty.Banned {
		effects = append(effects, model.NotifyEffect{
			Topic:      model.TopicDriverStatusBan,
			Recipients: []uuid.UUID{driverID},
			Payload:    dto.NewUserDto(updated),
		})
	} else if penalty.Warned {
		effects = append(effects, model.NotifyEffect{
			Topic:      model.TopicDriverStatusWarning,
			Recipients: []uuid.UUID{driverID},
			Payload:    "",
		})
	}
	effects = append(effects,
		model.NotifyEffect{
			Topic:      model.TopicDriverMiss,
			Recipients: []uuid.UUID{customerID},
			Payload:    dto.DriverMissDto{DriverID: driverID},
		},
		model.NotifyEffect{
			Topic:      model.TopicDriverStatusOffline,
			Recipients: []uuid.UUID{driverID},
			Payload:    dto.NewUserDto(updated),
		},
	)
	publishAll(ctx, log, s.notifier, effects)

	log.Info("driver missed request",
		"driver_id", driverID, "priority", updated.Priority,
		"banned", penalty.Banned, "is_online", status.IsOnline)
	return *dto.NewUserDto(updated), nil
}

// Reassign hands a still-Processing request from one driver to another. The
// old driver sees a Cancel-flavored payload; the stored status is untouched.
func (s *SearchRequestService) Reassign(ctx context.Context, req dto.NewDriverDto) (dto.SearchRequestDto, error) {
	log := s.mylog.Action("ReassignDriver")

	oldDriver, err := s.users.FindActive(ctx, req.OldDriverID)
	if err != nil {
		return dto.SearchRequestDto{}, err
	}
	newDriver, err := s.users.FindActive(ctx, req.NewDriverID)
	if err != nil {
		return dto.SearchRequestDto{}, err
	}

	request, err := s.requests.FindByID(ctx, req.SearchRequestID)
	if err != nil {
		return dto.SearchRequestDto{}, err
	}
	if request.Status != model.SearchRequestStatusProcessing {
		return dto.SearchRequestDto{}, myerrors.InvalidState("search request status not suitable")
	}

	vehicle, onBehalf, err := s.requests.Associations(ctx, request)
	if err != nil {
		return dto.SearchRequestDto{}, err
	}
	customer, err := s.users.FindActive(ctx, request.CustomerID)
	if err != nil {
		return dto.SearchRequestDto{}, err
	}

	// Informational only: the old driver sees the offer as cancelled.
	oldPayload := dto.NewSearchRequestDto(request)
	oldPayload.Status = string(model.SearchRequestStatusCancel)
	oldPayload.DriverID = oldDriver.ID
	oldPayload.Customer = dto.NewUserDto(customer)
	oldPayload.BookingVehicle = dto.NewBookingVehicleDto(vehicle)
	oldPayload.OnBehalf = dto.NewOnBehalfDto(onBehalf)

	newPayload := dto.NewSearchRequestDto(request)
	newPayload.DriverID = newDriver.ID
	newPayload.Customer = dto.NewUserDto(customer)
	newPayload.BookingVehicle = dto.NewBookingVehicleDto(vehicle)
	newPayload.OnBehalf = dto.NewOnBehalfDto(onBehalf)

	publishAll(ctx, log, s.notifier, []model.NotifyEffect{
		{
			Topic:      model.TopicBookingOldDriver,
			Recipients: []uuid.UUID{oldDriver.ID},
			Payload:    oldPayload,
		},
		{
			Topic:      model.TopicBookingNewDriver,
			Recipients: []uuid.UUID{newDriver.ID},
			Payload:    newPayload,
		},
	})

	log.Info("search request reassigned",
		"request_id", request.ID, "old_driver_id", oldDriver.ID, "new_driver_id", newDriver.ID)
	return newPayload, nil
}

// ActiveForCustomer returns the customer's most recent Processing request,
// or nil. Absence is not an error.
func (s *SearchRequestService) ActiveForCustomer(ctx context.Context, customerID uuid.UUID) (*dto.SearchRequestDto, error) {
	if _, err := s.requireRole(ctx, customerID, model.RoleCustomer); err != nil {
		return nil, err
	}

	request, err := s.requests.LatestProcessing(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, nil
	}

	vehicle, onBehalf, err := s.requests.Associations(ctx, *request)
	if err != nil {
		return nil, err
	}

	view := dto.NewSearchRequestDto(*request)
	view.BookingVehicle = dto.NewBookingVehicleDto(vehicle)
	view.OnBehalf = dto.NewOnBehalfDto(onBehalf)
	return &view, nil
}

// SendToDriver re-publishes a live request to a specific driver.
func (s *SearchRequestService) SendToDriver(ctx context.Context, requestID, driverID uuid.UUID) error {
	log := s.mylog.Action("SendSearchRequestToDriver")

	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.Status != model.SearchRequestStatusProcessing {
		return myerrors.InvalidState("search request status not suitable")
	}
	driver, err := s.requireRole(ctx, driverID, model.RoleDriver)
	if err != nil {
		return err
	}

	payload := dto.NewSearchRequestDto(request)
	payload.DriverID = driver.ID
	publishAll(ctx, log, s.notifier, []model.NotifyEffect{{
		Topic:      model.TopicSearchRequestCreate,
		Recipients: []uuid.UUID{driver.ID},
		Payload:    payload,
	}})
	return nil
}

func (s *SearchRequestService) requireRole(ctx context.Context, id uuid.UUID, role model.Role) (model.User, error) {
	return requireRole(ctx, s.users, id, role)
}
