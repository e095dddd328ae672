package services

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"

	"ride-dispatch/internal/dispatch-service/core/domain/dto"
	"ride-dispatch/internal/dispatch-service/core/domain/model"
	"ride-dispatch/internal/dispatch-service/core/myerrors"
	"ride-dispatch/internal/dispatch-service/core/ports"
)

const MaxAddressLen = 255

var (
	ErrEmptyField       = errors.New("field is empty")
	ErrInvalidLatitude  = errors.New("invalid latitude [-90, 90]")
	ErrInvalidLongitude = errors.New("invalid longitude [-180, 180]")
	ErrInvalidAddress   = errors.New("maximum 255 characters allowed")
	ErrInvalidPrice     = errors.New("price must be positive")
)

// requireRole loads an active user and checks role membership against the
// role gate.
func requireRole(ctx context.Context, users ports.IUserRepo, id uuid.UUID, role model.Role) (model.User, error) {
	user, err := users.FindActive(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	ok, err := users.IsInRole(ctx, id, role)
	if err != nil {
		return model.User{}, err
	}
	if !ok {
		return model.User{}, myerrors.RoleMismatch("the user must be a " + string(role))
	}
	return user, nil
}

func validateSearchRequestCreate(req dto.SearchRequestCreateDto) error {
	if req.DriverID == nil || *req.DriverID == uuid.Nil {
		return myerrors.InvalidInput("invalid driver id", ErrEmptyField)
	}
	if err := validateLatLng(req.PickupLatitude, req.PickupLongitude); err != nil {
		return myerrors.InvalidInput("invalid pickup coords", err)
	}
	if err := validateAddress(req.PickupAddress); err != nil {
		return myerrors.InvalidInput("invalid pickup address", err)
	}
	if err := validateLatLng(req.DropOffLatitude, req.DropOffLongitude); err != nil {
		return myerrors.InvalidInput("invalid drop off coords", err)
	}
	if err := validateAddress(req.DropOffAddress); err != nil {
		return myerrors.InvalidInput("invalid drop off address", err)
	}
	if req.Price == nil || *req.Price <= 0 {
		return myerrors.InvalidInput("invalid price", ErrInvalidPrice)
	}
	if req.Distance == nil {
		return myerrors.InvalidInput("invalid distance", ErrEmptyField)
	}
	if req.BookingVehicle == nil {
		return myerrors.InvalidInput("invalid booking vehicle", ErrEmptyField)
	}
	return nil
}

func validateLatLng(lat, lng *float64) error {
	if lat == nil || lng == nil {
		return ErrEmptyField
	}
	if math.Abs(*lat) > 90 {
		return ErrInvalidLatitude
	}
	if math.Abs(*lng) > 180 {
		return ErrInvalidLongitude
	}
	return nil
}

func validateAddress(s *string) error {
	if s == nil || *s == "" {
		return ErrEmptyField
	}
	if len(*s) > MaxAddressLen {
		return ErrInvalidAddress
	}
	return nil
}
