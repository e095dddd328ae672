package dto

import (
	"time"

	"github.com/google/uuid"

	"ride-dispatch/internal/dispatch-service/core/domain/model"
)

type BookingVehicleDto struct {
	LicensePlate string `json:"license_plate"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	Color        string `json:"color"`
}

type CustomerBookedOnBehalfDto struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Note        string `json:"note,omitempty"`
}

type SearchRequestCreateDto struct {
	DriverID         *uuid.UUID                 `json:"driver_id"`
	PickupLatitude   *float64                   `json:"pickup_latitude"`
	PickupLongitude  *float64                   `json:"pickup_longitude"`
	PickupAddress    *string                    `json:"pickup_address"`
	DropOffLatitude  *float64                   `json:"drop_off_latitude"`
	DropOffLongitude *float64                   `json:"drop_off_longitude"`
	DropOffAddress   *string                    `json:"drop_off_address"`
	Price            *int64                     `json:"price"`
	Distance         *float64                   `json:"distance"`
	Note             string                     `json:"note"`
	IsFemaleDriver   bool                       `json:"is_female_driver"`
	PaymentMethod    string                     `json:"payment_method"`
	BookingType      string                     `json:"booking_type"`
	BookingVehicle   *BookingVehicleDto         `json:"booking_vehicle"`
	OnBehalf         *CustomerBookedOnBehalfDto `json:"customer_booked_on_behalf"`
}

type UserDto struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	Star     float64   `json:"star"`
	Priority float64   `json:"priority"`
	IsActive bool      `json:"is_active"`
}

// SearchRequestDto is the composed payload drivers receive: the request plus
// customer, vehicle and on-behalf data.
type SearchRequestDto struct {
	ID               uuid.UUID                  `json:"id"`
	CustomerID       uuid.UUID                  `json:"customer_id"`
	DriverID         uuid.UUID                  `json:"driver_id,omitempty"`
	PickupLatitude   float64                    `json:"pickup_latitude"`
	PickupLongitude  float64                    `json:"pickup_longitude"`
	PickupAddress    string                     `json:"pickup_address"`
	DropOffLatitude  float64                    `json:"drop_off_latitude"`
	DropOffLongitude float64                    `json:"drop_off_longitude"`
	DropOffAddress   string                     `json:"drop_off_address"`
	Price            int64                      `json:"price"`
	Distance         float64                    `json:"distance"`
	Note             string                     `json:"note,omitempty"`
	PaymentMethod    string                     `json:"payment_method"`
	BookingType      string                     `json:"booking_type"`
	Status           string                     `json:"status"`
	Customer         *UserDto                   `json:"customer,omitempty"`
	BookingVehicle   *BookingVehicleDto         `json:"booking_vehicle,omitempty"`
	OnBehalf         *CustomerBookedOnBehalfDto `json:"customer_booked_on_behalf,omitempty"`
	DateCreated      time.Time                  `json:"date_created"`
	DateUpdated      time.Time                  `json:"date_updated"`
}

type NewDriverDto struct {
	SearchRequestID uuid.UUID `json:"search_request_id"`
	OldDriverID     uuid.UUID `json:"old_driver_id"`
	NewDriverID     uuid.UUID `json:"new_driver_id"`
}

type WalletDto struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	TotalMoney int64     `json:"total_money"`
}

type WalletTopUpDto struct {
	Amount *int64 `json:"amount"`
}

type DriverMissDto struct {
	DriverID uuid.UUID `json:"driver_id"`
}

func NewUserDto(u model.User) *UserDto {
	return &UserDto{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Phone:    u.Phone,
		Star:     u.Star,
		Priority: u.Priority,
		IsActive: u.IsActive,
	}
}

func NewWalletDto(w model.Wallet) WalletDto {
	return WalletDto{
		ID:         w.ID,
		UserID:     w.UserID,
		TotalMoney: w.TotalMoney,
	}
}

func NewBookingVehicleDto(v model.BookingVehicle) *BookingVehicleDto {
	return &BookingVehicleDto{
		LicensePlate: v.LicensePlate,
		Brand:        v.Brand,
		Model:        v.Model,
		Color:        v.Color,
	}
}

func NewOnBehalfDto(o *model.CustomerBookedOnBehalf) *CustomerBookedOnBehalfDto {
	if o == nil {
		return nil
	}
	return &CustomerBookedOnBehalfDto{
		Name:        o.Name,
		PhoneNumber: o.PhoneNumber,
		Note:        o.Note,
	}
}

func NewSearchRequestDto(r model.SearchRequest) SearchRequestDto {
	return SearchRequestDto{
		ID:               r.ID,
		CustomerID:       r.CustomerID,
		PickupLatitude:   r.PickupLatitude,
		PickupLongitude:  r.PickupLongitude,
		PickupAddress:    r.PickupAddress,
		DropOffLatitude:  r.DropOffLatitude,
		DropOffLongitude: r.DropOffLongitude,
		DropOffAddress:   r.DropOffAddress,
		Price:            r.Price,
		Distance:         r.Distance,
		Note:             r.Note,
		PaymentMethod:    string(r.PaymentMethod),
		BookingType:      string(r.BookingType),
		Status:           string(r.Status),
		DateCreated:      r.DateCreated,
		DateUpdated:      r.DateUpdated,
	}
}
