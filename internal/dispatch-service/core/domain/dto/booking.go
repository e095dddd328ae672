package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"ride-dispatch/internal/dispatch-service/core/domain/model"
)

type BookingCreateDto struct {
	SearchRequestID *uuid.UUID `json:"search_request_id"`
	DriverID        *uuid.UUID `json:"driver_id"`
}

type ChangeBookingStatusDto struct {
	BookingID *uuid.UUID `json:"booking_id"`
}

type BookingCancelCreateDto struct {
	BookingID *uuid.UUID `json:"booking_id"`
	Reason    string     `json:"reason"`
}

type AddCheckNoteDto struct {
	BookingID *uuid.UUID `json:"booking_id"`
	Note      string     `json:"note"`
}

type BookingDto struct {
	ID              uuid.UUID  `json:"id"`
	DriverID        uuid.UUID  `json:"driver_id"`
	SearchRequestID uuid.UUID  `json:"search_request_id"`
	Status          string     `json:"status"`
	PickUpTime      *time.Time `json:"pick_up_time,omitempty"`
	DropOffTime     *time.Time `json:"drop_off_time,omitempty"`
	CheckInNote     string     `json:"check_in_note,omitempty"`
	CheckOutNote    string     `json:"check_out_note,omitempty"`
	DateCreated     time.Time  `json:"date_created"`
	DateUpdated     time.Time  `json:"date_updated"`
}

type BookingCancelDto struct {
	ID          uuid.UUID `json:"id"`
	BookingID   uuid.UUID `json:"booking_id"`
	Initiator   string    `json:"initiator"`
	Reason      string    `json:"reason"`
	DateCreated time.Time `json:"date_created"`
}

// Event is one websocket frame pushed to a connected user.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func NewBookingDto(b model.Booking) BookingDto {
	return BookingDto{
		ID:              b.ID,
		DriverID:        b.DriverID,
		SearchRequestID: b.SearchRequestID,
		Status:          string(b.Status),
		PickUpTime:      b.PickUpTime,
		DropOffTime:     b.DropOffTime,
		CheckInNote:     b.CheckInNote,
		CheckOutNote:    b.CheckOutNote,
		DateCreated:     b.DateCreated,
		DateUpdated:     b.DateUpdated,
	}
}

func NewBookingCancelDto(c model.BookingCancel) BookingCancelDto {
	return BookingCancelDto{
		ID:          c.ID,
		BookingID:   c.BookingID,
		Initiator:   string(c.Initiator),
		Reason:      c.Reason,
		DateCreated: c.DateCreated,
	}
}
