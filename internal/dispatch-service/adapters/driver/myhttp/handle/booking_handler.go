package handle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"ride-dispatch/internal/dispatch-service/core/domain/dto"
	"ride-dispatch/internal/dispatch-service/core/ports"
	"ride-dispatch/internal/mylogger"
)

type BookingHandler struct {
	bookingService ports.IBookingService
	cancelService  ports.IBookingCancelService
	mylog          mylogger.Logger
}

func NewBookingHandler(bs ports.IBookingService, cs ports.IBookingCancelService, mylog mylogger.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bs,
		cancelService:  cs,
		mylog:          mylog,
	}
}

func (h *BookingHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mylog := h.mylog.Action("Create")

		driverID, err := actorID(r)
		if err != nil {
			JsonError(w, http.StatusUnauthorized, err)
			return
		}

		req := dto.BookingCreateDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, errors.New("failed to parse JSON"))
			return
		}
		req.DriverID = &driverID

		ctx, cancel := requestCtx()
		defer cancel()

		res, err := h.bookingService.Create(ctx, req)
		if err != nil {
			mylog.Error("cannot create booking", err)
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusCreated, res)
	}
}

// ChangeStatus routes the checkpoint named in the path to the matching
// service transition.
func (h *BookingHandler) ChangeStatus() http.HandlerFunc {
	transitions := map[string]func(ports.IBookingService, context.Context, uuid.UUID, uuid.UUID) (dto.BookingDto, error){
		"arrived":   ports.IBookingService.ChangeStatusToArrived,
		"check-in":  ports.IBookingService.ChangeStatusToCheckIn,
		"on-going":  ports.IBookingService.ChangeStatusToOnGoing,
		"check-out": ports.IBookingService.ChangeStatusToCheckOut,
		"complete":  ports.IBookingService.ChangeStatusToComplete,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		mylog := h.mylog.Action("ChangeStatus")

		actor, err := actorID(r)
		if err != nil {
			JsonError(w, http.StatusUnauthorized, err)
			return
		}

		bookingID, err := uuid.Parse(r.PathValue("booking_id"))
		if err != nil {
			JsonError(w, http.StatusBadRequest, errors.New("invalid booking id"))
			return
		}

		transition, ok := transitions[r.PathValue("status")]
		if !ok {
			JsonError(w, http.StatusNotFound, errors.New("unknown status"))
			return
		}

		ctx, cancel := requestCtx()
		defer cancel()

		res, err := transition(h.bookingService, ctx, bookingID, actor)
		if err != nil {
			mylog.Error("cannot change booking status", err)
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (h *BookingHandler) AddCheckInNote() http.HandlerFunc {
	return h.addNote("AddCheckInNote", ports.IBookingService.AddCheckInNote)
}

func (h *BookingHandler) AddCheckOutNote() http.HandlerFunc {
	return h.addNote("AddCheckOutNote", ports.IBookingService.AddCheckOutNote)
}

func (h *BookingHandler) addNote(
	action string,
	do func(ports.IBookingService, context.Context, uuid.UUID, uuid.UUID, string) (dto.BookingDto, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mylog := h.mylog.Action(action)

		actor, err := actorID(r)
		if err != nil {
			JsonError(w, http.StatusUnauthorized, err)
			return
		}

		req := dto.AddCheckNoteDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, errors.New("failed to parse JSON"))
			return
		}
		if req.BookingID == nil {
			JsonError(w, http.StatusBadRequest, errors.New("booking_id is required"))
			return
		}

		ctx, cancel := requestCtx()
		defer cancel()

		res, err := do(h.bookingService, ctx, *req.BookingID, actor, req.Note)
		if err != nil {
			mylog.Error("cannot add note", err)
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (h *BookingHandler) GetByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mylog := h.mylog.Action("GetByID")

		bookingID, err := uuid.Parse(r.PathValue("booking_id"))
		if err != nil {
			JsonError(w, http.StatusBadRequest, errors.New("invalid booking id"))
			return
		}

		ctx, cancel := requestCtx()
		defer cancel()

		res, err := h.bookingService.GetByID(ctx, bookingID)
		if err != nil {
			mylog.Error("cannot load booking", err)
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (h *BookingHandler) CustomerCancel() http.HandlerFunc {
	return h.cancelBooking("CustomerCancel", ports.IBookingCancelService.CustomerCancel)
}

func (h *BookingHandler) DriverCancel() http.HandlerFunc {
	return h.cancelBooking("DriverCancel", ports.IBookingCancelService.DriverCancel)
}

func (h *BookingHandler) cancelBooking(
	action string,
	do func(ports.IBookingCancelService, context.Context, dto.BookingCancelCreateDto, uuid.UUID) (dto.BookingCancelDto, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mylog := h.mylog.Action(action)

		actor, err := actorID(r)
		if err != nil {
			JsonError(w, http.StatusUnauthorized, err)
			return
		}

		req := dto.BookingCancelCreateDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, errors.New("failed to parse JSON"))
			return
		}
		if req.BookingID == nil {
			JsonError(w, http.StatusBadRequest, errors.New("booking_id is required"))
			return
		}

		ctx, cancel := requestCtx()
		defer cancel()

		res, err := do(h.cancelService, ctx, req, actor)
		if err != nil {
			mylog.Error("cannot cancel booking", err)
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (h *BookingHandler) GetCancel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mylog := h.mylog.Action("GetCancel")

		bookingID, err := uuid.Parse(r.PathValue("booking_id"))
		if err != nil {
			JsonError(w, http.StatusBadRequest, errors.New("invalid booking id"))
			return
		}

		ctx, cancel := requestCtx()
		defer cancel()

		res, err := h.cancelService.GetByBookingID(ctx, bookingID)
		if err != nil {
			mylog.Error("cannot load booking cancel", err)
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}
