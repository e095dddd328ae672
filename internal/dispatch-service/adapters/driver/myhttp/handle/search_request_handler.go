package handle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ride-dispatch/internal/dispatch-service/core/domain/dto"
	"ride-dispatch/internal/dispatch-service/core/ports"
	"ride-dispatch/internal/mylogger"
)

type SearchRequestHandler struct {
	searchRequestService ports.ISearchRequestService
	mylog                mylogger.Logger
}

func NewSearchRequestHandler(s ports.ISearchRequestService, mylog mylogger.Logger) *SearchRequestHandler {
	return &SearchRequestHandler{
		searchRequestService: s,
		mylog:                mylog,
	}
}

// actorID reads the user id the auth middleware resolved from the token.
func actorID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.Header.Get("X-UserId"))
	if err != nil {
		return uuid.Nil, errors.New("missing user identity")
	}
	return id, nil
}

func requestCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), WaitTime*time.Second)
}

func (h *SearchRequestHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mylog := h.mylog.Action("Create")

		customerID, err := actorID(r)
		if err != nil {
			JsonError(w, http.StatusUnauthorized, err)
			return
		}

		req := dto.SearchRequestCreateDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, errors.New("failed to parse JSON"))
			return
		}

		ctx, cancel := requestCtx()
		defer cancel()

		id, err := h.searchRequestService.Create(ctx, req, customerID)
		if err != nil {
			mylog.Error("cannot create search request", err)
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusCreated, map[string]string{"id": id.String()})
	}
}

func (h *SearchRequestHandler) Complete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mylog := h.mylog.Action("Complete")

		customerID, err := actorID(r)
		if err != nil {
			JsonError(w, http.StatusUnauthorized, err)
			return
		}

		requestID, err := uuid.Parse(r.PathValue("request_id"))
		if err != nil {
			JsonError(w, http.StatusBadRequest, errors.New("invalid request id"))
			return
		}

		ctx, cancel := requestCtx()
		defer cancel()

		res, err := h.searchRequestService.UpdateStatusToComplete(ctx, requestID, customerID)
		if err != nil {
			mylog.Error("cannot complete search request", err)
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (h *SearchRequestHandler) Cancel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mylog := h.mylog.Action("Cancel")

		customerID, err := actorID(r)
		if err != nil {
			JsonError(w, http.StatusUnauthorized, err)
			return
		}

		requestID, err := uuid.Parse(r.PathValue("request_id"))
		if err != nil {
			JsonError(w, http.StatusBadRequest, errors.New("invalid request id"))
			return
		}

		// Optional body names the driver currently holding the request so he
		// can be notified of the cancellation.
		var body struct {
			DriverID *uuid.UUID `json:"driver_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		ctx, cancel := requestCtx()
		defer cancel()

		res, err := h.searchRequestService.UpdateStatusToCancel(ctx, requestID, customerID, body.DriverID)
		if err != nil {
			mylog.Error("cannot cancel search request", err)
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (h *SearchRequestHandler) DriverMiss() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mylog := h.mylog.Action("DriverMiss")

		customerID, err := actorID(r)
		if err != nil {
			JsonError(w, http.StatusUnauthorized, err)
			return
		}

		req := dto.DriverMissDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, errors.New("failed to parse JSON"))
			return
		}

		ctx, cancel := requestCtx()
		defer cancel()

		res, err := h.searchRequestService.DriverMiss(ctx, customerID, req.DriverID)
		if err != nil {
			mylog.Error("cannot apply driver miss", err)
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (h *SearchRequestHandler) Reassign() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mylog := h.mylog.Action("Reassign")

		req := dto.NewDriverDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, errors.New("failed to parse JSON"))
			return
		}

		ctx, cancel := requestCtx()
		defer cancel()

		res, err := h.searchRequestService.Reassign(ctx, req)
		if err != nil {
			mylog.Error("cannot reassign driver", err)
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (h *SearchRequestHandler) Active() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mylog := h.mylog.Action("Active")

		customerID, err := actorID(r)
		if err != nil {
			JsonError(w, http.StatusUnauthorized, err)
			return
		}

		ctx, cancel := requestCtx()
		defer cancel()

		res, err := h.searchRequestService.ActiveForCustomer(ctx, customerID)
		if err != nil {
			mylog.Error("cannot load active search request", err)
			serviceError(w, err)
			return
		}
		if res == nil {
			jsonResponse(w, http.StatusOK, map[string]any{})
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (h *SearchRequestHandler) SendToDriver() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mylog := h.mylog.Action("SendToDriver")

		requestID, err := uuid.Parse(r.PathValue("request_id"))
		if err != nil {
			JsonError(w, http.StatusBadRequest, errors.New("invalid request id"))
			return
		}
		driverID, err := uuid.Parse(r.PathValue("driver_id"))
		if err != nil {
			JsonError(w, http.StatusBadRequest, errors.New("invalid driver id"))
			return
		}

		ctx, cancel := requestCtx()
		defer cancel()

		if err := h.searchRequestService.SendToDriver(ctx, requestID, driverID); err != nil {
			mylog.Error("cannot send search request to driver", err)
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, map[string]string{"msg": "sent"})
	}
}
