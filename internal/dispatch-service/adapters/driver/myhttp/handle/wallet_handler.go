package handle

import (
	"encoding/json"
	"errors"
	"net/http"

	"ride-dispatch/internal/dispatch-service/core/domain/dto"
	"ride-dispatch/internal/dispatch-service/core/ports"
	"ride-dispatch/internal/mylogger"
)

type WalletHandler struct {
	walletService ports.IWalletService
	mylog         mylogger.Logger
}

func NewWalletHandler(s ports.IWalletService, mylog mylogger.Logger) *WalletHandler {
	return &WalletHandler{
		walletService: s,
		mylog:         mylog,
	}
}

func (h *WalletHandler) TopUp() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mylog := h.mylog.Action("TopUp")

		userID, err := actorID(r)
		if err != nil {
			JsonError(w, http.StatusUnauthorized, err)
			return
		}

		req := dto.WalletTopUpDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, errors.New("failed to parse JSON"))
			return
		}

		ctx, cancel := requestCtx()
		defer cancel()

		res, err := h.walletService.TopUp(ctx, userID, req)
		if err != nil {
			mylog.Error("cannot top up wallet", err)
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (h *WalletHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mylog := h.mylog.Action("Get")

		userID, err := actorID(r)
		if err != nil {
			JsonError(w, http.StatusUnauthorized, err)
			return
		}

		ctx, cancel := requestCtx()
		defer cancel()

		res, err := h.walletService.Balance(ctx, userID)
		if err != nil {
			mylog.Error("cannot load wallet", err)
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}
