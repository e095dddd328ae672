package handle

import (
	"encoding/json"
	"net/http"

	"ride-dispatch/internal/dispatch-service/core/myerrors"
)

const WaitTime = 10

// jsonResponse writes the given data as a JSON-encoded HTTP response.
func jsonResponse(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// JsonError writes an error response as JSON with the specified HTTP status code.
func JsonError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
		"code":  code,
	})
}

// serviceError maps a core error to its HTTP status and writes it.
func serviceError(w http.ResponseWriter, err error) {
	JsonError(w, statusOf(err), err)
}

func statusOf(err error) int {
	switch myerrors.KindOf(err) {
	case myerrors.KindNotFound, myerrors.KindWalletNotFound:
		return http.StatusNotFound
	case myerrors.KindInvalidState, myerrors.KindAlreadyCancelled:
		return http.StatusConflict
	case myerrors.KindRoleMismatch, myerrors.KindForbidden:
		return http.StatusForbidden
	case myerrors.KindMissingOnBehalfData, myerrors.KindInvalidInput:
		return http.StatusBadRequest
	case myerrors.KindDependencyFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
