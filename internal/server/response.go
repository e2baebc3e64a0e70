package server

import (
	"encoding/json"
	"net/http"

	"github.com/baixafy/baixafy-api/internal/apperror"
)

type APIResponse[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type APIError struct {
	Kind    apperror.Code `json:"kind"`
	Message string        `json:"message"`
}

func writeJSON[T any](w http.ResponseWriter, status int, data T) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse[T]{
		Message: "ok",
		Data:    data,
	})
}

// writeError emits the error payload: a taxonomy kind plus a user-safe
// message. Internal error details never reach the wire.
func writeError(w http.ResponseWriter, status int, kind apperror.Code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIError{
		Kind:    kind,
		Message: message,
	})
}

// writeAppError maps any error to the wire: AppErrors keep their kind and
// message, everything else collapses to INTERNAL.
func writeAppError(w http.ResponseWriter, err error) {
	if ae, ok := err.(*apperror.AppError); ok {
		writeError(w, ae.HTTPStatus(), ae.Code(), ae.Message())
		return
	}
	writeError(w, http.StatusInternalServerError, apperror.Internal, apperror.UserMessage(apperror.Internal))
}
