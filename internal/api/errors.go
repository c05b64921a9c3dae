package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	errs "github.com/matzehuels/corank/pkg/errors"
)

type errorBody struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidInput, errs.ErrCodeMalformedInput, errs.ErrCodeInvalidFormat, errs.ErrCodeInvalidScheme:
		return http.StatusBadRequest
	case errs.ErrCodeUnsupportedScheme:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeNotFound, errs.ErrCodeRunNotFound:
		return http.StatusNotFound
	case errs.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	writeJSON(w, statusFor(err), errorBody{Code: string(code), Error: errs.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
