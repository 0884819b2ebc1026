package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kigopro/kigo/internal/assistant"
	"github.com/kigopro/kigo/internal/model"
	"github.com/kigopro/kigo/internal/store"
)

// httpStatus maps an operation error to a response status.
func httpStatus(err error) int {
	switch {
	case isInputError(err):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound), errors.Is(err, assistant.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict), errors.Is(err, assistant.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeErr writes err with the status httpStatus picks. Validation errors
// carry their field list; internal errors are logged and not echoed.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	code := httpStatus(err)
	if code == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, code, "internal error")
		return
	}
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, code, map[string]any{"error": ve.Error(), "fields": ve.Errors})
		return
	}
	writeError(w, code, err.Error())
}

// grpcError maps an operation error to a gRPC status.
func grpcError(err error) error {
	if err == nil {
		return nil
	}
	var code codes.Code
	switch {
	case isInputError(err):
		code = codes.InvalidArgument
	case errors.Is(err, store.ErrNotFound), errors.Is(err, assistant.ErrSessionNotFound):
		code = codes.NotFound
	case errors.Is(err, store.ErrConflict):
		code = codes.AlreadyExists
	case errors.Is(err, assistant.ErrInvalidTransition):
		code = codes.FailedPrecondition
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	default:
		slog.Error("rpc failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}
