package errors

import (
	stderrors "errors"
	"net/http"
)

// statusCarrier is implemented by backend call failures that know the upstream status
type statusCarrier interface {
	HTTPStatus() int
}

// FromError converts any error to an AppError.
// AppErrors are returned as-is. Backend failures keep the upstream status
// and message so the browser sees the same text the toast showed. Anything
// else becomes a 502, since the companion only fails when the backend does.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	var carrier statusCarrier
	if stderrors.As(err, &carrier) && carrier.HTTPStatus() > 0 {
		return &AppError{
			StatusCode: carrier.HTTPStatus(),
			Code:       "UPSTREAM_ERROR",
			Message:    err.Error(),
			Err:        err,
		}
	}

	return &AppError{
		StatusCode: http.StatusBadGateway,
		Code:       "UPSTREAM_UNAVAILABLE",
		Message:    err.Error(),
		Err:        err,
	}
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	return FromError(err).StatusCode
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) string {
	return FromError(err).Code
}
