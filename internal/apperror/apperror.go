package apperror

import "net/http"

type Code string

const (
	BadRequest Code = "BAD_REQUEST"
	NotFound   Code = "NOT_FOUND"
	Internal   Code = "INTERNAL"
	Conflict   Code = "CONFLICT"
	Forbidden  Code = "FORBIDDEN"

	// Job failure kinds.
	InvalidReference  Code = "INVALID_REFERENCE"
	SourceUnavailable Code = "SOURCE_UNAVAILABLE"
	Timeout           Code = "TIMEOUT"
	NothingProduced   Code = "NOTHING_PRODUCED"
	PackagingFailure  Code = "PACKAGING_FAILURE"
)

type AppError struct {
	code    Code
	message string
}

func New(code Code, message string) *AppError {
	return &AppError{code: code, message: message}
}

func (e *AppError) Error() string   { return e.message }
func (e *AppError) Code() Code      { return e.code }
func (e *AppError) Message() string { return e.message }

func (e *AppError) HTTPStatus() int {
	switch e.code {
	case BadRequest, InvalidReference:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Forbidden:
		return http.StatusForbidden
	case SourceUnavailable:
		return http.StatusServiceUnavailable
	case Timeout:
		return http.StatusGatewayTimeout
	case NothingProduced:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage translates a failure kind into a description safe to show to
// pollers. Raw internal errors never leave the worker.
func UserMessage(code Code) string {
	switch code {
	case InvalidReference:
		return "the source reference is not a supported Spotify link"
	case SourceUnavailable:
		return "the download tool is currently unavailable, try again later"
	case Timeout:
		return "the fetch took too long and was aborted, try a smaller request"
	case NothingProduced:
		return "no files could be fetched for this reference"
	case PackagingFailure:
		return "fetched files could not be packaged into an archive"
	case NotFound:
		return "job not found"
	default:
		return "an internal error occurred"
	}
}
