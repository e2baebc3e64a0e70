package job

import (
	"strings"

	"github.com/baixafy/baixafy-api/internal/apperror"
	"github.com/baixafy/baixafy-api/internal/reference"
)

type SubmitRequest struct {
	SourceReference string `json:"sourceReference"`
	UserKey         string `json:"-"`
}

// Validate checks the reference against the allow-list of accepted link
// shapes. A reference that matches no known shape is rejected before any
// record exists.
func (r SubmitRequest) Validate() *apperror.AppError {
	if strings.TrimSpace(r.SourceReference) == "" {
		return apperror.New(apperror.InvalidReference, "sourceReference is required")
	}
	if _, err := reference.Parse(r.SourceReference); err != nil {
		return apperror.New(apperror.InvalidReference, err.Error())
	}
	return nil
}

type GetJobRequest struct {
	ID string
}

func (r GetJobRequest) Validate() *apperror.AppError {
	if strings.TrimSpace(r.ID) == "" {
		return apperror.New(apperror.BadRequest, "invalid job id")
	}
	return nil
}
