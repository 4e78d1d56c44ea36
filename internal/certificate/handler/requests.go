package handler

import (
	"certifier/internal/certificate/models"
	dErrors "certifier/pkg/domain-errors"
	strutil "certifier/pkg/platform/strings"
	"certifier/pkg/validation"
)

// RequestCertificateRequest names the course the caller wants certified.
type RequestCertificateRequest struct {
	CourseID string `json:"course_id" validate:"required,coursekey"`
}

func (r *RequestCertificateRequest) Normalize() {
	if r == nil {
		return
	}
	strutil.TrimStrings(&r.CourseID)
}

func (r *RequestCertificateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// Course is only meaningful after Validate succeeds.
func (r *RequestCertificateRequest) Course() models.CourseID {
	return models.CourseID(r.CourseID)
}
