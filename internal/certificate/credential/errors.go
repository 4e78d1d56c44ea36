package credential

import (
	"errors"
	"fmt"

	dErrors "certifier/pkg/domain-errors"
)

// Category classifies a provider failure for logs and metrics. Core logic
// treats every category the same way.
type Category string

const (
	CategoryTimeout   Category = "timeout"
	CategoryTransport Category = "transport"
	CategoryStatus    Category = "status"
	CategoryDecode    Category = "decode"
	CategoryEncode    Category = "encode"
	// CategoryCircuitOpen means the call was refused without reaching the provider.
	CategoryCircuitOpen Category = "circuit_open"
)

// ServiceError is returned for any failed provider call: non-2xx replies,
// transport failures, timeouts and malformed bodies.
type ServiceError struct {
	Op         string
	Category   Category
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("credential %s [%s]", e.Op, e.Category)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" status %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// CategoryOf returns the category of a ServiceError in err's chain, or empty.
func CategoryOf(err error) Category {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Category
	}
	return ""
}

// DomainCode is the domain error code a failed provider call surfaces as.
func DomainCode(err error) dErrors.Code {
	if CategoryOf(err) == CategoryTimeout {
		return dErrors.CodeTimeout
	}
	return dErrors.CodeUnavailable
}
