package errors

import "fmt"

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	if ve, ok := err.(*ValidationError); ok {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	if nf, ok := err.(*NotFoundError); ok {
		return nf, true
	}
	return nil, false
}

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

func IsConflictError(err error) (*ConflictError, bool) {
	if ce, ok := err.(*ConflictError); ok {
		return ce, true
	}
	return nil, false
}

// ExternalError carries a rejection from a collaborating service,
// preserving the service-provided message for the operator.
type ExternalError struct {
	Message string
	Cause   error
}

func (e *ExternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExternalError) Unwrap() error {
	return e.Cause
}

func NewExternalError(message string, cause error) *ExternalError {
	return &ExternalError{Message: message, Cause: cause}
}

func IsExternalError(err error) (*ExternalError, bool) {
	if ee, ok := err.(*ExternalError); ok {
		return ee, true
	}
	return nil, false
}

// GatewayUnavailableError means the payment provider issued no payment
// link. The gateway flow stops here; there is no fallback to a direct
// method.
type GatewayUnavailableError struct {
	Message string
}

func (e *GatewayUnavailableError) Error() string {
	return e.Message
}

func NewGatewayUnavailableError(message string) *GatewayUnavailableError {
	return &GatewayUnavailableError{Message: message}
}

func IsGatewayUnavailableError(err error) (*GatewayUnavailableError, bool) {
	if ge, ok := err.(*GatewayUnavailableError); ok {
		return ge, true
	}
	return nil, false
}

// PaymentTimeoutError is reported when gateway polling exceeds its
// maximum duration without a terminal status. Distinct from FAILED.
type PaymentTimeoutError struct {
	Message string
}

func (e *PaymentTimeoutError) Error() string {
	return e.Message
}

func NewPaymentTimeoutError(message string) *PaymentTimeoutError {
	return &PaymentTimeoutError{Message: message}
}

func IsPaymentTimeoutError(err error) (*PaymentTimeoutError, bool) {
	if te, ok := err.(*PaymentTimeoutError); ok {
		return te, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{Message: message, Cause: cause}
}

func IsInternalError(err error) (*InternalError, bool) {
	if ie, ok := err.(*InternalError); ok {
		return ie, true
	}
	return nil, false
}
