package apiclient

import (
	"errors"
	"strings"
)

// DefaultErrorMessage is shown when neither the server nor the transport
// supplied a usable message.
const DefaultErrorMessage = "Network error, please try again later"

// ErrProductNotFound is returned when the API answers a product lookup with null.
var ErrProductNotFound = errors.New("product not found")

// BusinessError is a logical failure reported inside the {code,message,data} envelope.
type BusinessError struct {
	Status  int
	Code    int
	Message string
}

func (e *BusinessError) Error() string {
	return e.Message
}

// TransportError is a network or HTTP-layer failure without a usable envelope.
type TransportError struct {
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// newTransportError picks the message in priority order: server-supplied
// message, transport-level message, DefaultErrorMessage.
func newTransportError(status int, serverMsg, transportMsg string, err error) *TransportError {
	msg := strings.TrimSpace(serverMsg)
	if msg == "" {
		msg = strings.TrimSpace(transportMsg)
	}
	if msg == "" && err != nil {
		msg = strings.TrimSpace(err.Error())
	}
	if msg == "" {
		msg = DefaultErrorMessage
	}
	return &TransportError{Status: status, Message: msg, Err: err}
}

// ErrorMessage returns the text a view should show for err.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var bizErr *BusinessError
	if errors.As(err, &bizErr) && strings.TrimSpace(bizErr.Message) != "" {
		return bizErr.Message
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) && strings.TrimSpace(transportErr.Message) != "" {
		return transportErr.Message
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return DefaultErrorMessage
}

// IsUnauthorized reports whether err is a 401 from the API or envelope.
func IsUnauthorized(err error) bool {
	var bizErr *BusinessError
	if errors.As(err, &bizErr) {
		return bizErr.Code == 401 || bizErr.Status == 401
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Status == 401
	}
	return false
}
