package pushgw

import (
	"errors"
	"fmt"
)

// maxErrorBody is the maximum number of bytes kept from an error response body.
const maxErrorBody = 4096

// ErrTransmission matches any *TransmissionError.
var ErrTransmission = errors.New("pushgw: transmission failed")

// TransmissionError is returned when a push does not reach the gateway or the
// gateway rejects it. StatusCode and Body are set when a response arrived.
type TransmissionError struct {
	Job        string
	StatusCode int
	Body       string
	Err        error
}

// Error returns the formatted error string.
func (e *TransmissionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("pushgw: push job %q: HTTP %d: %v", e.Job, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("pushgw: push job %q: %v", e.Job, e.Err)
}

// Unwrap returns the underlying push error.
func (e *TransmissionError) Unwrap() error {
	return e.Err
}

// Is supports errors.Is matching against ErrTransmission.
func (e *TransmissionError) Is(target error) bool {
	return target == ErrTransmission
}
