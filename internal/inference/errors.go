package inference

import (
	"errors"
	"fmt"
)

// TransportError reports that the endpoint could not be reached or did not
// answer with a decodable body.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("invoke endpoint %q: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// ExtractionError reports a successful response without generated text.
type ExtractionError struct{ Reason string }

func (e *ExtractionError) Error() string { return "extract generated text: " + e.Reason }

// IsExtraction reports whether err is an ExtractionError.
func IsExtraction(err error) bool {
	var ee *ExtractionError
	return errors.As(err, &ee)
}
