package identify

import "errors"

// Failure kinds returned by Service.Identify. Callers classify with errors.Is.
// None of them is retried by the service.
var (
	ErrMissingInput      = errors.New("no image provided")
	ErrUpstream          = errors.New("upstream model call failed")
	ErrNoJSONFound       = errors.New("no JSON data found in response")
	ErrMalformedResponse = errors.New("invalid JSON format in response")
)
