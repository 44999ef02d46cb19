package domain

import (
	"errors"
	"fmt"
)

// Endpoint identifies one upstream endpoint family
type Endpoint string

const (
	EndpointAPOD        Endpoint = "apod"
	EndpointNEO         Endpoint = "neo"
	EndpointWeather     Endpoint = "weather"
	EndpointRoverPhotos Endpoint = "rover"
	EndpointEPIC        Endpoint = "epic"
	EndpointEPICDates   Endpoint = "epic_dates"
)

// Endpoints lists every endpoint family in a stable order
var Endpoints = []Endpoint{
	EndpointAPOD, EndpointNEO, EndpointWeather,
	EndpointRoverPhotos, EndpointEPIC, EndpointEPICDates,
}

// MaxErrorMessageLen bounds upstream error text surfaced to callers
const MaxErrorMessageLen = 200

// ErrNoDataForQuery signals that the rover photo endpoint has nothing for the
// requested sol/camera. Orchestrators turn it into an empty result.
var ErrNoDataForQuery = errors.New("no data for query")

// NetworkError is a transport failure where no response was obtained
type NetworkError struct {
	Endpoint Endpoint
	Err      error
}

// Error implements the error interface
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling %s: %v", e.Endpoint, e.Err)
}

// Unwrap returns the transport error
func (e *NetworkError) Unwrap() error { return e.Err }

// UpstreamHTTPError is a non-2xx upstream response
type UpstreamHTTPError struct {
	Endpoint Endpoint
	Code     int
	Message  string
}

// Error implements the error interface
func (e *UpstreamHTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream %s returned HTTP %d", e.Endpoint, e.Code)
	}
	return fmt.Sprintf("upstream %s returned HTTP %d: %s", e.Endpoint, e.Code, e.Message)
}

// UpstreamFormatError is a 2xx response that is not JSON, typically an HTML error page
type UpstreamFormatError struct {
	Endpoint Endpoint
	Reason   string
}

// Error implements the error interface
func (e *UpstreamFormatError) Error() string {
	return fmt.Sprintf("upstream %s returned malformed response: %s", e.Endpoint, e.Reason)
}

// DecodeError is a required field that could not be normalized
type DecodeError struct {
	FieldPath string
	Reason    string
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.FieldPath, e.Reason)
}

// InvalidArgumentError is a caller parameter outside its validated domain
type InvalidArgumentError struct {
	Argument string
	Message  string
}

// Error implements the error interface
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Argument, e.Message)
}

// IsNetwork checks if an error is a NetworkError
func IsNetwork(err error) bool {
	var target *NetworkError
	return errors.As(err, &target)
}

// IsUpstreamHTTP checks if an error is an UpstreamHTTPError
func IsUpstreamHTTP(err error) bool {
	var target *UpstreamHTTPError
	return errors.As(err, &target)
}

// IsUpstreamFormat checks if an error is an UpstreamFormatError
func IsUpstreamFormat(err error) bool {
	var target *UpstreamFormatError
	return errors.As(err, &target)
}

// IsDecode checks if an error is a DecodeError
func IsDecode(err error) bool {
	var target *DecodeError
	return errors.As(err, &target)
}

// IsInvalidArgument checks if an error is an InvalidArgumentError
func IsInvalidArgument(err error) bool {
	var target *InvalidArgumentError
	return errors.As(err, &target)
}

// TruncateMessage shortens s to MaxErrorMessageLen runes
func TruncateMessage(s string) string {
	r := []rune(s)
	if len(r) <= MaxErrorMessageLen {
		return s
	}
	return string(r[:MaxErrorMessageLen])
}
