// Package errors provides standardized error handling for kilocam.
// It defines the error kinds the console distinguishes between (transient
// transport failures, device-reported failures, stale responses and the
// browser's delete/download outcomes) and helpers to create and test them.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// Device error kinds
	Transient
	DeviceReported
	StaleResponse
	InvalidSetting
	// Browser error kinds
	DeleteFailed
	PartialDelete
	NothingToDownload
	InvalidPath
	// Operator error kinds
	Declined
	// Config error kinds
	InvalidConfig
	ConfigNotFound
)

// Common error constants for frequently occurring errors
var (
	ErrDeclined          = &ApplicationError{msg: "cancelled by operator", kind: Declined}
	ErrStale             = &ApplicationError{msg: "response is for a directory no longer shown", kind: StaleResponse}
	ErrNothingToDownload = &ApplicationError{msg: "no files to download", kind: NothingToDownload}
	ErrInvalidConfig     = NewConfigError("invalid configuration", "", InvalidConfig, nil)
)

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// DeviceError represents a failed exchange with the device's HTTP API.
type DeviceError struct {
	ApplicationError
	endpoint string
	status   int
	body     string
}

// NewTransientError reports that the device could not be reached at all.
func NewTransientError(endpoint string, err error) *DeviceError {
	return &DeviceError{
		ApplicationError: ApplicationError{
			msg:  "device unreachable",
			err:  err,
			kind: Transient,
		},
		endpoint: endpoint,
	}
}

// NewDeviceReportedError reports a non-success status returned by the device.
// body is the device's text, kept verbatim for the operator.
func NewDeviceReportedError(endpoint string, status int, body string) *DeviceError {
	return &DeviceError{
		ApplicationError: ApplicationError{
			msg:  "device reported failure",
			kind: DeviceReported,
		},
		endpoint: endpoint,
		status:   status,
		body:     body,
	}
}

// Error returns the device error message
func (e *DeviceError) Error() string {
	switch {
	case e.kind == DeviceReported && e.body != "":
		return fmt.Sprintf("%s: %s (status %d): %s", e.msg, e.endpoint, e.status, e.body)
	case e.kind == DeviceReported:
		return fmt.Sprintf("%s: %s (status %d)", e.msg, e.endpoint, e.status)
	case e.err != nil:
		return fmt.Sprintf("%s: %s: %v", e.msg, e.endpoint, e.err)
	}
	return fmt.Sprintf("%s: %s", e.msg, e.endpoint)
}

// Endpoint returns the API path involved in the failure
func (e *DeviceError) Endpoint() string {
	return e.endpoint
}

// StatusCode returns the HTTP status, or 0 for transient errors
func (e *DeviceError) StatusCode() int {
	return e.status
}

// Body returns the device's response text
func (e *DeviceError) Body() string {
	return e.body
}

// SettingError represents a setting value rejected before transmission.
type SettingError struct {
	ApplicationError
	field string
}

// NewSettingError creates a new setting validation error
func NewSettingError(field string, format string, args ...interface{}) *SettingError {
	return &SettingError{
		ApplicationError: ApplicationError{
			msg:  fmt.Sprintf(format, args...),
			kind: InvalidSetting,
		},
		field: field,
	}
}

// Error returns the setting error message
func (e *SettingError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.field, e.msg)
}

// Field returns the offending setting name
func (e *SettingError) Field() string {
	return e.field
}

// BrowseError represents errors raised by the directory browser
type BrowseError struct {
	ApplicationError
	path string
}

// NewBrowseError creates a new browser error for path
func NewBrowseError(msg string, path string, kind ErrorKind, err error) *BrowseError {
	return &BrowseError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// Error returns the browser error message
func (e *BrowseError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the device path associated with the error
func (e *BrowseError) Path() string {
	return e.path
}

// ConfigError represents errors related to configuration
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{
		msg:  msg,
		kind: Unknown,
	}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		kind: Unknown,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: Unknown,
	}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		err:  err,
		kind: Unknown,
	}
}

// KindOf returns the kind of the first kinded error in err's chain.
func KindOf(err error) ErrorKind {
	for err != nil {
		if k, ok := err.(interface{ Kind() ErrorKind }); ok && k.Kind() != Unknown {
			return k.Kind()
		}
		err = errors.Unwrap(err)
	}
	return Unknown
}

// IsTransient checks if the device could not be reached
func IsTransient(err error) bool {
	return KindOf(err) == Transient
}

// IsDeviceReported checks if the device answered with a failure status
func IsDeviceReported(err error) bool {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr.Kind() == DeviceReported
	}
	return false
}

// IsStale checks if a response was discarded because navigation moved on
func IsStale(err error) bool {
	return KindOf(err) == StaleResponse
}

// IsDeclined checks if the operator declined a confirmation
func IsDeclined(err error) bool {
	return KindOf(err) == Declined
}

// IsInvalidSetting checks if a setting failed validation
func IsInvalidSetting(err error) bool {
	var settingErr *SettingError
	return errors.As(err, &settingErr)
}

// IsPartialDelete checks if a recursive delete failed part way
func IsPartialDelete(err error) bool {
	return KindOf(err) == PartialDelete
}

// IsDeleteFailed checks if a delete failed without observable effect
func IsDeleteFailed(err error) bool {
	return KindOf(err) == DeleteFailed
}

// IsNothingToDownload checks if a bulk download found no files
func IsNothingToDownload(err error) bool {
	return KindOf(err) == NothingToDownload
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}
