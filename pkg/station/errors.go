package station

import (
	"errors"
	"fmt"
)

// ErrFault is returned once a startup step failed. The station stays halted.
var ErrFault = errors.New("station: startup fault")

// Code is a stable startup failure reason. It is comparable and implements error.
type Code string

func (c Code) Error() string { return string(c) }

const (
	// ClockNotEnabled means the peripheral clock did not come up.
	ClockNotEnabled Code = "clock_not_enabled"
	// VerifyFailed means the peripheral configuration did not read back as written.
	VerifyFailed Code = "verify_failed"
	// Unavailable means the peripheral or host device could not be opened.
	Unavailable Code = "unavailable"
)

// InitError reports which startup step failed and why.
type InitError struct {
	Step string
	Code Code
	Err  error
}

func (e *InitError) Error() string {
	if e.Err != nil && e.Err != e.Code {
		return fmt.Sprintf("%s initialization failed: %s: %v", e.Step, e.Code, e.Err)
	}
	return fmt.Sprintf("%s initialization failed: %s", e.Step, e.Code)
}

func (e *InitError) Unwrap() []error {
	if e.Err == nil || e.Err == e.Code {
		return []error{e.Code}
	}
	return []error{e.Code, e.Err}
}

// Fail wraps err with a reason code. A step returning Fail(VerifyFailed, err)
// makes the station report VerifyFailed. Fail returns nil when err is nil;
// steps without an underlying error return the Code itself.
func Fail(code Code, err error) error {
	if err == nil {
		return nil
	}
	return &codedError{code: code, err: err}
}

type codedError struct {
	code Code
	err  error
}

func (e *codedError) Error() string   { return string(e.code) + ": " + e.err.Error() }
func (e *codedError) Unwrap() []error { return []error{e.code, e.err} }

// CodeOf extracts the reason code from a step error, defaulting to VerifyFailed.
func CodeOf(err error) Code {
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return VerifyFailed
}
