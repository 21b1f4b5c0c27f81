package grib2

import (
	"errors"
	"fmt"
)

// Error classes. Every error returned by this package wraps exactly one of them,
// so callers can branch with errors.Is.
var (
	// ErrUnsupportedTemplate reports a section 4/5/7 template number outside the
	// implemented set. Only the affected SectionSet is impacted.
	ErrUnsupportedTemplate = errors.New("grib2: unsupported template")

	// ErrPrecondition reports input the decoder does not attempt to work around:
	// bit widths >= 16, spatial differencing order != 2, descriptor octets != 2,
	// unknown time unit codes.
	ErrPrecondition = errors.New("grib2: decoder precondition violated")

	// ErrDecodeMismatch reports a decoded value count that disagrees with the
	// declared point count.
	ErrDecodeMismatch = errors.New("grib2: decoded value count mismatch")

	// ErrMissingSection reports a decode that needs a section the SectionSet lacks.
	ErrMissingSection = errors.New("grib2: missing section")

	// ErrMalformed reports damaged framing or a section too short for its layout.
	ErrMalformed = errors.New("grib2: malformed input")
)

// SectionError attaches the section number to an error class.
type SectionError struct {
	Section int
	Err     error
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("section %d: %v", e.Section, e.Err)
}

func (e *SectionError) Unwrap() error { return e.Err }

// sectionErr wraps class with a formatted detail and the section number.
func sectionErr(section int, class error, format string, args ...any) error {
	detail := fmt.Sprintf(format, args...)
	return &SectionError{Section: section, Err: fmt.Errorf("%w: %s", class, detail)}
}

func missing(section int) error {
	return &SectionError{Section: section, Err: ErrMissingSection}
}
