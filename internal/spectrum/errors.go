package spectrum

import "fmt"

// TruncatedFormatError is returned when a capture holds fewer bytes than its
// header declares.
type TruncatedFormatError struct {
	Want int64 // Bytes required by the header
	Got  int64 // Bytes actually present
}

func (e *TruncatedFormatError) Error() string {
	return fmt.Sprintf("truncated spectrum data: need %d bytes, have %d", e.Want, e.Got)
}

// InvalidRangeError reports a record that cannot describe a spectrum: an empty or
// negative sample count, or a frequency range whose start is not below its stop.
type InvalidRangeError struct {
	msg string
}

func NewInvalidRangeError(format string, args ...any) *InvalidRangeError {
	return &InvalidRangeError{msg: fmt.Sprintf(format, args...)}
}

func (e *InvalidRangeError) Error() string {
	return e.msg
}
