package qcsummary

import (
	"errors"
	"fmt"
	"strings"
)

var errUnknownStatus = errors.New("unknown status")

// Status is the classification assigned to one metric.
type Status int

const (
	StatusUnknown Status = iota
	StatusPass
	StatusWarn
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "UNKNOWN"
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	}

	return "UNKNOWN"
}

// ParseStatus accepts the serialized form, case-insensitively.
func ParseStatus(text string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(text)) {
	case "UNKNOWN":
		return StatusUnknown, nil
	case "PASS":
		return StatusPass, nil
	case "WARN":
		return StatusWarn, nil
	case "FAIL":
		return StatusFail, nil
	default:
		return StatusUnknown, fmt.Errorf("%w %q", errUnknownStatus, text)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	status, err := ParseStatus(string(text))
	if err != nil {
		return err
	}

	*s = status

	return nil
}

// worse returns the more severe of two evaluated statuses.
func worse(a, b Status) Status {
	if b > a {
		return b
	}

	return a
}
