package config

import "errors"

var (
	// ErrConfigNotFound is returned when the rules file does not exist.
	ErrConfigNotFound = errors.New("rules file not found")

	// ErrInvalidRules is returned when the rules file cannot be decoded, names an unknown metric
	// or field, or yields a catalog that does not validate.
	ErrInvalidRules = errors.New("invalid rules file")
)
