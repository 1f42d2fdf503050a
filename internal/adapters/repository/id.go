package repository

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidIdentifier marks ids rejected before the store is ever called
var ErrInvalidIdentifier = errors.New("invalid record identifier")

// ParseRecordID validates an incoming identifier. Only positive base-10
// integers pass; empty, non-numeric, zero, negative and fractional values
// are rejected locally.
func ParseRecordID(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, ErrInvalidIdentifier
	}
	id, err := strconv.Atoi(trimmed)
	if err != nil || id <= 0 {
		return 0, ErrInvalidIdentifier
	}
	return id, nil
}
