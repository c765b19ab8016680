package domain

import (
	"errors"
	"fmt"
)

// ErrScheduling is the base of every schedule-computation failure, so callers
// can catch the whole family with one errors.Is check.
var ErrScheduling = errors.New("schedule computation failed")

var (
	ErrInvalidRule   = fmt.Errorf("%w: rule has no usable pattern", ErrScheduling)
	ErrNoOccurrence  = fmt.Errorf("%w: no occurrence within search horizon", ErrScheduling)
	ErrNoValidWindow = fmt.Errorf("%w: no rule produced a valid window", ErrScheduling)
)

var (
	ErrScheduleNotFound     = errors.New("schedule not found")
	ErrRegulationNotFound   = errors.New("parking regulation not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrStoreConnection      = errors.New("store connection error")
	ErrStoreAuth            = errors.New("store authentication failed")
	ErrInvalidLeadMinutes   = errors.New("lead_minutes must be a positive multiple of 15")
)

// GeometryMismatchError reports two rows of the same block carrying different
// line geometry. This indicates ingestion corruption and is never resolved
// silently.
type GeometryMismatchError struct {
	Block    BlockKey
	Expected Line
	Got      Line
}

func (e *GeometryMismatchError) Error() string {
	return fmt.Sprintf("inconsistent geometries for block %+v: expected %v, got %v",
		e.Block, e.Expected, e.Got)
}

func (e *GeometryMismatchError) Unwrap() error {
	return ErrScheduling
}
