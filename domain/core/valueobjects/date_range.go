package valueobjects

import (
	"errors"
	"time"
)

// DateRange bounds a query by occurrence time. Both bounds are inclusive
// and either may be omitted.
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// IsZero reports whether no bound is set.
func (r DateRange) IsZero() bool {
	return r.From == nil && r.To == nil
}

// Validate checks that the bounds are ordered.
func (r DateRange) Validate() error {
	if r.From != nil && r.To != nil && r.From.After(*r.To) {
		return errors.New("date range start is after end")
	}
	return nil
}

// Contains reports whether t falls inside the range, bounds inclusive.
func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}
