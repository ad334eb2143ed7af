package models

import (
	"time"

	apperrors "optionlab/internal/errors"
	"optionlab/internal/positive"
)

// DaysPerYear is the calendar-day convention used to convert expiries
// to year fractions.
const DaysPerYear = 365.0

// ExpirationDate is either a relative days-until-expiry or an absolute
// UTC datetime.
type ExpirationDate struct {
	days *positive.Value
	at   *time.Time
}

// ExpirationFromDays builds an expiration d calendar days away.
func ExpirationFromDays(d positive.Value) ExpirationDate {
	return ExpirationDate{days: &d}
}

// ExpirationAt builds an expiration at an absolute instant. The instant
// is normalised to UTC.
func ExpirationAt(t time.Time) ExpirationDate {
	utc := t.UTC()
	return ExpirationDate{at: &utc}
}

// IsZero reports whether the expiration was never set.
func (e ExpirationDate) IsZero() bool {
	return e.days == nil && e.at == nil
}

// Datetime returns the absolute expiry instant when the datetime
// variant was used.
func (e ExpirationDate) Datetime() (time.Time, bool) {
	if e.at == nil {
		return time.Time{}, false
	}
	return *e.at, true
}

// Days returns days-until-expiry when the relative variant was used.
func (e ExpirationDate) Days() (positive.Value, bool) {
	if e.days == nil {
		return positive.Zero, false
	}
	return *e.days, true
}

// YearsFrom returns the time to expiry in years as seen from now,
// clamped at zero.
func (e ExpirationDate) YearsFrom(now time.Time) (positive.Value, error) {
	switch {
	case e.days != nil:
		return positive.FromFloat(e.days.Float64() / DaysPerYear)
	case e.at != nil:
		years := e.at.Sub(now.UTC()).Hours() / (24 * DaysPerYear)
		if years < 0 {
			years = 0
		}
		return positive.FromFloat(years)
	default:
		return positive.Zero, apperrors.ErrInvalidExpiration
	}
}
