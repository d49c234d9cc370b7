package domain

import (
	"errors"
	"time"
)

var (
	// ErrNoLifetime means none of permanent, hours, minutes or endsAt was set.
	ErrNoLifetime = errors.New("one of permanent, hours, minutes or endsAt is required")
	// ErrNegativeLifetime rejects negative hours or minutes.
	ErrNegativeLifetime = errors.New("hours and minutes must not be negative")
	// ErrLifetimeTooLong rejects relative durations beyond MaxLifetime.
	ErrLifetimeTooLong = errors.New("session lifetime is too long")
)

// MaxLifetime caps hours+minutes. Longer sessions should be permanent.
const MaxLifetime = 100 * 365 * 24 * time.Hour

// Lifetime is how a user asks for a session duration: permanent, a
// relative duration, or an absolute deadline. Permanent wins over the
// others, then EndsAt, then Hours/Minutes.
type Lifetime struct {
	Permanent bool
	Hours     int
	Minutes   int
	EndsAt    string
}

// Resolve turns the request into an Expiry relative to now.
func (l Lifetime) Resolve(now time.Time) (Expiry, error) {
	if l.Permanent {
		return Permanent(), nil
	}
	if l.EndsAt != "" {
		return ParseExpiry(l.EndsAt)
	}
	if l.Hours < 0 || l.Minutes < 0 {
		return Expiry{}, ErrNegativeLifetime
	}
	if int64(l.Hours) > int64(MaxLifetime/time.Hour) || int64(l.Minutes) > int64(MaxLifetime/time.Minute) {
		return Expiry{}, ErrLifetimeTooLong
	}

	d := time.Duration(l.Hours)*time.Hour + time.Duration(l.Minutes)*time.Minute
	if d == 0 {
		return Expiry{}, ErrNoLifetime
	}
	if d > MaxLifetime {
		return Expiry{}, ErrLifetimeTooLong
	}
	return ExpiresIn(now, d), nil
}
