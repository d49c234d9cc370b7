package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// PermanentLabel is the persisted sentinel for sessions that never expire.
const PermanentLabel = "PERMANENT"

// Expiry is either Permanent or ExpiresAt(t).
// The zero value is Permanent.
type Expiry struct {
	at time.Time
}

// Permanent returns an Expiry that never elapses.
func Permanent() Expiry { return Expiry{} }

// ExpiresAt returns an Expiry that elapses at t.
// A zero t is treated as Permanent.
func ExpiresAt(t time.Time) Expiry { return Expiry{at: t.UTC()} }

// ExpiresIn returns an Expiry that elapses d after now.
func ExpiresIn(now time.Time, d time.Duration) Expiry { return ExpiresAt(now.Add(d)) }

// IsPermanent reports whether the expiry never elapses.
func (e Expiry) IsPermanent() bool { return e.at.IsZero() }

// Time returns the deadline and false for permanent expiries.
func (e Expiry) Time() (time.Time, bool) {
	if e.IsPermanent() {
		return time.Time{}, false
	}
	return e.at, true
}

// Remaining returns endsAt - now. Permanent expiries return 0.
func (e Expiry) Remaining(now time.Time) time.Duration {
	if e.IsPermanent() {
		return 0
	}
	return e.at.Sub(now)
}

// Equal compares two expiries at instant precision.
func (e Expiry) Equal(o Expiry) bool {
	return e.at.Equal(o.at)
}

func (e Expiry) String() string {
	if e.IsPermanent() {
		return PermanentLabel
	}
	return e.at.Format(time.RFC3339Nano)
}

// MarshalJSON encodes "PERMANENT" or an RFC 3339 timestamp.
func (e Expiry) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

// UnmarshalJSON accepts "PERMANENT" or an RFC 3339 timestamp.
func (e *Expiry) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("endsAt must be a string: %w", err)
	}
	parsed, err := ParseExpiry(raw)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// ParseExpiry parses the persisted representation of an Expiry.
func ParseExpiry(raw string) (Expiry, error) {
	if raw == PermanentLabel {
		return Permanent(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return Expiry{}, fmt.Errorf("invalid endsAt %q: %w", raw, err)
	}
	if t.IsZero() {
		return Expiry{}, fmt.Errorf("invalid endsAt %q: zero time", raw)
	}
	return ExpiresAt(t), nil
}
