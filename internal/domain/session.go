package domain

import (
	"fmt"
	"strings"
	"time"
)

// Session represents a titled bundle of links with an expiry policy.
//
// Sessions are only ever mutated by replacing the whole record.
type Session struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the opaque unique identifier.
	ID string `json:"id"`

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	// Title is the display string.
	Title string `json:"title"`

	// Links are embedded by value, in display order.
	Links []Link `json:"links"`

	// ─────────────────────────────
	// Lifetime
	// ─────────────────────────────

	// EndsAt is either Permanent or an absolute deadline.
	// A timed session is deleted once wall-clock time passes it.
	EndsAt Expiry `json:"endsAt"`
}

// Validate checks the fields a user must supply.
func (s Session) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("session title is required")
	}
	for i, l := range s.Links {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("link %d: %w", i, err)
		}
	}
	return nil
}

// Expired reports whether a timed session has reached its deadline.
func (s Session) Expired(now time.Time) bool {
	return !s.EndsAt.IsPermanent() && s.EndsAt.Remaining(now) <= 0
}
