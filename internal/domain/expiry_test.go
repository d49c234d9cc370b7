package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestExpiryJSON(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		expiry  Expiry
		encoded string
	}{
		{
			name:    "permanent",
			expiry:  Permanent(),
			encoded: `"PERMANENT"`,
		},
		{
			name:    "timed",
			expiry:  ExpiresAt(at),
			encoded: `"2026-03-01T12:30:00Z"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.expiry)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(data) != tt.encoded {
				t.Errorf("Marshal() = %s, want %s", data, tt.encoded)
			}

			var decoded Expiry
			if err := json.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if !decoded.Equal(tt.expiry) {
				t.Errorf("Unmarshal() = %v, want %v", decoded, tt.expiry)
			}
		})
	}
}

func TestParseExpiryRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "permanent", "tomorrow", "0001-01-01T00:00:00Z"} {
		if _, err := ParseExpiry(raw); err == nil {
			t.Errorf("ParseExpiry(%q) should fail", raw)
		}
	}
}

func TestExpiryNonUTCInput(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	at := time.Date(2026, 3, 1, 19, 30, 0, 0, loc)

	e := ExpiresAt(at)
	got, ok := e.Time()
	if !ok {
		t.Fatal("Time() reported permanent for a timed expiry")
	}
	if got.Location() != time.UTC {
		t.Errorf("Time() location = %v, want UTC", got.Location())
	}
	if !got.Equal(at) {
		t.Errorf("Time() = %v, want %v", got, at)
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		endsAt   Expiry
		expected bool
	}{
		{name: "permanent never expires", endsAt: Permanent(), expected: false},
		{name: "future deadline", endsAt: ExpiresIn(now, time.Hour), expected: false},
		{name: "deadline reached", endsAt: ExpiresAt(now), expected: true},
		{name: "past deadline", endsAt: ExpiresIn(now, -time.Minute), expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Session{ID: "s1", Title: "t", EndsAt: tt.endsAt}
			if got := s.Expired(now); got != tt.expected {
				t.Errorf("Expired() = %v, want %v", got, tt.expected)
			}
		})
	}
}
