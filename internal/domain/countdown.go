package domain

import (
	"fmt"
	"time"
)

// FormatRemaining renders d as HH:MM:SS, truncated to whole seconds.
// Hours are zero padded to two digits and may grow past 99.
// Negative durations render as 00:00:00.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// Countdown returns the label shown for a session at now.
func Countdown(e Expiry, now time.Time) string {
	if e.IsPermanent() {
		return PermanentLabel
	}
	return FormatRemaining(e.Remaining(now))
}
