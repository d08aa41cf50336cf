package exam

import "fmt"

// FormatTime renders a second count as a zero-padded "HH:MM:SS" countdown,
// e.g. 7200 → "02:00:00", 61 → "00:01:01". Negative values render as zero.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
