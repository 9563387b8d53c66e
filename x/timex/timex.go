package timex

import (
	"errors"
	"time"
)

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// Ms converts a millisecond count from config into a Duration.
func Ms(ms int) time.Duration { return time.Duration(ms) * time.Millisecond }

// Meridiem is the civil half-day marker.
type Meridiem string

const (
	AM Meridiem = "AM"
	PM Meridiem = "PM"
)

var ErrHour = errors.New("timex: hour out of range")

// ToDisplayHour converts a 0..23 hour to its 12-hour form. Midnight and noon
// both display as 12.
func ToDisplayHour(h24 int) (int, Meridiem, error) {
	if h24 < 0 || h24 > 23 {
		return 0, "", ErrHour
	}
	m := AM
	if h24 >= 12 {
		m = PM
	}
	h12 := h24 % 12
	if h12 == 0 {
		h12 = 12
	}
	return h12, m, nil
}

// FromDisplayHour is the inverse of ToDisplayHour.
func FromDisplayHour(h12 int, m Meridiem) (int, error) {
	if h12 < 1 || h12 > 12 {
		return 0, ErrHour
	}
	h := h12 % 12
	switch m {
	case AM:
		return h, nil
	case PM:
		return h + 12, nil
	}
	return 0, ErrHour
}
