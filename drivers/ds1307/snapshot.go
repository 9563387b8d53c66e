package ds1307

import (
	"time"

	"rtcclock-go/x/bcd"
	"rtcclock-go/x/timex"
)

// Century is added to the two-digit year register.
const Century = 2000

// Snapshot is one decoded reading. Hours are always 0..23 regardless of the
// chip's hour mode. Day is the raw day-of-week register (1..7, Sunday = 1
// when set by this driver).
type Snapshot struct {
	Seconds uint8
	Minutes uint8
	Hours   uint8
	Day     uint8
	Date    uint8
	Month   uint8
	Year    uint8 // 0..99 within Century

	// Halted is the oscillator halt bit from the seconds register.
	Halted bool
}

// Decode converts seven raw register bytes. The halt bit and the hour-mode
// bits are interpreted before BCD decoding; every other bit must be BCD.
func Decode(raw Raw) (Snapshot, error) {
	var s Snapshot
	var err error

	s.Halted = raw[Seconds]&bitHalt != 0
	if s.Seconds, err = decode(Seconds, raw[Seconds]&^bitHalt); err != nil {
		return Snapshot{}, err
	}
	if s.Minutes, err = decode(Minutes, raw[Minutes]); err != nil {
		return Snapshot{}, err
	}
	if s.Hours, err = decodeHours(raw[Hours]); err != nil {
		return Snapshot{}, err
	}
	for _, f := range []struct {
		r   Register
		dst *uint8
	}{
		{Day, &s.Day}, {Date, &s.Date}, {Month, &s.Month}, {Year, &s.Year},
	} {
		if *f.dst, err = decode(f.r, raw[f.r]); err != nil {
			return Snapshot{}, err
		}
	}
	return s, nil
}

func decode(r Register, b byte) (uint8, error) {
	v, err := bcd.Decode(b)
	if err != nil {
		return 0, &DecodeError{Reg: r, Raw: b}
	}
	return v, nil
}

func decodeHours(b byte) (uint8, error) {
	if b&bitMode12 == 0 {
		h, err := decode(Hours, b)
		if err == nil && h > 23 {
			return 0, &DecodeError{Reg: Hours, Raw: b}
		}
		return h, err
	}
	h, err := decode(Hours, b&0x1F)
	if err != nil {
		return 0, err
	}
	if h < 1 || h > 12 {
		return 0, &DecodeError{Reg: Hours, Raw: b}
	}
	h24, err := timex.FromDisplayHour(int(h), meridiem(b&bitPM != 0))
	if err != nil {
		return 0, &DecodeError{Reg: Hours, Raw: b}
	}
	return uint8(h24), nil
}

func meridiem(pm bool) timex.Meridiem {
	if pm {
		return timex.PM
	}
	return timex.AM
}

// Time returns the snapshot as a UTC time. Out-of-range calendar fields are
// normalised by time.Date.
func (s Snapshot) Time() time.Time {
	return time.Date(Century+int(s.Year), time.Month(s.Month), int(s.Date),
		int(s.Hours), int(s.Minutes), int(s.Seconds), 0, time.UTC)
}

// Weekday maps the day register with Sunday = 1. ok is false outside 1..7.
func (s Snapshot) Weekday() (wd time.Weekday, ok bool) {
	if s.Day < 1 || s.Day > 7 {
		return 0, false
	}
	return time.Weekday(s.Day - 1), true
}

// Display returns the 12-hour presentation of Hours.
func (s Snapshot) Display() (hour int, m timex.Meridiem) {
	hour, m, _ = timex.ToDisplayHour(int(s.Hours))
	return hour, m
}

// DateLine returns "YY-MM-DD".
func (s Snapshot) DateLine() string {
	var b [8]byte
	return string(timex.AppendDate(b[:0], int(s.Year), int(s.Month), int(s.Date)))
}

// TimeLine returns "HH:MM:SS AM|PM".
func (s Snapshot) TimeLine() string {
	var b [11]byte
	out, _ := timex.AppendClock12(b[:0], int(s.Hours), int(s.Minutes), int(s.Seconds))
	return string(out)
}
