package clock

import (
	"rtcclock-go/types"
	"rtcclock-go/x/timex"
)

var weekdays = [...]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// AppendLines appends the two output lines for v:
//
//	date: YY-MM-DD
//	time: HH:MM:SS AM|PM
func AppendLines(dst []byte, v types.ClockValue, opts types.ClockConfig) ([]byte, error) {
	dst = append(dst, "date: "...)
	dst = timex.AppendDate(dst, v.Year, v.Month, v.Date)
	dst = append(dst, '\n')

	dst = append(dst, "time: "...)
	var err error
	dst, err = timex.AppendClock12(dst, v.Hours, v.Minutes, v.Seconds)
	if err != nil {
		return dst, err
	}
	if opts.ShowHalted && v.Halted {
		dst = append(dst, " (halted)"...)
	}
	dst = append(dst, '\n')

	if opts.ShowWeekday && v.Day >= 1 && v.Day <= 7 {
		dst = append(dst, "day: "...)
		dst = append(dst, weekdays[v.Day-1]...)
		dst = append(dst, '\n')
	}
	return dst, nil
}

// AppendError appends "error: <name>: <code>".
func AppendError(dst []byte, name string, st types.CapabilityStatus) []byte {
	dst = append(dst, "error: "...)
	dst = append(dst, name...)
	dst = append(dst, ": "...)
	code := st.Error
	if code == "" {
		code = string(st.Link)
	}
	dst = append(dst, code...)
	return append(dst, '\n')
}
