package timex

import "rtcclock-go/x/conv"

// AppendDate appends "YY-MM-DD".
func AppendDate(dst []byte, year, month, day int) []byte {
	dst = conv.AppendPad2(dst, year)
	dst = append(dst, '-')
	dst = conv.AppendPad2(dst, month)
	dst = append(dst, '-')
	return conv.AppendPad2(dst, day)
}

// AppendClock12 appends "HH:MM:SS AM" or "HH:MM:SS PM" for a 0..23 hour.
func AppendClock12(dst []byte, h24, min, sec int) ([]byte, error) {
	h12, m, err := ToDisplayHour(h24)
	if err != nil {
		return dst, err
	}
	dst = conv.AppendPad2(dst, h12)
	dst = append(dst, ':')
	dst = conv.AppendPad2(dst, min)
	dst = append(dst, ':')
	dst = conv.AppendPad2(dst, sec)
	dst = append(dst, ' ')
	return append(dst, m...), nil
}
