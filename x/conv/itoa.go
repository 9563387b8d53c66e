package conv

// Itoa writes the base-10 representation of n into the tail of buf and
// returns the used slice. buf should be at least 20 bytes for int64.
// No allocations; no fmt/strconv dependency.
func Itoa(buf []byte, n int64) []byte {
	if len(buf) == 0 {
		return buf[:0]
	}
	i := len(buf)
	neg := n < 0
	u := uint64(n)
	if neg {
		u = uint64(-n)
	}
	if u == 0 {
		i--
		buf[i] = '0'
	}
	for u > 0 && i > 0 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	if neg && i > 0 {
		i--
		buf[i] = '-'
	}
	return buf[i:]
}

// AppendPad2 appends v as exactly two decimal digits. Values above 99 keep
// only their last two digits.
func AppendPad2(dst []byte, v int) []byte {
	if v < 0 {
		v = -v
	}
	v %= 100
	return append(dst, byte('0'+v/10), byte('0'+v%10))
}
