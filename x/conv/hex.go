package conv

const hexd = "0123456789ABCDEF"

// AppendHex8 appends b as "0xNN", the form used for bus addresses and
// register values in log lines.
func AppendHex8(dst []byte, b byte) []byte {
	return append(dst, '0', 'x', hexd[b>>4], hexd[b&0xF])
}

// Hex8 is AppendHex8 into a fresh string.
func Hex8(b byte) string {
	var buf [4]byte
	return string(AppendHex8(buf[:0], b))
}
