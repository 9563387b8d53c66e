// Package bcd converts packed binary-coded decimal bytes, two decimal digits
// per byte with the tens digit in the high nibble.
package bcd

import "errors"

var ErrInvalid = errors.New("bcd: invalid digit")

// Valid reports whether both nibbles of b are decimal digits.
func Valid(b byte) bool { return b>>4 <= 9 && b&0x0F <= 9 }

// Decode returns 10*high + low. A nibble above 9 yields ErrInvalid.
func Decode(b byte) (uint8, error) {
	if !Valid(b) {
		return 0, ErrInvalid
	}
	return 10*(b>>4) + b&0x0F, nil
}

// Encode packs v (0..99) into one byte.
func Encode(v uint8) (byte, error) {
	if v > 99 {
		return 0, ErrInvalid
	}
	return (v/10)<<4 | v%10, nil
}
