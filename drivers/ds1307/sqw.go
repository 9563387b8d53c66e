package ds1307

import upstream "tinygo.org/x/drivers/ds1307"

// SquareWave is a control-register setting for the SQW/OUT pin.
type SquareWave uint8

const (
	SQWOff   SquareWave = upstream.SQW_OFF
	SQW1Hz   SquareWave = upstream.SQW_1HZ
	SQW4kHz  SquareWave = upstream.SQW_4KHZ
	SQW8kHz  SquareWave = upstream.SQW_8KHZ
	SQW32kHz SquareWave = upstream.SQW_32KHZ
)

var sqwNames = map[string]SquareWave{
	"off":   SQWOff,
	"1hz":   SQW1Hz,
	"4khz":  SQW4kHz,
	"8khz":  SQW8kHz,
	"32khz": SQW32kHz,
}

// ParseSquareWave accepts off, 1hz, 4khz, 8khz and 32khz.
func ParseSquareWave(s string) (SquareWave, error) {
	if r, ok := sqwNames[s]; ok {
		return r, nil
	}
	return 0, ErrSquareWave
}

func (r SquareWave) Valid() bool {
	switch r {
	case SQWOff, SQW1Hz, SQW4kHz, SQW8kHz, SQW32kHz:
		return true
	}
	return false
}
