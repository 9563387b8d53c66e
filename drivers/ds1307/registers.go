package ds1307

// I2C address (7-bit).
const Address = 0x68

// Register is a timekeeping register offset.
type Register uint8

const (
	Seconds Register = 0x00
	Minutes Register = 0x01
	Hours   Register = 0x02
	Day     Register = 0x03 // day of week, 1..7
	Date    Register = 0x04
	Month   Register = 0x05
	Year    Register = 0x06

	// Control is written by SetSquareWave only; ReadRegister rejects it.
	Control Register = 0x07
)

// NumTimeRegisters is the length of a full timekeeping read.
const NumTimeRegisters = 7

// Bits sharing a byte with BCD digits.
const (
	bitHalt   = 0x80 // Seconds: oscillator halted
	bitMode12 = 0x40 // Hours: 12-hour mode
	bitPM     = 0x20 // Hours: PM in 12-hour mode
)

var regNames = [...]string{"seconds", "minutes", "hours", "day", "date", "month", "year", "control"}

// Valid reports whether r is one of the seven timekeeping registers.
func (r Register) Valid() bool { return r <= Year }

func (r Register) String() string {
	if int(r) < len(regNames) {
		return regNames[r]
	}
	return "unknown"
}
