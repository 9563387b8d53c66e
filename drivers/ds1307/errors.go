package ds1307

import (
	"errors"

	"rtcclock-go/errcode"
	"rtcclock-go/x/bcd"
	"rtcclock-go/x/conv"
)

var (
	ErrRegister   = errors.New("ds1307: not a timekeeping register")
	ErrYearRange  = errors.New("ds1307: year outside 2000-2099")
	ErrSquareWave = errors.New("ds1307: unknown square-wave rate")
)

// Phase names the half of a register transaction that failed.
type Phase uint8

const (
	PhaseWrite Phase = iota + 1 // address/data write
	PhaseRead                   // one-byte read
)

func (p Phase) String() string {
	switch p {
	case PhaseWrite:
		return "write"
	case PhaseRead:
		return "read"
	}
	return "unknown"
}

// BusError reports a timeout, NACK or fault on the bus. Err is the status
// returned by the transport, errcode.Timeout when the phase ran out of time.
type BusError struct {
	Phase Phase
	Reg   Register
	Err   error
}

func (e *BusError) Error() string {
	b := []byte("ds1307: bus error in ")
	b = append(b, e.Phase.String()...)
	b = append(b, " phase, register "...)
	b = append(b, e.Reg.String()...)
	b = append(b, " ("...)
	b = conv.AppendHex8(b, byte(e.Reg))
	b = append(b, ')')
	if e.Err != nil {
		b = append(b, ": "...)
		b = append(b, e.Err.Error()...)
	}
	return string(b)
}

func (e *BusError) Unwrap() error      { return e.Err }
func (e *BusError) Code() errcode.Code { return errcode.BusError }

// DecodeError reports a register byte with a nibble above 9.
type DecodeError struct {
	Reg Register
	Raw byte
}

func (e *DecodeError) Error() string {
	b := []byte("ds1307: invalid BCD in ")
	b = append(b, e.Reg.String()...)
	b = append(b, ": "...)
	b = conv.AppendHex8(b, e.Raw)
	return string(b)
}

func (e *DecodeError) Unwrap() error      { return bcd.ErrInvalid }
func (e *DecodeError) Code() errcode.Code { return errcode.DecodeError }
