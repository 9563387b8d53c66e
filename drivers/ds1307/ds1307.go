// Package ds1307 reads and sets a DS1307-compatible real-time clock.
//
// Every register read is a two-phase transaction:
//
//	Tx(addr, []byte{reg}, nil) // point at the register, stop
//	sleep(SettleDelay)
//	Tx(addr, nil, buf[:1])      // read one byte, NACK, stop
//
// Both phases share TransactionTimeout. A failed phase surfaces as *BusError;
// a byte that is not valid BCD surfaces as *DecodeError. The driver never
// substitutes a zero for a failed read.
//
// Oscillator halt/run and the square-wave output are delegated to the
// tinygo.org/x/drivers/ds1307 driver running over the same guarded bus.
package ds1307

import (
	"sync"
	"time"

	"tinygo.org/x/drivers"
	upstream "tinygo.org/x/drivers/ds1307"

	"rtcclock-go/errcode"
	"rtcclock-go/x/bcd"
	"rtcclock-go/x/mathx"
)

// Default bus timing.
const (
	DefaultTransactionTimeout = time.Second
	DefaultSettleDelay        = 10 * time.Millisecond
)

// Config controls transport behaviour. Zero fields take defaults.
type Config struct {
	// Address defaults to 0x68.
	Address uint16
	// TransactionTimeout bounds each bus phase. Default 1 s.
	TransactionTimeout time.Duration
	// SettleDelay separates the pointer write from the read. Default 10 ms.
	SettleDelay time.Duration
	// Retries re-runs a failed transaction on *BusError only. Default 0.
	Retries int
}

func (c Config) withDefaults() Config {
	if c.Address == 0 {
		c.Address = Address
	}
	c.TransactionTimeout = mathx.OrDefault(c.TransactionTimeout, DefaultTransactionTimeout)
	c.SettleDelay = mathx.OrDefault(c.SettleDelay, DefaultSettleDelay)
	c.Retries = mathx.Clamp(c.Retries, 0, 10)
	return c
}

// TimedI2C is implemented by transports that can bound a transaction
// themselves, such as the HAL's per-bus owner.
type TimedI2C interface {
	TxTimeout(addr uint16, w, r []byte, timeout time.Duration) error
}

// Raw is one read of the seven timekeeping registers, in register order.
type Raw [NumTimeRegisters]byte

// Device is safe for concurrent use; each transaction holds the device lock.
type Device struct {
	bus   drivers.I2C
	timed TimedI2C
	cfg   Config

	mu sync.Mutex
	up upstream.Device

	// inflight is the completion of a phase abandoned on timeout. The next
	// phase waits for it so the bus never sees two transactions at once.
	inflight chan error
}

// New binds a device to an already configured bus. It does not touch the bus.
func New(bus drivers.I2C, cfg Config) *Device {
	d := &Device{bus: bus, cfg: cfg.withDefaults()}
	if t, ok := bus.(TimedI2C); ok {
		d.timed = t
	}
	d.up = upstream.New(guardedBus{d})
	d.up.Address = uint8(d.cfg.Address)
	return d
}

// Config returns the effective configuration.
func (d *Device) Config() Config { return d.cfg }

// ReadRegister performs one complete two-phase read of r.
func (d *Device) ReadRegister(r Register) (byte, error) {
	if !r.Valid() {
		return 0, errcode.Wrap(errcode.InvalidParams, "ds1307.read", ErrRegister)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readLocked(r)
}

// ReadRaw reads the seven timekeeping registers in order. The device lock is
// held across all seven so no other caller interleaves.
func (d *Device) ReadRaw() (Raw, error) {
	var raw Raw
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range raw {
		b, err := d.readLocked(Register(i))
		if err != nil {
			return Raw{}, err
		}
		raw[i] = b
	}
	return raw, nil
}

// Read returns a decoded snapshot.
func (d *Device) Read() (Snapshot, error) {
	raw, err := d.ReadRaw()
	if err != nil {
		return Snapshot{}, err
	}
	return Decode(raw)
}

// Set writes t in 24-hour mode with the oscillator running. Only years
// 2000..2099 are representable.
func (d *Device) Set(t time.Time) error {
	if !mathx.Between(t.Year(), 2000, 2099) {
		return errcode.Wrap(errcode.InvalidParams, "ds1307.set", ErrYearRange)
	}
	var w [1 + NumTimeRegisters]byte
	w[0] = byte(Seconds)
	for i, v := range [...]int{
		t.Second(), t.Minute(), t.Hour(),
		int(t.Weekday()) + 1,
		t.Day(), int(t.Month()), t.Year() - 2000,
	} {
		b, err := bcd.Encode(uint8(v))
		if err != nil {
			return errcode.Wrap(errcode.InvalidParams, "ds1307.set", err)
		}
		w[1+i] = b
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.retry(func() error {
		if err := d.tx(w[:], nil); err != nil {
			return &BusError{Phase: PhaseWrite, Reg: Seconds, Err: err}
		}
		return nil
	})
}

// SetRunning clears (true) or sets (false) the oscillator halt bit.
func (d *Device) SetRunning(running bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.retry(func() error {
		return d.wrapBus(Seconds, d.up.SetOscillatorRunning(running))
	})
}

// SetSquareWave configures the SQW/OUT pin.
func (d *Device) SetSquareWave(r SquareWave) error {
	if !r.Valid() {
		return errcode.Wrap(errcode.InvalidParams, "ds1307.sqw", ErrSquareWave)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.retry(func() error {
		return d.wrapBus(Control, d.up.SetOscillatorFrequency(uint8(r)))
	})
}

func (d *Device) readLocked(r Register) (byte, error) {
	var b byte
	err := d.retry(func() error {
		var err error
		b, err = d.transact(r)
		return err
	})
	return b, err
}

func (d *Device) transact(r Register) (byte, error) {
	w := [1]byte{byte(r)}
	if err := d.tx(w[:], nil); err != nil {
		return 0, &BusError{Phase: PhaseWrite, Reg: r, Err: err}
	}
	time.Sleep(d.cfg.SettleDelay)
	var buf [1]byte
	if err := d.tx(nil, buf[:]); err != nil {
		return 0, &BusError{Phase: PhaseRead, Reg: r, Err: err}
	}
	return buf[0], nil
}

// retry runs fn up to 1+Retries times while it fails with a *BusError.
func (d *Device) retry(fn func() error) error {
	var err error
	for attempt := 0; attempt <= d.cfg.Retries; attempt++ {
		err = fn()
		if _, ok := err.(*BusError); !ok {
			return err
		}
	}
	return err
}

func (d *Device) wrapBus(r Register, err error) error {
	if err == nil {
		return nil
	}
	return &BusError{Phase: PhaseWrite, Reg: r, Err: err}
}

// tx runs one bus phase within TransactionTimeout. Callers hold d.mu.
func (d *Device) tx(w, r []byte) error {
	if d.timed != nil {
		return d.timed.TxTimeout(d.cfg.Address, w, r, d.cfg.TransactionTimeout)
	}
	t := time.NewTimer(d.cfg.TransactionTimeout)
	defer t.Stop()

	if d.inflight != nil {
		select {
		case <-d.inflight:
			d.inflight = nil
		case <-t.C:
			return errcode.Timeout
		}
	}

	// The transport cannot be cancelled; a late completion lands in a
	// private buffer and is discarded.
	rb := make([]byte, len(r))
	done := make(chan error, 1)
	go func() { done <- d.bus.Tx(d.cfg.Address, w, rb) }()

	select {
	case err := <-done:
		if err == nil {
			copy(r, rb)
		}
		return err
	case <-t.C:
		d.inflight = done
		return errcode.Timeout
	}
}

// guardedBus routes the upstream driver's transactions through tx. Callers
// hold d.mu.
type guardedBus struct{ d *Device }

func (g guardedBus) Tx(addr uint16, w, r []byte) error { return g.d.tx(w, r) }
