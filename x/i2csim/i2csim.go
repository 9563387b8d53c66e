// Package i2csim is an in-memory I²C bus for host builds and tests.
//
// Targets keep a register pointer: a write sets the pointer from its first
// byte and stores any further bytes with auto-increment; a read returns bytes
// from the pointer onwards. A write-only transaction followed by a read-only
// transaction therefore behaves like a register read on real hardware.
package i2csim

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrNack     = errors.New("i2csim: address not acknowledged")
	ErrBusFault = errors.New("i2csim: bus fault")
)

// Target is one peripheral on the bus.
type Target interface {
	Tx(w, r []byte) error
}

// Phase selects which transactions a Fault applies to.
type Phase uint8

const (
	AnyPhase   Phase = iota
	WritePhase       // write-only transactions
	ReadPhase        // read-only transactions
)

// Fault is injected ahead of the target. Count transactions of the matching
// phase are affected; Count <= 0 means every one until cleared.
type Fault struct {
	Phase Phase
	Err   error
	Stall time.Duration
	Count int
}

// Record is one transaction as seen on the wire.
type Record struct {
	Addr  uint16
	Write []byte
	Read  int
	Err   error
}

type Bus struct {
	mu      sync.Mutex
	targets map[uint16]Target
	faults  map[uint16]*Fault
	trace   []Record
}

func NewBus() *Bus {
	return &Bus{
		targets: make(map[uint16]Target),
		faults:  make(map[uint16]*Fault),
	}
}

// Attach places t at addr, replacing whatever was there.
func (b *Bus) Attach(addr uint16, t Target) {
	b.mu.Lock()
	b.targets[addr] = t
	b.mu.Unlock()
}

// Detach removes the target at addr; later transactions are NACKed.
func (b *Bus) Detach(addr uint16) {
	b.mu.Lock()
	delete(b.targets, addr)
	b.mu.Unlock()
}

// Inject installs f for addr. A zero Fault clears any previous one.
func (b *Bus) Inject(addr uint16, f Fault) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if f.Err == nil && f.Stall == 0 {
		delete(b.faults, addr)
		return
	}
	b.faults[addr] = &f
}

// Trace returns a copy of every transaction seen so far.
func (b *Bus) Trace() []Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Record(nil), b.trace...)
}

// ResetTrace discards recorded transactions.
func (b *Bus) ResetTrace() {
	b.mu.Lock()
	b.trace = nil
	b.mu.Unlock()
}

// Tx implements drivers.I2C.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	t := b.targets[addr]
	var stall time.Duration
	var ferr error
	if f := b.faults[addr]; f != nil && f.matches(w, r) {
		stall, ferr = f.Stall, f.Err
		if f.Count > 0 {
			f.Count--
			if f.Count == 0 {
				delete(b.faults, addr)
			}
		}
	}
	rec := Record{Addr: addr, Write: append([]byte(nil), w...), Read: len(r)}
	b.mu.Unlock()

	if stall > 0 {
		time.Sleep(stall)
	}
	err := ferr
	switch {
	case err != nil:
	case t == nil:
		err = ErrNack
	default:
		err = t.Tx(w, r)
	}

	rec.Err = err
	b.mu.Lock()
	b.trace = append(b.trace, rec)
	b.mu.Unlock()
	return err
}

func (f *Fault) matches(w, r []byte) bool {
	switch f.Phase {
	case WritePhase:
		return len(w) > 0 && len(r) == 0
	case ReadPhase:
		return len(w) == 0 && len(r) > 0
	}
	return true
}

// Registers is a plain register file with pointer semantics.
type Registers struct {
	mu   sync.Mutex
	ptr  byte
	Data []byte
}

// NewRegisters returns a register file of n bytes.
func NewRegisters(n int) *Registers { return &Registers{Data: make([]byte, n)} }

func (g *Registers) Tx(w, r []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.txLocked(w, r)
}

func (g *Registers) txLocked(w, r []byte) error {
	n := len(g.Data)
	if n == 0 {
		return ErrBusFault
	}
	if len(w) > 0 {
		g.ptr = w[0]
		for _, v := range w[1:] {
			g.Data[int(g.ptr)%n] = v
			g.ptr = byte((int(g.ptr) + 1) % n)
		}
	}
	for i := range r {
		r[i] = g.Data[int(g.ptr)%n]
		g.ptr = byte((int(g.ptr) + 1) % n)
	}
	return nil
}

// Pointer returns the current register pointer.
func (g *Registers) Pointer() byte {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ptr
}
