package i2csim

import (
	"sync"
	"time"

	"rtcclock-go/x/bcd"
)

const (
	rtcRegs   = 0x40 // time, control and NVRAM
	rtcTime   = 7
	haltBit   = 0x80
	mode12Bit = 0x40
	pmBit     = 0x20
)

// RTC simulates a DS1307-compatible clock: seven BCD time registers, a
// control register and battery-backed RAM up to 0x3F. The clock advances
// with the host clock while the halt bit in seconds is clear.
type RTC struct {
	mu     sync.Mutex
	regs   Registers
	now    func() time.Time
	base   time.Time // clock time at wall
	wall   time.Time
	halted bool
	mode12 bool
}

// NewRTC returns a running clock set to start.
func NewRTC(start time.Time) *RTC {
	c := &RTC{regs: Registers{Data: make([]byte, rtcRegs)}, now: time.Now}
	c.setLocked(start)
	return c
}

// SetNow replaces the wall clock source.
func (c *RTC) SetNow(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur := c.currentLocked()
	c.now = now
	c.base, c.wall = cur, now()
}

// Time returns the clock's current reading.
func (c *RTC) Time() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentLocked()
}

// Halted reports the oscillator halt bit.
func (c *RTC) Halted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.halted
}

func (c *RTC) Tx(w, r []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	touched := len(w) > 1 && int(w[0]) < rtcTime
	if (len(r) > 0 || touched) && !c.halted {
		c.encodeLocked(c.currentLocked())
	}
	if err := c.regs.txLocked(w, r); err != nil {
		return err
	}
	if touched {
		c.resyncLocked()
	}
	return nil
}

func (c *RTC) currentLocked() time.Time {
	if c.halted {
		return c.base
	}
	return c.base.Add(c.now().Sub(c.wall)).Truncate(time.Second)
}

func (c *RTC) setLocked(t time.Time) {
	c.base, c.wall = t.Truncate(time.Second), c.now()
	c.encodeLocked(c.base)
}

func (c *RTC) encodeLocked(t time.Time) {
	d := c.regs.Data
	enc := func(v int) byte {
		b, _ := bcd.Encode(uint8(v % 100))
		return b
	}
	sec := enc(t.Second())
	if c.halted {
		sec |= haltBit
	}
	d[0] = sec
	d[1] = enc(t.Minute())
	if c.mode12 {
		h := t.Hour() % 12
		if h == 0 {
			h = 12
		}
		d[2] = mode12Bit | enc(h)
		if t.Hour() >= 12 {
			d[2] |= pmBit
		}
	} else {
		d[2] = enc(t.Hour())
	}
	d[3] = enc(int(t.Weekday()) + 1)
	d[4] = enc(t.Day())
	d[5] = enc(int(t.Month()))
	d[6] = enc(t.Year() - 2000)
}

// resyncLocked adopts whatever the host wrote into the time registers.
// Undecodable values leave the running time unchanged.
func (c *RTC) resyncLocked() {
	d := c.regs.Data
	dec := func(b byte) int {
		v, err := bcd.Decode(b)
		if err != nil {
			return -1
		}
		return int(v)
	}
	c.halted = d[0]&haltBit != 0
	c.mode12 = d[2]&mode12Bit != 0

	hour := dec(d[2] & 0x3F)
	if c.mode12 {
		hour = dec(d[2] & 0x1F)
		if hour >= 1 && hour <= 12 {
			hour %= 12
			if d[2]&pmBit != 0 {
				hour += 12
			}
		}
	}
	sec, min := dec(d[0]&^haltBit), dec(d[1])
	day, mon, yr := dec(d[4]), dec(d[5]), dec(d[6])
	for _, v := range []int{sec, min, hour, day, mon, yr} {
		if v < 0 {
			c.wall = c.now()
			return
		}
	}
	c.base = time.Date(2000+yr, time.Month(mon), day, hour, min, sec, 0, time.UTC)
	c.wall = c.now()
}
