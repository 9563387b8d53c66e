// Package i2cbus serialises access to each physical I²C bus behind a single
// worker goroutine and tracks which device has claimed which address.
package i2cbus

import (
	"sync"
	"time"

	"tinygo.org/x/drivers"

	"rtcclock-go/errcode"
)

// DefaultTimeout bounds Tx calls made without an explicit timeout.
const DefaultTimeout = 250 * time.Millisecond

const queueLen = 16

// request posted to the per-bus worker
type req struct {
	addr uint16
	w, r []byte
	done chan error // buffered(1); worker replies best-effort
}

// Owner hosts one worker goroutine per bus.
type Owner struct {
	id   string
	hw   drivers.I2C
	reqs chan req
	quit chan struct{}
	once sync.Once
}

func NewOwner(id string, hw drivers.I2C) *Owner {
	o := &Owner{
		id:   id,
		hw:   hw,
		reqs: make(chan req, queueLen),
		quit: make(chan struct{}),
	}
	go o.loop()
	return o
}

func (o *Owner) ID() string { return o.id }

func (o *Owner) loop() {
	for {
		select {
		case rq := <-o.reqs:
			err := o.hw.Tx(rq.addr, rq.w, rq.r)
			// best-effort reply; do not block the worker
			select {
			case rq.done <- err:
			default:
			}
		case <-o.quit:
			return
		}
	}
}

// Close stops the worker. Pending requests time out at their callers.
func (o *Owner) Close() { o.once.Do(func() { close(o.quit) }) }

// Tx implements drivers.I2C with DefaultTimeout.
func (o *Owner) Tx(addr uint16, w, r []byte) error {
	return o.TxTimeout(addr, w, r, DefaultTimeout)
}

// TxTimeout queues one transaction and waits for it. timeout bounds the whole
// call: expiry while queued is errcode.Busy, while in flight errcode.Timeout.
// timeout <= 0 waits indefinitely.
func (o *Owner) TxTimeout(addr uint16, w, r []byte, timeout time.Duration) error {
	// The worker reads into a private buffer so a late completion never
	// touches r after the caller has given up.
	rq := req{
		addr: addr,
		w:    append([]byte(nil), w...),
		r:    make([]byte, len(r)),
		done: make(chan error, 1),
	}

	var tc <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		tc = t.C
	}

	select {
	case o.reqs <- rq:
	case <-tc:
		return errcode.Busy
	case <-o.quit:
		return errcode.UnknownBus
	}

	select {
	case err := <-rq.done:
		if err == nil {
			copy(r, rq.r)
		}
		return err
	case <-tc:
		return errcode.Timeout
	case <-o.quit:
		return errcode.UnknownBus
	}
}
