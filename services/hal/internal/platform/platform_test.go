package platform

import (
	"testing"
	"time"
)

func TestSimReadsClock(t *testing.T) {
	start := time.Date(2024, 6, 15, 21, 30, 45, 0, time.UTC)
	p := Sim(start)
	defer p.Close()

	if ids := p.IDs(); len(ids) != 1 || ids[0] != "i2c0" {
		t.Fatalf("IDs = %v", ids)
	}
	b := p.Buses["i2c0"]
	if err := b.Tx(0x68, []byte{0x02}, nil); err != nil {
		t.Fatalf("pointer write: %v", err)
	}
	var r [1]byte
	if err := b.Tx(0x68, nil, r[:]); err != nil {
		t.Fatalf("read: %v", err)
	}
	if r[0] != 0x21 {
		t.Fatalf("hours = %#x, want 0x21", r[0])
	}
	if err := b.Tx(0x50, []byte{0}, nil); err == nil {
		t.Fatal("expected NACK for empty address")
	}
}
