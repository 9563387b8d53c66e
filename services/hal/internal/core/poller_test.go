package core

import (
	"context"
	"testing"
	"time"

	"rtcclock-go/types"
)

func TestPollerFiresAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan PollReq, 4)
	p := NewPoller(out)
	go p.Run(ctx)

	a := CapAddr{Domain: "time", Kind: types.KindRTC, Name: "c0"}
	p.Upsert(a, VerbRead, 15*time.Millisecond, 0)
	if got := p.Every(a, VerbRead); got != 15*time.Millisecond {
		t.Fatalf("Every = %v", got)
	}

	for i := 0; i < 3; i++ {
		select {
		case r := <-out:
			if r.Addr != a || r.Verb != VerbRead || r.Every != 15*time.Millisecond {
				t.Fatalf("unexpected tick %#v", r)
			}
		case <-time.After(time.Second):
			t.Fatalf("tick %d missing", i)
		}
	}

	p.Stop(a, VerbRead)
	if p.Every(a, VerbRead) != 0 {
		t.Fatal("still scheduled after Stop")
	}
	time.Sleep(20 * time.Millisecond)
	for len(out) > 0 {
		<-out
	}
	select {
	case r := <-out:
		t.Fatalf("tick after Stop: %#v", r)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestPollerIgnoresInvalid(t *testing.T) {
	p := NewPoller(make(chan PollReq, 1))
	a := CapAddr{Domain: "time", Kind: types.KindRTC, Name: "c0"}
	p.Upsert(a, VerbRead, 0, 0)
	p.Upsert(a, "", time.Second, 0)
	if p.Every(a, VerbRead) != 0 || p.Every(a, "") != 0 {
		t.Fatal("invalid schedule accepted")
	}
}

func TestPollerJitterBounds(t *testing.T) {
	p := NewPoller(nil)
	for i := 0; i < 100; i++ {
		d := p.jittered(10*time.Millisecond, 5*time.Millisecond)
		if d < 10*time.Millisecond || d > 15*time.Millisecond {
			t.Fatalf("jittered = %v", d)
		}
	}
}
