package clock

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"rtcclock-go/drivers/ds1307"
	"rtcclock-go/types"
)

type scripted struct {
	snaps []ds1307.Snapshot
	errs  []error
	n     int
}

func (s *scripted) Read() (ds1307.Snapshot, error) {
	i := s.n
	s.n++
	if i < len(s.errs) && s.errs[i] != nil {
		return ds1307.Snapshot{}, s.errs[i]
	}
	return s.snaps[i%len(s.snaps)], nil
}

// limitWriter cancels the poll after n writes.
type limitWriter struct {
	sb     strings.Builder
	n      int
	cancel func()
}

func (w *limitWriter) Write(p []byte) (int, error) {
	w.sb.Write(p)
	if w.n--; w.n == 0 {
		w.cancel()
	}
	return len(p), nil
}

func TestPollContinuesAfterErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &scripted{
		snaps: []ds1307.Snapshot{{Seconds: 45, Minutes: 30, Hours: 21, Day: 3, Date: 15, Month: 6, Year: 24}},
		errs:  []error{nil, &ds1307.BusError{Phase: ds1307.PhaseRead, Reg: ds1307.Minutes, Err: errors.New("timeout")}},
	}
	w := &limitWriter{n: 3, cancel: cancel}

	err := Poll(ctx, r, time.Millisecond, w, types.ClockConfig{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Poll = %v", err)
	}
	want := "date: 24-06-15\ntime: 09:30:45 PM\n" +
		"error: ds1307: bus error in read phase, register minutes (0x01): timeout\n" +
		"date: 24-06-15\ntime: 09:30:45 PM\n"
	if got := w.sb.String(); got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}
