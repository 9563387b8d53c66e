package clock

import (
	"context"
	"io"
	"time"

	"rtcclock-go/drivers/ds1307"
	"rtcclock-go/types"
	"rtcclock-go/x/timex"
)

// Reader is the part of *ds1307.Device the poll loop needs.
type Reader interface {
	Read() (ds1307.Snapshot, error)
}

// Poll reads r once per period and writes the date and time lines to out.
// A failed cycle writes one error line; the next cycle runs regardless.
// Poll returns when ctx ends or out fails.
func Poll(ctx context.Context, r Reader, period time.Duration, out io.Writer, opts types.ClockConfig) error {
	t := time.NewTicker(period)
	defer t.Stop()

	buf := make([]byte, 0, 64)
	for {
		buf = buf[:0]
		s, err := r.Read()
		if err == nil {
			buf, err = AppendLines(buf, snapshotValue(s), opts)
		}
		if err != nil {
			buf = append(append(append(buf[:0], "error: "...), err.Error()...), '\n')
		}
		if _, werr := out.Write(buf); werr != nil {
			return werr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func snapshotValue(s ds1307.Snapshot) types.ClockValue {
	return types.ClockValue{
		Year:    ds1307.Century + int(s.Year),
		Month:   int(s.Month),
		Date:    int(s.Date),
		Hours:   int(s.Hours),
		Minutes: int(s.Minutes),
		Seconds: int(s.Seconds),
		Day:     int(s.Day),
		Halted:  s.Halted,
		TSms:    timex.NowMs(),
	}
}
