// Package console is a line-oriented operator shell for the RTC.
package console

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/google/shlex"

	"rtcclock-go/bus"
	"rtcclock-go/errcode"
	"rtcclock-go/services/clock"
	"rtcclock-go/services/hal"
	"rtcclock-go/types"
	"rtcclock-go/x/util"
)

const requestTimeout = 3 * time.Second

var (
	ErrUsage   = errors.New("usage")
	ErrUnknown = errors.New("unknown command")
)

const helpText = `commands:
  now               read the clock
  set <RFC3339>     set the clock, e.g. set 2024-06-15T21:30:45Z
  rate <ms>         poll period; 0 stops polling
  halt | run        stop or start the oscillator
  sqw <rate>        square wave: off 1hz 4khz 8khz 32khz
  help
`

type Console struct {
	conn *bus.Connection
	name string
	out  io.Writer
}

// New returns a console driving the RTC capability called name.
func New(conn *bus.Connection, name string, out io.Writer) *Console {
	return &Console{conn: conn, name: name, out: out}
}

// Serve reads commands from in until EOF or ctx ends.
func (c *Console) Serve(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := c.Exec(ctx, sc.Text()); err != nil {
			c.write("error: ", err.Error())
		}
	}
	return sc.Err()
}

// Exec runs one command line.
func (c *Console) Exec(ctx context.Context, line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	switch args[0] {
	case "help", "?":
		c.write(helpText)
		return nil
	case "now", "read":
		return c.read(ctx, "read", nil)
	case "halt", "run":
		return c.read(ctx, args[0], nil)
	case "set":
		if len(args) != 2 {
			return ErrUsage
		}
		return c.read(ctx, "set", types.ClockSet{Time: args[1]})
	case "rate":
		if len(args) != 2 {
			return ErrUsage
		}
		ms, err := strconv.Atoi(args[1])
		if err != nil || ms < 0 {
			return ErrUsage
		}
		if ms == 0 {
			return c.ack(ctx, "poll_stop", types.PollStop{})
		}
		return c.ack(ctx, "poll_start", types.PollStart{IntervalMs: uint32(ms)})
	case "sqw":
		if len(args) != 2 {
			return ErrUsage
		}
		return c.ack(ctx, "sqw", types.ClockSquareWave{Rate: args[1]})
	}
	return ErrUnknown
}

// read sends verb and prints the clock value in the reply.
func (c *Console) read(ctx context.Context, verb string, payload any) error {
	p, err := c.request(ctx, verb, payload)
	if err != nil {
		return err
	}
	v, err := util.Decode[types.ClockValue](p)
	if err != nil {
		return err
	}
	b, err := clock.AppendLines(nil, v, types.ClockConfig{ShowHalted: true, ShowWeekday: true})
	if err != nil {
		return err
	}
	_, err = c.out.Write(b)
	return err
}

func (c *Console) ack(ctx context.Context, verb string, payload any) error {
	if _, err := c.request(ctx, verb, payload); err != nil {
		return err
	}
	c.write("ok\n")
	return nil
}

// request returns the reply payload, or the reply's error code as an error.
func (c *Console) request(ctx context.Context, verb string, payload any) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	msg := c.conn.NewMessage(hal.ControlTopic("time", types.KindRTC, c.name, verb), payload, false)
	reply, err := c.conn.RequestWait(ctx, msg)
	if err != nil {
		return nil, err
	}
	if e, ok := reply.Payload.(types.ErrorReply); ok {
		return nil, errcode.Code(e.Error)
	}
	return reply.Payload, nil
}

// write prints parts; a multi-part line gets a trailing newline.
func (c *Console) write(parts ...string) {
	for _, p := range parts {
		io.WriteString(c.out, p)
	}
	if len(parts) > 1 {
		io.WriteString(c.out, "\n")
	}
}
