package commands

import (
	"time"

	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"

	"rtcclock-go/drivers/ds1307"
	"rtcclock-go/x/i2csim"
)

var (
	busName   string
	addr      uint16
	timeoutMs int
	settleMs  int
	retries   int
	sim       bool

	dev     *ds1307.Device
	closeFn func() error
)

func Execute() error {
	return rootCmd().Execute()
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "rtcclock",
		Short:        "Read and set a DS1307 real-time clock over I²C",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			bus, closer, err := openBus()
			if err != nil {
				return err
			}
			closeFn = closer
			dev = ds1307.New(bus, ds1307.Config{
				Address:            addr,
				TransactionTimeout: time.Duration(timeoutMs) * time.Millisecond,
				SettleDelay:        time.Duration(settleMs) * time.Millisecond,
				Retries:            retries,
			})
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if closeFn != nil {
				return closeFn()
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&busName, "bus", "", "periph I²C bus name or number (default: first bus)")
	pf.Uint16Var(&addr, "addr", ds1307.Address, "7-bit device address")
	pf.IntVar(&timeoutMs, "timeout", int(ds1307.DefaultTransactionTimeout/time.Millisecond), "per-phase transaction timeout in ms")
	pf.IntVar(&settleMs, "settle", int(ds1307.DefaultSettleDelay/time.Millisecond), "delay between pointer write and read in ms")
	pf.IntVar(&retries, "retries", 0, "retries on bus errors")
	pf.BoolVar(&sim, "sim", false, "use a simulated clock instead of hardware")

	root.AddCommand(watchCmd(), readCmd(), setCmd(), oscCmd("halt", false), oscCmd("run", true), sqwCmd())
	return root
}

// openBus returns the hardware bus, or a simulated one with --sim.
func openBus() (drivers.I2C, func() error, error) {
	if sim {
		b := i2csim.NewBus()
		b.Attach(addr, i2csim.NewRTC(time.Now().UTC()))
		return b, nil, nil
	}
	if _, err := host.Init(); err != nil {
		return nil, nil, err
	}
	b, err := i2creg.Open(busName)
	if err != nil {
		return nil, nil, err
	}
	return b, b.Close, nil
}
