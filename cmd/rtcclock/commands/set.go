package commands

import (
	"time"

	"github.com/spf13/cobra"

	"rtcclock-go/drivers/ds1307"
)

func setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set [RFC3339 time]",
		Short: "Set the clock; without an argument the host's UTC time is used",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := time.Now().UTC()
			if len(args) == 1 {
				var err error
				if t, err = time.Parse(time.RFC3339, args[0]); err != nil {
					return err
				}
			}
			if err := dev.Set(t); err != nil {
				return err
			}
			s, err := dev.Read()
			if err != nil {
				return err
			}
			return printSnapshot(cmd, s)
		},
	}
}

func oscCmd(use string, running bool) *cobra.Command {
	short := "Stop the oscillator (clock halt bit set)"
	if running {
		short = "Start the oscillator"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return dev.SetRunning(running)
		},
	}
}

func sqwCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sqw off|1hz|4khz|8khz|32khz",
		Short: "Configure the SQW/OUT pin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := ds1307.ParseSquareWave(args[0])
			if err != nil {
				return err
			}
			return dev.SetSquareWave(r)
		},
	}
}
