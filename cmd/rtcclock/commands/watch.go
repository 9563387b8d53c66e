package commands

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"rtcclock-go/services/clock"
	"rtcclock-go/types"
)

func watchCmd() *cobra.Command {
	var (
		pollMs      int
		showHalted  bool
		showWeekday bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the date and time once per poll period until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pollMs <= 0 {
				pollMs = 1000
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			err := clock.Poll(ctx, dev, time.Duration(pollMs)*time.Millisecond, cmd.OutOrStdout(),
				types.ClockConfig{ShowHalted: showHalted, ShowWeekday: showWeekday})
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
	cmd.Flags().IntVar(&pollMs, "poll", 1000, "poll period in ms")
	cmd.Flags().BoolVar(&showHalted, "show-halted", true, "mark readings taken while the oscillator is halted")
	cmd.Flags().BoolVar(&showWeekday, "weekday", false, "also print the day-of-week register")
	return cmd
}
