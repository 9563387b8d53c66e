package commands

import (
	"time"

	"github.com/spf13/cobra"

	"rtcclock-go/drivers/ds1307"
	"rtcclock-go/services/clock"
	"rtcclock-go/types"
	"rtcclock-go/x/conv"
)

func readCmd() *cobra.Command {
	var raw, drift bool
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read the clock once",
		RunE: func(cmd *cobra.Command, args []string) error {
			if raw {
				r, err := dev.ReadRaw()
				if err != nil {
					return err
				}
				var b []byte
				for i, v := range r {
					b = append(b, ds1307.Register(i).String()...)
					b = append(b, ' ')
					b = conv.AppendHex8(b, v)
					b = append(b, '\n')
				}
				_, err = cmd.OutOrStdout().Write(b)
				return err
			}
			s, err := dev.Read()
			if err != nil {
				return err
			}
			if err := printSnapshot(cmd, s); err != nil {
				return err
			}
			if drift {
				d := s.Time().Sub(time.Now().UTC()).Round(time.Second)
				_, err = cmd.OutOrStdout().Write([]byte("drift: " + d.String() + "\n"))
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the undecoded register bytes")
	cmd.Flags().BoolVar(&drift, "drift", false, "also print the clock's offset from host UTC")
	return cmd
}

func printSnapshot(cmd *cobra.Command, s ds1307.Snapshot) error {
	b, err := clock.AppendLines(nil, types.ClockValue{
		Year: ds1307.Century + int(s.Year), Month: int(s.Month), Date: int(s.Date),
		Hours: int(s.Hours), Minutes: int(s.Minutes), Seconds: int(s.Seconds),
		Day: int(s.Day), Halted: s.Halted,
	}, types.ClockConfig{ShowHalted: true, ShowWeekday: true})
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(b)
	return err
}
