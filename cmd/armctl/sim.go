package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/calvinmclean/armbase"
	"github.com/calvinmclean/armbase/adc"
	"github.com/calvinmclean/armbase/calibration"
	"github.com/calvinmclean/armbase/controller"
	"github.com/calvinmclean/armbase/firmware/commands"
	"github.com/calvinmclean/armbase/sim"
	"github.com/calvinmclean/armbase/timing"

	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/physic"
)

const (
	simBatteryRaw     = 740
	simBatteryDivider = 3
	simIdleCurrent    = 20
)

func newSimCmd(a *app) *cobra.Command {
	var boardV3 bool

	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Run the controller on simulated hardware with commands from stdin",
		Long: `Run the controller on simulated hardware. Stdin takes the same single-byte
commands as the board's serial port, for example "S" then "M3+2005".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			s := newSimulator(a.cfg.CalibrationFile, boardV3, cmd.InOrStdin())
			go s.Ticker().Run(ctx, timing.TickPeriod)

			err := s.Start()
			if err != nil {
				a.logger.Warn("using default calibration", "error", err)
			}

			return s.run(ctx, a.logger)
		},
	}

	cmd.Flags().BoolVar(&boardV3, "board-v3", true, "Simulate a v3 board")

	return cmd
}

// simulator is a Controller on simulated hardware that reads commands from a stream
type simulator struct {
	*controller.Controller

	in    *bufio.Reader
	out   *sim.Outputs
	power *sim.Power
}

func newSimulator(calibrationFile string, boardV3 bool, in io.Reader) *simulator {
	s := &simulator{
		in:    bufio.NewReader(in),
		out:   &sim.Outputs{},
		power: &sim.Power{},
	}

	start := time.Now()
	conv := &sim.Converter{
		Now:     func() uint64 { return uint64(time.Since(start) / timing.TickPeriod) },
		Latency: 1,
		Signal:  s.signal,
	}

	s.Controller = controller.New(controller.Config{
		Converter:   conv,
		Outputs:     s.out,
		Power:       s.power,
		Calibration: calibration.FileStore{Path: calibrationFile},
		BoardV3:     boardV3,
	})

	return s
}

// signal draws more current the further a powered servo is from its neutral
func (s *simulator) signal(ch armbase.Channel) uint16 {
	switch {
	case ch <= armbase.ChannelCurrent6:
		if !s.power.Powered {
			return 0
		}
		off := armbase.Abs(int32(s.Servos().Offset(armbase.ServoID(ch) + 1)))
		return uint16(armbase.Clamp(simIdleCurrent+off/4, 0, adc.FullScale))
	case ch == armbase.ChannelBattery:
		return simBatteryRaw
	default:
		return 0
	}
}

func (s *simulator) ReadByte() (byte, error) {
	return s.in.ReadByte()
}

func (s *simulator) run(ctx context.Context, logger *slog.Logger) error {
	for ctx.Err() == nil {
		b, err := s.in.ReadByte()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading command: %w", err)
		}

		err = commands.Handle(s, b)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			logger.Error("command failed", "command", string(b), "error", err)
			continue
		}

		s.report(logger)
	}
	return nil
}

// report logs the simulated state after a command
func (s *simulator) report(logger *slog.Logger) {
	currents := s.Sampler().Currents()
	for _, id := range s.OverCurrent() {
		logger.Warn("servo over current limit", "servo", id, "current", adc.Current(currents[id.Index()]).String())
	}

	logger.Debug("state",
		"offsets", s.Offsets(),
		"powered", s.power.Powered,
		"writes", len(s.out.Writes),
		"battery", adc.Voltage(s.Sampler().Battery(), 5*physic.Volt, simBatteryDivider).String(),
	)
	s.out.Reset()
}
