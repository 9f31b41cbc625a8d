package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/calvinmclean/armbase/console"

	"github.com/spf13/cobra"
)

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfg      console.Config
	logLevel string
	logger   *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "armctl",
		Short:         "Host tools for the arm base controller",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.cfg.SerialPort, "port", "", "Serial port of the board (env ARMCTL_SERIAL_PORT)")
	root.PersistentFlags().IntVar(&a.cfg.BaudRate, "baud", 0, "Baud rate (env ARMCTL_BAUD_RATE)")
	root.PersistentFlags().StringVar(&a.cfg.CalibrationFile, "calibration-file", "", "Calibration file (env ARMCTL_CALIBRATION_FILE)")

	root.AddCommand(
		newConsoleCmd(a),
		newPortsCmd(a),
		newCalibrationCmd(a),
		newSimCmd(a),
	)

	return root
}

// setup loads the environment config, applies flag overrides and creates the logger
func (a *app) setup(cmd *cobra.Command) error {
	var level slog.Level
	err := level.UnmarshalText([]byte(a.logLevel))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", a.logLevel, err)
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	envCfg, err := console.NewFromEnv()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("port") {
		a.cfg.SerialPort = envCfg.SerialPort
	}
	if !flags.Changed("baud") {
		a.cfg.BaudRate = envCfg.BaudRate
	}
	if !flags.Changed("calibration-file") {
		a.cfg.CalibrationFile = envCfg.CalibrationFile
	}

	a.logger.Debug("loaded config", "port", a.cfg.SerialPort, "baud_rate", a.cfg.BaudRate, "calibration_file", a.cfg.CalibrationFile)

	return nil
}
