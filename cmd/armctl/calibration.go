package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/calvinmclean/armbase"
	"github.com/calvinmclean/armbase/calibration"

	"github.com/spf13/cobra"
)

func newCalibrationCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calibration",
		Short: "Show or edit the neutral pulse table",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the neutral pulse of every servo",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := a.loadCalibration()
				if err != nil {
					return err
				}
				for i, v := range n {
					cmd.Printf("servo %d: %d\n", i+1, v)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <servo> <pulse>",
			Short: "Set the neutral pulse of one servo",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, pulse, err := parseNeutral(args[0], args[1])
				if err != nil {
					return err
				}

				n, err := a.loadCalibration()
				if err != nil {
					return err
				}
				n[id.Index()] = pulse

				a.logger.Info("setting neutral", "servo", id, "pulse", pulse)
				return a.store().Save(n)
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Reset every neutral to the default",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a.logger.Info("resetting calibration", "file", a.cfg.CalibrationFile)
				return a.store().Save(calibration.Defaults())
			},
		},
	)

	return cmd
}

func (a *app) store() calibration.FileStore {
	return calibration.FileStore{Path: a.cfg.CalibrationFile}
}

// loadCalibration reads the table, starting from the defaults when the file doesn't exist yet
func (a *app) loadCalibration() (calibration.Neutrals, error) {
	n, err := a.store().Load()
	if errors.Is(err, fs.ErrNotExist) {
		a.logger.Debug("calibration file not found, using defaults", "file", a.cfg.CalibrationFile)
		return calibration.Defaults(), nil
	}
	if err != nil {
		return calibration.Neutrals{}, err
	}
	return calibration.Sanitize(n), nil
}

func parseNeutral(servoArg, pulseArg string) (armbase.ServoID, uint16, error) {
	id, err := strconv.ParseUint(servoArg, 10, 8)
	if err != nil || !armbase.ServoID(id).Valid() {
		return 0, 0, fmt.Errorf("invalid servo %q: %w", servoArg, armbase.ErrInvalidServo)
	}

	pulse, err := strconv.ParseUint(pulseArg, 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid pulse %q: %w", pulseArg, err)
	}
	if uint16(pulse) < calibration.MinNeutral || uint16(pulse) > calibration.MaxNeutral {
		return 0, 0, fmt.Errorf("pulse %d outside [%d, %d]", pulse, calibration.MinNeutral, calibration.MaxNeutral)
	}

	return armbase.ServoID(id), uint16(pulse), nil
}
