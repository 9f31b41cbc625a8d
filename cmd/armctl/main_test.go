package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/calvinmclean/armbase"
	"github.com/calvinmclean/armbase/calibration"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, in string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(in))

	err := root.Execute()
	return out.String(), err
}

func TestCalibrationCommands(t *testing.T) {
	file := filepath.Join(t.TempDir(), "calibration.yaml")
	t.Setenv("ARMCTL_CALIBRATION_FILE", file)

	out, err := runCmd(t, "", "calibration", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "servo 1: 1500")

	_, err = runCmd(t, "", "calibration", "set", "2", "1450")
	require.NoError(t, err)

	n, err := calibration.FileStore{Path: file}.Load()
	require.NoError(t, err)
	assert.Equal(t, uint16(1450), n[1])

	out, err = runCmd(t, "", "calibration", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "servo 2: 1450")

	_, err = runCmd(t, "", "calibration", "reset")
	require.NoError(t, err)
	n, err = calibration.FileStore{Path: file}.Load()
	require.NoError(t, err)
	assert.Equal(t, calibration.Defaults(), n)
}

func TestCalibrationFileFlag(t *testing.T) {
	file := filepath.Join(t.TempDir(), "other.yaml")

	_, err := runCmd(t, "", "--calibration-file", file, "calibration", "set", "6", "2000")
	require.NoError(t, err)

	n, err := calibration.FileStore{Path: file}.Load()
	require.NoError(t, err)
	assert.Equal(t, uint16(2000), n[5])
}

func TestParseNeutral(t *testing.T) {
	tests := []struct {
		name  string
		servo string
		pulse string
		id    armbase.ServoID
		value uint16
		err   bool
	}{
		{"Valid", "3", "1600", 3, 1600, false},
		{"Low", "1", "499", 0, 0, true},
		{"High", "1", "2501", 0, 0, true},
		{"NotNumber", "1", "abc", 0, 0, true},
		{"ServoZero", "0", "1500", 0, 0, true},
		{"ServoSeven", "7", "1500", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, pulse, err := parseNeutral(tt.servo, tt.pulse)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, id)
			assert.Equal(t, tt.value, pulse)
		})
	}
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := runCmd(t, "", "--log-level", "loud", "calibration", "show")
	assert.Error(t, err)
}

func TestSim(t *testing.T) {
	t.Setenv("ARMCTL_CALIBRATION_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	out, err := runCmd(t, "SM3+0101A2-100M9+1001", "--log-level", "debug", "sim")
	require.NoError(t, err)
	assert.Contains(t, out, "using default calibration")
	assert.Contains(t, out, "command failed")
	assert.Contains(t, out, "level=DEBUG msg=state")
}
