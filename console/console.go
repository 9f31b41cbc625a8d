// Package console bridges a terminal to the arm base's serial command port.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"go.bug.st/serial"
)

const (
	// SerialPortNone is listed with the detected ports to allow running without a board
	SerialPortNone = "None"

	envPrefix = "ARMCTL_"
)

var ErrNoUSBSerial = errors.New("no USB serial port found")

// Config is the host side configuration. Every field can be set from the environment with the
// ARMCTL_ prefix.
type Config struct {
	SerialPort      string `env:"SERIAL_PORT"`
	BaudRate        int    `env:"BAUD_RATE" envDefault:"38400"`
	CalibrationFile string `env:"CALIBRATION_FILE" envDefault:"calibration.yaml"`
}

// NewFromEnv loads the Config from environment variables
func NewFromEnv() (Config, error) {
	var cfg Config
	err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix})
	if err != nil {
		return Config{}, fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, nil
}

// GetSerialPorts returns the USB serial ports on this machine
func GetSerialPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("error listing serial ports: %w", err)
	}

	usb := filterUSB(ports)
	if len(usb) == 0 {
		return nil, ErrNoUSBSerial
	}
	return usb, nil
}

func filterUSB(ports []string) []string {
	var usb []string
	for _, p := range ports {
		lower := strings.ToLower(p)
		if strings.Contains(lower, "usb") || strings.Contains(lower, "ttyacm") {
			usb = append(usb, p)
		}
	}
	return usb
}

// Console is an open connection to the board
type Console struct {
	port   serial.Port
	logger *slog.Logger
}

// Open connects to the configured serial port. Without a configured port, the first USB serial
// port is used.
func Open(cfg Config, logger *slog.Logger) (*Console, error) {
	portName := cfg.SerialPort
	if portName == SerialPortNone {
		return nil, errors.New("no serial port selected")
	}
	if portName == "" {
		ports, err := GetSerialPorts()
		if err != nil {
			return nil, err
		}
		portName = ports[0]
	}

	logger = logger.With("port", portName, "baud_rate", cfg.BaudRate)

	port, err := serial.Open(portName, &serial.Mode{BaudRate: cfg.BaudRate})
	if err != nil {
		return nil, fmt.Errorf("error opening serial port %q: %w", portName, err)
	}
	logger.Info("opened serial port")

	return &Console{port: port, logger: logger}, nil
}

// Run copies r to the board and the board's output to w until r is exhausted, the port fails or
// the context is cancelled
func (c *Console) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	return Bridge(ctx, c.port, r, w)
}

// Close closes the serial port
func (c *Console) Close() error {
	c.logger.Info("closing serial port")
	return c.port.Close()
}

// Bridge copies in to port and port to out. It returns nil once in reaches EOF.
func Bridge(ctx context.Context, port io.ReadWriter, in io.Reader, out io.Writer) error {
	inDone := make(chan error, 1)
	portDone := make(chan error, 1)

	go func() {
		_, err := io.Copy(port, in)
		inDone <- err
	}()
	go func() {
		_, err := io.Copy(out, port)
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		portDone <- err
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-inDone:
		if err != nil {
			return fmt.Errorf("error writing to serial port: %w", err)
		}
		return nil
	case err := <-portDone:
		return fmt.Errorf("error reading from serial port: %w", err)
	}
}
