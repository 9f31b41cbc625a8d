package commands

import (
	"errors"
	"io"

	"github.com/calvinmclean/armbase"
)

type Command struct {
	Flag        byte
	InputSize   uint
	Run         func(Controller, []byte) error
	Description string
}

// Controller is used to control the arm
type Controller interface {
	MovePacedChecked(armbase.ServoID, int16, uint16) error
	MoveAbsolute(armbase.ServoID, int16)
	ZeroAll()
	PowerAndStart()
	PowerOff()
	CaptureNeutral(armbase.ServoID)
	SaveCalibration() error
	Debug()
	Verbose()

	// I/O
	ReadByte() (byte, error)
}

var (
	MovePacedCommand = &Command{
		Flag:      'M',
		InputSize: 6,
		Run: func(c Controller, b []byte) error {
			id, err := servoID(b[0])
			if err != nil {
				return err
			}
			target, err := offset(b[1:5])
			if err != nil {
				return err
			}
			interval, ok := digit(b[5])
			if !ok {
				return errors.New("invalid interval: " + string(b[5]))
			}
			return c.MovePacedChecked(id, target, uint16(interval))
		},
		Description: "Move a servo one step at a time. Input: servo(1-6), '+' or '-', offset(000-999), interval ms(0-9).",
	}
	MoveAbsoluteCommand = &Command{
		Flag:      'A',
		InputSize: 5,
		Run: func(c Controller, b []byte) error {
			id, err := servoID(b[0])
			if err != nil {
				return err
			}
			target, err := offset(b[1:5])
			if err != nil {
				return err
			}
			c.MoveAbsolute(id, target)
			return nil
		},
		Description: "Jump a servo straight to an offset. Input: servo(1-6), '+' or '-', offset(000-999).",
	}
	ZeroCommand = &Command{
		Flag:      'Z',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.ZeroAll()
			return nil
		},
		Description: "Set every pulse output to 0.",
	}
	StartCommand = &Command{
		Flag:      'S',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.PowerAndStart()
			return nil
		},
		Description: "Switch servo power on and move every servo to its neutral.",
	}
	PowerOffCommand = &Command{
		Flag:      'O',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.PowerOff()
			return nil
		},
		Description: "Switch servo power off.",
	}
	CaptureNeutralCommand = &Command{
		Flag:      'N',
		InputSize: 1,
		Run: func(c Controller, b []byte) error {
			id, err := servoID(b[0])
			if err != nil {
				return err
			}
			c.CaptureNeutral(id)
			return nil
		},
		Description: "Use the current position of a servo as its neutral. Input: servo(1-6).",
	}
	SaveCalibrationCommand = &Command{
		Flag:      'W',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			err := c.SaveCalibration()
			if err != nil {
				return errors.New("error saving calibration: " + err.Error())
			}
			return nil
		},
		Description: "Write the neutral table to storage.",
	}
	DebugCommand = &Command{
		Flag:      'D',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Debug()
			return nil
		},
		Description: "Print the current state.",
	}
	VerboseCommand = &Command{
		Flag:      'V',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Verbose()
			return nil
		},
		Description: "Enable verbose output.",
	}
	HelpCommand = &Command{
		Flag:        'H',
		InputSize:   0,
		Description: "Show all available commands and their descriptions.",
		Run: func(c Controller, b []byte) error {
			println("Available Commands:")
			for _, cmd := range commands {
				flagStr := ""
				if cmd.Flag >= 32 && cmd.Flag <= 126 {
					flagStr = string(cmd.Flag)
				} else {
					flagStr = "0x" + string("0123456789ABCDEF"[(cmd.Flag>>4)&0xF]) + string("0123456789ABCDEF"[cmd.Flag&0xF])
				}
				println(flagStr + ": " + cmd.Description)
			}
			return nil
		},
	}
)

func digit(b byte) (uint, bool) {
	if b < '0' || b > '9' {
		return 0, false
	}
	return uint(b - '0'), true
}

func servoID(b byte) (armbase.ServoID, error) {
	v, _ := digit(b)
	id := armbase.ServoID(v)
	if !id.Valid() {
		return 0, errors.New("invalid servo: " + string(b))
	}
	return id, nil
}

// offset parses a sign followed by three digits
func offset(b []byte) (int16, error) {
	s := int16(1)
	if b[0] == '-' {
		s = -1
	} else if b[0] != '+' {
		return 0, errors.New("invalid sign: " + string(b[0]))
	}

	var v int16
	for _, c := range b[1:] {
		d, ok := digit(c)
		if !ok {
			return 0, errors.New("invalid offset: " + string(b))
		}
		v = v*10 + int16(d)
	}

	return v * s, nil
}

var commands = []*Command{
	MovePacedCommand,
	MoveAbsoluteCommand,
	ZeroCommand,
	StartCommand,
	PowerOffCommand,
	CaptureNeutralCommand,
	SaveCalibrationCommand,
	DebugCommand,
	VerboseCommand,
}

var cmdMap = func() map[byte]*Command {
	m := map[byte]*Command{
		HelpCommand.Flag: HelpCommand,
	}
	for _, cmd := range commands {
		m[cmd.Flag] = cmd
	}
	return m
}()

// Handle reads the input for the command with the provided flag and runs it. Unknown flags are
// ignored. Read errors are retried until the input is complete, except io.EOF.
func Handle(c Controller, flag byte) error {
	cmd, ok := cmdMap[flag]
	if !ok {
		return nil
	}

	in := make([]byte, cmd.InputSize)
	for i := 0; i < int(cmd.InputSize); {
		b, err := c.ReadByte()
		if errors.Is(err, io.EOF) {
			return err
		}
		if err != nil {
			continue
		}

		in[i] = b
		i++
	}

	return cmd.Run(c, in)
}

func Run(c Controller) {
	for {
		cmdIn, err := c.ReadByte()
		if err != nil {
			continue
		}

		err = Handle(c, cmdIn)
		if err != nil {
			println("error:", err.Error())
		}
	}
}
