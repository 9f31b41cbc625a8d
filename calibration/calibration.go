package calibration

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/calvinmclean/armbase"
)

const (
	// MinNeutral and MaxNeutral bound the neutral pulses accepted from storage
	MinNeutral uint16 = 500
	MaxNeutral uint16 = 2500

	// ImageSize is the size of the persisted image. The first two bytes are reserved for the
	// bootloader and are never written.
	ImageSize = 2 + 2*armbase.NumServos

	reservedBytes = 2
)

var ErrShortImage = errors.New("calibration image too short")

// Neutrals is the calibrated neutral pulse of each servo, index 0 is servo 1
type Neutrals [armbase.NumServos]uint16

// Store persists the neutral table
type Store interface {
	Load() (Neutrals, error)
	Save(Neutrals) error
}

// Defaults returns a table with every servo at armbase.DefaultNeutral
func Defaults() Neutrals {
	var n Neutrals
	for i := range n {
		n[i] = armbase.DefaultNeutral
	}
	return n
}

// Sanitize replaces entries outside [MinNeutral, MaxNeutral] with armbase.DefaultNeutral. Erased
// storage reads back as 0xFFFF and is caught by this.
func Sanitize(n Neutrals) Neutrals {
	for i, v := range n {
		if v < MinNeutral || v > MaxNeutral {
			n[i] = armbase.DefaultNeutral
		}
	}
	return n
}

// Encode writes the table into an image. Servo n is stored little-endian at bytes 2n and 2n+1.
// The reserved bytes are left as 0xFF.
func Encode(n Neutrals) []byte {
	b := make([]byte, ImageSize)
	b[0], b[1] = 0xFF, 0xFF
	for i, v := range n {
		binary.LittleEndian.PutUint16(b[reservedBytes+2*i:], v)
	}
	return b
}

// Decode reads the table from an image. No sanitizing is done.
func Decode(b []byte) (Neutrals, error) {
	var n Neutrals
	if len(b) < ImageSize {
		return n, fmt.Errorf("%w: got %d bytes, need %d", ErrShortImage, len(b), ImageSize)
	}
	for i := range n {
		n[i] = binary.LittleEndian.Uint16(b[reservedBytes+2*i:])
	}
	return n, nil
}

// Device is byte-addressable non-volatile memory
type Device interface {
	io.ReaderAt
	io.WriterAt
}

// ImageStore keeps the image on a Device at Offset
type ImageStore struct {
	Dev    Device
	Offset int64
}

var _ Store = ImageStore{}

// Load implements Store
func (s ImageStore) Load() (Neutrals, error) {
	b := make([]byte, ImageSize)
	_, err := s.Dev.ReadAt(b, s.Offset)
	if err != nil {
		return Neutrals{}, errors.New("error reading calibration: " + err.Error())
	}
	return Decode(b)
}

// Save implements Store. The reserved bytes are not written.
func (s ImageStore) Save(n Neutrals) error {
	b := Encode(n)
	_, err := s.Dev.WriteAt(b[reservedBytes:], s.Offset+reservedBytes)
	if err != nil {
		return errors.New("error writing calibration: " + err.Error())
	}
	return nil
}

// MemStore keeps the table in memory
type MemStore struct {
	Neutrals Neutrals
	Err      error
}

var _ Store = &MemStore{}

// Load implements Store
func (m *MemStore) Load() (Neutrals, error) {
	return m.Neutrals, m.Err
}

// Save implements Store
func (m *MemStore) Save(n Neutrals) error {
	if m.Err != nil {
		return m.Err
	}
	m.Neutrals = n
	return nil
}
