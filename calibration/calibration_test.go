package calibration

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memDevice is a fixed-size byte array implementing Device
type memDevice struct {
	data []byte
}

func newErased(size int) *memDevice {
	return &memDevice{data: bytes.Repeat([]byte{0xFF}, size)}
}

func (m *memDevice) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.data)) {
		return 0, errors.New("out of range")
	}
	return copy(p, m.data[off:]), nil
}

func (m *memDevice) WriteAt(p []byte, off int64) (int, error) {
	if off+int64(len(p)) > int64(len(m.data)) {
		return 0, errors.New("out of range")
	}
	return copy(m.data[off:], p), nil
}

func TestSanitize(t *testing.T) {
	in := Neutrals{0xFFFF, 1400, 0, 499, 2501, 2500}
	assert.Equal(t, Neutrals{1500, 1400, 1500, 1500, 1500, 2500}, Sanitize(in))
}

func TestImageLayout(t *testing.T) {
	b := Encode(Neutrals{0x0102, 1500, 3, 4, 5, 0xABCD})
	require.Len(t, b, ImageSize)
	assert.Equal(t, []byte{0xFF, 0xFF, 0x02, 0x01, 0xDC, 0x05}, b[:6])
	assert.Equal(t, []byte{0xCD, 0xAB}, b[12:14])

	_, err := Decode(b[:5])
	assert.ErrorIs(t, err, ErrShortImage)
}

func TestImageStore(t *testing.T) {
	t.Run("Erased", func(t *testing.T) {
		s := ImageStore{Dev: newErased(64), Offset: 16}
		n, err := s.Load()
		require.NoError(t, err)
		assert.Equal(t, Defaults(), Sanitize(n))
	})

	t.Run("SaveLeavesReservedBytes", func(t *testing.T) {
		dev := newErased(32)
		dev.data[0], dev.data[1] = 0x12, 0x34
		s := ImageStore{Dev: dev}

		want := Neutrals{1400, 1450, 1500, 1550, 1600, 1650}
		require.NoError(t, s.Save(want))
		assert.Equal(t, []byte{0x12, 0x34}, dev.data[:2])

		got, err := s.Load()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("DeviceError", func(t *testing.T) {
		s := ImageStore{Dev: newErased(4)}
		assert.Error(t, s.Save(Defaults()))
		_, err := ImageStore{Dev: newErased(4), Offset: 8}.Load()
		assert.Error(t, err)
	})
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.yaml")
	s := FileStore{Path: path}

	_, err := s.Load()
	assert.ErrorIs(t, err, os.ErrNotExist)

	want := Neutrals{1400, 1450, 1500, 1550, 1600, 1650}
	require.NoError(t, s.Save(want))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "neutral: [1400, 1450, 1500, 1550, 1600, 1650]\n", string(data))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileStorePartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.yaml")
	require.NoError(t, os.WriteFile(path, []byte("neutral: [1400, 1450]\n"), 0o644))

	n, err := FileStore{Path: path}.Load()
	require.NoError(t, err)
	assert.Equal(t, Neutrals{1400, 1450, 1500, 1500, 1500, 1500}, Sanitize(n))
}

func TestMemStore(t *testing.T) {
	m := &MemStore{}
	require.NoError(t, m.Save(Defaults()))
	n, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), n)

	m.Err = errors.New("boom")
	assert.Error(t, m.Save(Defaults()))
}
