package wavfile

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine440(n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(math.Round(16000 * math.Sin(2*math.Pi*440*float64(i)/44100)))
	}
	return out
}

func TestBytesOneSecondMono(t *testing.T) {
	data, err := Bytes(sine440(44100), 44100, 1)
	require.NoError(t, err)
	require.Len(t, data, HeaderSize+88200)

	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, uint32(36+88200), binary.LittleEndian.Uint32(data[4:8]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Equal(t, "fmt ", string(data[12:16]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[20:22]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[22:24]))
	assert.Equal(t, uint32(44100), binary.LittleEndian.Uint32(data[24:28]))
	assert.Equal(t, uint32(88200), binary.LittleEndian.Uint32(data[28:32]))
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(data[32:34]))
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(data[34:36]))
	assert.Equal(t, "data", string(data[36:40]))
	assert.Equal(t, uint32(88200), binary.LittleEndian.Uint32(data[40:44]))

	h, samples, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 44100, h.SampleRate)
	assert.Equal(t, 1, h.Channels)
	assert.Equal(t, 16, h.BitsPerSample)
	assert.Equal(t, 88200, h.DataLength)
	assert.Equal(t, 44100, h.Frames())
	assert.Equal(t, sine440(44100), samples)
}

func TestBytesParsedByGoAudio(t *testing.T) {
	in := []int16{0, 1, -1, 32767, -32768, 1234, -1234, 7}
	data, err := Bytes(in, 48000, 2)
	require.NoError(t, err)

	dec := wav.NewDecoder(bytes.NewReader(data))
	require.True(t, dec.IsValidFile())
	assert.Equal(t, uint32(48000), dec.SampleRate)
	assert.Equal(t, uint16(2), dec.NumChans)
	assert.Equal(t, uint16(16), dec.BitDepth)

	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	require.Len(t, buf.Data, len(in))
	for i, s := range in {
		assert.Equal(t, int(s), buf.Data[i])
	}
}

func TestEncodeRejectsBadParams(t *testing.T) {
	_, err := Bytes([]int16{1, 2, 3}, 44100, 2)
	require.ErrorIs(t, err, ErrInvalidParams)

	_, err = Bytes(nil, 0, 1)
	require.ErrorIs(t, err, ErrInvalidParams)

	_, err = Bytes(nil, 44100, 0)
	require.ErrorIs(t, err, ErrInvalidParams)
}

func TestParseRejectsMalformed(t *testing.T) {
	good, err := Bytes([]int16{1, 2, 3, 4}, 44100, 1)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{"short", func(b []byte) []byte { return b[:20] }},
		{"bad magic", func(b []byte) []byte { copy(b[0:4], "RIFX"); return b }},
		{"float format", func(b []byte) []byte { binary.LittleEndian.PutUint16(b[20:22], 3); return b }},
		{"24 bit", func(b []byte) []byte { binary.LittleEndian.PutUint16(b[34:36], 24); return b }},
		{"bad block align", func(b []byte) []byte { binary.LittleEndian.PutUint16(b[32:34], 3); return b }},
		{"truncated data", func(b []byte) []byte { return b[:len(b)-2] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.mutate(bytes.Clone(good))
			_, _, err := Parse(data)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestWriteReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	in := sine440(4410)

	require.NoError(t, WriteFile(path, in, 44100, 1))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(HeaderSize+len(in)*2), info.Size())

	h, out, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 44100, h.SampleRate)
	assert.Equal(t, 1, h.Channels)
	assert.Equal(t, in, out)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	ph, samples, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, h, ph)
	assert.Equal(t, in, samples)
}

func TestReadFileNotFound(t *testing.T) {
	_, _, err := ReadFile(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}
