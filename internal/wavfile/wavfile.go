// Package wavfile reads and writes canonical 16-bit PCM WAV data: a single
// 44-byte RIFF header followed by little-endian samples.
package wavfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAV format constants
const (
	HeaderSize = 44 // Total WAV header size in bytes

	BitsPerSample = 16

	riffHeaderSize  = 36 // RIFF chunk size = riffHeaderSize + data size
	pcmSubchunkSize = 16 // fmt subchunk size for PCM format
	formatPCM       = 1
	bitsPerByte     = 8
	bytesPerSample  = BitsPerSample / bitsPerByte
	maxChannels     = 8
)

var (
	// ErrFormat is returned for data that is not canonical 16-bit PCM WAV.
	ErrFormat = errors.New("not a canonical PCM WAV stream")

	// ErrInvalidParams is returned for unusable encoder parameters.
	ErrInvalidParams = errors.New("invalid WAV parameters")
)

// Header holds the fields of the canonical header.
type Header struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	ByteRate      int
	BlockAlign    int
	DataLength    int
}

// Frames returns the number of sample frames in the data chunk.
func (h Header) Frames() int {
	if h.BlockAlign == 0 {
		return 0
	}
	return h.DataLength / h.BlockAlign
}

// NewHeader describes samples interleaved over channels at sampleRate.
func NewHeader(sampleRate, channels, samples int) Header {
	blockAlign := channels * bytesPerSample
	return Header{
		SampleRate:    sampleRate,
		Channels:      channels,
		BitsPerSample: BitsPerSample,
		ByteRate:      sampleRate * blockAlign,
		BlockAlign:    blockAlign,
		DataLength:    samples * bytesPerSample,
	}
}

// MarshalBinary returns the 44 header bytes.
func (h Header) MarshalBinary() ([]byte, error) {
	header := make([]byte, HeaderSize)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(riffHeaderSize+h.DataLength))
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], pcmSubchunkSize)
	binary.LittleEndian.PutUint16(header[20:22], formatPCM)
	binary.LittleEndian.PutUint16(header[22:24], uint16(h.Channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(h.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(h.ByteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(h.BlockAlign))
	binary.LittleEndian.PutUint16(header[34:36], uint16(h.BitsPerSample))

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(h.DataLength))
	return header, nil
}

func validate(sampleRate, channels, samples int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidParams, sampleRate)
	}
	if channels < 1 || channels > maxChannels {
		return fmt.Errorf("%w: channel count %d", ErrInvalidParams, channels)
	}
	if samples%channels != 0 {
		return fmt.Errorf("%w: %d samples do not fill %d channels", ErrInvalidParams, samples, channels)
	}
	return nil
}

// Encode writes interleaved samples as a canonical WAV stream.
func Encode(w io.Writer, samples []int16, sampleRate, channels int) error {
	if err := validate(sampleRate, channels, len(samples)); err != nil {
		return err
	}
	header, err := NewHeader(sampleRate, channels, len(samples)).MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	buf := make([]byte, len(samples)*bytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*bytesPerSample:], uint16(s))
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write data: %w", err)
	}
	return nil
}

// Bytes returns samples encoded as a canonical WAV stream.
func Bytes(samples []int16, sampleRate, channels int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(HeaderSize + len(samples)*bytesPerSample)
	if err := Encode(&buf, samples, sampleRate, channels); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseHeader reads and checks the canonical header.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes is shorter than the header", ErrFormat, len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Header{}, fmt.Errorf("%w: missing RIFF/WAVE magic", ErrFormat)
	}
	if string(data[12:16]) != "fmt " || binary.LittleEndian.Uint32(data[16:20]) != pcmSubchunkSize {
		return Header{}, fmt.Errorf("%w: unexpected fmt chunk", ErrFormat)
	}
	if string(data[36:40]) != "data" {
		return Header{}, fmt.Errorf("%w: data chunk not at offset 36", ErrFormat)
	}
	if f := binary.LittleEndian.Uint16(data[20:22]); f != formatPCM {
		return Header{}, fmt.Errorf("%w: audio format %d", ErrFormat, f)
	}

	h := Header{
		Channels:      int(binary.LittleEndian.Uint16(data[22:24])),
		SampleRate:    int(binary.LittleEndian.Uint32(data[24:28])),
		ByteRate:      int(binary.LittleEndian.Uint32(data[28:32])),
		BlockAlign:    int(binary.LittleEndian.Uint16(data[32:34])),
		BitsPerSample: int(binary.LittleEndian.Uint16(data[34:36])),
		DataLength:    int(binary.LittleEndian.Uint32(data[40:44])),
	}
	if h.BitsPerSample != BitsPerSample {
		return Header{}, fmt.Errorf("%w: %d bits per sample", ErrFormat, h.BitsPerSample)
	}
	if h.Channels < 1 || h.BlockAlign != h.Channels*bytesPerSample || h.ByteRate != h.SampleRate*h.BlockAlign {
		return Header{}, fmt.Errorf("%w: inconsistent block layout", ErrFormat)
	}
	return h, nil
}

// Parse decodes a canonical WAV stream into its header and interleaved
// samples.
func Parse(data []byte) (Header, []int16, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return Header{}, nil, err
	}
	body := data[HeaderSize:]
	if len(body) < h.DataLength {
		return Header{}, nil, fmt.Errorf("%w: data chunk truncated (%d of %d bytes)", ErrFormat, len(body), h.DataLength)
	}

	samples := make([]int16, h.DataLength/bytesPerSample)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(body[i*bytesPerSample:]))
	}
	return h, samples, nil
}

// WriteFile writes interleaved samples to a WAV file on disk.
func WriteFile(path string, samples []int16, sampleRate, channels int) (err error) {
	if err := validate(sampleRate, channels, len(samples)); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	enc := wav.NewEncoder(f, sampleRate, BitsPerSample, channels, formatPCM)
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: BitsPerSample,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV: %w", err)
	}
	return nil
}

// ReadFile reads a 16-bit PCM WAV file from disk.
func ReadFile(path string) (Header, []int16, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return Header{}, nil, fmt.Errorf("%w: %s", ErrFormat, path)
	}
	if decoder.BitDepth != BitsPerSample {
		return Header{}, nil, fmt.Errorf("%w: %d bits per sample", ErrFormat, decoder.BitDepth)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return Header{}, nil, fmt.Errorf("failed to decode samples: %w", err)
	}
	samples := make([]int16, len(buf.Data))
	for i, s := range buf.Data {
		samples[i] = int16(s)
	}
	return NewHeader(int(decoder.SampleRate), int(decoder.NumChans), len(samples)), samples, nil
}
