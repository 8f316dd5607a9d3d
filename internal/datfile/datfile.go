// Package datfile decodes spectrum analyzer capture files.
//
// File layout, little-endian:
//
//	| Number of samples | Start Frequency |
//	| Stop Frequency    | Ref.Lev. | Scale |
//	| data#1 | data#2   | data#3   | data#4 |
//	|   :    |    :     |    :     |    :   |
//
//   - Number of samples: 64-bit signed integer
//   - Start Frequency: 64-bit float, MHz
//   - Stop Frequency: 64-bit float, MHz
//   - Reference Level: 32-bit float, dBm
//   - Scale: 32-bit float, dBm per division
//   - data#x: 32-bit signed integer, only the low byte carries the encoded power
package datfile

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/roman-kulish/spectrum-viewer/internal/spectrum"
)

const (
	// Ext is the extension capture files are expected to carry. It is not validated.
	Ext = ".dat"

	// HeaderSize is the size of the fixed header in bytes.
	HeaderSize = 32

	// SampleSize is the size of one stored sample in bytes.
	SampleSize = 4
)

// Header holds the fixed fields preceding the samples.
type Header struct {
	NumSamples     int64   // Declared sample count
	StartFrequency float64 // MHz
	StopFrequency  float64 // MHz
	ReferenceLevel float32 // dBm
	Scale          float32 // dBm per division
}

// Size returns the number of bytes a file with this header must hold.
func (h Header) Size() int64 {
	return HeaderSize + h.NumSamples*SampleSize
}

// DecodeHeader parses the fixed header at the start of data.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, &spectrum.TruncatedFormatError{Want: HeaderSize, Got: int64(len(data))}
	}

	le := binary.LittleEndian
	h := Header{
		NumSamples:     int64(le.Uint64(data[0:8])),
		StartFrequency: math.Float64frombits(le.Uint64(data[8:16])),
		StopFrequency:  math.Float64frombits(le.Uint64(data[16:24])),
		ReferenceLevel: math.Float32frombits(le.Uint32(data[24:28])),
		Scale:          math.Float32frombits(le.Uint32(data[28:32])),
	}
	if h.NumSamples < 0 {
		return Header{}, spectrum.NewInvalidRangeError("negative sample count %d", h.NumSamples)
	}
	return h, nil
}

// Decode parses a whole capture held in memory. Bytes past the declared samples
// are ignored.
func Decode(name string, data []byte) (*spectrum.Record, error) {
	h, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}

	// compare in sample units first so a huge declared count cannot overflow
	available := int64(len(data)-HeaderSize) / SampleSize
	if h.NumSamples > available {
		want := int64(math.MaxInt64)
		if h.NumSamples <= (math.MaxInt64-HeaderSize)/SampleSize {
			want = h.Size()
		}
		return nil, &spectrum.TruncatedFormatError{Want: want, Got: int64(len(data))}
	}

	powers := make([]byte, h.NumSamples)
	for i := range powers {
		offset := HeaderSize + i*SampleSize
		// only the low byte of each 32-bit sample holds the encoded power
		powers[i] = byte(int32(binary.LittleEndian.Uint32(data[offset : offset+SampleSize])))
	}

	return spectrum.NewRecord(name, h.StartFrequency, h.StopFrequency, h.ReferenceLevel, h.Scale, powers)
}

// ReadFile reads and decodes the capture at path. The record is named after the
// file. Errors from the file system are returned unchanged.
func ReadFile(path string) (*spectrum.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(BaseName(path), data)
}

// BaseName returns the file name of path without its final extension. Names
// without a dot, or whose only dot leads the name, are returned whole.
func BaseName(path string) string {
	name := filepath.Base(path)
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}
