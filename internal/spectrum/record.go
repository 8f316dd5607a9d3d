package spectrum

import (
	"fmt"
	"math"
	"sync"

	"github.com/zeebo/xxh3"
)

// Record is one decoded spectrum capture. It is immutable once constructed, so it
// may be shared freely between goroutines.
type Record struct {
	id             uint64
	name           string
	startFrequency float64 // MHz
	stopFrequency  float64 // MHz
	referenceLevel float32 // dBm at encoded power 0
	scale          float32 // dBm per division
	powers         []byte  // Encoded powers, 0 is the highest

	averageOnce sync.Once
	average     float64
}

// IDFromName returns the identity used for records constructed without an explicit ID.
func IDFromName(name string) uint64 {
	return xxh3.HashString(name)
}

// NewRecord creates a record whose ID is derived from its name.
func NewRecord(name string, startFrequency, stopFrequency float64, referenceLevel, scale float32, powers []byte) (*Record, error) {
	return NewRecordWithID(IDFromName(name), name, startFrequency, stopFrequency, referenceLevel, scale, powers)
}

// NewRecordWithID creates a record with an explicit ID. The powers slice is copied.
func NewRecordWithID(id uint64, name string, startFrequency, stopFrequency float64, referenceLevel, scale float32, powers []byte) (*Record, error) {
	if len(powers) == 0 {
		return nil, NewInvalidRangeError("spectrum %q has no samples", name)
	}
	// written so that NaN frequencies are rejected too
	if !(startFrequency < stopFrequency) {
		return nil, NewInvalidRangeError("spectrum %q start frequency %f is not below stop frequency %f",
			name, startFrequency, stopFrequency)
	}

	p := make([]byte, len(powers))
	copy(p, powers)

	return &Record{
		id:             id,
		name:           name,
		startFrequency: startFrequency,
		stopFrequency:  stopFrequency,
		referenceLevel: referenceLevel,
		scale:          scale,
		powers:         p,
	}, nil
}

// WithID returns a copy of the record carrying a different identity.
func (r *Record) WithID(id uint64) *Record {
	return &Record{
		id:             id,
		name:           r.name,
		startFrequency: r.startFrequency,
		stopFrequency:  r.stopFrequency,
		referenceLevel: r.referenceLevel,
		scale:          r.scale,
		powers:         r.powers,
	}
}

func (r *Record) ID() uint64 {
	return r.id
}

func (r *Record) Name() string {
	return r.name
}

func (r *Record) StartFrequency() float64 {
	return r.startFrequency
}

func (r *Record) StopFrequency() float64 {
	return r.stopFrequency
}

func (r *Record) ReferenceLevel() float32 {
	return r.referenceLevel
}

func (r *Record) Scale() float32 {
	return r.scale
}

// Len returns the number of samples.
func (r *Record) Len() int {
	return len(r.powers)
}

// Equal reports whether both records carry the same identity.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.id == other.id
}

// EncodedPowers returns a copy of the raw encoded powers.
func (r *Record) EncodedPowers() []byte {
	p := make([]byte, len(r.powers))
	copy(p, r.powers)
	return p
}

// SamplingRate returns the frequency step between samples in MHz.
func (r *Record) SamplingRate() float64 {
	return (r.stopFrequency - r.startFrequency) / float64(len(r.powers))
}

// FrequencyAt returns the frequency of the sample at index in MHz.
func (r *Record) FrequencyAt(index int) float64 {
	return r.startFrequency + (r.stopFrequency-r.startFrequency)*float64(index)/float64(len(r.powers))
}

// PowerAt returns the decoded power of the sample at index in dBm.
func (r *Record) PowerAt(index int) float64 {
	return DecodePower(r.powers[index], r.referenceLevel, r.scale)
}

// Frequencies returns the frequency of every sample in MHz.
func (r *Record) Frequencies() []float64 {
	f := make([]float64, len(r.powers))
	for i := range r.powers {
		f[i] = r.FrequencyAt(i)
	}
	return f
}

// Powers returns the decoded power of every sample in dBm.
func (r *Record) Powers() []float64 {
	p := make([]float64, len(r.powers))
	for i, v := range r.powers {
		p[i] = DecodePower(v, r.referenceLevel, r.scale)
	}
	return p
}

// ContainsFrequency reports whether frequency lies within [start, stop].
func (r *Record) ContainsFrequency(frequency float64) bool {
	return r.startFrequency <= frequency && frequency <= r.stopFrequency
}

// PowerAtFrequency returns the power of the sample at or just below frequency.
// There is no interpolation, so the result may be off by up to one sample. Indexes
// outside the record, including the one produced by the stop frequency itself,
// are clamped to the nearest valid sample.
func (r *Record) PowerAtFrequency(frequency float64) float64 {
	index := int(math.Floor((frequency - r.startFrequency) / r.SamplingRate()))
	index = min(max(index, 0), len(r.powers)-1)
	return r.PowerAt(index)
}

// AveragePower returns the mean power in dBm, averaged in the mW domain.
// It is computed on first use and cached.
func (r *Record) AveragePower() float64 {
	r.averageOnce.Do(func() {
		var sum float64
		for _, v := range r.powers {
			sum += ToMilliwatt(DecodePower(v, r.referenceLevel, r.scale))
		}
		r.average = ToDbm(sum / float64(len(r.powers)))
	})
	return r.average
}

func (r *Record) String() string {
	return fmt.Sprintf("Record{name=%q, startFrequency=%g, stopFrequency=%g, referenceLevel=%g, scale=%g, samples=%d}",
		r.name, r.startFrequency, r.stopFrequency, r.referenceLevel, r.scale, len(r.powers))
}
