// Package wavetable stores banks of single-cycle waveform frames with
// precomputed bandlimited mip levels for alias-free playback.
package wavetable

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/mjibson/go-dsp/fft"
	"golang.org/x/sync/errgroup"
)

// Table geometry. Every frame is one cycle of FrameLen samples, and every
// bank holds exactly NumFrames frames. Each frame carries NumMips copies:
// level NumOctaves is the full-bandwidth original, and each level below it
// halves the harmonic budget, down to level 0 which keeps only DC.
const (
	// NumOctaves is the number of octaves of harmonic content in a frame,
	// also the base 2 logarithm of the frame length.
	NumOctaves = 11

	// FrameLen is the number of samples in one single-cycle frame.
	FrameLen = 1 << NumOctaves

	// NumFrames is the number of frames in a bank.
	NumFrames = 256

	// NumMips is the number of bandlimited copies stored per frame.
	NumMips = NumOctaves + 1

	// PhaseMask wraps integer sample indices within a frame.
	PhaseMask = FrameLen - 1
)

// ErrMalformedTable is returned when raw sample data does not decode to
// exactly NumFrames frames of FrameLen samples.
var ErrMalformedTable = errors.New("wavetable: malformed table data")

// Table is an immutable bank of bandlimited wavetable frames. All mip
// levels are stored at full FrameLen resolution in a single flat arena
// indexed by (frame, mip, sample), so phase indexing is identical across
// levels. A Table is safe for concurrent readers; it is never mutated
// after construction.
type Table struct {
	data []float32
}

// New builds a Table from raw frame data laid out as NumFrames consecutive
// frames of FrameLen samples each. Any other length fails with
// ErrMalformedTable and no table is produced.
func New(raw []float32) (*Table, error) {
	if len(raw) != FrameLen*NumFrames {
		return nil, fmt.Errorf("%w: got %d samples, want %d (%d frames x %d)",
			ErrMalformedTable, len(raw), FrameLen*NumFrames, NumFrames, FrameLen)
	}

	t := &Table{data: make([]float32, NumFrames*NumMips*FrameLen)}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for f := 0; f < NumFrames; f++ {
		g.Go(func() error {
			t.buildFrame(f, raw[f*FrameLen:(f+1)*FrameLen])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return t, nil
}

// NewFromFrames builds a Table from per-frame slices. Frame count and every
// frame length must match the bank geometry exactly.
func NewFromFrames(frames [][]float32) (*Table, error) {
	if len(frames) != NumFrames {
		return nil, fmt.Errorf("%w: got %d frames, want %d",
			ErrMalformedTable, len(frames), NumFrames)
	}
	for i, frame := range frames {
		if len(frame) != FrameLen {
			return nil, fmt.Errorf("%w: frame %d has %d samples, want %d",
				ErrMalformedTable, i, len(frame), FrameLen)
		}
	}

	raw := make([]float32, 0, NumFrames*FrameLen)
	for _, frame := range frames {
		raw = append(raw, frame...)
	}
	return New(raw)
}

// buildFrame writes the full-band copy of a frame and derives its lower mip
// levels by spectral truncation: forward FFT once, then for each level zero
// every bin above that level's harmonic budget and transform back. Level k
// keeps harmonics up to 2^(k-1); level 0 keeps only DC.
func (t *Table) buildFrame(frame int, cycle []float32) {
	copy(t.mip(frame, NumOctaves), cycle)

	x := make([]complex128, FrameLen)
	for i, v := range cycle {
		x[i] = complex(float64(v), 0)
	}
	spectrum := fft.FFT(x)

	scratch := make([]complex128, FrameLen)
	for level := NumOctaves - 1; level >= 0; level-- {
		harmonics := 0
		if level > 0 {
			harmonics = 1 << (level - 1)
		}

		// Keep bins 0..harmonics and their conjugate mirror, zero the rest.
		copy(scratch, spectrum)
		for k := harmonics + 1; k < FrameLen-harmonics; k++ {
			scratch[k] = 0
		}

		// fft.IFFT applies the 1/N normalisation itself.
		xt := fft.IFFT(scratch)
		out := t.mip(frame, level)
		for i := range out {
			out[i] = float32(real(xt[i]))
		}
	}
}

// mip returns the mutable sample slice for one (frame, level) pair. Only
// used during construction; readers go through Frame and Sample.
func (t *Table) mip(frame, level int) []float32 {
	base := (frame*NumMips + level) * FrameLen
	return t.data[base : base+FrameLen]
}

// NumFrames returns the number of frames in the bank.
func (t *Table) NumFrames() int {
	return NumFrames
}

// Frame returns the stored samples for one (frame, level) pair. The slice
// aliases the table's arena and must not be modified.
func (t *Table) Frame(frame, level int) []float32 {
	return t.mip(frame, level)
}

// Sample reads one mip level of one frame at a fractional phase in [0,1)
// with linear interpolation between adjacent stored samples. Phase wraps,
// frame and level clamp to the valid range.
func (t *Table) Sample(frame, level int, phase float64) float32 {
	if frame < 0 {
		frame = 0
	} else if frame >= NumFrames {
		frame = NumFrames - 1
	}
	if level < 0 {
		level = 0
	} else if level >= NumMips {
		level = NumMips - 1
	}

	phase -= float64(int(phase))
	if phase < 0 {
		phase++
	}

	pos := phase * FrameLen
	idx := int(pos)
	frac := float32(pos - float64(idx))

	data := t.mip(frame, level)
	a := data[idx&PhaseMask]
	b := data[(idx+1)&PhaseMask]
	return a + (b-a)*frac
}
