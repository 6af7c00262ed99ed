// Package resample converts wavetable lookups at continuous morph, phase
// and octave coordinates into bandlimited sample values.
package resample

import (
	"math"

	"github.com/justyntemme/wtosc/pkg/dsp/wavetable"
)

// At returns one bandlimited sample from the table.
//
// morph selects the frame pair in [0,255] and linearly interpolates between
// the two neighboring frames at the fractional part. octave selects the mip
// level pair in [0,11] and crossfades between them, which keeps pitch sweeps
// through level boundaries free of stepping. Within a level the lookup uses
// a 4-point 3rd-order Hermite kernel at the fractional phase.
//
// Phase wraps modulo 1.0, morph and octave clamp to their ranges. The
// function is pure and safe to call concurrently for independent voices.
func At(t *wavetable.Table, morph, phase, octave float64) float32 {
	maxFrame := float64(wavetable.NumFrames - 1)
	if morph < 0 {
		morph = 0
	} else if morph > maxFrame {
		morph = maxFrame
	}

	if octave < 0 {
		octave = 0
	} else if octave > wavetable.NumOctaves {
		octave = wavetable.NumOctaves
	}

	phase -= float64(int(phase))
	if phase < 0 {
		phase++
	}
	pos := phase * wavetable.FrameLen

	f0 := int(morph)
	f1 := f0
	if f0 < wavetable.NumFrames-1 {
		f1 = f0 + 1
	}
	morphFrac := float32(morph - float64(f0))

	lo := int(octave)
	octFrac := float32(octave - float64(lo))

	vlo := frameLerp(t, f0, f1, morphFrac, lo, pos)
	if octFrac == 0 {
		return vlo
	}
	vhi := frameLerp(t, f0, f1, morphFrac, lo+1, pos)
	return vlo + (vhi-vlo)*octFrac
}

// OctaveForPhaseInc maps a per-sample phase increment to the continuous mip
// coordinate consumed by At. An increment of 1/2 cycle per sample (Nyquist)
// or above pins to level 0, and every halving of the increment adds one
// octave of harmonic headroom, so selection is monotonic in frequency.
func OctaveForPhaseInc(inc float64) float64 {
	if inc <= 0 {
		return wavetable.NumOctaves
	}
	oct := -math.Log2(inc) - 1
	if oct < 0 {
		return 0
	}
	if oct > wavetable.NumOctaves {
		return wavetable.NumOctaves
	}
	return oct
}

// frameLerp interpolates between two frames of one mip level at the same
// phase position.
func frameLerp(t *wavetable.Table, f0, f1 int, frac float32, level int, pos float64) float32 {
	a := hermite(t.Frame(f0, level), pos)
	if frac == 0 || f0 == f1 {
		return a
	}
	b := hermite(t.Frame(f1, level), pos)
	return a + (b-a)*frac
}

// hermite reads a single-cycle frame at a fractional position with 4-point
// 3rd-order Hermite interpolation and cyclic neighbor indexing.
func hermite(data []float32, pos float64) float32 {
	idx := int(pos)
	frac := float32(pos - float64(idx))

	y0 := data[(idx-1)&wavetable.PhaseMask]
	y1 := data[idx&wavetable.PhaseMask]
	y2 := data[(idx+1)&wavetable.PhaseMask]
	y3 := data[(idx+2)&wavetable.PhaseMask]

	c0 := y1
	c1 := 0.5 * (y2 - y0)
	c2 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	c3 := 0.5 * (y3 - y0 + 3*(y1-y2))

	return ((c3*frac+c2)*frac+c1)*frac + c0
}
