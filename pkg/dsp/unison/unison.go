// Package unison computes deterministic detune offsets and stereo spread
// tables for unison sub-voice groups.
package unison

import "math"

// MaxVoices is the largest supported unison voice count.
const MaxVoices = 16

// Sub-voices always come in symmetric pairs around the note center, so an
// odd requested count is rounded up and the extra pair sits at zero offset.
var (
	detuneTable [MaxVoices + 1][]float64
	panTable    [MaxVoices + 1][]float64
)

func init() {
	detuneTable[1] = []float64{0}
	panTable[1] = []float64{0}

	for n := 2; n <= MaxVoices; n++ {
		m := EffectiveCount(n)
		detunes := make([]float64, m)
		pans := make([]float64, m)

		step := 2 / float64(n-1)
		for j := 0; j < m/2; j++ {
			mag := 1 - step*float64(j)

			// Alternate detune pair orientation so that equally detuned
			// sub-voices do not all land on the same side of the image.
			if j%2 == 0 {
				detunes[2*j] = -mag
				detunes[2*j+1] = mag
			} else {
				detunes[2*j] = mag
				detunes[2*j+1] = -mag
			}

			pans[2*j] = -mag
			pans[2*j+1] = mag
		}

		detuneTable[n] = detunes
		panTable[n] = pans
	}
}

// EffectiveCount returns the number of sub-voices actually run for a
// requested count: clamped to [1,MaxVoices] and rounded up to even above 1.
func EffectiveCount(n int) int {
	if n <= 1 {
		return 1
	}
	if n > MaxVoices {
		n = MaxVoices
	}
	return n + n&1
}

// DetuneOffsets returns the normalized detune offset in [-1,1] of each
// sub-voice for a requested count. Offsets come in symmetric pairs, pair j
// at magnitude 1 - 2j/(n-1), so the spread is centered for any count. The
// returned slice is shared and must not be modified.
func DetuneOffsets(n int) []float64 {
	if n <= 1 {
		return detuneTable[1]
	}
	if n > MaxVoices {
		n = MaxVoices
	}
	return detuneTable[n]
}

// PanPositions returns the pan position in [-1,+1] of each sub-voice for a
// requested count, spread linearly and symmetrically: negating every
// position mirrors the stereo image. The returned slice is shared and must
// not be modified.
func PanPositions(n int) []float64 {
	if n <= 1 {
		return panTable[1]
	}
	if n > MaxVoices {
		n = MaxVoices
	}
	return panTable[n]
}

// Gains converts one sub-voice's pan position into constant-power stereo
// gains. width in [0,1] scales the position toward center, pan in [-1,1]
// shifts the whole image, and the result carries 1/sqrt(count) equal-power
// normalization so the mix level stays stable for any sub-voice count.
func Gains(position, width, pan float64, count int) (left, right float64) {
	pos := pan + width*position
	if pos < -1 {
		pos = -1
	} else if pos > 1 {
		pos = 1
	}

	angle := (pos + 1) * math.Pi / 4
	norm := 1 / math.Sqrt(float64(count))
	return math.Cos(angle) * norm, math.Sin(angle) * norm
}
