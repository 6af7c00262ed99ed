// Package gain provides amplitude conversions and level utilities for the
// oscillator engine's output path.
package gain

import (
	"math"
)

// MinDB is the floor of the dB scale, treated as silence.
const MinDB = -200.0

// LinearToDb converts a linear amplitude to decibels.
// Returns MinDB for values <= 0.
func LinearToDb(linear float64) float64 {
	if linear <= 0 {
		return MinDB
	}
	return 20.0 * math.Log10(linear)
}

// DbToLinear converts decibels to linear amplitude.
// Values <= MinDB return 0.
func DbToLinear(db float64) float64 {
	if db <= MinDB {
		return 0
	}
	return math.Pow(10.0, db/20.0)
}

// LinearToDb32 is the float32 version of LinearToDb.
func LinearToDb32(linear float32) float32 {
	if linear <= 0 {
		return MinDB
	}
	return 20.0 * float32(math.Log10(float64(linear)))
}

// DbToLinear32 is the float32 version of DbToLinear.
func DbToLinear32(db float32) float32 {
	if db <= MinDB {
		return 0
	}
	return float32(math.Pow(10.0, float64(db)/20.0))
}

// ApplyBuffer scales a buffer in place.
func ApplyBuffer(buffer []float32, gain float32) {
	for i := range buffer {
		buffer[i] *= gain
	}
}

// Fade scales a buffer by a linear ramp from startGain to endGain, used for
// click-free tails on rendered audio.
func Fade(buffer []float32, startGain, endGain float32) {
	if len(buffer) == 0 {
		return
	}
	samples := float32(len(buffer) - 1)
	if samples <= 0 {
		buffer[0] *= startGain
		return
	}

	step := (endGain - startGain) / samples
	g := startGain
	for i := range buffer {
		buffer[i] *= g
		g += step
	}
}

// SoftLimit shapes samples above the threshold with a tanh curve, keeping
// the output bounded without the gritty edge of a hard clip.
func SoftLimit(input, threshold float32) float32 {
	abs := input
	if abs < 0 {
		abs = -abs
	}
	if abs <= threshold {
		return input
	}
	return threshold * fastTanh32(input/threshold)
}

// Clamp hard-limits a sample to [-limit, limit].
func Clamp(input, limit float32) float32 {
	if input > limit {
		return limit
	}
	if input < -limit {
		return -limit
	}
	return input
}

// fastTanh32 approximates tanh for limiting.
func fastTanh32(x float32) float32 {
	if x < -3 {
		return -1
	}
	if x > 3 {
		return 1
	}
	x2 := x * x
	return x * (27 + x2) / (27 + 9*x2)
}
