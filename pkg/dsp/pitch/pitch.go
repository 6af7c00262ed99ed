// Package pitch maps notes and musical intervals to frequencies and ratios.
package pitch

import "math"

// Equal-tempered tuning reference.
const (
	A4Frequency = 440.0
	A4Note      = 69
)

// NoteToFrequency converts a note number to its frequency in Hz using
// equal-tempered tuning around A4 = 440 Hz. Fractional note numbers are
// allowed and map continuously.
func NoteToFrequency(note float64) float64 {
	return A4Frequency * math.Exp2((note-A4Note)/12.0)
}

// SemitonesToRatio converts a signed interval in semitones to a frequency
// ratio.
func SemitonesToRatio(semitones float64) float64 {
	return math.Exp2(semitones / 12.0)
}

// CentsToRatio converts a signed interval in cents to a frequency ratio.
func CentsToRatio(cents float64) float64 {
	return math.Exp2(cents / 1200.0)
}
