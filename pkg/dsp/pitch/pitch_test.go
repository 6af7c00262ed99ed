package pitch

import (
	"math"
	"testing"
)

func TestNoteToFrequency(t *testing.T) {
	tests := []struct {
		name string
		note float64
		want float64
	}{
		{"A4", 69, 440.0},
		{"A5", 81, 880.0},
		{"A3", 57, 220.0},
		{"Middle C", 60, 261.6256},
		{"Quarter tone above A4", 69.5, 452.8930},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NoteToFrequency(tt.note)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("NoteToFrequency(%f) = %f, want %f", tt.note, got, tt.want)
			}
		})
	}
}

func TestSemitonesToRatio(t *testing.T) {
	tests := []struct {
		name      string
		semitones float64
		want      float64
	}{
		{"Unison", 0, 1.0},
		{"Octave up", 12, 2.0},
		{"Octave down", -12, 0.5},
		{"Fifth", 7, 1.498307},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SemitonesToRatio(tt.semitones)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("SemitonesToRatio(%f) = %f, want %f", tt.semitones, got, tt.want)
			}
		})
	}
}

func TestCentsToRatio(t *testing.T) {
	if got := CentsToRatio(1200); math.Abs(got-2.0) > 1e-9 {
		t.Errorf("CentsToRatio(1200) = %f, want 2", got)
	}
	if got := CentsToRatio(100); math.Abs(got-SemitonesToRatio(1)) > 1e-12 {
		t.Errorf("CentsToRatio(100) = %f, want one semitone", got)
	}
	if got := CentsToRatio(0); got != 1.0 {
		t.Errorf("CentsToRatio(0) = %f, want 1", got)
	}
}
