package debug

import (
	"fmt"
	"math"
	"sync/atomic"
)

// BlockStats summarizes one rendered buffer.
type BlockStats struct {
	Peak          float32
	RMS           float32
	DC            float32
	NaNs          int
	Clipped       int
	ZeroCrossings int
}

const clipThreshold = 0.99

// Analyze scans a buffer for level and health statistics.
func Analyze(buffer []float32) BlockStats {
	var stats BlockStats
	if len(buffer) == 0 {
		return stats
	}
	var sum, sumSquares float64
	var last float32
	for i, s := range buffer {
		if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
			stats.NaNs++
			continue
		}
		abs := s
		if abs < 0 {
			abs = -abs
		}
		if abs > stats.Peak {
			stats.Peak = abs
		}
		if abs >= clipThreshold {
			stats.Clipped++
		}
		sum += float64(s)
		sumSquares += float64(s) * float64(s)
		if i > 0 && ((last < 0 && s >= 0) || (last >= 0 && s < 0)) {
			stats.ZeroCrossings++
		}
		last = s
	}
	n := float64(len(buffer))
	stats.RMS = float32(math.Sqrt(sumSquares / n))
	stats.DC = float32(sum / n)
	return stats
}

// Check returns human-readable complaints about a buffer, empty when the
// audio is healthy.
func Check(name string, buffer []float32) []string {
	stats := Analyze(buffer)
	var issues []string
	if stats.NaNs > 0 {
		issues = append(issues, fmt.Sprintf("%s: %d non-finite samples", name, stats.NaNs))
	}
	if stats.Clipped > 0 {
		issues = append(issues, fmt.Sprintf("%s: clipping on %d samples (peak %.3f)", name, stats.Clipped, stats.Peak))
	}
	if dc := math.Abs(float64(stats.DC)); dc > 0.01 {
		issues = append(issues, fmt.Sprintf("%s: DC offset %.4f", name, stats.DC))
	}
	return issues
}

// Meter is a peak meter with exponential fallback. Update runs on the
// goroutine pulling audio, Level on whatever draws the UI.
type Meter struct {
	decay float32
	peak  atomic.Uint32
}

// NewMeter creates a meter that falls back by the given factor per
// Update, e.g. 0.92 for a smooth drop at block cadence.
func NewMeter(decay float32) *Meter {
	if decay <= 0 || decay >= 1 {
		decay = 0.92
	}
	return &Meter{decay: decay}
}

// Update folds one buffer into the meter.
func (m *Meter) Update(buffer []float32) {
	peak := math.Float32frombits(m.peak.Load()) * m.decay
	for _, s := range buffer {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	m.peak.Store(math.Float32bits(peak))
}

// Level returns the current meter value.
func (m *Meter) Level() float32 {
	return math.Float32frombits(m.peak.Load())
}
