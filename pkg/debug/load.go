package debug

import (
	"math"
	"sync/atomic"
	"time"
)

// Load tracks how much of the realtime budget rendering consumes: a
// block of n samples at rate sr must be produced within n/sr seconds.
// Observe runs on the rendering goroutine, the readers anywhere.
type Load struct {
	sampleRate float64
	avg        atomic.Uint64
	peak       atomic.Uint64
}

// NewLoad creates a tracker for the given sample rate.
func NewLoad(sampleRate float64) *Load {
	return &Load{sampleRate: sampleRate}
}

// Observe records that rendering samples took elapsed.
func (l *Load) Observe(elapsed time.Duration, samples int) {
	if samples <= 0 || l.sampleRate <= 0 {
		return
	}
	budget := float64(samples) / l.sampleRate
	pct := elapsed.Seconds() / budget * 100

	avg := math.Float64frombits(l.avg.Load())
	if avg == 0 {
		avg = pct
	} else {
		avg += (pct - avg) * 0.1
	}
	l.avg.Store(math.Float64bits(avg))

	if pct > math.Float64frombits(l.peak.Load()) {
		l.peak.Store(math.Float64bits(pct))
	}
}

// Average returns the smoothed load percentage.
func (l *Load) Average() float64 {
	return math.Float64frombits(l.avg.Load())
}

// Peak returns the worst block seen since the last Reset.
func (l *Load) Peak() float64 {
	return math.Float64frombits(l.peak.Load())
}

// Reset clears the statistics.
func (l *Load) Reset() {
	l.avg.Store(0)
	l.peak.Store(0)
}
