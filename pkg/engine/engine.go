// Package engine implements a polyphonic wavetable oscillator: up to 32
// notes, each fanning out into up to 16 detuned unison sub-voices, rendered
// from a mip-mapped wavetable with morphing between frames.
//
// Parameter targets and the wavetable pointer may be set from any
// goroutine; NoteOn, NoteOff and ProcessBlock belong to the single
// goroutine driving the audio output. All control moves are smoothed
// across the following block so the output never steps - no allocations
// in the processing path.
package engine

import (
	"sync/atomic"

	"github.com/justyntemme/wtosc/pkg/dsp/unison"
	"github.com/justyntemme/wtosc/pkg/dsp/wavetable"
)

const (
	// MaxNotes is the polyphony limit. With full unison that is
	// MaxNotes * unison.MaxVoices sub-voices.
	MaxNotes = 32

	// DefaultReleaseSeconds is the release tail applied until
	// SetRelease is called.
	DefaultReleaseSeconds = 0.005

	// defaultFadeSamples is the fade window for sub-voices retired by a
	// unison count change.
	defaultFadeSamples = 64
)

// StealMode selects which note slot is sacrificed when a NoteOn arrives
// with all slots busy.
type StealMode int

const (
	// StealOldest replaces the longest-sounding note.
	StealOldest StealMode = iota
	// StealQuietest replaces the note with the lowest current level.
	StealQuietest
	// StealNone drops the new note instead.
	StealNone
)

// blockParams carries the block-end parameter targets handed to each
// voice. Block-start values live in the voices themselves.
type blockParams struct {
	n           int
	transposeTo float64
	detuneTo    float64
	widthTo     float64
	panTo       float64
}

// Engine is the oscillator core. Create one per sample rate with New.
type Engine struct {
	sampleRate float64
	maxBlock   int

	table  atomic.Pointer[wavetable.Table]
	params paramTargets

	morphRamp  ramp
	volumeRamp ramp

	voiceCount     int
	stealMode      StealMode
	releaseSamples int
	fadeSamples    int
	startPhases    [unison.MaxVoices]float64

	voices        [MaxNotes]voice
	lastTriggered int
	seq           uint64
	steals        atomic.Uint64

	morph []float64
	vol   []float64

	// scalar switches rendering to the sub-voice-at-a-time reference
	// path. Test hook.
	scalar bool
}

// New creates an engine for the given sample rate and maximum block
// length. ProcessBlock accepts longer buffers and renders them in
// maxBlock-sized chunks.
func New(sampleRate float64, maxBlock int) *Engine {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	if maxBlock <= 0 {
		maxBlock = 512
	}
	e := &Engine{
		sampleRate:     sampleRate,
		maxBlock:       maxBlock,
		voiceCount:     1,
		stealMode:      StealOldest,
		releaseSamples: int(DefaultReleaseSeconds*sampleRate + 0.5),
		fadeSamples:    defaultFadeSamples,
		morph:          make([]float64, maxBlock),
		vol:            make([]float64, maxBlock),
	}
	e.params.init()
	e.morphRamp.jump(paramDefs[ParamMorph].def)
	e.volumeRamp.jump(volumeGain(paramDefs[ParamVolume].def))
	// Fixed low-discrepancy spread so PhaseRandom decorrelates
	// sub-voices deterministically until the host injects its own.
	for j := range e.startPhases {
		e.startPhases[j] = wrapPhase(float64(j) * 0.61803398875)
	}
	return e
}

// SampleRate returns the rate the engine was created for.
func (e *Engine) SampleRate() float64 { return e.sampleRate }

// SetTable swaps the wavetable used from the next sample on. Safe to call
// from any goroutine; a nil table is ignored so a failed load keeps the
// previous sound.
func (e *Engine) SetTable(t *wavetable.Table) {
	if t == nil {
		return
	}
	e.table.Store(t)
}

// Table returns the current wavetable, nil before the first SetTable.
func (e *Engine) Table() *wavetable.Table {
	return e.table.Load()
}

// SetParam sets a parameter target in plain units (semitones, dB, cents,
// ...). Out-of-range values clamp. Safe from any goroutine; the value is
// smoothed in during the next processed block.
func (e *Engine) SetParam(id ParamID, value float64) {
	e.params.setPlain(id, value)
}

// SetParamNormalized sets a parameter target on the 0..1 host scale.
func (e *Engine) SetParamNormalized(id ParamID, norm float64) {
	e.params.setNormalized(id, norm)
}

// Param returns the current target of a parameter in plain units.
func (e *Engine) Param(id ParamID) float64 {
	return e.params.plain(id)
}

// ParamNormalized returns the current target on the 0..1 scale.
func (e *Engine) ParamNormalized(id ParamID) float64 {
	return e.params.normalized(id)
}

// SetRelease sets the note release tail. Zero makes NoteOff drop notes
// immediately. Not safe to call concurrently with ProcessBlock.
func (e *Engine) SetRelease(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	e.releaseSamples = int(seconds*e.sampleRate + 0.5)
}

// SetStealMode selects the note stealing policy.
func (e *Engine) SetStealMode(m StealMode) {
	e.stealMode = m
}

// SetStartPhases overrides the deterministic sub-voice starting phases.
// Values wrap into [0, 1). Affects notes triggered afterwards.
func (e *Engine) SetStartPhases(phases []float64) {
	for j := range e.startPhases {
		if j < len(phases) {
			e.startPhases[j] = wrapPhase(phases[j])
		}
	}
}

// ActiveNotes reports how many note slots are sounding or releasing.
func (e *Engine) ActiveNotes() int {
	n := 0
	for i := range e.voices {
		if e.voices[i].state != voiceIdle {
			n++
		}
	}
	return n
}

// NoteOn triggers a note. note is a fractional MIDI note number, velocity
// 0..1. A velocity of zero is treated as NoteOff. Retriggering an id that
// is already sounding restarts that slot. When all slots are busy the
// steal mode decides.
func (e *Engine) NoteOn(id int32, note float64, velocity float32) {
	if velocity <= 0 {
		e.NoteOff(id)
		return
	}
	if velocity > 1 {
		velocity = 1
	}
	for i := range e.voices {
		if e.voices[i].state != voiceIdle && e.voices[i].id == id {
			e.voices[i].trigger(e, id, note, velocity)
			e.lastTriggered = i
			return
		}
	}
	if i := e.findFreeVoice(); i >= 0 {
		e.voices[i].trigger(e, id, note, velocity)
		e.lastTriggered = i
		return
	}
	if i := e.stealVoice(); i >= 0 {
		e.steals.Add(1)
		e.voices[i].trigger(e, id, note, velocity)
		e.lastTriggered = i
	}
}

// Steals reports how many notes have been stolen since the engine was
// created. Readable from any goroutine.
func (e *Engine) Steals() uint64 {
	return e.steals.Load()
}

// NoteOff releases a note. Unknown ids are ignored.
func (e *Engine) NoteOff(id int32) {
	for i := range e.voices {
		if e.voices[i].state == voiceActive && e.voices[i].id == id {
			e.voices[i].release(e.releaseSamples)
			return
		}
	}
}

// AllNotesOff releases everything at once.
func (e *Engine) AllNotesOff() {
	for i := range e.voices {
		if e.voices[i].state == voiceActive {
			e.voices[i].release(e.releaseSamples)
		}
	}
}

// findFreeVoice scans round-robin from the slot after the last trigger so
// fresh notes spread across the pool instead of piling onto slot zero.
func (e *Engine) findFreeVoice() int {
	for off := 1; off <= MaxNotes; off++ {
		i := (e.lastTriggered + off) % MaxNotes
		if e.voices[i].state == voiceIdle {
			return i
		}
	}
	return -1
}

// stealVoice picks the victim slot per the steal mode, -1 if the note
// should be dropped.
func (e *Engine) stealVoice() int {
	switch e.stealMode {
	case StealOldest:
		best := 0
		for i := 1; i < MaxNotes; i++ {
			if e.voices[i].born < e.voices[best].born {
				best = i
			}
		}
		return best
	case StealQuietest:
		best := 0
		for i := 1; i < MaxNotes; i++ {
			if e.voices[i].amplitude() < e.voices[best].amplitude() {
				best = i
			}
		}
		return best
	default:
		return -1
	}
}

// ProcessBlock renders into left and right, overwriting their contents.
// Buffers longer than the engine's maximum block are processed in chunks;
// mismatched lengths render the shorter of the two.
func (e *Engine) ProcessBlock(left, right []float32) {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	for off := 0; off < n; off += e.maxBlock {
		end := off + e.maxBlock
		if end > n {
			end = n
		}
		e.processChunk(left[off:end], right[off:end])
	}
}

func (e *Engine) processChunk(left, right []float32) {
	n := len(left)
	for i := 0; i < n; i++ {
		left[i] = 0
		right[i] = 0
	}

	// Control moves land here, at the chunk boundary.
	if vc := e.params.voiceCount(); vc != e.voiceCount {
		e.voiceCount = vc
		for i := range e.voices {
			e.voices[i].setUnisonCount(e, vc)
		}
	}
	e.morphRamp.retarget(e.params.plain(ParamMorph))
	mFrom, mTo := e.morphRamp.span()
	fillCurve(e.morph[:n], mFrom, mTo)
	e.volumeRamp.retarget(volumeGain(e.params.plain(ParamVolume)))
	vFrom, vTo := e.volumeRamp.span()
	fillCurve(e.vol[:n], vFrom, vTo)

	t := e.table.Load()
	if t == nil {
		return
	}

	bp := blockParams{
		n:           n,
		transposeTo: e.params.plain(ParamTranspose),
		detuneTo:    e.params.plain(ParamDetune),
		widthTo:     e.params.plain(ParamWidth),
		panTo:       e.params.plain(ParamPan),
	}
	for i := range e.voices {
		v := &e.voices[i]
		if v.state == voiceIdle {
			continue
		}
		v.prepareBlock(&bp)
		if e.scalar {
			v.processScalar(t, e.morph[:n], e.vol[:n], left, right)
		} else {
			v.process(t, e.morph[:n], e.vol[:n], left, right)
		}
		v.finishBlock()
	}
}
