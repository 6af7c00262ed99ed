package engine

import (
	"github.com/justyntemme/wtosc/pkg/dsp/pitch"
	"github.com/justyntemme/wtosc/pkg/dsp/resample"
	"github.com/justyntemme/wtosc/pkg/dsp/unison"
	"github.com/justyntemme/wtosc/pkg/dsp/wavetable"
)

// voiceState tracks the lifecycle of a note slot.
type voiceState int

const (
	voiceIdle voiceState = iota
	voiceActive
	voiceReleasing
)

// laneWidth is the number of sub-voices advanced in lockstep by the
// batch processor. Slots past the active count carry zero gain and zero
// increment so a partial lane needs no per-slot branching.
const laneWidth = 4

// oscBank holds the sub-voice state as parallel arrays. Every per-sample
// quantity is a linear ramp: the step fields move value fields from their
// block-start values to the block-end targets computed in prepareBlock.
type oscBank struct {
	phase     [unison.MaxVoices]float64
	inc       [unison.MaxVoices]float64
	incStep   [unison.MaxVoices]float64
	oct       [unison.MaxVoices]float64
	octStep   [unison.MaxVoices]float64
	gainL     [unison.MaxVoices]float32
	gainR     [unison.MaxVoices]float32
	gainLStep [unison.MaxVoices]float32
	gainRStep [unison.MaxVoices]float32
	dying     [unison.MaxVoices]bool
}

func (b *oscBank) clearSlot(j int) {
	b.phase[j] = 0
	b.inc[j] = 0
	b.incStep[j] = 0
	b.oct[j] = 0
	b.octStep[j] = 0
	b.gainL[j] = 0
	b.gainR[j] = 0
	b.gainLStep[j] = 0
	b.gainRStep[j] = 0
	b.dying[j] = false
}

// voice is one note slot: a bank of unison sub-voices sharing a pitch and
// a release envelope.
type voice struct {
	state    voiceState
	id       int32
	note     float64
	velocity float32
	born     uint64

	// baseInc is the un-detuned phase increment for the note.
	baseInc float64

	// count is the requested unison count, liveOsc its effective slot
	// count. Slots in [liveOsc, activeOsc) are fading out after a
	// shrink and are pruned once silent.
	count     int
	liveOsc   int
	activeOsc int

	bank oscBank

	// rel runs 1 to 0 across the release tail.
	rel     float64
	relStep float64
}

// trigger starts or retriggers the slot. Sub-voice increments and gains
// are set instantly so the first block needs no warm-up ramp.
func (v *voice) trigger(e *Engine, id int32, note float64, velocity float32) {
	v.state = voiceActive
	v.id = id
	v.note = note
	v.velocity = velocity
	v.born = e.seq
	e.seq++
	v.baseInc = pitch.NoteToFrequency(note) / e.sampleRate
	v.rel = 1
	v.relStep = 0

	v.count = e.voiceCount
	v.liveOsc = unison.EffectiveCount(v.count)
	v.activeOsc = v.liveOsc

	random := e.params.plain(ParamPhaseRandom)
	transpose := e.params.plain(ParamTranspose)
	detune := e.params.plain(ParamDetune)
	width := e.params.plain(ParamWidth)
	pan := e.params.plain(ParamPan)

	offsets := unison.DetuneOffsets(v.count)
	positions := unison.PanPositions(v.count)
	for j := 0; j < unison.MaxVoices; j++ {
		v.bank.clearSlot(j)
	}
	for j := 0; j < v.liveOsc; j++ {
		v.bank.phase[j] = wrapPhase(e.startPhases[j] * random)
		inc := subVoiceInc(v.baseInc, transpose, detune, offsets[j])
		v.bank.inc[j] = inc
		v.bank.oct[j] = resample.OctaveForPhaseInc(inc)
		l, r := unison.Gains(positions[j], width, pan, v.liveOsc)
		v.bank.gainL[j] = float32(l)
		v.bank.gainR[j] = float32(r)
	}
}

// release starts the fade toward silence. A zero-length tail drops the
// slot immediately.
func (v *voice) release(releaseSamples int) {
	if v.state != voiceActive {
		return
	}
	if releaseSamples <= 0 {
		v.stop()
		return
	}
	v.state = voiceReleasing
	v.relStep = -1.0 / float64(releaseSamples)
}

// stop silences the slot without a tail.
func (v *voice) stop() {
	v.state = voiceIdle
	v.rel = 0
	v.relStep = 0
	v.liveOsc = 0
	v.activeOsc = 0
}

// amplitude reports the slot's current loudness for steal decisions.
func (v *voice) amplitude() float64 {
	if v.state == voiceIdle {
		return 0
	}
	return float64(v.velocity) * v.rel
}

// setUnisonCount applies a new requested unison count at a block
// boundary. Grown slots start silent and ramp in over the next block;
// shrunk slots fade out over the engine's fade window and are pruned
// once they reach zero.
func (v *voice) setUnisonCount(e *Engine, requested int) {
	if v.state == voiceIdle || requested == v.count {
		return
	}
	newLive := unison.EffectiveCount(requested)
	random := e.params.plain(ParamPhaseRandom)
	transpose := e.params.plain(ParamTranspose)
	detune := e.params.plain(ParamDetune)
	offsets := unison.DetuneOffsets(requested)

	if newLive > v.liveOsc {
		for j := v.liveOsc; j < newLive; j++ {
			if j < v.activeOsc {
				// Slot was fading out; bring it back from its
				// current gain instead of restarting the phase.
				v.bank.dying[j] = false
				v.bank.gainLStep[j] = 0
				v.bank.gainRStep[j] = 0
				continue
			}
			v.bank.clearSlot(j)
			v.bank.phase[j] = wrapPhase(e.startPhases[j] * random)
			inc := subVoiceInc(v.baseInc, transpose, detune, offsets[j])
			v.bank.inc[j] = inc
			v.bank.oct[j] = resample.OctaveForPhaseInc(inc)
		}
		if newLive > v.activeOsc {
			v.activeOsc = newLive
		}
	} else if newLive < v.liveOsc {
		fade := e.fadeSamples
		if fade < 1 {
			fade = 1
		}
		for j := newLive; j < v.liveOsc; j++ {
			v.bank.dying[j] = true
			v.bank.incStep[j] = 0
			v.bank.octStep[j] = 0
			v.bank.gainLStep[j] = -v.bank.gainL[j] / float32(fade)
			v.bank.gainRStep[j] = -v.bank.gainR[j] / float32(fade)
		}
	}
	v.count = requested
	v.liveOsc = newLive
}

// prepareBlock computes the block-end targets for every live sub-voice
// and turns them into per-sample steps. Transcendentals run once per
// sub-voice here; the sample loop is pure arithmetic.
func (v *voice) prepareBlock(bp *blockParams) {
	n := float64(bp.n)
	offsets := unison.DetuneOffsets(v.count)
	positions := unison.PanPositions(v.count)
	for j := 0; j < v.liveOsc; j++ {
		incTo := subVoiceInc(v.baseInc, bp.transposeTo, bp.detuneTo, offsets[j])
		octTo := resample.OctaveForPhaseInc(incTo)
		v.bank.incStep[j] = (incTo - v.bank.inc[j]) / n
		v.bank.octStep[j] = (octTo - v.bank.oct[j]) / n
		l, r := unison.Gains(positions[j], bp.widthTo, bp.panTo, v.liveOsc)
		v.bank.gainLStep[j] = (float32(l) - v.bank.gainL[j]) / float32(bp.n)
		v.bank.gainRStep[j] = (float32(r) - v.bank.gainR[j]) / float32(bp.n)
	}
}

// process renders the slot into outL/outR, advancing sub-voices a lane at
// a time. Slots beyond activeOsc sit at zero gain and zero increment so
// the lane loop never branches on occupancy - no allocations.
func (v *voice) process(t *wavetable.Table, morph, vol []float64, outL, outR []float32) {
	lanes := (v.activeOsc + laneWidth - 1) / laneWidth
	if lanes == 0 {
		return
	}
	b := &v.bank
	n := len(outL)
	for i := 0; i < n; i++ {
		m := morph[i]
		var accL, accR float32
		for lane := 0; lane < lanes; lane++ {
			base := lane * laneWidth
			for k := 0; k < laneWidth; k++ {
				j := base + k
				p := b.phase[j] + b.inc[j]
				if p >= 1 {
					p -= 1
				}
				b.phase[j] = p
				b.inc[j] += b.incStep[j]
				o := b.oct[j]
				b.oct[j] = o + b.octStep[j]
				s := resample.At(t, m, p, o)
				accL += s * b.gainL[j]
				accR += s * b.gainR[j]
				gl := b.gainL[j] + b.gainLStep[j]
				if gl < 0 {
					gl = 0
				}
				b.gainL[j] = gl
				gr := b.gainR[j] + b.gainRStep[j]
				if gr < 0 {
					gr = 0
				}
				b.gainR[j] = gr
			}
		}
		g := float32(vol[i]*v.rel) * v.velocity
		outL[i] += accL * g
		outR[i] += accR * g
		r := v.rel + v.relStep
		if r < 0 {
			r = 0
		}
		v.rel = r
	}
}

// processScalar renders the slot one sub-voice at a time. It is the
// reference the batch path is checked against and must stay sample-exact
// with process.
func (v *voice) processScalar(t *wavetable.Table, morph, vol []float64, outL, outR []float32) {
	lanes := (v.activeOsc + laneWidth - 1) / laneWidth
	if lanes == 0 {
		return
	}
	b := &v.bank
	n := len(outL)
	slots := lanes * laneWidth
	for i := 0; i < n; i++ {
		m := morph[i]
		var accL, accR float32
		for j := 0; j < slots; j++ {
			p := b.phase[j] + b.inc[j]
			if p >= 1 {
				p -= 1
			}
			b.phase[j] = p
			b.inc[j] += b.incStep[j]
			o := b.oct[j]
			b.oct[j] = o + b.octStep[j]
			s := resample.At(t, m, p, o)
			accL += s * b.gainL[j]
			accR += s * b.gainR[j]
			gl := b.gainL[j] + b.gainLStep[j]
			if gl < 0 {
				gl = 0
			}
			b.gainL[j] = gl
			gr := b.gainR[j] + b.gainRStep[j]
			if gr < 0 {
				gr = 0
			}
			b.gainR[j] = gr
		}
		g := float32(vol[i]*v.rel) * v.velocity
		outL[i] += accL * g
		outR[i] += accR * g
		r := v.rel + v.relStep
		if r < 0 {
			r = 0
		}
		v.rel = r
	}
}

// finishBlock retires faded sub-voices and completed releases. Runs at
// block boundaries only so mid-block state never changes shape.
func (v *voice) finishBlock() {
	for v.activeOsc > v.liveOsc {
		j := v.activeOsc - 1
		if !v.bank.dying[j] || v.bank.gainL[j] > 0 || v.bank.gainR[j] > 0 {
			break
		}
		v.bank.clearSlot(j)
		v.activeOsc--
	}
	if v.state == voiceReleasing && v.rel <= 0 {
		v.stop()
	}
}

// subVoiceInc returns the phase increment for one sub-voice given the
// note's base increment, the transpose in semitones and the detune offset
// scaled to cents. Clamped below 1 so the single-subtract phase wrap in
// the sample loop holds.
func subVoiceInc(baseInc, transpose, detuneCents, offset float64) float64 {
	inc := baseInc * pitch.SemitonesToRatio(transpose+offset*detuneCents/100)
	if inc >= maxPhaseInc {
		inc = maxPhaseInc
	}
	return inc
}

const maxPhaseInc = 0.999

func wrapPhase(p float64) float64 {
	p -= float64(int(p))
	if p < 0 {
		p += 1
	}
	return p
}
