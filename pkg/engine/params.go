package engine

import (
	"math"
	"sync/atomic"

	"github.com/justyntemme/wtosc/pkg/dsp/gain"
)

// ParamID identifies one of the engine's continuous controls.
type ParamID int

const (
	// ParamTranspose shifts all notes, in semitones.
	ParamTranspose ParamID = iota
	// ParamVolume is the master output level in dB. The bottom of the
	// range acts as a silence gate.
	ParamVolume
	// ParamMorph is the wavetable frame position, 0..255 fractional.
	ParamMorph
	// ParamDetune is the unison detune spread in cents.
	ParamDetune
	// ParamVoices is the unison voice count, 1..16. It is the one
	// parameter applied only at block boundaries.
	ParamVoices
	// ParamPhaseRandom scales the per-sub-voice starting phases applied
	// at note trigger, 0..1.
	ParamPhaseRandom
	// ParamWidth scales the unison stereo spread, 0..1.
	ParamWidth
	// ParamPan shifts the whole stereo image, -1..1.
	ParamPan

	numParams
)

// Parameter ranges.
const (
	MinTranspose = -48.0
	MaxTranspose = 48.0
	MinVolumeDB  = -60.0
	MaxVolumeDB  = 6.0
	MinMorph     = 0.0
	MaxMorph     = 255.0
	MinDetune    = 0.0
	MaxDetune    = 100.0
	MinVoices    = 1
	MaxVoices    = 16
)

type paramDef struct {
	name string
	unit string
	min  float64
	max  float64
	def  float64
}

var paramDefs = [numParams]paramDef{
	ParamTranspose:   {name: "Transpose", unit: "st", min: MinTranspose, max: MaxTranspose, def: 0},
	ParamVolume:      {name: "Volume", unit: "dB", min: MinVolumeDB, max: MaxVolumeDB, def: 0},
	ParamMorph:       {name: "Morph", unit: "", min: MinMorph, max: MaxMorph, def: 0},
	ParamDetune:      {name: "Detune", unit: "ct", min: MinDetune, max: MaxDetune, def: 0},
	ParamVoices:      {name: "Voices", unit: "", min: MinVoices, max: MaxVoices, def: 1},
	ParamPhaseRandom: {name: "PhaseRandom", unit: "", min: 0, max: 1, def: 0},
	ParamWidth:       {name: "Width", unit: "", min: 0, max: 1, def: 1},
	ParamPan:         {name: "Pan", unit: "", min: -1, max: 1, def: 0},
}

// ParamName returns the display name of a parameter.
func ParamName(id ParamID) string {
	if id < 0 || id >= numParams {
		return ""
	}
	return paramDefs[id].name
}

// ParamRange returns the plain-value range of a parameter.
func ParamRange(id ParamID) (min, max float64) {
	if id < 0 || id >= numParams {
		return 0, 0
	}
	return paramDefs[id].min, paramDefs[id].max
}

func (d *paramDef) normalize(plain float64) float64 {
	if d.max <= d.min {
		return 0
	}
	norm := (plain - d.min) / (d.max - d.min)
	if norm < 0 {
		return 0
	}
	if norm > 1 {
		return 1
	}
	return norm
}

func (d *paramDef) denormalize(norm float64) float64 {
	return d.min + norm*(d.max-d.min)
}

// paramTargets holds the host-facing side of the controls: normalized
// target values stored as atomic bits so updates never touch a lock the
// audio thread could contend on.
type paramTargets struct {
	values [numParams]atomic.Uint64
}

func (p *paramTargets) init() {
	for id := ParamID(0); id < numParams; id++ {
		p.values[id].Store(math.Float64bits(paramDefs[id].normalize(paramDefs[id].def)))
	}
}

func (p *paramTargets) setNormalized(id ParamID, norm float64) {
	if id < 0 || id >= numParams {
		return
	}
	if norm < 0 {
		norm = 0
	} else if norm > 1 {
		norm = 1
	}
	p.values[id].Store(math.Float64bits(norm))
}

func (p *paramTargets) setPlain(id ParamID, plain float64) {
	if id < 0 || id >= numParams {
		return
	}
	p.setNormalized(id, paramDefs[id].normalize(plain))
}

func (p *paramTargets) normalized(id ParamID) float64 {
	return math.Float64frombits(p.values[id].Load())
}

func (p *paramTargets) plain(id ParamID) float64 {
	return paramDefs[id].denormalize(p.normalized(id))
}

// voiceCount converts the normalized voice count target to 1..16.
func (p *paramTargets) voiceCount() int {
	n := int(p.normalized(ParamVoices)*15.98 + 1)
	if n < MinVoices {
		n = MinVoices
	} else if n > MaxVoices {
		n = MaxVoices
	}
	return n
}

// ramp is the per-parameter automation interpolator: it carries the value
// reached at the end of the previous block and the target for the current
// one. Block processing lerps between the two so a voice never sees a
// discontinuous jump within a block.
type ramp struct {
	value  float64
	target float64
}

// jump sets value and target at once, skipping interpolation.
func (r *ramp) jump(v float64) {
	r.value = v
	r.target = v
}

// retarget sets the value to reach by the end of the next block.
func (r *ramp) retarget(v float64) {
	r.target = v
}

// span returns the endpoints for the current block and commits the target
// as the new resting value. Call exactly once per block.
func (r *ramp) span() (from, to float64) {
	from = r.value
	to = r.target
	r.value = r.target
	return from, to
}

// fillCurve writes a linear ramp into dst that starts one step above from
// and reaches to at the final sample, matching how the per-sample
// interpolation steps land on the target exactly at the block edge.
func fillCurve(dst []float64, from, to float64) {
	n := len(dst)
	if n == 0 {
		return
	}
	step := (to - from) / float64(n)
	v := from
	for i := range dst {
		v += step
		dst[i] = v
	}
}

// volumeGain converts the volume parameter to a linear gain, gating the
// bottom of the range to true silence.
func volumeGain(db float64) float64 {
	if db <= MinVolumeDB+0.001 {
		return 0
	}
	return gain.DbToLinear(db)
}
