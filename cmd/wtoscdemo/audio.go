package main

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/justyntemme/wtosc/pkg/debug"
	"github.com/justyntemme/wtosc/pkg/dsp/gain"
	"github.com/justyntemme/wtosc/pkg/engine"
)

type noteEvent struct {
	on       bool
	id       int32
	note     float64
	velocity float32
}

// player adapts the engine to oto's pull model: oto calls Read on its own
// goroutine, which drains queued note events and renders interleaved
// float32 stereo. Keyboard and MIDI goroutines enqueue events instead of
// touching the engine, keeping note handling on the rendering goroutine.
type player struct {
	eng    *engine.Engine
	ctx    *oto.Context
	out    *oto.Player
	events chan noteEvent

	left   []float32
	right  []float32
	master float32

	load  *debug.Load
	meter *debug.Meter
}

func newPlayer(eng *engine.Engine, sampleRate, blockLen int, trimDB float64) (*player, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   30 * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	p := &player{
		eng:    eng,
		ctx:    ctx,
		events: make(chan noteEvent, 256),
		left:   make([]float32, blockLen),
		right:  make([]float32, blockLen),
		master: gain.DbToLinear32(float32(trimDB)),
		load:   debug.NewLoad(float64(sampleRate)),
		meter:  debug.NewMeter(0.92),
	}
	p.out = ctx.NewPlayer(p)
	return p, nil
}

func (p *player) start() { p.out.Play() }

func (p *player) close() {
	p.out.Close()
}

func (p *player) noteOn(id int32, note float64, velocity float32) {
	select {
	case p.events <- noteEvent{on: true, id: id, note: note, velocity: velocity}:
	default:
		debug.Warn("note queue full, dropping note-on %d", id)
	}
}

func (p *player) noteOff(id int32) {
	select {
	case p.events <- noteEvent{id: id}:
	default:
		debug.Warn("note queue full, dropping note-off %d", id)
	}
}

func (p *player) drainEvents() {
	for {
		select {
		case ev := <-p.events:
			if ev.on {
				p.eng.NoteOn(ev.id, ev.note, ev.velocity)
			} else {
				p.eng.NoteOff(ev.id)
			}
		default:
			return
		}
	}
}

// Read renders interleaved stereo float32 frames into buf.
func (p *player) Read(buf []byte) (int, error) {
	p.drainEvents()

	frames := len(buf) / 8
	start := time.Now()
	off := 0
	for done := 0; done < frames; {
		n := len(p.left)
		if frames-done < n {
			n = frames - done
		}
		l := p.left[:n]
		r := p.right[:n]
		p.eng.ProcessBlock(l, r)
		gain.ApplyBuffer(l, p.master)
		gain.ApplyBuffer(r, p.master)
		for i := 0; i < n; i++ {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(gain.SoftLimit(l[i], 0.95)))
			binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(gain.SoftLimit(r[i], 0.95)))
			off += 8
		}
		p.meter.Update(l)
		done += n
	}
	p.load.Observe(time.Since(start), frames)

	for ; off < len(buf); off++ {
		buf[off] = 0
	}
	return len(buf), nil
}
