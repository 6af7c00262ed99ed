package main

import (
	"errors"
	"time"

	"github.com/justyntemme/wtosc/pkg/debug"
	"github.com/justyntemme/wtosc/pkg/engine"
	"github.com/justyntemme/wtosc/pkg/midi"
	"github.com/rakyll/portmidi"
)

var errNoMIDIDevice = errors.New("no MIDI input device found")

const bendRange = 2.0

type midiInput struct {
	stream *portmidi.Stream
	stop   chan struct{}
	done   chan struct{}
}

// openMIDI attaches the default MIDI input device to the player. Note events
// go through the player's queue; controller and bend changes hit engine
// parameters directly since those are safe from any goroutine.
func openMIDI(p *player) (*midiInput, error) {
	if err := portmidi.Initialize(); err != nil {
		return nil, err
	}
	id := portmidi.DefaultInputDeviceID()
	if id < 0 {
		portmidi.Terminate()
		return nil, errNoMIDIDevice
	}
	stream, err := portmidi.NewInputStream(id, 1024)
	if err != nil {
		portmidi.Terminate()
		return nil, err
	}
	if info := portmidi.Info(id); info != nil {
		debug.Info("midi: reading from %q", info.Name)
	}
	m := &midiInput{stream: stream, stop: make(chan struct{}), done: make(chan struct{})}
	go m.loop(p)
	return m, nil
}

func (m *midiInput) loop(p *player) {
	defer close(m.done)
	for {
		select {
		case <-m.stop:
			return
		default:
		}
		events, err := m.stream.Read(1024)
		if err != nil {
			debug.Warn("midi: read failed: %v", err)
			time.Sleep(50 * time.Millisecond)
			continue
		}
		if len(events) == 0 {
			time.Sleep(2 * time.Millisecond)
			continue
		}
		for _, raw := range events {
			if ev, ok := midi.Decode(uint8(raw.Status), uint8(raw.Data1), uint8(raw.Data2)); ok {
				m.handle(p, ev)
			}
		}
	}
}

func (m *midiInput) handle(p *player, ev midi.Event) {
	switch ev.Kind {
	case midi.KindNoteOn:
		debug.Debug("midi: %s", ev)
		p.noteOn(int32(ev.A), float64(ev.A), float32(ev.Velocity()))
	case midi.KindNoteOff:
		p.noteOff(int32(ev.A))
	case midi.KindControlChange:
		switch ev.A {
		case midi.CCModWheel:
			p.eng.SetParamNormalized(engine.ParamMorph, ev.ControlValue())
		case midi.CCVolume:
			p.eng.SetParamNormalized(engine.ParamVolume, ev.ControlValue())
		case midi.CCPan:
			p.eng.SetParamNormalized(engine.ParamPan, ev.ControlValue())
		case midi.CCAllSoundOff, midi.CCAllNotesOff:
			p.eng.AllNotesOff()
		}
	case midi.KindPitchBend:
		p.eng.SetParam(engine.ParamTranspose, ev.BendSemitones(bendRange))
	}
}

func (m *midiInput) Close() {
	close(m.stop)
	<-m.done
	m.stream.Close()
	portmidi.Terminate()
}
