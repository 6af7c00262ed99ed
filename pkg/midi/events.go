// Package midi decodes raw MIDI messages into typed events and provides a
// sample-stamped event sequence for offline rendering. It knows nothing about
// the engine; callers map events onto engine calls themselves.
package midi

import "fmt"

type Kind uint8

const (
	KindNoteOff Kind = iota
	KindNoteOn
	KindControlChange
	KindPitchBend
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNoteOff:
		return "NoteOff"
	case KindNoteOn:
		return "NoteOn"
	case KindControlChange:
		return "ControlChange"
	case KindPitchBend:
		return "PitchBend"
	default:
		return "Other"
	}
}

// Event is a decoded channel message. A holds the first data byte (note
// number or controller), B the second (velocity or value). Time is a sample
// timestamp, meaningful only inside a Sequence.
type Event struct {
	Kind    Kind
	Channel uint8
	A, B    uint8
	Time    int64
}

// Controllers the demo responds to.
const (
	CCModWheel    uint8 = 1
	CCVolume      uint8 = 7
	CCPan         uint8 = 10
	CCSustain     uint8 = 64
	CCAllSoundOff uint8 = 120
	CCAllNotesOff uint8 = 123
)

// Decode parses a complete three-byte channel message. It returns false for
// system messages and anything else the caller should ignore. A NoteOn with
// zero velocity decodes as NoteOff, which is how many keyboards release keys.
func Decode(status, data1, data2 uint8) (Event, bool) {
	ev := Event{Channel: status & 0x0F, A: data1 & 0x7F, B: data2 & 0x7F}
	switch status & 0xF0 {
	case 0x80:
		ev.Kind = KindNoteOff
	case 0x90:
		if ev.B == 0 {
			ev.Kind = KindNoteOff
		} else {
			ev.Kind = KindNoteOn
		}
	case 0xB0:
		ev.Kind = KindControlChange
	case 0xE0:
		ev.Kind = KindPitchBend
	default:
		return Event{}, false
	}
	return ev, true
}

// Velocity maps the second data byte to 0..1.
func (e Event) Velocity() float64 {
	return float64(e.B) / 127.0
}

// ControlValue maps a controller value byte to 0..1.
func (e Event) ControlValue() float64 {
	return float64(e.B) / 127.0
}

// BendSemitones converts a pitch bend event to semitones given the bend
// range. The 14-bit value is centered on 8192; full down reaches -semitones
// exactly, full up falls one step short of +semitones.
func (e Event) BendSemitones(semitones float64) float64 {
	raw := int(e.B)<<7 | int(e.A)
	return float64(raw-8192) / 8192.0 * semitones
}

func (e Event) String() string {
	switch e.Kind {
	case KindNoteOn, KindNoteOff:
		return fmt.Sprintf("%s{ch:%d note:%s vel:%d}", e.Kind, e.Channel, NoteName(e.A), e.B)
	case KindControlChange:
		return fmt.Sprintf("CC{ch:%d ctrl:%d val:%d}", e.Channel, e.A, e.B)
	case KindPitchBend:
		return fmt.Sprintf("PitchBend{ch:%d raw:%d}", e.Channel, int(e.B)<<7|int(e.A))
	default:
		return fmt.Sprintf("Other{ch:%d}", e.Channel)
	}
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName renders a note number in scientific pitch notation, middle C = C4.
func NoteName(note uint8) string {
	return fmt.Sprintf("%s%d", noteNames[note%12], int(note/12)-1)
}
