package midi

import "sort"

// Sequence is a time-ordered list of events for offline rendering. Events
// are stamped with absolute sample times and consumed in order through Pop.
// It is not safe for concurrent use; live input should go through a channel
// instead.
type Sequence struct {
	events []Event
	pos    int
	sorted bool
}

func NewSequence() *Sequence {
	return &Sequence{events: make([]Event, 0, 128), sorted: true}
}

func (s *Sequence) Add(ev Event) {
	s.events = append(s.events, ev)
	s.sorted = false
}

// NoteOn appends a note-on at sample time t.
func (s *Sequence) NoteOn(t int64, note, velocity uint8) {
	s.Add(Event{Kind: KindNoteOn, A: note & 0x7F, B: velocity & 0x7F, Time: t})
}

// NoteOff appends a note-off at sample time t.
func (s *Sequence) NoteOff(t int64, note uint8) {
	s.Add(Event{Kind: KindNoteOff, A: note & 0x7F, Time: t})
}

// Pop returns all events with Time < upTo that have not been returned yet.
// Events sharing a timestamp come back in insertion order. The returned
// slice aliases internal storage and is valid until the next Add.
func (s *Sequence) Pop(upTo int64) []Event {
	if !s.sorted {
		rest := s.events[s.pos:]
		sort.SliceStable(rest, func(i, j int) bool {
			return rest[i].Time < rest[j].Time
		})
		s.sorted = true
	}
	start := s.pos
	for s.pos < len(s.events) && s.events[s.pos].Time < upTo {
		s.pos++
	}
	if start == s.pos {
		return nil
	}
	return s.events[start:s.pos]
}

// Pending reports how many events remain to be popped.
func (s *Sequence) Pending() int {
	return len(s.events) - s.pos
}

// Rewind restarts consumption from the first event.
func (s *Sequence) Rewind() {
	s.pos = 0
	s.sorted = false
}

// End returns the largest timestamp in the sequence, or 0 if empty.
func (s *Sequence) End() int64 {
	var end int64
	for _, ev := range s.events {
		if ev.Time > end {
			end = ev.Time
		}
	}
	return end
}
