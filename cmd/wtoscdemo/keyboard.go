package main

import (
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/justyntemme/wtosc/pkg/debug"
	"github.com/justyntemme/wtosc/pkg/engine"
)

// keyNotes maps the home row to semitone offsets from C, DAW musical
// typing style: a=C w=C# s=D ... k=C an octave up.
var keyNotes = map[byte]int{
	'a': 0, 'w': 1, 's': 2, 'e': 3, 'd': 4, 'f': 5,
	't': 6, 'g': 7, 'y': 8, 'h': 9, 'u': 10, 'j': 11, 'k': 12,
}

// keyboard turns raw-mode stdin into note and parameter actions. Reads
// are nonblocking so Stop can interrupt the loop and restore the
// terminal.
type keyboard struct {
	p        *player
	quit     chan struct{}
	done     chan struct{}
	stop     chan struct{}
	once     sync.Once
	quitOnce sync.Once
	fd       int
	state    *term.State
	octave   int
	lastID   int32
}

func newKeyboard(p *player) *keyboard {
	return &keyboard{
		p:      p,
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		stop:   make(chan struct{}),
		octave: 4,
	}
}

func (k *keyboard) start() error {
	k.fd = int(os.Stdin.Fd())
	state, err := term.MakeRaw(k.fd)
	if err != nil {
		return err
	}
	k.state = state
	if err := syscall.SetNonblock(k.fd, true); err != nil {
		term.Restore(k.fd, k.state)
		return err
	}

	go k.loop()
	return nil
}

func (k *keyboard) loop() {
	defer close(k.done)
	buf := make([]byte, 1)
	for {
		select {
		case <-k.stop:
			return
		default:
		}
		n, err := syscall.Read(k.fd, buf)
		if n > 0 {
			k.handle(buf[0])
		}
		if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK || n == 0 {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if err != nil {
			return
		}
	}
}

func (k *keyboard) handle(b byte) {
	eng := k.p.eng
	switch {
	case b == 'q' || b == 3: // q or Ctrl-C
		k.quitOnce.Do(func() { close(k.quit) })
	case b == ' ':
		k.p.noteOff(k.lastID)
	case b == 'z':
		if k.octave > 0 {
			k.octave--
		}
	case b == 'x':
		if k.octave < 8 {
			k.octave++
		}
	case b == ',':
		eng.SetParam(engine.ParamMorph, eng.Param(engine.ParamMorph)-16)
	case b == '.':
		eng.SetParam(engine.ParamMorph, eng.Param(engine.ParamMorph)+16)
	case b == '[':
		eng.SetParam(engine.ParamDetune, eng.Param(engine.ParamDetune)-5)
	case b == ']':
		eng.SetParam(engine.ParamDetune, eng.Param(engine.ParamDetune)+5)
	case b == '-':
		eng.SetParam(engine.ParamVoices, eng.Param(engine.ParamVoices)-1)
	case b == '=':
		eng.SetParam(engine.ParamVoices, eng.Param(engine.ParamVoices)+1)
	default:
		if offset, ok := keyNotes[b]; ok {
			note := float64(12*(k.octave+1) + offset)
			k.p.noteOff(k.lastID)
			k.lastID++
			k.p.noteOn(k.lastID, note, 0.8)
			debug.Debug("key note %g (octave %d)", note, k.octave)
		}
	}
}

func (k *keyboard) Stop() {
	k.once.Do(func() { close(k.stop) })
	<-k.done
	syscall.SetNonblock(k.fd, false)
	if k.state != nil {
		term.Restore(k.fd, k.state)
	}
}
