// Command wtoscdemo plays the wavetable oscillator live from the
// terminal or renders a demo sequence to a WAV file. Notes come from
// musical typing on the home row or from the default MIDI input; the
// wavetable can be hot-reloaded from disk while playing.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/justyntemme/wtosc/pkg/debug"
	"github.com/justyntemme/wtosc/pkg/dsp/gain"
	"github.com/justyntemme/wtosc/pkg/dsp/wavetable"
	"github.com/justyntemme/wtosc/pkg/engine"
	"github.com/justyntemme/wtosc/pkg/midi"
	"github.com/justyntemme/wtosc/pkg/wtfile"
)

func main() {
	var (
		tablePath  = flag.String("table", "", "wavetable WAV (2048 samples x 256 frames, mono); built-in shapes when empty")
		sampleRate = flag.Int("rate", 48000, "sample rate in Hz")
		blockLen   = flag.Int("block", 512, "processing block length in samples")
		renderPath = flag.String("render", "", "render a demo sequence to this WAV instead of playing live")
		seconds    = flag.Float64("seconds", 4, "length of the offline render in seconds")
		trimDB     = flag.Float64("trim", 0, "output trim in dB, applied after the engine")
		useMIDI    = flag.Bool("midi", false, "read notes from the default MIDI input")
		watch      = flag.Bool("watch", false, "hot-reload the wavetable when the file changes")
	)
	flag.Parse()

	if err := run(*tablePath, *renderPath, *sampleRate, *blockLen, *seconds, *trimDB, *useMIDI, *watch); err != nil {
		fmt.Fprintln(os.Stderr, "wtoscdemo:", err)
		os.Exit(1)
	}
}

func run(tablePath, renderPath string, sampleRate, blockLen int, seconds, trimDB float64, useMIDI, watch bool) error {
	var (
		table *wavetable.Table
		err   error
	)
	if tablePath == "" {
		table = wavetable.BasicShapes()
		debug.Info("using built-in shape table")
	} else {
		table, err = wtfile.Load(tablePath)
		if err != nil {
			return err
		}
		debug.Info("loaded wavetable %s", tablePath)
	}

	eng := engine.New(float64(sampleRate), blockLen)
	eng.SetTable(table)
	eng.SetRelease(0.3)
	eng.SetParam(engine.ParamVoices, 4)
	eng.SetParam(engine.ParamDetune, 15)

	if renderPath != "" {
		return renderOffline(eng, renderPath, sampleRate, seconds, trimDB)
	}

	p, err := newPlayer(eng, sampleRate, blockLen, trimDB)
	if err != nil {
		return fmt.Errorf("audio output: %w", err)
	}
	defer p.close()

	fmt.Println("wtoscdemo - wavetable oscillator")
	fmt.Println("  a w s e d f t g y h u j k   play notes (z/x octave down/up)")
	fmt.Println("  , .  morph     [ ]  detune     - =  unison voices")
	fmt.Println("  space  release note     q  quit")

	kb := newKeyboard(p)
	if err := kb.start(); err != nil {
		if !useMIDI {
			return fmt.Errorf("keyboard: %w (use -midi on a non-interactive terminal)", err)
		}
		fmt.Println("no keyboard input:", err)
	} else {
		defer kb.Stop()
	}

	if useMIDI {
		m, err := openMIDI(p)
		if err != nil {
			debug.Warn("midi unavailable: %v", err)
			fmt.Printf("midi unavailable: %v\r\n", err)
		} else {
			defer m.Close()
		}
	}

	if watch {
		if tablePath == "" {
			fmt.Print("-watch needs -table\r\n")
		} else if w, err := watchTable(eng, tablePath); err != nil {
			debug.Warn("watch unavailable: %v", err)
		} else {
			defer w.Close()
		}
	}

	p.start()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-kb.quit:
			fmt.Print("\r\n")
			return nil
		case <-ticker.C:
			lvl := gain.LinearToDb32(p.meter.Level())
			if lvl < -72 {
				lvl = -72
			}
			fmt.Printf("\r  notes:%2d  morph:%3.0f  detune:%3.0fct  voices:%2.0f  level:%6.1fdB  load:%5.1f%%   ",
				eng.ActiveNotes(),
				eng.Param(engine.ParamMorph),
				eng.Param(engine.ParamDetune),
				eng.Param(engine.ParamVoices),
				lvl,
				p.load.Average())
		}
	}
}

// renderOffline writes a scripted arpeggio with a full morph sweep, the
// same engine path the live mode uses.
func renderOffline(eng *engine.Engine, path string, sampleRate int, seconds, trimDB float64) error {
	eng.SetRelease(0.4)
	eng.SetParam(engine.ParamVoices, 5)
	eng.SetParam(engine.ParamDetune, 18)
	master := gain.DbToLinear32(float32(trimDB))

	arp := []uint8{48, 55, 60, 63, 67, 63, 60, 55}
	total := int64(seconds * float64(sampleRate))
	steps := 2 * len(arp)
	stepLen := total / int64(steps)
	if stepLen < 1 {
		stepLen = 1
	}

	seq := midi.NewSequence()
	for s := 0; s < steps; s++ {
		note := arp[s%len(arp)]
		seq.NoteOn(int64(s)*stepLen, note, 102)
		seq.NoteOff(int64(s+1)*stepLen, note)
	}

	var pos int64
	err := wtfile.RenderWAV(path, sampleRate, seconds, func(left, right []float32) {
		for _, ev := range seq.Pop(pos + int64(len(left))) {
			switch ev.Kind {
			case midi.KindNoteOn:
				eng.NoteOn(int32(ev.A), float64(ev.A), float32(ev.Velocity()))
			case midi.KindNoteOff:
				eng.NoteOff(int32(ev.A))
			}
		}
		eng.SetParam(engine.ParamMorph, engine.MaxMorph*float64(pos)/float64(total))
		eng.ProcessBlock(left, right)
		gain.ApplyBuffer(left, master)
		gain.ApplyBuffer(right, master)
		pos += int64(len(left))
		if pos >= total {
			// Release tails crossing the end of the file get faded, not cut.
			gain.Fade(left, 1, 0)
			gain.Fade(right, 1, 0)
		}
	})
	if err != nil {
		return err
	}
	fmt.Printf("rendered %gs to %s\n", seconds, path)
	return nil
}
