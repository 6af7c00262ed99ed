package wavetable

import "math"

// BasicShapes returns the builtin bank: 256 frames morphing from sine
// through triangle and square to sawtooth, so the engine is usable without
// loading any external table.
func BasicShapes() *Table {
	raw := make([]float32, NumFrames*FrameLen)

	// Three morph segments across the 256 frames.
	shapes := []func(phase float64) float64{sineShape, triangleShape, squareShape, sawShape}
	segments := len(shapes) - 1

	for f := 0; f < NumFrames; f++ {
		pos := float64(f) / float64(NumFrames-1) * float64(segments)
		seg := int(pos)
		if seg >= segments {
			seg = segments - 1
		}
		mix := pos - float64(seg)

		from := shapes[seg]
		to := shapes[seg+1]

		frame := raw[f*FrameLen : (f+1)*FrameLen]
		for i := range frame {
			phase := float64(i) / FrameLen
			frame[i] = float32(from(phase) + (to(phase)-from(phase))*mix)
		}
	}

	t, err := New(raw)
	if err != nil {
		panic(err)
	}
	return t
}

func sineShape(phase float64) float64 {
	return math.Sin(2 * math.Pi * phase)
}

func triangleShape(phase float64) float64 {
	if phase < 0.5 {
		return 4*phase - 1
	}
	return 3 - 4*phase
}

func squareShape(phase float64) float64 {
	if phase < 0.5 {
		return 1
	}
	return -1
}

func sawShape(phase float64) float64 {
	return 2*phase - 1
}
