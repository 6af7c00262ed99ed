package unison

import (
	"math"
	"testing"
)

func TestEffectiveCount(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want int
	}{
		{"Below range", 0, 1},
		{"Single", 1, 1},
		{"Pair", 2, 2},
		{"Odd rounds up", 3, 4},
		{"Five", 5, 6},
		{"Fifteen", 15, 16},
		{"Max", 16, 16},
		{"Above range", 40, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveCount(tt.n); got != tt.want {
				t.Errorf("EffectiveCount(%d) = %d, want %d", tt.n, got, tt.want)
			}
		})
	}
}

func TestDetuneOffsetsKnownValues(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want []float64
	}{
		{"Single", 1, []float64{0}},
		{"Pair", 2, []float64{-1, 1}},
		{"Three", 3, []float64{-1, 1, 0, 0}},
		{"Four", 4, []float64{-1, 1, 1.0 / 3, -1.0 / 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetuneOffsets(tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("DetuneOffsets(%d) len = %d, want %d", tt.n, len(got), len(tt.want))
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-12 {
					t.Errorf("DetuneOffsets(%d)[%d] = %f, want %f", tt.n, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestOffsetsSymmetricForAllCounts(t *testing.T) {
	for n := 1; n <= MaxVoices; n++ {
		for name, offsets := range map[string][]float64{
			"detune": DetuneOffsets(n),
			"pan":    PanPositions(n),
		} {
			if len(offsets) != EffectiveCount(n) {
				t.Fatalf("%s(%d) len = %d, want %d", name, n, len(offsets), EffectiveCount(n))
			}

			sum := 0.0
			for _, v := range offsets {
				sum += v
				if v < -1 || v > 1 {
					t.Errorf("%s(%d) offset %f outside [-1,1]", name, n, v)
				}
			}
			if math.Abs(sum) > 1e-12 {
				t.Errorf("%s(%d) offsets sum to %g, want 0", name, n, sum)
			}

			// Every offset has its mirror.
			for _, v := range offsets {
				found := false
				for _, w := range offsets {
					if math.Abs(v+w) < 1e-12 {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("%s(%d): offset %f has no mirror", name, n, v)
				}
			}
		}
	}
}

func TestWidestPairAtFullSpread(t *testing.T) {
	for n := 2; n <= MaxVoices; n++ {
		offsets := DetuneOffsets(n)
		max := 0.0
		for _, v := range offsets {
			if a := math.Abs(v); a > max {
				max = a
			}
		}
		if math.Abs(max-1) > 1e-12 {
			t.Errorf("DetuneOffsets(%d) max magnitude = %f, want 1", n, max)
		}
	}
}

func TestGainsSwapSymmetry(t *testing.T) {
	for _, pos := range []float64{-1, -0.6, -0.25, 0, 0.25, 0.6, 1} {
		for _, width := range []float64{0, 0.3, 1} {
			l, r := Gains(pos, width, 0, 4)
			l2, r2 := Gains(-pos, width, 0, 4)
			if math.Abs(l-r2) > 1e-12 || math.Abs(r-l2) > 1e-12 {
				t.Errorf("Gains(%f) = (%f,%f) but Gains(%f) = (%f,%f), want mirrored",
					pos, l, r, -pos, l2, r2)
			}
		}
	}
}

func TestGainsConstantPower(t *testing.T) {
	for _, count := range []int{1, 2, 4, 16} {
		for _, pos := range []float64{-1, -0.5, 0, 0.7, 1} {
			l, r := Gains(pos, 1, 0, count)
			power := l*l + r*r
			want := 1 / float64(count)
			if math.Abs(power-want) > 1e-9 {
				t.Errorf("Gains(pos=%f, count=%d) power = %f, want %f", pos, count, power, want)
			}
		}
	}
}

func TestGainsWidthAndPan(t *testing.T) {
	// Zero width collapses every position to center.
	l, r := Gains(-1, 0, 0, 1)
	if math.Abs(l-r) > 1e-12 {
		t.Errorf("width 0: gains (%f,%f), want equal", l, r)
	}

	// Hard left master pan silences the right channel.
	l, r = Gains(0, 0, -1, 1)
	if r > 1e-9 {
		t.Errorf("hard left: right gain = %f, want 0", r)
	}
	if math.Abs(l-1) > 1e-9 {
		t.Errorf("hard left: left gain = %f, want 1", l)
	}

	// Pan plus width clamps instead of overflowing the law's range.
	l, r = Gains(1, 1, 1, 1)
	if l < 0 || math.Abs(r-1) > 1e-9 {
		t.Errorf("clamped hard right: gains (%f,%f)", l, r)
	}
}
