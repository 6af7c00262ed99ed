package gain

import (
	"math"
	"testing"
)

func TestDbConversion(t *testing.T) {
	tests := []struct {
		name    string
		linear  float64
		db      float64
		epsilon float64
	}{
		{"Unity gain", 1.0, 0.0, 0.001},
		{"Half amplitude", 0.5, -6.02, 0.01},
		{"Double amplitude", 2.0, 6.02, 0.01},
		{"Quarter amplitude", 0.25, -12.04, 0.01},
		{"Zero amplitude", 0.0, MinDB, 0.001},
		{"Negative amplitude", -1.0, MinDB, 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotDb := LinearToDb(tt.linear)
			if math.Abs(gotDb-tt.db) > tt.epsilon {
				t.Errorf("LinearToDb(%f) = %f, want %f", tt.linear, gotDb, tt.db)
			}

			if tt.db != MinDB {
				gotLinear := DbToLinear(tt.db)
				if math.Abs(gotLinear-math.Abs(tt.linear)) > tt.epsilon {
					t.Errorf("DbToLinear(%f) = %f, want %f", tt.db, gotLinear, math.Abs(tt.linear))
				}
			}
		})
	}

	if got := DbToLinear(MinDB - 10); got != 0 {
		t.Errorf("DbToLinear below floor = %f, want 0", got)
	}
}

func TestDb32Conversion(t *testing.T) {
	linear := float32(0.5)
	expectedDb := float32(-6.02)

	gotDb := LinearToDb32(linear)
	if math.Abs(float64(gotDb-expectedDb)) > 0.1 {
		t.Errorf("LinearToDb32(%f) = %f, want %f", linear, gotDb, expectedDb)
	}

	gotLinear := DbToLinear32(expectedDb)
	if math.Abs(float64(gotLinear-linear)) > 0.01 {
		t.Errorf("DbToLinear32(%f) = %f, want %f", expectedDb, gotLinear, linear)
	}
}

func TestApplyBuffer(t *testing.T) {
	buffer := []float32{0.5, -0.25, 1.0, 0.0}
	ApplyBuffer(buffer, 2.0)

	want := []float32{1.0, -0.5, 2.0, 0.0}
	for i := range buffer {
		if buffer[i] != want[i] {
			t.Errorf("sample %d = %f, want %f", i, buffer[i], want[i])
		}
	}
}

func TestFade(t *testing.T) {
	buffer := []float32{1, 1, 1, 1, 1}
	Fade(buffer, 1.0, 0.0)

	if buffer[0] != 1.0 {
		t.Errorf("fade start = %f, want 1", buffer[0])
	}
	if buffer[4] != 0.0 {
		t.Errorf("fade end = %f, want 0", buffer[4])
	}
	for i := 1; i < len(buffer); i++ {
		if buffer[i] >= buffer[i-1] {
			t.Errorf("fade not monotonic at %d: %f >= %f", i, buffer[i], buffer[i-1])
		}
	}

	// Single sample and empty buffers are fine.
	one := []float32{0.5}
	Fade(one, 0.5, 1.0)
	if one[0] != 0.25 {
		t.Errorf("single sample fade = %f, want 0.25", one[0])
	}
	Fade(nil, 0, 1)
}

func TestSoftLimit(t *testing.T) {
	// Below threshold passes through untouched.
	if got := SoftLimit(0.5, 0.8); got != 0.5 {
		t.Errorf("SoftLimit(0.5) = %f, want 0.5", got)
	}

	// Above threshold stays bounded.
	for _, in := range []float32{1.5, 4.0, -2.5, -10} {
		got := SoftLimit(in, 0.8)
		if math.Abs(float64(got)) > 0.8 {
			t.Errorf("SoftLimit(%f) = %f, exceeds threshold", in, got)
		}
		if (in > 0) != (got > 0) {
			t.Errorf("SoftLimit(%f) = %f, sign flipped", in, got)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in, limit, want float32
	}{
		{0.5, 1.0, 0.5},
		{1.5, 1.0, 1.0},
		{-1.5, 1.0, -1.0},
		{0, 1.0, 0},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in, tt.limit); got != tt.want {
			t.Errorf("Clamp(%f, %f) = %f, want %f", tt.in, tt.limit, got, tt.want)
		}
	}
}
