package ocr

import "testing"

func TestNormalizeConfidence(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"typical score", 91.5, 0.915},
		{"zero", 0, 0},
		{"full", 100, 1},
		{"negative clamps to zero", -3, 0},
		{"overshoot clamps to one", 120, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeConfidence(tt.in); got != tt.want {
				t.Errorf("normalizeConfidence(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
