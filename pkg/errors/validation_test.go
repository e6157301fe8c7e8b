package errors

import (
	"math"
	"testing"
)

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
		wantErr    bool
	}{
		{"normal", 1, 100, false},
		{"zero length", 50, 50, false},
		{"inverted", 100, 1, true},
		{"negative start", -1, 10, true},
		{"nan", math.NaN(), 10, true},
		{"inf", 0, math.Inf(1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange(tt.start, tt.end)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateRange(%v, %v) error = %v, wantErr %v", tt.start, tt.end, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidRange) {
				t.Errorf("expected INVALID_RANGE, got %v", GetCode(err))
			}
		})
	}
}

func TestValidateChromosome(t *testing.T) {
	valid := []string{"1", "X", "chrY", "MT", "chr17_KI270729v1_random"}
	for _, name := range valid {
		if err := ValidateChromosome(name); err != nil {
			t.Errorf("ValidateChromosome(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{"", "chr 1", "../1", "a/b", "x\x00"}
	for _, name := range invalid {
		if err := ValidateChromosome(name); err == nil {
			t.Errorf("ValidateChromosome(%q) = nil, want error", name)
		}
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"coverage/sample1.json", false},
		{"", true},
		{"/etc/passwd", true},
		{"../secret", true},
		{"a\\b", true},
	}
	for _, tt := range tests {
		if err := ValidatePath(tt.path); (err != nil) != tt.wantErr {
			t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
	}
}
