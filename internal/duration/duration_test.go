package duration

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"1d", 24 * time.Hour, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"1w", 7 * 24 * time.Hour, false},
		{"30d", 30 * 24 * time.Hour, false},
		{"1mo", 30 * 24 * time.Hour, false},
		{"36h", 36 * time.Hour, false},
		{"90min", 90 * time.Minute, false},
		{" 2w ", 14 * 24 * time.Hour, false},
		{"invalid", 0, true},
		{"7", 0, true},
		{"3parsecs", 0, true},
		{"-1d", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Parse(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDays(t *testing.T) {
	if got := Days(7 * 24 * time.Hour); got != "7d" {
		t.Errorf("Days() = %q, want 7d", got)
	}
	if got := Days(36 * time.Hour); got != "1d" {
		t.Errorf("Days() = %q, want 1d", got)
	}
}
