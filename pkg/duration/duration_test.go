package duration

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{
			name:  "seconds as plain number",
			input: "3600",
			want:  time.Hour,
		},
		{
			name:  "minutes",
			input: "60m",
			want:  time.Hour,
		},
		{
			name:  "hours",
			input: "1h",
			want:  time.Hour,
		},
		{
			name:  "go duration with unit",
			input: "90s",
			want:  90 * time.Second,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "garbage",
			input:   "soon",
			wantErr: true,
		},
		{
			name:    "number with trailing junk",
			input:   "1hour",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Parse(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		input time.Duration
		want  string
	}{
		{input: 45 * time.Second, want: "45s"},
		{input: 5 * time.Minute, want: "5m"},
		{input: 5*time.Minute + 30*time.Second, want: "5m 30s"},
		{input: time.Hour, want: "1h"},
		{input: time.Hour + 30*time.Minute, want: "1h 30m"},
	}

	for _, tt := range tests {
		if got := Format(tt.input); got != tt.want {
			t.Errorf("Format(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidatePresign(t *testing.T) {
	tests := []struct {
		name    string
		input   time.Duration
		wantErr bool
	}{
		{name: "default window", input: 60 * time.Second},
		{name: "lower bound", input: time.Second},
		{name: "upper bound", input: 15 * time.Minute},
		{name: "zero", input: 0, wantErr: true},
		{name: "too long", input: 16 * time.Minute, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePresign(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePresign(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateLease(t *testing.T) {
	tests := []struct {
		name    string
		input   time.Duration
		wantErr bool
	}{
		{name: "lower bound", input: 15 * time.Minute},
		{name: "typical", input: time.Hour},
		{name: "upper bound", input: 12 * time.Hour},
		{name: "too short", input: time.Minute, wantErr: true},
		{name: "too long", input: 13 * time.Hour, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLease(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLease(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
