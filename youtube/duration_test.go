package youtube

import (
	"testing"
	"time"
)

func TestParseISO8601Duration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"PT45S", 45 * time.Second},
		{"PT1M", time.Minute},
		{"PT59S", 59 * time.Second},
		{"PT1M1S", 61 * time.Second},
		{"PT1H2M3S", time.Hour + 2*time.Minute + 3*time.Second},
		{"P1DT2H", 26 * time.Hour},
		{"PT0S", 0},
	}

	for _, tt := range tests {
		got, err := ParseISO8601Duration(tt.input)
		if err != nil {
			t.Errorf("ParseISO8601Duration(%q): %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseISO8601Duration(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseISO8601DurationInvalid(t *testing.T) {
	for _, input := range []string{"", "42", "1h30m", "P1D"} {
		if _, err := ParseISO8601Duration(input); err == nil {
			t.Errorf("ParseISO8601Duration(%q) accepted", input)
		}
	}
}

func TestUploadsPlaylistID(t *testing.T) {
	id, ok := uploadsPlaylistID("UCabc123")
	if !ok || id != "UUabc123" {
		t.Errorf("got %q, %v", id, ok)
	}
	if _, ok := uploadsPlaylistID("HCabc123"); ok {
		t.Error("non-UC channel id accepted")
	}
}
