package terminal

import (
	"strings"
	"testing"
	"time"
)

func TestWrapText(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		width  int
		indent string
		want   string
	}{
		{
			name:  "fits on one line",
			text:  "short justification",
			width: 40,
			want:  "short justification",
		},
		{
			name:  "wraps at word boundary",
			text:  "location no longer exists in the diff",
			width: 20,
			want:  "location no longer\nexists in the diff",
		},
		{
			name:   "indent on every line",
			text:   "first second third",
			width:  13,
			indent: "  ",
			want:   "  first\n  second\n  third",
		},
		{
			name:  "long word kept whole",
			text:  "see supercalifragilisticexpialidocious above",
			width: 10,
			want:  "see\nsupercalifragilisticexpialidocious\nabove",
		},
		{
			name:  "empty input",
			text:  "",
			width: 40,
			want:  "",
		},
		{
			name:  "whitespace only",
			text:  "  \t ",
			width: 40,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapText(tt.text, tt.width, tt.indent)
			if got != tt.want {
				t.Errorf("WrapText(%q, %d, %q) = %q, want %q",
					tt.text, tt.width, tt.indent, got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		dur  time.Duration
		want string
	}{
		{0, "0.0s"},
		{500 * time.Millisecond, "0.5s"},
		{45*time.Second + 300*time.Millisecond, "45.3s"},
		{time.Minute, "1m 0.0s"},
		{2*time.Minute + 45*time.Second + 500*time.Millisecond, "2m 45.5s"},
	}

	for _, tt := range tests {
		t.Run(tt.dur.String(), func(t *testing.T) {
			if got := FormatDuration(tt.dur); got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.dur, got, tt.want)
			}
		})
	}
}

func TestRuler(t *testing.T) {
	WithColorsDisabled(func() {
		got := Ruler(5, "─")
		if got != strings.Repeat("─", 5) {
			t.Errorf("Ruler(5) = %q", got)
		}
	})
}

func TestReportWidth_Capped(t *testing.T) {
	if w := ReportWidth(); w > MaxReportWidth {
		t.Errorf("ReportWidth() = %d, want <= %d", w, MaxReportWidth)
	}
}
