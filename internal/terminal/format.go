package terminal

import (
	"fmt"
	"strings"
	"time"
)

// MaxReportWidth caps the run report so wide terminals stay readable.
const MaxReportWidth = 90

// ReportWidth returns the width the report should render at.
func ReportWidth() int {
	if w := GetTerminalWidth(); w < MaxReportWidth {
		return w
	}
	return MaxReportWidth
}

// FormatDuration renders a duration as seconds, or minutes and seconds
// past the first minute.
func FormatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 60 {
		return fmt.Sprintf("%.1fs", secs)
	}
	mins := int(secs) / 60
	return fmt.Sprintf("%dm %.1fs", mins, secs-float64(mins*60))
}

// Ruler returns a dim horizontal rule of the given width.
func Ruler(width int, char string) string {
	return Color(Dim) + strings.Repeat(char, width) + Color(Reset)
}

// WrapText word-wraps text to width, prefixing every line with indent.
// Words longer than the width are kept whole.
func WrapText(text string, width int, indent string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	line := len(indent) + len(words[0])
	b.WriteString(indent)
	b.WriteString(words[0])

	for _, word := range words[1:] {
		if line+1+len(word) > width && width > len(indent) {
			b.WriteString("\n")
			b.WriteString(indent)
			b.WriteString(word)
			line = len(indent) + len(word)
			continue
		}
		b.WriteString(" ")
		b.WriteString(word)
		line += 1 + len(word)
	}
	return b.String()
}
