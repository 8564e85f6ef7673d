// Package report accumulates benchmark rows into formatted comparison
// tables. Two output formats are supported: a fixed-width aligned text
// format ("rst") and a pipe-delimited markdown format ("md"). Rendering
// is deterministic; insertion order is preserved exactly.
package report

import (
	"fmt"
	"strings"

	"github.com/chanbench/chanbench/scenario"
)

// Format selects the table output format, applied to every section of
// a report.
type Format string

const (
	// FormatRST is the fixed-width aligned text format.
	FormatRST Format = "rst"
	// FormatMarkdown is the pipe-delimited markdown format.
	FormatMarkdown Format = "md"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatRST, FormatMarkdown:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown report format %q (want rst or md)", s)
	}
}

// Column geometry shared by both formats.
const (
	labelWidth = 50
	timeWidth  = 9
	ramWidth   = 8
)

// Sentinel marks a numeric column of a scenario that failed: no valid
// measurement, as opposed to a measured zero.
const Sentinel = "0*"

// Sink receives each line as it is appended, independent of the final
// render, so a long-running harness shows incremental progress.
type Sink func(line string)

// Builder accumulates preamble lines and table sections and renders
// them in insertion order. It is write-once: built incrementally during
// a run, rendered at the end, never mutated afterwards.
type Builder struct {
	format Format
	sink   Sink
	lines  []string
}

// NewBuilder creates a Builder for the given format. sink may be nil.
func NewBuilder(format Format, sink Sink) *Builder {
	return &Builder{format: format, sink: sink}
}

// Format returns the format the builder renders in.
func (b *Builder) Format() Format {
	return b.format
}

func (b *Builder) append(lines ...string) {
	for _, line := range lines {
		if b.sink != nil {
			b.sink(line)
		}

		b.lines = append(b.lines, line)
	}
}

// AddPreamble appends free-form lines (environment description, legend)
// ahead of or between sections.
func (b *Builder) AddPreamble(lines ...string) {
	b.append(lines...)
}

// Section is a handle to an open table section.
type Section struct {
	b *Builder
}

// BeginSection appends a section header with the fixed column titles.
func (b *Builder) BeginSection(title string) *Section {
	header := formatRow(b.format, title, "Time [ms]", "RAM [MB]")

	switch b.format {
	case FormatMarkdown:
		b.append(
			"",
			header,
			fmt.Sprintf("|%s|%s|%s|",
				strings.Repeat("-", labelWidth),
				strings.Repeat("-", timeWidth),
				strings.Repeat("-", ramWidth),
			),
		)
	default:
		rule := rstRule()
		b.append("", rule, header, rule)
	}

	return &Section{b: b}
}

// AppendRow formats one row for the measurement. Failed measurements
// render the 0* sentinel in both numeric columns; the captured error is
// not inlined here but collected separately by the driver.
func (s *Section) AppendRow(label string, m scenario.Measurement) {
	var row string
	if m.Success {
		row = formatRow(s.b.format, label,
			fmt.Sprintf("%d", m.DurationMs),
			fmt.Sprintf("%d", m.PeakMemoryMB),
		)
	} else {
		row = formatRow(s.b.format, label, Sentinel, Sentinel)
	}

	s.b.append(row)
}

// End appends the closing delimiter for the section.
func (s *Section) End() {
	switch s.b.format {
	case FormatMarkdown:
		s.b.append("")
	default:
		s.b.append(rstRule(), "")
	}
}

// Render concatenates preamble and sections into the final report text.
func (b *Builder) Render() string {
	return strings.Join(b.lines, "\n")
}

func formatRow(format Format, label, timeCol, ramCol string) string {
	if len(label) > labelWidth {
		label = label[:labelWidth]
	}

	if format == FormatMarkdown {
		return fmt.Sprintf("|%-*s|%*s|%*s|",
			labelWidth, label, timeWidth, timeCol, ramWidth, ramCol)
	}

	return fmt.Sprintf("%-*s %*s %*s",
		labelWidth, label, timeWidth, timeCol, ramWidth, ramCol)
}

func rstRule() string {
	return fmt.Sprintf("%s %s %s",
		strings.Repeat("=", labelWidth),
		strings.Repeat("=", timeWidth),
		strings.Repeat("=", ramWidth),
	)
}
