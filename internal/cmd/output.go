package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Iron-Ham/conclist/internal/stress"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

var (
	primaryColor = lipgloss.Color("#A78BFA") // Purple
	successColor = lipgloss.Color("#10B981") // Green
	warningColor = lipgloss.Color("#F59E0B") // Amber
	errorColor   = lipgloss.Color("#F87171") // Red
	mutedColor   = lipgloss.Color("#9CA3AF") // Gray
)

// maxMessageWidth bounds worker error lines in the text report.
const maxMessageWidth = 120

// truncate shortens s to maxWidth visual columns, adding "..." if truncated.
// Escape sequences and wide characters are accounted for.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth, "...")
}

// terminalWidth returns the column count of w, or 0 when w is not a terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// palette holds the styles for one output stream. With color disabled every
// style renders plain text.
type palette struct {
	title   lipgloss.Style
	label   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
}

// colorEnabled resolves an output.color mode for w.
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		f, ok := w.(*os.File)
		return ok && term.IsTerminal(int(f.Fd()))
	}
}

func newPalette(w io.Writer, color bool) palette {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.TrueColor)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return palette{
		title:   r.NewStyle().Bold(true).Foreground(primaryColor),
		label:   r.NewStyle().Foreground(mutedColor).Width(14),
		success: r.NewStyle().Bold(true).Foreground(successColor),
		warning: r.NewStyle().Foreground(warningColor),
		failure: r.NewStyle().Bold(true).Foreground(errorColor),
		muted:   r.NewStyle().Foreground(mutedColor),
	}
}

// writeReport renders report in format ("text", "json" or "yaml").
func writeReport(w io.Writer, report *stress.Report, format string, p palette) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	default:
		return writeReportText(w, report, p)
	}
}

func writeReportText(w io.Writer, report *stress.Report, p palette) error {
	var sb strings.Builder

	mode := "plain"
	if report.Observable {
		mode = "observable"
	}
	sb.WriteString(p.title.Render("STRESS REPORT"))
	sb.WriteString("\n")
	sb.WriteString(p.muted.Render(strings.Repeat("─", 50)))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%s%s\n", p.label.Render("Run:"), report.RunID)
	fmt.Fprintf(&sb, "%s%s\n", p.label.Render("List:"), mode)
	fmt.Fprintf(&sb, "%s%s\n", p.label.Render("Duration:"), report.Duration.Round(time.Microsecond))

	for _, round := range report.Rounds {
		sb.WriteString("\n")
		status := p.success.Render("PASS")
		if !round.OK() {
			status = p.failure.Render("FAIL")
		}
		fmt.Fprintf(&sb, "Round %d  %s  %s\n", round.Round, status,
			p.muted.Render(fmt.Sprintf("(%d writers, %d readers)", round.Writers, round.Readers)))
		fmt.Fprintf(&sb, "  %s%d / %d\n", p.label.Render("Items:"), round.Actual, round.Expected)
		if round.Missing > 0 || round.Duplicates > 0 {
			fmt.Fprintf(&sb, "  %s%s\n", p.label.Render("Integrity:"),
				p.failure.Render(fmt.Sprintf("%d missing, %d duplicated", round.Missing, round.Duplicates)))
		}
		fmt.Fprintf(&sb, "  %s%d\n", p.label.Render("Traversals:"), round.Traversals)
		if report.Observable {
			fmt.Fprintf(&sb, "  %s%d\n", p.label.Render("Add events:"), round.AddEvents)
			if round.EventMismatches > 0 {
				fmt.Fprintf(&sb, "  %s%s\n", p.label.Render("Events:"),
					p.failure.Render(fmt.Sprintf("%d items not announced exactly once", round.EventMismatches)))
			}
		}
		for _, msg := range round.ReaderErrors {
			fmt.Fprintf(&sb, "  %s\n", p.warning.Render(truncate("reader: "+msg, maxMessageWidth)))
		}
		for _, msg := range round.WriterErrors {
			fmt.Fprintf(&sb, "  %s\n", p.warning.Render(truncate("writer: "+msg, maxMessageWidth)))
		}
		fmt.Fprintf(&sb, "  %s%s\n", p.label.Render("Duration:"), round.Duration.Round(time.Microsecond))
	}

	sb.WriteString("\n")
	if report.OK() {
		sb.WriteString(p.success.Render("All rounds passed"))
	} else {
		sb.WriteString(p.failure.Render(fmt.Sprintf("%d of %d rounds failed", len(report.Failed()), len(report.Rounds))))
	}
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
