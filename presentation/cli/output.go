package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"cocbot-go/core/event"
	"cocbot-go/core/state"
)

var (
	colorPrimary = lipgloss.Color("#64b5f6")
	colorSuccess = lipgloss.Color("#66bb6a")
	colorError   = lipgloss.Color("#ef5350")
	colorWarning = lipgloss.Color("#fff59d")
	colorMuted   = lipgloss.Color("#888888")
)

var (
	styleHeader  = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess)
	styleError   = lipgloss.NewStyle().Foreground(colorError)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleBold    = lipgloss.NewStyle().Bold(true)
)

// setNoColor replaces every style with an unstyled one.
func setNoColor() {
	plain := lipgloss.NewStyle()
	styleHeader = plain
	styleSuccess = plain
	styleError = plain
	styleWarning = plain
	styleMuted = plain
	styleBold = plain
}

// colorEnabled reports whether f is a terminal that should get styled output.
func colorEnabled(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// table renders aligned columns with a styled header.
type table struct {
	headers []string
	rows    [][]string
	widths  []int
}

func newTable(headers ...string) *table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &table{headers: headers, widths: widths}
}

func (t *table) addRow(values ...string) {
	row := make([]string, len(t.headers))
	for i := range t.headers {
		if i < len(values) {
			row[i] = values[i]
		}
		t.widths[i] = max(t.widths[i], len(row[i]))
	}
	t.rows = append(t.rows, row)
}

func (t *table) render() string {
	var sb strings.Builder
	for i, h := range t.headers {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(styleHeader.Render(pad(h, t.widths[i])))
	}
	sb.WriteString("\n")
	for i, w := range t.widths {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(styleMuted.Render(strings.Repeat("─", w)))
	}
	sb.WriteString("\n")
	for _, row := range t.rows {
		for i, cell := range row {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(pad(cell, t.widths[i]))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// eventPrinter writes bot events as user-facing lines.
type eventPrinter struct {
	w io.Writer
}

func (p *eventPrinter) handle(e event.Event) {
	switch e := e.(type) {
	case *event.LogMessage:
		fmt.Fprintln(p.w, styleLogLine(e.Message))
	case *event.StateChanged:
		if e.NewState == state.StateIdle || e.NewState == state.StateStopping {
			fmt.Fprintln(p.w, styleMuted.Render(fmt.Sprintf("[%s]", e.NewState)))
		}
	case *event.RecordingSaved:
		fmt.Fprintln(p.w, styleSuccess.Render(fmt.Sprintf("Saved %d actions to %s", e.Actions, e.Path)))
	case *event.BotStopped:
		msg := fmt.Sprintf("Stopped (%s)", e.Reason)
		if e.Error != nil {
			fmt.Fprintln(p.w, styleError.Render(msg+": "+e.Error.Error()))
			return
		}
		fmt.Fprintln(p.w, styleBold.Render(msg))
	}
}

// styleLogLine colors a loop log line by its prefix.
func styleLogLine(msg string) string {
	switch {
	case strings.HasPrefix(msg, "ATTACK!"), strings.HasPrefix(msg, "Wall upgraded"):
		return styleSuccess.Render(msg)
	case strings.HasPrefix(msg, "Error"):
		return styleError.Render(msg)
	case strings.HasPrefix(msg, "Button not set"), strings.HasPrefix(msg, "Sequence not defined"),
		strings.HasPrefix(msg, "Upgrade skipped"), strings.HasPrefix(msg, "No target"):
		return styleWarning.Render(msg)
	case strings.HasPrefix(msg, "Next ("):
		return styleMuted.Render(msg)
	case strings.HasPrefix(msg, "==="):
		return styleHeader.Render(msg)
	default:
		return msg
	}
}
