// Package render formats relay CLI output, styled when writing to a terminal.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"

	"github.com/papercomputeco/relay/pkg/journal"
	"github.com/papercomputeco/relay/pkg/settings"
)

var (
	keyStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

const urlWidth = 48

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// JSON pretty-prints a decoded value.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Settings writes the settings record as aligned key/value lines.
func Settings(w io.Writer, s settings.Settings) {
	styled := IsTerminal(w)
	rows := [][2]string{
		{"api_url", s.APIURL},
		{"refresh_interval", fmt.Sprintf("%ds", s.RefreshInterval)},
		{"notifications", fmt.Sprintf("%t", s.Notifications)},
		{"dark_mode", fmt.Sprintf("%t", s.DarkMode)},
	}

	for _, row := range rows {
		key := fmt.Sprintf("%-17s", row[0])
		if styled {
			fmt.Fprintln(w, keyStyle.Render(key)+valueStyle.Render(row[1]))
		} else {
			fmt.Fprintln(w, key+row[1])
		}
	}
}

// Error writes err as a single highlighted line.
func Error(w io.Writer, err error) {
	if IsTerminal(w) {
		fmt.Fprintln(w, errorStyle.Render("error: ")+err.Error())
		return
	}
	fmt.Fprintln(w, "error: "+err.Error())
}

// JournalMarkdown renders entries as a markdown table.
func JournalMarkdown(entries []*journal.Entry) string {
	var b strings.Builder
	b.WriteString("| time | method | url | status | kind | duration |\n")
	b.WriteString("|---|---|---|---|---|---|\n")

	for _, e := range entries {
		status := "-"
		if e.Status != 0 {
			status = fmt.Sprintf("%d", e.Status)
		}
		url := e.URL
		if url == "" {
			url = e.Endpoint
		}

		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			e.CreatedAt.Local().Format(time.DateTime),
			e.Method,
			escapeCell(ansi.Truncate(url, urlWidth, "…")),
			status,
			e.Kind,
			e.Duration.Round(time.Millisecond),
		)
	}

	return b.String()
}

// Journal writes the entries, rendered with glamour on a terminal. dark
// selects the style matching the dark_mode setting.
func Journal(w io.Writer, entries []*journal.Entry, dark bool) error {
	md := JournalMarkdown(entries)
	if !IsTerminal(w) {
		_, err := io.WriteString(w, md)
		return err
	}

	style := "light"
	if dark {
		style = "dark"
	}

	out, err := glamour.Render(md, style)
	if err != nil {
		return fmt.Errorf("could not render journal: %w", err)
	}

	_, err = io.WriteString(w, out)
	return err
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
