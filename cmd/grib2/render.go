package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/geal-ai/grib2"
	"github.com/geal-ai/grib2/internal/tables"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	faintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
)

// isTerminal reports whether w is a terminal; only *os.File can be.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderTable writes rows as a bordered table on a terminal and as tab
// separated lines otherwise.
func renderTable(w io.Writer, headers []string, rows [][]string) error {
	if !isTerminal(w) {
		if _, err := fmt.Fprintln(w, strings.Join(headers, "\t")); err != nil {
			return err
		}
		for _, r := range rows {
			if _, err := fmt.Fprintln(w, strings.Join(r, "\t")); err != nil {
				return err
			}
		}
		return nil
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case rows[row][col] == "-":
				return faintStyle
			default:
				return cellStyle
			}
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parameterLabel names the parameter of m, falling back to its numbers.
func parameterLabel(m grib2.Metadata) string {
	if m.Discipline == nil || m.ParameterCategory == nil || m.ParameterNumber == nil {
		return "-"
	}
	if p, ok := tables.Lookup(*m.Discipline, *m.ParameterCategory, *m.ParameterNumber); ok {
		return fmt.Sprintf("%s [%s]", p.Name, p.Unit)
	}
	return fmt.Sprintf("%d.%d.%d", *m.Discipline, *m.ParameterCategory, *m.ParameterNumber)
}

func levelLabel(s *grib2.Surface) string {
	if s == nil {
		return "-"
	}
	if name, ok := tables.LevelName(s.Type, s.Value()); ok {
		return name
	}
	if s.MissingValue {
		return fmt.Sprintf("type %d", s.Type)
	}
	return fmt.Sprintf("type %d: %g", s.Type, s.Value())
}

func timeLabel(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04Z")
}

func valueLabel[T any](v *T) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}
