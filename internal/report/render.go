// Package report turns a ScanReport into console text and the JSON artifact.
package report

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-isatty"

	"github.com/hamed0406/runnercheck/internal/domain"
)

const (
	detailsWidth = 60
	headerLayout = "2006-01-02 15:04:05"

	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"

	glyphOK   = "✓"
	glyphFail = "✗"
)

type Options struct {
	Color bool
}

// ColorEnabled reports whether f is a terminal that should get ANSI colors.
func ColorEnabled(f *os.File, noColor bool) bool {
	if noColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type align int

const (
	alignLeft align = iota
	alignCenter
)

type column struct {
	title string
	align align
}

var columns = []column{
	{"Category", alignLeft},
	{"Status", alignCenter},
	{"Domain", alignLeft},
	{"Details", alignLeft},
}

// cell is plain text plus an optional color applied after padding, so
// escape codes never count toward column width.
type cell struct {
	lines []string
	color string
}

// Render projects r into the console report. Categories are sorted by name;
// outcomes keep their stored order. The bool is the overall status.
func Render(r *domain.ScanReport, opts Options) (string, bool) {
	cats := make([]domain.CategoryResult, len(r.Categories))
	copy(cats, r.Categories)
	sort.SliceStable(cats, func(i, j int) bool { return cats[i].Category < cats[j].Category })

	allOK := true
	var rows [][]cell
	for _, c := range cats {
		for _, o := range c.Outcomes {
			glyph, color := glyphOK, ansiGreen
			if !o.Success {
				glyph, color = glyphFail, ansiRed
				allOK = false
			}
			rows = append(rows, []cell{
				{lines: []string{c.Category}},
				{lines: []string{glyph}, color: color},
				{lines: []string{o.Domain}},
				{lines: wrap(o.Message, detailsWidth)},
			})
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\nDomain Accessibility Report - %s\n\n", r.StartedAt.Format(headerLayout))
	writeTable(&b, rows, opts.Color)

	overall := glyphOK + " All domains are accessible"
	color := ansiGreen
	if !allOK {
		overall = glyphFail + " Some domains are not accessible"
		color = ansiRed
	}
	fmt.Fprintf(&b, "Overall Status: %s\n", paint(overall, color, opts.Color))
	return b.String(), allOK
}

func writeTable(b *strings.Builder, rows [][]cell, color bool) {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = width(col.title)
	}
	for _, row := range rows {
		for i, c := range row {
			for _, l := range c.lines {
				if w := width(l); w > widths[i] {
					widths[i] = w
				}
			}
		}
	}

	sep := separator(widths)
	b.WriteString(sep)
	b.WriteString("|")
	for i, col := range columns {
		b.WriteString(" " + pad(col.title, widths[i], alignCenter) + " |")
	}
	b.WriteString("\n")
	b.WriteString(sep)

	for _, row := range rows {
		height := 1
		for _, c := range row {
			if len(c.lines) > height {
				height = len(c.lines)
			}
		}
		for ln := 0; ln < height; ln++ {
			b.WriteString("|")
			for i, c := range row {
				text := ""
				if ln < len(c.lines) {
					text = c.lines[ln]
				}
				padded := pad(text, widths[i], columns[i].align)
				if color && c.color != "" && text != "" {
					padded = strings.Replace(padded, text, paint(text, c.color, true), 1)
				}
				b.WriteString(" " + padded + " |")
			}
			b.WriteString("\n")
		}
	}
	b.WriteString(sep)
}

func separator(widths []int) string {
	var b strings.Builder
	b.WriteString("+")
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteString("+")
	}
	b.WriteString("\n")
	return b.String()
}

func pad(s string, w int, a align) string {
	gap := w - width(s)
	if gap <= 0 {
		return s
	}
	if a == alignCenter {
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	}
	return s + strings.Repeat(" ", gap)
}

func paint(s, color string, enabled bool) string {
	if !enabled || color == "" {
		return s
	}
	return color + s + ansiReset
}

func width(s string) int {
	return utf8.RuneCountInString(s)
}

// wrap breaks s on spaces into lines of at most max runes; a single word
// longer than max is split hard.
func wrap(s string, max int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	cur := ""
	for _, w := range words {
		for width(w) > max {
			if cur != "" {
				lines = append(lines, cur)
				cur = ""
			}
			r := []rune(w)
			lines = append(lines, string(r[:max]))
			w = string(r[max:])
		}
		switch {
		case cur == "":
			cur = w
		case width(cur)+1+width(w) <= max:
			cur += " " + w
		default:
			lines = append(lines, cur)
			cur = w
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}
