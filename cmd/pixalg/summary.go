package main

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	nameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0A0A0"))
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F5F"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// printer formats numbers with digit grouping.
var printer = message.NewPrinter(language.English)

// formatValue renders a sample value. Integral values are printed
// without a fraction.
func formatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "null"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case v == math.Trunc(v) && math.Abs(v) < 1e15:
		return printer.Sprintf("%d", int64(v))
	}
	return printer.Sprintf("%.6f", v)
}

// renderResult returns the summary box of one successful run.
func renderResult(r *result) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(r.File))
	b.WriteString("\n")
	b.WriteString(printer.Sprintf("%d pixels in %s", r.Pixels, r.Elapsed.Round(time.Millisecond).String()))
	for _, v := range r.Vars {
		fmt.Fprintf(&b, "\n%s = %s", nameStyle.Render(v.Name), formatValue(v.Value))
	}
	for _, out := range r.Outputs {
		fmt.Fprintf(&b, "\n%s %s", nameStyle.Render("wrote"), out)
	}
	return boxStyle.Render(b.String())
}

// renderFailure returns the summary line of a failed run.
func renderFailure(file string, err error) string {
	return errStyle.Render("FAILED") + " " + file + ": " + err.Error()
}

func writeSummary(w io.Writer, files []string, results []*result, errs []error) {
	for i, file := range files {
		if errs[i] != nil {
			fmt.Fprintln(w, renderFailure(file, errs[i]))
			continue
		}
		if results[i] != nil {
			fmt.Fprintln(w, renderResult(results[i]))
		}
	}
}
