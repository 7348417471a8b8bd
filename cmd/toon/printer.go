package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/paularlott/toon/analyze"
)

// printer writes aligned, optionally coloured reports.
type printer struct {
	w     io.Writer
	title func(a ...any) string
	label func(a ...any) string
}

func newPrinter(w io.Writer) *printer {
	return &printer{
		w:     w,
		title: color.New(color.Bold, color.FgCyan).SprintFunc(),
		label: color.New(color.Faint).SprintFunc(),
	}
}

func (p *printer) heading(title string) {
	fmt.Fprintln(p.w, p.title(title))
}

func (p *printer) row(name, value string) {
	fmt.Fprintf(p.w, "  %s %s\n", p.label(fmt.Sprintf("%-18s", name)), value)
}

// percent colours a saving: green above 50%, yellow above 30%, red otherwise.
func (p *printer) percent(v float64) string {
	s := fmt.Sprintf("%.2f%%", v)
	switch {
	case v > 50:
		return color.GreenString(s)
	case v > 30:
		return color.YellowString(s)
	default:
		return color.RedString(s)
	}
}

func (p *printer) recommendation(r analyze.Recommendation) {
	var icon string
	switch r.Level {
	case analyze.Excellent:
		icon = color.GreenString("✓")
	case analyze.Good:
		icon = color.GreenString("→")
	case analyze.Moderate:
		icon = color.YellowString("~")
	case analyze.Important:
		icon = color.MagentaString("!")
	default:
		icon = color.RedString("•")
	}
	fmt.Fprintf(p.w, "  %s %s\n    %s\n", icon, r.Message, r.Action)
}
