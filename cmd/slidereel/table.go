package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ivlev/slidereel/internal/show"
	"github.com/ivlev/slidereel/internal/timeline"
)

// column is one table column. Seconds columns are right-aligned.
type column struct {
	header  string
	seconds bool
}

// renderTable draws rows under cols. A non-nil footer is drawn below a rule.
func renderTable(cols []column, rows [][]string, footer []string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Footer = text.FormatDefault // keep "s" units lowercase

	header := make(table.Row, len(cols))
	configs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		header[i] = c.header
		configs[i] = table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft}
		if c.seconds {
			configs[i].Align = text.AlignRight
			configs[i].AlignFooter = text.AlignRight
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		tw.AppendRow(toRow(row, len(cols)))
	}
	if footer != nil {
		tw.AppendFooter(toRow(footer, len(cols)))
	}
	return tw.Render()
}

func toRow(cells []string, n int) table.Row {
	r := make(table.Row, n)
	for i := range r {
		if i < len(cells) {
			r[i] = cells[i]
		} else {
			r[i] = ""
		}
	}
	return r
}

// planTable lays out one row per scene and the show total as footer. Delta
// is scheduled minus target, marked "over" when it falls outside tolerance.
func planTable(report *show.Report, tolerance float64) string {
	cols := []column{
		{header: "#", seconds: true},
		{header: "Scene"},
		{header: "Start", seconds: true},
		{header: "Duration", seconds: true},
		{header: "Target", seconds: true},
		{header: "Delta", seconds: true},
		{header: "Bumper"},
	}

	rows := make([][]string, 0, len(report.Scenes))
	for _, sc := range report.Scenes {
		target, delta := "-", "-"
		if sc.Target > 0 {
			b := timeline.Budget{Scene: sc.Name, Target: sc.Target, Scheduled: sc.Duration, Tolerance: tolerance}
			target = seconds(sc.Target)
			delta = fmt.Sprintf("%+.2fs", b.Delta())
			if b.OK() {
				delta += " ok"
			} else {
				delta += " over"
			}
		}
		bumper := ""
		if sc.Bumper != "" {
			bumper = fmt.Sprintf("%s (%s)", sc.Bumper, seconds(sc.BumperDuration))
		}
		rows = append(rows, []string{
			strconv.Itoa(sc.Index + 1),
			sc.Name,
			seconds(sc.Start),
			seconds(sc.Duration),
			target,
			delta,
			bumper,
		})
	}
	footer := []string{"", "total", "", seconds(report.Total)}
	return renderTable(cols, rows, footer)
}
