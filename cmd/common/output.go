package common

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"gitsummary/pkg/git"
)

type Output struct {
	w       io.Writer
	format  Format
	colors  bool
	encoder *json.Encoder
	closer  io.Closer
}

func NewOutput(w io.Writer, format Format, colors bool) (*Output, error) {
	switch format {
	case FormatTable, FormatJSON:
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
	return &Output{w: w, format: format, colors: colors, encoder: json.NewEncoder(w)}, nil
}

func (o *Output) Write(r *Record) error {
	if o.format == FormatJSON {
		return o.encoder.Encode(r)
	}
	return o.writeTable(r)
}

func (o *Output) Close() error {
	if o.closer == nil {
		return nil
	}
	err := o.closer.Close()
	o.closer = nil
	return err
}

func (o *Output) writeTable(r *Record) error {
	bold, red := fmt.Sprint, fmt.Sprint
	if o.colors {
		bold = color.New(color.Bold).SprintFunc()
		red = color.New(color.FgRed).SprintFunc()
	}

	if r.Failed() {
		for _, e := range r.Error {
			if _, err := fmt.Fprintf(o.w, "%s %s\n", red("✗"), e.Message); err != nil {
				return err
			}
		}
		return nil
	}
	if r.Report == nil {
		return nil
	}
	report := r.Report

	if _, err := fmt.Fprintf(o.w, "\n%s\n\n", bold("=== Git Repository Analysis ===")); err != nil {
		return err
	}
	summary := [][]string{
		{"Repository", report.RepositoryPath},
		{"Branches", strconv.Itoa(len(report.Branches))},
		{"Commits", strconv.Itoa(report.CommitCount)},
		{"Contributors", strconv.Itoa(len(report.Contributors))},
		{"Files", strconv.Itoa(report.FileCount)},
	}
	if err := o.renderTable(nil, summary, tw.AlignLeft); err != nil {
		return err
	}

	if len(report.Branches) > 0 {
		if _, err := fmt.Fprintf(o.w, "\n%s\n", bold("Branches:")); err != nil {
			return err
		}
		for _, branch := range report.Branches {
			if _, err := fmt.Fprintf(o.w, "  %s\n", branch); err != nil {
				return err
			}
		}
	}

	if len(report.Contributors) > 0 {
		if _, err := fmt.Fprintf(o.w, "\n%s\n", bold("Contributors:")); err != nil {
			return err
		}
		if err := o.renderTable([]string{"Author", "Commits"}, contributorRows(report.Contributors), tw.AlignRight); err != nil {
			return err
		}
	}
	return nil
}

func (o *Output) renderTable(headers []string, data [][]string, align tw.Align) error {
	table := tablewriter.NewWriter(o.w)
	defer func() { _ = table.Close() }()

	if len(headers) > 0 {
		table.Header(headers)
	}
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = align
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func contributorRows(tally git.Tally) [][]string {
	var rows [][]string
	for _, c := range tally.Sorted() {
		rows = append(rows, []string{c.Name, strconv.Itoa(c.Commits)})
	}
	return rows
}
