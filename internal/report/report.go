// Package report renders scheduling summaries for people and programs.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/vinhtrinh326/cpusched/internal/metrics"
	"github.com/vinhtrinh326/cpusched/internal/scheduler"
)

var ErrUnknownFormat = errors.New("unknown report format")

const separator = "***********************************************"

// ParseFormat normalizes a format name; an empty name selects summary.
func ParseFormat(name string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(name)); f {
	case "", "summary":
		return "summary", nil
	case "table", "json":
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Write renders summaries in the named format: summary, table or json.
func Write(w io.Writer, format string, summaries []metrics.Summary) error {
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}
	switch f {
	case "table":
		return WriteTable(w, summaries)
	case "json":
		return WriteJSON(w, summaries)
	}
	return WriteSummary(w, summaries)
}

// WriteSummary prints the three averages of every discipline between two
// separator lines.
func WriteSummary(w io.Writer, summaries []metrics.Summary) error {
	if _, err := fmt.Fprintf(w, "\n%s\n", separator); err != nil {
		return err
	}
	for _, s := range summaries {
		_, err := fmt.Fprintf(w, "\n%s:\n"+
			"\tAVG Response Time: %.2f\n"+
			"\tAVG Turnaround Time: %.2f\n"+
			"\tAVG Wait Time: %.2f\n",
			s.Title, s.AverageResponseTime, s.AverageTurnAroundTime, s.AverageWaitingTime)
		if err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%s\n", separator)
	return err
}

// WriteTable prints a banner, a Gantt line and a per-process table for
// every discipline. It stops at the first failed write.
func WriteTable(w io.Writer, summaries []metrics.Summary) error {
	ew := &errWriter{w: w}
	for _, s := range summaries {
		outputTitle(ew, s.Title)
		outputGantt(ew, s.Gantt)
		outputSchedule(ew, s)
		if ew.err != nil {
			return ew.err
		}
	}
	return nil
}

// errWriter remembers the first write error and drops everything after it.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	ew.err = err
	return n, err
}

// WriteJSON encodes summaries as an indented JSON array.
func WriteJSON(w io.Writer, summaries []metrics.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}

func outputTitle(w io.Writer, title string) {
	_, _ = fmt.Fprintln(w, strings.Repeat("-", len(title)*2))
	_, _ = fmt.Fprintln(w, strings.Repeat(" ", len(title)/2), title)
	_, _ = fmt.Fprintln(w, strings.Repeat("-", len(title)*2))
}

// outputGantt draws one cell per slice with the slice boundaries beneath.
// A gap between two slices is drawn as an idle cell.
func outputGantt(w io.Writer, gantt []scheduler.TimeSlice) {
	type cell struct {
		label       string
		start, stop int64
	}
	cells := make([]cell, 0, len(gantt))
	for i, ts := range gantt {
		if i > 0 && ts.Start > gantt[i-1].Stop {
			cells = append(cells, cell{label: "idle", start: gantt[i-1].Stop, stop: ts.Start})
		}
		cells = append(cells, cell{label: fmt.Sprint(ts.PID), start: ts.Start, stop: ts.Stop})
	}

	_, _ = fmt.Fprintln(w, "Gantt schedule")
	_, _ = fmt.Fprint(w, "|")
	for _, c := range cells {
		padding := strings.Repeat(" ", (8-len(c.label))/2)
		_, _ = fmt.Fprint(w, padding, c.label, padding, "|")
	}
	_, _ = fmt.Fprintln(w)
	for i, c := range cells {
		_, _ = fmt.Fprint(w, fmt.Sprint(c.start), "\t")
		if len(cells)-1 == i {
			_, _ = fmt.Fprint(w, fmt.Sprint(c.stop))
		}
	}
	_, _ = fmt.Fprintf(w, "\n\n")
}

func outputSchedule(w io.Writer, s metrics.Summary) {
	rows := make([][]string, len(s.Details))
	for i, d := range s.Details {
		rows[i] = []string{
			fmt.Sprint(d.PID),
			fmt.Sprint(d.Arrival),
			fmt.Sprint(d.Burst),
			fmt.Sprint(d.Start),
			fmt.Sprint(d.End),
			fmt.Sprint(d.ResponseTime),
			fmt.Sprint(d.WaitingTime),
			fmt.Sprint(d.TurnAroundTime),
		}
	}

	_, _ = fmt.Fprintln(w, "Schedule table")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Arrival", "Burst", "Start", "End", "Response", "Wait", "Turnaround"})
	table.AppendBulk(rows)
	table.SetFooter([]string{"", "", "",
		fmt.Sprintf("Makespan\n%d", s.Makespan),
		fmt.Sprintf("Throughput\n%.2f/t", s.Throughput),
		fmt.Sprintf("Average\n%.2f", s.AverageResponseTime),
		fmt.Sprintf("Average\n%.2f", s.AverageWaitingTime),
		fmt.Sprintf("Average\n%.2f", s.AverageTurnAroundTime)})
	table.Render()
	_, _ = fmt.Fprintln(w)
}
