package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinhtrinh326/cpusched/internal/input"
	"github.com/vinhtrinh326/cpusched/internal/metrics"
	"github.com/vinhtrinh326/cpusched/internal/scheduler"
)

func summaries(t *testing.T, in string) []metrics.Summary {
	t.Helper()
	procs, err := input.ParseString(in, 0)
	require.NoError(t, err)
	results, err := scheduler.NewSimulator(0).RunAll(procs)
	require.NoError(t, err)
	return metrics.SummarizeAll(results)
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, summaries(t, "0 8 1 4 2 9 3 5")))

	out := buf.String()
	assert.Contains(t, out, "\nFirst Come, First Serve:\n"+
		"\tAVG Response Time: 8.75\n"+
		"\tAVG Turnaround Time: 15.25\n"+
		"\tAVG Wait Time: 8.75\n")
	assert.Contains(t, out, "\nShortest Remaining Time First:\n"+
		"\tAVG Response Time: 4.25\n"+
		"\tAVG Turnaround Time: 13.00\n"+
		"\tAVG Wait Time: 6.50\n")
	assert.Contains(t, out, "Round Robin (w/ quantum 100):")
	assert.Equal(t, 2, strings.Count(out, separator))
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, summaries(t, "0 5 10 3")))

	out := buf.String()
	assert.Contains(t, out, "Shortest Job First")
	assert.Contains(t, out, "Gantt schedule")
	assert.Contains(t, out, "|   0   |  idle  |   1   |")
	assert.Contains(t, out, "0\t5\t10\t13")
	assert.Contains(t, out, "TURNAROUND")
	assert.Contains(t, out, "0.15/T")
	assert.Equal(t, 4, strings.Count(out, "Schedule table"))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, summaries(t, "0 8 1 4")))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 4)
	assert.Equal(t, "srtf", got[2]["algorithm"])
	assert.Equal(t, 2.0, got[2]["average_waiting_time"])
	assert.Equal(t, 100.0, got[3]["quantum"])
	assert.NotContains(t, got[0], "quantum")
	assert.Len(t, got[2]["gantt"], 3)
}

func TestWrite_Format(t *testing.T) {
	s := summaries(t, "0 1")

	for _, format := range []string{"", "summary", "TABLE", "json"} {
		var buf bytes.Buffer
		assert.NoError(t, Write(&buf, format, s), format)
		assert.NotZero(t, buf.Len(), format)
	}

	assert.ErrorIs(t, Write(&bytes.Buffer{}, "xml", s), ErrUnknownFormat)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, "summary", f)

	f, err = ParseFormat(" Table ")
	require.NoError(t, err)
	assert.Equal(t, "table", f)

	_, err = ParseFormat("csv")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

// limitWriter accepts n bytes and fails afterwards.
type limitWriter struct {
	n int
}

var errFull = errors.New("writer full")

func (l *limitWriter) Write(p []byte) (int, error) {
	if len(p) > l.n {
		written := l.n
		l.n = 0
		return written, errFull
	}
	l.n -= len(p)
	return len(p), nil
}

func TestWriteTable_PropagatesWriteErrors(t *testing.T) {
	s := summaries(t, "0 8 1 4")

	for _, limit := range []int{0, 10, 200, 1500} {
		err := WriteTable(&limitWriter{n: limit}, s)
		assert.ErrorIs(t, err, errFull, "limit %d", limit)
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, s))
}
