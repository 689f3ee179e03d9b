// Package input turns the textual process description into process records.
//
// The format is a stream of whitespace separated non-negative integers read
// to EOF and taken pairwise as (arrival, burst). The pid of a process is the
// index of its pair.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/vinhtrinh326/cpusched/internal/process"
)

// DefaultMaxProcesses bounds the process list when no limit is configured.
const DefaultMaxProcesses = 25

// MaxTime bounds the simulated time line. Every process list must be able
// to finish by MaxTime even when its processes run one after another, so
// clock arithmetic in the engine never overflows.
const MaxTime int64 = 1 << 48

var (
	ErrInvalidArgs = errors.New("invalid args")
	ErrEmpty       = errors.New("no processes given")
	ErrMalformed   = errors.New("not an integer")
	ErrOddCount    = errors.New("odd number of values")
	ErrNegative    = errors.New("negative value")
	ErrZeroBurst   = errors.New("burst must be positive")
	ErrTooMany     = errors.New("too many processes")
	ErrUnordered   = errors.New("arrivals out of order")
	ErrTooLarge    = errors.New("schedule exceeds the time limit")
)

// Pair is one (arrival, burst) entry of the input.
type Pair struct {
	Arrival int64 `json:"arrival_time"`
	Burst   int64 `json:"burst_time"`
}

// Open returns a reader over the named file, or over stdin for "" and "-".
// The returned func closes the file.
func Open(args ...string) (io.Reader, func(), error) {
	if len(args) > 1 {
		return nil, nil, fmt.Errorf("%w: at most one process file", ErrInvalidArgs)
	}
	if len(args) == 0 || args[0] == "" || args[0] == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("opening process file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// Parse reads pairs from r and builds the process list. maxProcesses <= 0
// selects DefaultMaxProcesses.
func Parse(r io.Reader, maxProcesses int) ([]process.Process, error) {
	pairs, err := ReadPairs(r)
	if err != nil {
		return nil, err
	}
	return Build(pairs, maxProcesses)
}

// ParseString is Parse over a string.
func ParseString(s string, maxProcesses int) ([]process.Process, error) {
	return Parse(strings.NewReader(s), maxProcesses)
}

// ReadPairs scans whitespace separated integers and groups them in pairs.
func ReadPairs(r io.Reader) ([]Pair, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	var values []int64
	for sc.Scan() {
		tok := sc.Text()
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: value %d %q", ErrMalformed, len(values)+1, tok)
		}
		values = append(values, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading processes: %w", err)
	}

	if len(values)%2 != 0 {
		return nil, fmt.Errorf("%w: got %d, want (arrival, burst) pairs", ErrOddCount, len(values))
	}
	pairs := make([]Pair, 0, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		pairs = append(pairs, Pair{Arrival: values[i], Burst: values[i+1]})
	}
	return pairs, nil
}

// Build validates pairs and turns them into fresh process records.
func Build(pairs []Pair, maxProcesses int) ([]process.Process, error) {
	if maxProcesses <= 0 {
		maxProcesses = DefaultMaxProcesses
	}
	switch {
	case len(pairs) == 0:
		return nil, ErrEmpty
	case len(pairs) > maxProcesses:
		return nil, fmt.Errorf("%w: %d exceeds the limit of %d", ErrTooMany, len(pairs), maxProcesses)
	}

	var horizon int64
	procs := make([]process.Process, len(pairs))
	for pid, p := range pairs {
		if p.Arrival < 0 || p.Burst < 0 {
			return nil, fmt.Errorf("%w: process %d (%d, %d)", ErrNegative, pid, p.Arrival, p.Burst)
		}
		if p.Burst == 0 {
			return nil, fmt.Errorf("%w: process %d", ErrZeroBurst, pid)
		}
		if pid > 0 && p.Arrival < pairs[pid-1].Arrival {
			return nil, fmt.Errorf("%w: process %d arrives at %d before process %d at %d",
				ErrUnordered, pid, p.Arrival, pid-1, pairs[pid-1].Arrival)
		}
		if p.Arrival > MaxTime || p.Burst > MaxTime {
			return nil, fmt.Errorf("%w: process %d (%d, %d) exceeds %d", ErrTooLarge, pid, p.Arrival, p.Burst, MaxTime)
		}
		// horizon is where the processes so far finish when run back to back.
		horizon = max(horizon, p.Arrival) + p.Burst
		if horizon > MaxTime {
			return nil, fmt.Errorf("%w: process %d would finish after %d", ErrTooLarge, pid, MaxTime)
		}
		procs[pid] = process.New(pid, p.Arrival, p.Burst)
	}
	return procs, nil
}

// Format writes procs back in the input format, one pair per line.
func Format(w io.Writer, procs []process.Process) error {
	for _, p := range procs {
		if _, err := fmt.Fprintf(w, "%d %d\n", p.Arrival, p.Burst); err != nil {
			return err
		}
	}
	return nil
}
