// Package scheduler is a discrete-event engine that evaluates CPU
// scheduling disciplines over a fixed list of processes.
//
// Every run works on its own copy of the input, so the same list can be
// handed to any number of runs, in any order, with identical results.
package scheduler

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/vinhtrinh326/cpusched/internal/process"
)

// DefaultQuantum is the round-robin time slice used when none is configured.
const DefaultQuantum int64 = 100

var (
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
	ErrNoProcesses      = errors.New("no processes to schedule")
	ErrInvalidQuantum   = errors.New("quantum must be positive")
	ErrTimeOverflow     = errors.New("schedule does not fit the clock")
)

// Algorithm identifies a scheduling discipline.
type Algorithm string

const (
	FCFS Algorithm = "fcfs"
	SJF  Algorithm = "sjf"
	SRTF Algorithm = "srtf"
	RR   Algorithm = "rr"
)

// Algorithms lists every discipline in the order reports present them.
var Algorithms = []Algorithm{FCFS, SJF, SRTF, RR}

var drivers = map[Algorithm]func(*simulation){
	FCFS: (*simulation).fcfs,
	SJF:  (*simulation).sjf,
	SRTF: (*simulation).srtf,
	RR:   (*simulation).rr,
}

// ParseAlgorithm maps a case-insensitive name to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	alg := Algorithm(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := drivers[alg]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
	return alg, nil
}

// Title is the human readable name of the discipline.
func (a Algorithm) Title(quantum int64) string {
	switch a {
	case FCFS:
		return "First Come, First Serve"
	case SJF:
		return "Shortest Job First"
	case SRTF:
		return "Shortest Remaining Time First"
	case RR:
		return fmt.Sprintf("Round Robin (w/ quantum %d)", quantum)
	}
	return string(a)
}

// Result is the outcome of one discipline over one process list.
type Result struct {
	Algorithm Algorithm
	Quantum   int64
	Processes []process.Process
	Slices    []TimeSlice
}

// Title is the title of the discipline that produced the result.
func (r Result) Title() string {
	return r.Algorithm.Title(r.Quantum)
}

// Simulator runs disciplines with a fixed quantum and a set of hooks.
// It holds no per-run state and is safe for concurrent use as long as the
// hooks are.
type Simulator struct {
	quantum int64
	hooks   []Hook
}

// NewSimulator creates a Simulator. A quantum of zero selects
// DefaultQuantum.
func NewSimulator(quantum int64, hooks ...Hook) *Simulator {
	if quantum == 0 {
		quantum = DefaultQuantum
	}
	return &Simulator{quantum: quantum, hooks: hooks}
}

// Quantum returns the round-robin slice length.
func (s *Simulator) Quantum() int64 { return s.quantum }

// Run evaluates alg over procs. The processes must be ordered by arrival;
// procs itself is never modified.
func (s *Simulator) Run(alg Algorithm, procs []process.Process) (Result, error) {
	driver, ok := drivers[alg]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}
	if len(procs) == 0 {
		return Result{}, ErrNoProcesses
	}
	if s.quantum <= 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidQuantum, s.quantum)
	}
	if err := checkHorizon(procs); err != nil {
		return Result{}, err
	}

	gantt := &ganttRecorder{}
	hooks := make([]Hook, 0, len(s.hooks)+1)
	hooks = append(hooks, s.hooks...)
	hooks = append(hooks, gantt)

	sim := newSimulation(alg, procs, s.quantum, hooks)
	driver(sim)

	return Result{
		Algorithm: alg,
		Quantum:   s.quantum,
		Processes: sim.procs,
		Slices:    gantt.slices,
	}, nil
}

// checkHorizon makes sure the processes can finish back to back without
// the clock overflowing.
func checkHorizon(procs []process.Process) error {
	var horizon int64
	for _, p := range procs {
		if p.Arrival < 0 || p.Burst < 0 {
			return fmt.Errorf("%w: process %d has negative timing", ErrTimeOverflow, p.PID)
		}
		horizon = max(horizon, p.Arrival)
		if horizon > math.MaxInt64-p.Burst {
			return fmt.Errorf("%w: process %d would finish past %d", ErrTimeOverflow, p.PID, int64(math.MaxInt64))
		}
		horizon += p.Burst
	}
	return nil
}

// RunAll evaluates every discipline in Algorithms order.
func (s *Simulator) RunAll(procs []process.Process) ([]Result, error) {
	return s.RunEach(Algorithms, procs)
}

// RunEach evaluates the given disciplines in order, each against a fresh
// copy of procs.
func (s *Simulator) RunEach(algs []Algorithm, procs []process.Process) ([]Result, error) {
	results := make([]Result, 0, len(algs))
	for _, alg := range algs {
		res, err := s.Run(alg, procs)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}
