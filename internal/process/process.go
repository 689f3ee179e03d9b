// Package process holds the per-process records the scheduling engine
// mutates and the ready queue it dispatches from.
package process

import "fmt"

// State is the lifecycle position of a process within one simulation run.
type State int

const (
	// NotArrived processes have not been admitted by the engine yet.
	NotArrived State = iota
	// Ready processes have arrived and are waiting to be dispatched.
	Ready
	// Running is held by at most one process at a time.
	Running
	// Done processes have used up their burst and never run again.
	Done
)

func (s State) String() string {
	switch s {
	case NotArrived:
		return "not-arrived"
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Done:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Process is one simulated job. Arrival and Burst are inputs; every other
// field is written by the engine while a discipline runs.
type Process struct {
	PID     int
	Arrival int64
	Burst   int64

	Remaining int64
	State     State

	Start       int64
	Started     bool
	LatestStart int64
	Resumed     bool
	End         int64

	Wait         int64
	WaitingSince int64
	Waiting      bool

	// Quantum is the time left in the current round-robin slice.
	Quantum int64
}

// New builds a process that has not been scheduled yet.
func New(pid int, arrival, burst int64) Process {
	return Process{
		PID:       pid,
		Arrival:   arrival,
		Burst:     burst,
		Remaining: burst,
	}
}

// EffectiveStart is the instant from which Remaining was last accurate.
func (p *Process) EffectiveStart() int64 {
	if p.Resumed {
		return p.LatestStart
	}
	return p.Start
}

// BeginWaiting opens a waiting interval at now.
func (p *Process) BeginWaiting(now int64) {
	p.WaitingSince = now
	p.Waiting = true
}

// SettleWait closes an open waiting interval at now and adds its length to
// Wait. It reports whether an interval was open.
func (p *Process) SettleWait(now int64) bool {
	if !p.Waiting {
		return false
	}
	if now < p.WaitingSince {
		panic(fmt.Sprintf("process %d: settling wait at %d before it began at %d",
			p.PID, now, p.WaitingSince))
	}
	p.Wait += now - p.WaitingSince
	p.WaitingSince = 0
	p.Waiting = false
	return true
}

// ResponseTime is the interval between arrival and first dispatch.
func (p *Process) ResponseTime() int64 { return p.Start - p.Arrival }

// TurnaroundTime is the interval between arrival and completion.
func (p *Process) TurnaroundTime() int64 { return p.End - p.Arrival }

// Clone returns an independent copy of the list, reset to its input form.
func Clone(procs []Process) []Process {
	out := make([]Process, len(procs))
	for i := range procs {
		out[i] = New(procs[i].PID, procs[i].Arrival, procs[i].Burst)
	}
	return out
}
