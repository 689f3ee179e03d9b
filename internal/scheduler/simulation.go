package scheduler

import (
	"fmt"
	"math"

	"github.com/vinhtrinh326/cpusched/internal/process"
)

// noArrival stands in for the next arrival once every process has arrived,
// so the runner's own completion always comes first.
const noArrival int64 = math.MaxInt64

// simulation is the state of a single run of one discipline. It is built
// from a private copy of the input and discarded afterwards.
type simulation struct {
	*HookableBase

	algorithm Algorithm
	quantum   int64

	procs []process.Process
	queue *process.Queue

	clock     int64
	running   int
	remaining int

	// expired is set when the runner's round-robin slice ran out at the
	// current event.
	expired bool
}

func newSimulation(alg Algorithm, procs []process.Process, quantum int64, hooks []Hook) *simulation {
	s := &simulation{
		HookableBase: NewHookableBase(),
		algorithm:    alg,
		quantum:      quantum,
		procs:        process.Clone(procs),
		queue:        process.NewQueue(len(procs)),
		remaining:    len(procs) - 1,
	}
	for i := range s.procs {
		s.procs[i].Quantum = quantum
	}
	for _, h := range hooks {
		s.AcceptHook(h)
	}
	return s
}

func (s *simulation) emit(pos *HookPos, pid int) {
	s.InvokeHook(HookCtx{
		Algorithm: s.algorithm,
		Pos:       pos,
		Now:       s.clock,
		Process:   s.procs[pid],
		Queue:     s.queue.Snapshot(),
	})
}

func (s *simulation) runner() *process.Process {
	return &s.procs[s.running]
}

func (s *simulation) advanceTo(t int64) {
	if t < s.clock {
		panic(fmt.Sprintf("%s: clock moving backwards from %d to %d", s.algorithm, s.clock, t))
	}
	s.clock = t
}

// arrive moves a not-yet-arrived process into the ready state.
func (s *simulation) arrive(pid int) {
	s.procs[pid].State = process.Ready
	s.emit(HookPosArrival, pid)
}

// admit enqueues every not-yet-arrived process whose arrival time has been
// reached, in pid order, and returns how many it admitted.
func (s *simulation) admit() int {
	n := 0
	for pid := range s.procs {
		p := &s.procs[pid]
		if p.State != process.NotArrived || p.Arrival > s.clock {
			continue
		}
		s.arrive(pid)
		s.queue.Enqueue(pid)
		n++
	}
	return n
}

// nextNotArrived returns the earliest arriving process that has not been
// admitted; ties go to the lower pid.
func (s *simulation) nextNotArrived() (int, bool) {
	found := -1
	for pid := range s.procs {
		p := &s.procs[pid]
		if p.State != process.NotArrived {
			continue
		}
		if found < 0 || p.Arrival < s.procs[found].Arrival {
			found = pid
		}
	}
	return found, found >= 0
}

func (s *simulation) nextArrival() int64 {
	pid, ok := s.nextNotArrived()
	if !ok {
		return noArrival
	}
	return s.procs[pid].Arrival
}

// dispatch makes pid the runner at the current clock.
func (s *simulation) dispatch(pid int) {
	p := &s.procs[pid]
	if p.State == process.Done || p.State == process.Running {
		panic(fmt.Sprintf("%s: dispatching process %d in state %s", s.algorithm, pid, p.State))
	}
	if !p.Started {
		p.Start = s.clock
		p.Started = true
	} else {
		p.LatestStart = s.clock
		p.Resumed = true
	}
	p.State = process.Running
	s.running = pid
	s.emit(HookPosDispatch, pid)
}

// remainingNow is the runner's remaining burst at the current clock.
func (s *simulation) remainingNow() int64 {
	p := s.runner()
	left := p.Remaining - (s.clock - p.EffectiveStart())
	if left < 0 {
		panic(fmt.Sprintf("%s: process %d ran %d past its burst", s.algorithm, p.PID, -left))
	}
	return left
}

// checkpoint stores the runner's remaining burst and makes the current clock
// its resume point.
func (s *simulation) checkpoint() {
	p := s.runner()
	p.Remaining = s.remainingNow()
	p.LatestStart = s.clock
	p.Resumed = true
}

// finish records the completion of the runner. The runner must have no
// burst left at the current clock.
func (s *simulation) finish() {
	if left := s.remainingNow(); left != 0 {
		panic(fmt.Sprintf("%s: completing process %d with %d burst left", s.algorithm, s.running, left))
	}
	p := s.runner()
	p.Remaining = 0
	p.End = s.clock
	p.State = process.Done
	s.emit(HookPosComplete, s.running)
}

func (s *simulation) completeRunner() {
	s.finish()
	s.remaining--
}

// runToCompletion dispatches pid and runs it without interruption.
func (s *simulation) runToCompletion(pid int) {
	s.dispatch(pid)
	p := s.runner()
	if p.Start > p.Arrival {
		p.Wait += p.Start - p.Arrival
	}
	s.advanceTo(s.clock + p.Remaining)
	s.finish()
}

// startFirst makes process 0 the runner at its arrival time.
func (s *simulation) startFirst() {
	s.clock = s.procs[0].Arrival
	s.arrive(0)
	s.dispatch(0)
}

// runFirstToCompletion runs process 0 from its arrival to its end.
func (s *simulation) runFirstToCompletion() {
	s.clock = s.procs[0].Arrival
	s.arrive(0)
	s.runToCompletion(0)
}

// settleWaits closes every open waiting interval at the current clock.
func (s *simulation) settleWaits() {
	for i := range s.procs {
		s.procs[i].SettleWait(s.clock)
	}
}

// markWaiting opens a waiting interval for every queued process.
func (s *simulation) markWaiting() {
	s.queue.Each(func(pid int) {
		s.procs[pid].BeginWaiting(s.clock)
	})
}

// runningToWaiting sends an unfinished runner to the back of the queue.
func (s *simulation) runningToWaiting() {
	p := s.runner()
	if p.State == process.Done {
		return
	}
	p.State = process.Ready
	p.BeginWaiting(s.clock)
	s.queue.Enqueue(s.running)
	s.emit(HookPosPreempt, s.running)
}

// waitingToRunning promotes the head of the queue.
func (s *simulation) waitingToRunning() {
	pid, ok := s.queue.Dequeue()
	if !ok {
		panic(fmt.Sprintf("%s: context switch at %d with an empty ready queue", s.algorithm, s.clock))
	}
	s.dispatch(pid)
}

func (s *simulation) contextSwitch() {
	s.runningToWaiting()
	s.waitingToRunning()
}

// forceStart jumps to the next process that has not arrived and runs it.
// It is only used once the runner has completed and the queue is empty.
func (s *simulation) forceStart() {
	if s.runner().State != process.Done {
		panic(fmt.Sprintf("%s: force start while process %d is still running", s.algorithm, s.running))
	}
	pid, ok := s.nextNotArrived()
	if !ok {
		panic(fmt.Sprintf("%s: no process left to start with %d outstanding", s.algorithm, s.remaining))
	}
	s.advanceTo(s.procs[pid].Arrival)
	s.arrive(pid)
	s.dispatch(pid)
}

// closeOut runs the last process to completion after the event loop.
func (s *simulation) closeOut() {
	if !s.queue.IsEmpty() {
		panic(fmt.Sprintf("%s: %d processes still queued at close-out", s.algorithm, s.queue.Len()))
	}
	p := s.runner()
	if p.State != process.Running {
		panic(fmt.Sprintf("%s: close-out of process %d in state %s", s.algorithm, p.PID, p.State))
	}
	s.advanceTo(s.clock + p.Remaining)
	s.finish()
}
