package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinhtrinh326/cpusched/internal/process"
)

func TestSimulation_SwitchWithEmptyQueuePanics(t *testing.T) {
	s := newSimulation(SRTF, procs(0, 4, 9, 2), DefaultQuantum, nil)
	s.startFirst()
	s.advanceTo(4)
	s.completeRunner()

	assert.Panics(t, func() { s.contextSwitch() })
}

func TestSimulation_CloseOutWithQueuedProcessPanics(t *testing.T) {
	s := newSimulation(RR, procs(0, 4, 0, 2), DefaultQuantum, nil)
	s.startFirst()
	require.Equal(t, 1, s.admit())

	assert.Panics(t, func() { s.closeOut() })
}

func TestSimulation_CompletingEarlyPanics(t *testing.T) {
	s := newSimulation(SRTF, procs(0, 4), DefaultQuantum, nil)
	s.startFirst()
	s.advanceTo(3)

	assert.Panics(t, func() { s.completeRunner() })
}

func TestSimulation_ClockNeverMovesBack(t *testing.T) {
	s := newSimulation(FCFS, procs(0, 4), DefaultQuantum, nil)
	s.advanceTo(5)

	assert.Panics(t, func() { s.advanceTo(4) })
}

func TestSimulation_AdmitIsOncePerProcess(t *testing.T) {
	s := newSimulation(RR, procs(0, 4, 1, 2, 1, 3, 9, 1), DefaultQuantum, nil)
	s.startFirst()
	s.advanceTo(1)

	assert.Equal(t, 2, s.admit())
	assert.Equal(t, 0, s.admit())
	assert.Equal(t, []int{1, 2}, s.queue.Snapshot())
	assert.Equal(t, int64(9), s.nextArrival())
}

func TestSimulation_ForceStartJumpsToNextArrival(t *testing.T) {
	s := newSimulation(SRTF, procs(0, 2, 7, 3), DefaultQuantum, nil)
	s.startFirst()
	s.advanceTo(2)
	s.completeRunner()

	s.forceStart()

	assert.Equal(t, int64(7), s.clock)
	assert.Equal(t, 1, s.running)
	assert.Equal(t, process.Running, s.procs[1].State)
	assert.Equal(t, int64(7), s.procs[1].Start)
	assert.Equal(t, noArrival, s.nextArrival())
}

func TestByBurst_IsPure(t *testing.T) {
	list := procs(0, 9, 0, 4, 0, 7, 0, 4)
	candidates := []int{0, 1, 2, 3}

	ordered := byBurst(list, candidates)

	assert.Equal(t, []int{1, 3, 2, 0}, ordered)
	assert.Equal(t, []int{0, 1, 2, 3}, candidates)
}

func TestGanttRecorder_DropsEmptySlices(t *testing.T) {
	g := &ganttRecorder{}
	p := process.New(0, 0, 5)

	g.Func(HookCtx{Pos: HookPosDispatch, Now: 3, Process: p})
	g.Func(HookCtx{Pos: HookPosPreempt, Now: 3, Process: p})
	g.Func(HookCtx{Pos: HookPosDispatch, Now: 4, Process: p})
	g.Func(HookCtx{Pos: HookPosComplete, Now: 9, Process: p})

	assert.Equal(t, []TimeSlice{{PID: 0, Start: 4, Stop: 9}}, g.slices)
}
