package scheduler

import (
	"bytes"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinhtrinh326/cpusched/internal/logging"
	"github.com/vinhtrinh326/cpusched/internal/process"
)

// procs builds a process list from (arrival, burst) pairs.
func procs(pairs ...int64) []process.Process {
	out := make([]process.Process, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, process.New(len(out), pairs[i], pairs[i+1]))
	}
	return out
}

// timing is the externally visible outcome for one process.
type timing struct {
	Start, End, Wait int64
}

func timings(res Result) []timing {
	out := make([]timing, len(res.Processes))
	for i, p := range res.Processes {
		out[i] = timing{Start: p.Start, End: p.End, Wait: p.Wait}
	}
	return out
}

func mustRun(t *testing.T, sim *Simulator, alg Algorithm, in []process.Process) Result {
	t.Helper()
	res, err := sim.Run(alg, in)
	require.NoError(t, err)
	return res
}

var classic = procs(0, 8, 1, 4, 2, 9, 3, 5)

func TestRun_Classic(t *testing.T) {
	tests := []struct {
		name    string
		alg     Algorithm
		quantum int64
		want    []timing
		slices  []TimeSlice
	}{
		{
			name: "fcfs",
			alg:  FCFS,
			want: []timing{{0, 8, 0}, {8, 12, 7}, {12, 21, 10}, {21, 26, 18}},
			slices: []TimeSlice{
				{0, 0, 8}, {1, 8, 12}, {2, 12, 21}, {3, 21, 26},
			},
		},
		{
			name: "sjf",
			alg:  SJF,
			want: []timing{{0, 8, 0}, {8, 12, 7}, {17, 26, 15}, {12, 17, 9}},
			slices: []TimeSlice{
				{0, 0, 8}, {1, 8, 12}, {3, 12, 17}, {2, 17, 26},
			},
		},
		{
			name: "srtf",
			alg:  SRTF,
			want: []timing{{0, 17, 9}, {1, 5, 0}, {17, 26, 15}, {5, 10, 2}},
			slices: []TimeSlice{
				{0, 0, 1}, {1, 1, 5}, {3, 5, 10}, {0, 10, 17}, {2, 17, 26},
			},
		},
		{
			name: "rr with default quantum behaves like fcfs",
			alg:  RR,
			want: []timing{{0, 8, 0}, {8, 12, 7}, {12, 21, 10}, {21, 26, 18}},
			slices: []TimeSlice{
				{0, 0, 8}, {1, 8, 12}, {2, 12, 21}, {3, 21, 26},
			},
		},
		{
			name:    "rr with quantum 4",
			alg:     RR,
			quantum: 4,
			want:    []timing{{0, 20, 12}, {4, 8, 3}, {8, 26, 15}, {12, 25, 17}},
			slices: []TimeSlice{
				{0, 0, 4}, {1, 4, 8}, {2, 8, 12}, {3, 12, 16},
				{0, 16, 20}, {2, 20, 24}, {3, 24, 25}, {2, 25, 26},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustRun(t, NewSimulator(tt.quantum), tt.alg, classic)

			if diff := cmp.Diff(tt.want, timings(res)); diff != "" {
				t.Errorf("timings mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.slices, res.Slices); diff != "" {
				t.Errorf("slices mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRun_SingleProcess(t *testing.T) {
	for _, alg := range Algorithms {
		t.Run(string(alg), func(t *testing.T) {
			res := mustRun(t, NewSimulator(0), alg, procs(0, 5))

			p := res.Processes[0]
			assert.Equal(t, int64(0), p.ResponseTime())
			assert.Equal(t, int64(5), p.TurnaroundTime())
			assert.Equal(t, int64(0), p.Wait)
			assert.Equal(t, process.Done, p.State)
		})
	}
}

func TestRun_NoOverlap(t *testing.T) {
	want := []timing{{0, 5, 0}, {10, 13, 0}}

	for _, alg := range Algorithms {
		t.Run(string(alg), func(t *testing.T) {
			res := mustRun(t, NewSimulator(0), alg, procs(0, 5, 10, 3))
			assert.Equal(t, want, timings(res))
		})
	}
}

func TestRun_RoundRobinPreemptsAtQuantum(t *testing.T) {
	res := mustRun(t, NewSimulator(100), RR, procs(0, 150, 5, 50))

	assert.Equal(t, []timing{{0, 200, 50}, {100, 150, 95}}, timings(res))
	assert.Equal(t, []TimeSlice{{0, 0, 100}, {1, 100, 150}, {0, 150, 200}}, res.Slices)
}

func TestRun_RoundRobinMatchesFCFSWhenBurstsFitQuantum(t *testing.T) {
	inputs := map[string][]process.Process{
		"staggered":                procs(0, 50, 5, 30, 7, 100, 40, 10, 300, 20),
		"arrival at dispatch":      procs(0, 10, 5, 10, 10, 10),
		"simultaneous at zero":     procs(0, 50, 0, 50),
		"arrival at forced start":  procs(0, 5, 10, 20, 10, 30, 10, 1),
		"arrival at quantum limit": procs(0, 100, 100, 100, 200, 1),
	}
	sim := NewSimulator(100)

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			fcfs := mustRun(t, sim, FCFS, in)
			rr := mustRun(t, sim, RR, in)

			if diff := cmp.Diff(timings(fcfs), timings(rr)); diff != "" {
				t.Errorf("rr differs from fcfs (-fcfs +rr):\n%s", diff)
			}
			assert.Equal(t, fcfs.Slices, rr.Slices)
		})
	}
}

func TestRun_RoundRobinRunnerKeepsSliceOnSimultaneousArrival(t *testing.T) {
	res := mustRun(t, NewSimulator(4), RR, procs(0, 6, 0, 2))

	assert.Equal(t, []timing{{0, 8, 2}, {4, 6, 4}}, timings(res))
	assert.Equal(t, []TimeSlice{{0, 0, 4}, {1, 4, 6}, {0, 6, 8}}, res.Slices)
}

func TestRun_ShortestRemainingPreempts(t *testing.T) {
	res := mustRun(t, NewSimulator(0), SRTF, procs(0, 8, 1, 4))

	assert.Equal(t, []timing{{0, 12, 4}, {1, 5, 0}}, timings(res))
}

func TestRun_ShortestRemainingRunnerWinsTie(t *testing.T) {
	// At t=2 the runner has 4 left and the newcomer needs 4.
	res := mustRun(t, NewSimulator(0), SRTF, procs(0, 6, 2, 4))

	assert.Equal(t, []timing{{0, 6, 0}, {6, 10, 4}}, timings(res))
}

func TestRun_SimultaneousArrivalAtZero(t *testing.T) {
	in := procs(0, 8, 0, 4)

	tests := []struct {
		alg  Algorithm
		want []timing
	}{
		{FCFS, []timing{{0, 8, 0}, {8, 12, 8}}},
		{SJF, []timing{{0, 8, 0}, {8, 12, 8}}},
		{SRTF, []timing{{0, 12, 4}, {0, 4, 0}}},
	}

	for _, tt := range tests {
		t.Run(string(tt.alg), func(t *testing.T) {
			res := mustRun(t, NewSimulator(0), tt.alg, in)
			assert.Equal(t, tt.want, timings(res))
		})
	}
}

func TestRun_ShortestJobIdleGap(t *testing.T) {
	res := mustRun(t, NewSimulator(0), SJF, procs(0, 5, 10, 3, 11, 1))

	assert.Equal(t, []timing{{0, 5, 0}, {10, 13, 0}, {13, 14, 2}}, timings(res))
}

func TestRun_ShortestJobTieKeepsArrivalOrder(t *testing.T) {
	res := mustRun(t, NewSimulator(0), SJF, procs(0, 10, 1, 3, 2, 3, 3, 2))

	assert.Equal(t, []timing{{0, 10, 0}, {12, 15, 11}, {15, 18, 13}, {10, 12, 7}}, timings(res))
}

func TestRun_Errors(t *testing.T) {
	_, err := NewSimulator(0).Run("lottery", classic)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	_, err = NewSimulator(0).Run(FCFS, nil)
	assert.ErrorIs(t, err, ErrNoProcesses)

	_, err = NewSimulator(-3).Run(RR, classic)
	assert.ErrorIs(t, err, ErrInvalidQuantum)

	for _, alg := range Algorithms {
		_, err = NewSimulator(0).Run(alg, procs(math.MaxInt64-10, 100))
		assert.ErrorIs(t, err, ErrTimeOverflow, alg)

		_, err = NewSimulator(0).Run(alg, procs(0, math.MaxInt64-5, 1, 10))
		assert.ErrorIs(t, err, ErrTimeOverflow, alg)
	}
}

func TestRun_DoesNotTouchInput(t *testing.T) {
	in := procs(0, 8, 1, 4, 2, 9, 3, 5)
	before := append([]process.Process(nil), in...)

	_, err := NewSimulator(3).RunAll(in)
	require.NoError(t, err)

	assert.Equal(t, before, in)
}

func TestRun_Idempotent(t *testing.T) {
	in := randomProcs(rand.New(rand.NewSource(7)), 12)
	sim := NewSimulator(5)

	for _, alg := range Algorithms {
		first := mustRun(t, sim, alg, in)
		second := mustRun(t, sim, alg, in)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("%s: second run differs (-first +second):\n%s", alg, diff)
		}
	}
}

func TestRunAll_Order(t *testing.T) {
	results, err := NewSimulator(0).RunAll(classic)
	require.NoError(t, err)

	require.Len(t, results, len(Algorithms))
	for i, alg := range Algorithms {
		assert.Equal(t, alg, results[i].Algorithm)
	}
	assert.Equal(t, "Round Robin (w/ quantum 100)", results[3].Title())
}

func TestRunEach_StopsOnError(t *testing.T) {
	_, err := NewSimulator(0).RunEach([]Algorithm{FCFS, "bogus"}, classic)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func randomProcs(r *rand.Rand, n int) []process.Process {
	pairs := make([]int64, 0, 2*n)
	var at int64
	for i := 0; i < n; i++ {
		if i > 0 {
			at += r.Int63n(7)
		}
		pairs = append(pairs, at, 1+r.Int63n(15))
	}
	return procs(pairs...)
}

func TestRun_Properties(t *testing.T) {
	inputs := [][]process.Process{
		classic,
		procs(0, 3, 0, 3, 0, 3),
		procs(0, 1, 20, 1, 20, 30, 21, 2),
		procs(5, 10, 6, 1, 30, 4),
	}
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 25; i++ {
		inputs = append(inputs, randomProcs(r, 1+r.Intn(20)))
	}

	for _, quantum := range []int64{1, 3, 100} {
		sim := NewSimulator(quantum)
		for _, in := range inputs {
			for _, alg := range Algorithms {
				res := mustRun(t, sim, alg, in)
				checkInvariants(t, res, in)
			}
		}
	}
}

func checkInvariants(t *testing.T, res Result, in []process.Process) {
	t.Helper()

	var sumTurnaround, sumBurst, sumWait int64
	ran := make(map[int]int64)
	for _, s := range res.Slices {
		ran[s.PID] += s.Stop - s.Start
	}

	for i, p := range res.Processes {
		require.Equal(t, in[i].Arrival, p.Arrival)
		assert.Equal(t, process.Done, p.State, "%s pid %d", res.Algorithm, p.PID)
		assert.Zero(t, p.Remaining, "%s pid %d", res.Algorithm, p.PID)
		assert.GreaterOrEqual(t, p.Start, p.Arrival, "%s pid %d", res.Algorithm, p.PID)
		assert.GreaterOrEqual(t, p.End, p.Start, "%s pid %d", res.Algorithm, p.PID)
		assert.Equal(t, p.Burst+p.Wait, p.TurnaroundTime(), "%s pid %d", res.Algorithm, p.PID)
		assert.Equal(t, p.Burst, ran[p.PID], "%s pid %d", res.Algorithm, p.PID)

		if res.Algorithm == FCFS || res.Algorithm == SJF {
			assert.Equal(t, p.Burst, p.End-p.Start, "%s pid %d", res.Algorithm, p.PID)
		}

		sumTurnaround += p.TurnaroundTime()
		sumBurst += p.Burst
		sumWait += p.Wait
	}
	assert.Equal(t, sumBurst+sumWait, sumTurnaround)

	for i := 1; i < len(res.Slices); i++ {
		assert.GreaterOrEqual(t, res.Slices[i].Start, res.Slices[i-1].Stop, "%s slices overlap", res.Algorithm)
	}
}

func TestParseAlgorithm(t *testing.T) {
	alg, err := ParseAlgorithm(" SRTF ")
	require.NoError(t, err)
	assert.Equal(t, SRTF, alg)

	_, err = ParseAlgorithm("edf")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestHooks(t *testing.T) {
	counts := make(map[string]int)
	var preempted HookCtx
	counter := HookFunc(func(ctx HookCtx) {
		assert.Equal(t, SRTF, ctx.Algorithm)
		counts[ctx.Pos.Name]++
		if ctx.Pos == HookPosPreempt {
			preempted = ctx
		}
	})

	_, err := NewSimulator(0, counter).Run(SRTF, classic)
	require.NoError(t, err)

	assert.Equal(t, 4, counts[HookPosArrival.Name])
	assert.Equal(t, 4, counts[HookPosComplete.Name])
	assert.Equal(t, 5, counts[HookPosDispatch.Name])
	assert.Equal(t, 1, counts[HookPosPreempt.Name])

	assert.Equal(t, int64(1), preempted.Now)
	assert.Equal(t, 0, preempted.Process.PID)
	assert.Equal(t, int64(7), preempted.Process.Remaining)
	assert.Equal(t, []int{1, 0}, preempted.Queue)
}

func TestLogHook(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&buf, "debug")

	_, err := NewSimulator(0, NewLogHook(logger)).Run(FCFS, procs(0, 2))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"event":"Dispatch"`)
	assert.Contains(t, out, `"event":"Complete"`)
	assert.Contains(t, out, `"algorithm":"fcfs"`)
	assert.Contains(t, out, `"queue":[]`)
}
