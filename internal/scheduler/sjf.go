package scheduler

import (
	"fmt"
	"sort"

	"github.com/vinhtrinh326/cpusched/internal/process"
)

// sjf runs the shortest arrived job to completion each step.
func (s *simulation) sjf() {
	s.runFirstToCompletion()

	for s.remaining > 0 {
		candidates := s.candidates()
		if len(candidates) == 0 {
			pid, ok := s.nextNotArrived()
			if !ok {
				panic(fmt.Sprintf("%s: %d processes outstanding but none left to arrive", s.algorithm, s.remaining))
			}
			s.advanceTo(s.procs[pid].Arrival)
			continue
		}

		s.runToCompletion(byBurst(s.procs, candidates)[0])
		s.remaining--
	}
}

// candidates returns the processes that have arrived but not run yet, in pid
// order. Newly arrived ones are moved to the ready state.
func (s *simulation) candidates() []int {
	var out []int
	for pid := range s.procs {
		p := &s.procs[pid]
		switch {
		case p.State == process.Ready:
			out = append(out, pid)
		case p.State == process.NotArrived && p.Arrival <= s.clock:
			s.arrive(pid)
			out = append(out, pid)
		}
	}
	return out
}

// byBurst returns a new slice with the candidates ordered by burst, shortest
// first. Equal bursts keep their candidate order.
func byBurst(procs []process.Process, candidates []int) []int {
	out := make([]int, len(candidates))
	copy(out, candidates)
	sort.SliceStable(out, func(i, j int) bool {
		return procs[out[i]].Burst < procs[out[j]].Burst
	})
	return out
}
