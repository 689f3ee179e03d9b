package scheduler

// fcfs runs processes strictly in admission order without preemption.
// remaining counts processes that have not been admitted yet.
func (s *simulation) fcfs() {
	s.runFirstToCompletion()

	for s.remaining > 0 {
		s.remaining -= s.admit()

		for !s.queue.IsEmpty() {
			pid, _ := s.queue.Dequeue()
			s.runToCompletion(pid)
		}

		if pid, ok := s.nextNotArrived(); ok && s.procs[pid].Arrival > s.clock {
			s.advanceTo(s.procs[pid].Arrival)
		}
	}
}
