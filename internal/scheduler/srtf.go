package scheduler

// srtf always runs the process with the least remaining burst, re-deciding at
// every arrival and completion.
func (s *simulation) srtf() {
	s.startFirst()

	for s.remaining > 0 {
		if s.nextEventSRTF() {
			s.admit()
		}

		s.settleWaits()

		if !s.queue.IsEmpty() {
			s.forkSRTF()
		} else {
			s.completeRunner()
			s.forceStart()
		}
	}

	s.closeOut()
}

// nextEventSRTF advances the clock to the runner's completion or the next
// arrival, whichever is sooner, and reports whether it was an arrival.
func (s *simulation) nextEventSRTF() bool {
	next := s.nextArrival()
	p := s.runner()

	if s.clock+p.Remaining < next {
		s.advanceTo(s.clock + p.Remaining)
		return false
	}

	s.advanceTo(next)
	return true
}

func (s *simulation) forkSRTF() {
	s.queue.SortBy(s.shorterRemaining)

	if s.interruptSRTF() {
		s.contextSwitch()
	}

	s.markWaiting()
}

// interruptSRTF reports whether the runner has to give up the CPU. The
// runner keeps it on a tie with the queue head.
func (s *simulation) interruptSRTF() bool {
	left := s.remainingNow()
	if left == 0 {
		s.completeRunner()
		return true
	}

	s.checkpoint()

	head, _ := s.queue.Peek()
	return s.procs[head].Remaining < left
}

func (s *simulation) shorterRemaining(a, b int) bool {
	pa, pb := &s.procs[a], &s.procs[b]
	if pa.Remaining != pb.Remaining {
		return pa.Remaining < pb.Remaining
	}
	if pa.Arrival != pb.Arrival {
		return pa.Arrival < pb.Arrival
	}
	return a < b
}
