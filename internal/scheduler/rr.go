package scheduler

import "github.com/vinhtrinh326/cpusched/internal/process"

// rr gives each process at most one quantum at a time, cycling through the
// ready queue in FIFO order.
func (s *simulation) rr() {
	s.startFirst()

	for s.remaining > 0 {
		if s.nextEventRR() {
			s.admit()
		}

		s.settleWaits()

		if !s.queue.IsEmpty() {
			s.forkRR()
		} else if s.runner().State == process.Done {
			s.forceStart()
		}
	}

	s.closeOut()
}

// nextEventRR advances the clock to the earliest of the runner's completion,
// its quantum boundary and the next arrival. It reports whether the event
// was an arrival.
func (s *simulation) nextEventRR() bool {
	next := s.nextArrival()
	p := s.runner()
	s.expired = false

	if p.Remaining <= p.Quantum {
		if next < s.clock+p.Remaining {
			p.Quantum -= next - s.clock
			s.advanceTo(next)
			return true
		}
		s.advanceTo(s.clock + p.Remaining)
		s.completeRunner()
		return false
	}

	if next <= s.clock+p.Quantum {
		p.Quantum -= next - s.clock
		s.advanceTo(next)
		if p.Quantum == 0 {
			s.expireQuantum()
		}
		return true
	}

	s.advanceTo(s.clock + p.Quantum)
	s.expireQuantum()
	return false
}

// expireQuantum starts a fresh slice for the runner at the current clock.
func (s *simulation) expireQuantum() {
	s.runner().Quantum = s.quantum
	s.expired = true
	s.checkpoint()
}

func (s *simulation) forkRR() {
	if s.interruptRR() {
		s.contextSwitch()
	}

	s.markWaiting()
}

// interruptRR reports whether the runner has to give up the CPU. A runner
// whose slice ran out at this event yields; any other runner continues,
// including one dispatched at the instant another process arrives.
func (s *simulation) interruptRR() bool {
	p := s.runner()
	if p.State == process.Done {
		return true
	}

	left := s.remainingNow()
	if left == 0 {
		s.completeRunner()
		return true
	}

	s.checkpoint()

	return s.expired
}
