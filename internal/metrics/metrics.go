// Package metrics aggregates the per-process outcome of a scheduling run.
package metrics

import (
	"github.com/vinhtrinh326/cpusched/internal/scheduler"
)

// Detail is the outcome of one process.
type Detail struct {
	PID            int   `json:"process_id"`
	Arrival        int64 `json:"arrival_time"`
	Burst          int64 `json:"burst_time"`
	Start          int64 `json:"start_time"`
	End            int64 `json:"end_time"`
	ResponseTime   int64 `json:"response_time"`
	WaitingTime    int64 `json:"waiting_time"`
	TurnAroundTime int64 `json:"turn_around_time"`
}

// Summary is the aggregate outcome of one discipline.
type Summary struct {
	Algorithm             string                `json:"algorithm"`
	Title                 string                `json:"title"`
	Quantum               int64                 `json:"quantum,omitempty"`
	AverageResponseTime   float64               `json:"average_response_time"`
	AverageTurnAroundTime float64               `json:"average_turn_around_time"`
	AverageWaitingTime    float64               `json:"average_waiting_time"`
	Throughput            float64               `json:"cpu_throughput"`
	CPUUtilization        float64               `json:"cpu_utilization"`
	Makespan              int64                 `json:"total_time"`
	IdleTime              int64                 `json:"idle_time"`
	Details               []Detail              `json:"details"`
	Gantt                 []scheduler.TimeSlice `json:"gantt"`
}

// Summarize computes averages over the final process records of res.
// Makespan runs from the first arrival to the last completion; throughput
// is processes per unit of makespan.
func Summarize(res scheduler.Result) Summary {
	s := Summary{
		Algorithm: string(res.Algorithm),
		Title:     res.Title(),
		Details:   make([]Detail, len(res.Processes)),
		Gantt:     res.Slices,
	}
	if res.Algorithm == scheduler.RR {
		s.Quantum = res.Quantum
	}
	if len(res.Processes) == 0 {
		return s
	}

	var response, turnaround, wait, busy, last int64
	first := res.Processes[0].Arrival
	for i, p := range res.Processes {
		s.Details[i] = Detail{
			PID:            p.PID,
			Arrival:        p.Arrival,
			Burst:          p.Burst,
			Start:          p.Start,
			End:            p.End,
			ResponseTime:   p.ResponseTime(),
			WaitingTime:    p.Wait,
			TurnAroundTime: p.TurnaroundTime(),
		}
		response += p.ResponseTime()
		turnaround += p.TurnaroundTime()
		wait += p.Wait
		busy += p.Burst
		if p.Arrival < first {
			first = p.Arrival
		}
		if p.End > last {
			last = p.End
		}
	}

	n := float64(len(res.Processes))
	s.AverageResponseTime = float64(response) / n
	s.AverageTurnAroundTime = float64(turnaround) / n
	s.AverageWaitingTime = float64(wait) / n
	s.Makespan = last - first
	s.IdleTime = s.Makespan - busy
	if s.Makespan > 0 {
		s.Throughput = n / float64(s.Makespan)
		s.CPUUtilization = float64(busy) / float64(s.Makespan)
	}
	return s
}

// SummarizeAll is Summarize over each result, in order.
func SummarizeAll(results []scheduler.Result) []Summary {
	out := make([]Summary, len(results))
	for i, res := range results {
		out[i] = Summarize(res)
	}
	return out
}
