package scheduler

import (
	"log/slog"

	"github.com/vinhtrinh326/cpusched/internal/process"
)

// HookPos defines the enum of positions where the engine invokes hooks.
type HookPos struct {
	Name string
}

// HookPosArrival triggers when a process is admitted.
var HookPosArrival = &HookPos{Name: "Arrival"}

// HookPosDispatch triggers when a process starts or resumes running.
var HookPosDispatch = &HookPos{Name: "Dispatch"}

// HookPosPreempt triggers when the runner is sent back to the ready queue.
var HookPosPreempt = &HookPos{Name: "Preempt"}

// HookPosComplete triggers when a process uses up its burst.
var HookPosComplete = &HookPos{Name: "Complete"}

// HookCtx describes one engine event. Process is a copy of the record at
// that instant and Queue the ready queue, front first.
type HookCtx struct {
	Algorithm Algorithm
	Pos       *HookPos
	Now       int64
	Process   process.Process
	Queue     []int
}

// Hook is a short piece of program that can be invoked by the engine.
type Hook interface {
	Func(ctx HookCtx)
}

// HookFunc adapts a plain function to the Hook interface.
type HookFunc func(ctx HookCtx)

// Func calls f(ctx).
func (f HookFunc) Func(ctx HookCtx) { f(ctx) }

// HookableBase fans engine events out to the hooks of one run. Hooks run
// synchronously, in registration order, on the engine's goroutine.
type HookableBase struct {
	Hooks []Hook
}

// NewHookableBase returns a HookableBase without hooks.
func NewHookableBase() *HookableBase {
	return &HookableBase{}
}

// AcceptHook adds hook after the ones already registered.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.Hooks = append(h.Hooks, hook)
}

// InvokeHook hands ctx to every hook. Each event carries its own copy of
// the queue.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.Hooks {
		hook.Func(ctx)
	}
}

// LogHook writes every engine event to a structured logger at debug level.
type LogHook struct {
	logger *slog.Logger
}

func NewLogHook(logger *slog.Logger) *LogHook {
	return &LogHook{logger: logger}
}

func (h *LogHook) Func(ctx HookCtx) {
	h.logger.Debug("scheduler event",
		slog.String("algorithm", string(ctx.Algorithm)),
		slog.String("event", ctx.Pos.Name),
		slog.Int64("clock", ctx.Now),
		slog.Int("pid", ctx.Process.PID),
		slog.Int64("remaining", ctx.Process.Remaining),
		slog.Any("queue", ctx.Queue),
	)
}

// TimeSlice is one uninterrupted stretch of CPU time given to a process.
type TimeSlice struct {
	PID   int   `json:"pid"`
	Start int64 `json:"start"`
	Stop  int64 `json:"stop"`
}

// ganttRecorder turns dispatch/preempt/complete events into time slices.
type ganttRecorder struct {
	slices []TimeSlice
	pid    int
	start  int64
	open   bool
}

func (g *ganttRecorder) Func(ctx HookCtx) {
	switch ctx.Pos {
	case HookPosDispatch:
		g.pid = ctx.Process.PID
		g.start = ctx.Now
		g.open = true
	case HookPosPreempt, HookPosComplete:
		if !g.open || g.pid != ctx.Process.PID {
			return
		}
		g.open = false
		if ctx.Now > g.start {
			g.slices = append(g.slices, TimeSlice{PID: g.pid, Start: g.start, Stop: ctx.Now})
		}
	}
}
