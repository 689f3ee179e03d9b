package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/vinhtrinh326/cpusched/internal/input"
	"github.com/vinhtrinh326/cpusched/internal/logging"
	"github.com/vinhtrinh326/cpusched/internal/metrics"
	"github.com/vinhtrinh326/cpusched/internal/process"
	"github.com/vinhtrinh326/cpusched/internal/scheduler"
	"github.com/vinhtrinh326/cpusched/internal/store"
)

// ScheduleRequest carries the processes either as pairs or in the textual
// input format.
type ScheduleRequest struct {
	Processes []input.Pair `json:"processes"`
	Input     string       `json:"input"`
	Quantum   int64        `json:"quantum"`
}

type ScheduleResponse struct {
	BatchID string            `json:"batch_id,omitempty"`
	Results []metrics.Summary `json:"results"`
}

type AlgorithmResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type SchedulerHandler interface {
	Algorithms(ctx *fiber.Ctx) error
	ScheduleAll(ctx *fiber.Ctx) error
	Schedule(ctx *fiber.Ctx) error
	Batch(ctx *fiber.Ctx) error
	RunProcesses(ctx *fiber.Ctx) error
}

type SchedulerHandlerImpl struct {
	quantum      int64
	maxProcesses int
	recorder     *store.Recorder
	logger       *slog.Logger
}

func NewSchedulerHandlerImpl(opts Options) *SchedulerHandlerImpl {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SchedulerHandlerImpl{
		quantum:      opts.Quantum,
		maxProcesses: opts.MaxProcesses,
		recorder:     opts.Recorder,
		logger:       logger,
	}
}

func (s *SchedulerHandlerImpl) Algorithms(ctx *fiber.Ctx) error {
	quantum := s.quantum
	if quantum == 0 {
		quantum = scheduler.DefaultQuantum
	}
	out := make([]AlgorithmResponse, len(scheduler.Algorithms))
	for i, alg := range scheduler.Algorithms {
		out[i] = AlgorithmResponse{ID: string(alg), Title: alg.Title(quantum)}
	}
	return ctx.JSON(out)
}

func (s *SchedulerHandlerImpl) ScheduleAll(ctx *fiber.Ctx) error {
	return s.schedule(ctx, scheduler.Algorithms)
}

func (s *SchedulerHandlerImpl) Schedule(ctx *fiber.Ctx) error {
	alg, err := scheduler.ParseAlgorithm(ctx.Params("algorithm"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return s.schedule(ctx, []scheduler.Algorithm{alg})
}

func (s *SchedulerHandlerImpl) Batch(ctx *fiber.Ctx) error {
	if s.recorder == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "recording is disabled"})
	}
	runs, err := s.recorder.Runs(ctx.Params("batch"))
	switch {
	case errors.Is(err, store.ErrNoBatch):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		s.logger.Error("reading batch", logging.ErrAttr(err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "can not read batch"})
	}
	return ctx.JSON(runs)
}

func (s *SchedulerHandlerImpl) RunProcesses(ctx *fiber.Ctx) error {
	if s.recorder == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "recording is disabled"})
	}
	details, err := s.recorder.Processes(ctx.Params("run"))
	switch {
	case errors.Is(err, store.ErrNoRun):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		s.logger.Error("reading run", logging.ErrAttr(err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "can not read run"})
	}
	return ctx.JSON(details)
}

func (s *SchedulerHandlerImpl) schedule(ctx *fiber.Ctx, algs []scheduler.Algorithm) error {
	var request ScheduleRequest
	if err := ctx.BodyParser(&request); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request format"})
	}

	procs, err := s.processes(request)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	quantum := request.Quantum
	if quantum == 0 {
		quantum = s.quantum
	}
	sim := scheduler.NewSimulator(quantum, scheduler.NewLogHook(s.logger))
	results, err := sim.RunEach(algs, procs)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	response := ScheduleResponse{Results: metrics.SummarizeAll(results)}
	if s.recorder != nil {
		batchID, err := s.recorder.Record(response.Results)
		if err != nil {
			s.logger.Error("recording runs", logging.ErrAttr(err))
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "can not record runs"})
		}
		response.BatchID = batchID
	}

	s.logger.Info("scheduled",
		slog.Int("processes", len(procs)),
		slog.Int("algorithms", len(algs)),
		slog.Int64("quantum", sim.Quantum()),
		slog.String("batch_id", response.BatchID),
	)
	return ctx.JSON(response)
}

func (s *SchedulerHandlerImpl) processes(request ScheduleRequest) ([]process.Process, error) {
	if request.Input != "" {
		if len(request.Processes) > 0 {
			return nil, errors.New("give either processes or input, not both")
		}
		return input.ParseString(request.Input, s.maxProcesses)
	}
	return input.Build(request.Processes, s.maxProcesses)
}
