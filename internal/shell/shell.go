// Package shell is an interactive line-oriented front end to the simulator.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/vinhtrinh326/cpusched/internal/input"
	"github.com/vinhtrinh326/cpusched/internal/logging"
	"github.com/vinhtrinh326/cpusched/internal/metrics"
	"github.com/vinhtrinh326/cpusched/internal/process"
	"github.com/vinhtrinh326/cpusched/internal/report"
	"github.com/vinhtrinh326/cpusched/internal/scheduler"
)

var ErrUnknownCommand = errors.New("unknown command")

const help = `commands:
  add <arrival> <burst> [<arrival> <burst> ...]   append processes
  load <file>                                     replace processes with a file
  save <file>                                     write processes to a file
  list                                            show processes
  clear                                           remove all processes
  quantum [n]                                     show or set the round-robin quantum
  format [summary|table|json]                     show or set the report format
  run [algorithm ...]                             simulate all or the named algorithms
  help                                            show this text
  exit                                            leave the shell`

// Shell holds the process list being edited and the run settings.
type Shell struct {
	pairs        []input.Pair
	quantum      int64
	maxProcesses int
	format       string
	logger       *slog.Logger
}

func New(quantum int64, maxProcesses int, format string, logger *slog.Logger) *Shell {
	if quantum <= 0 {
		quantum = scheduler.DefaultQuantum
	}
	if format == "" {
		format = "summary"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Shell{quantum: quantum, maxProcesses: maxProcesses, format: format, logger: logger}
}

// RunLoop reads commands from r until exit is signalled, the exit command
// is given or r is exhausted. Command errors go to errW. exit must be
// buffered since the exit command sends on it from the loop itself.
func (s *Shell) RunLoop(r io.Reader, w, errW io.Writer, exit chan struct{}) {
	var (
		line     string
		err      error
		readLoop = bufio.NewReader(r)
	)
	for {
		select {
		case <-exit:
			_, _ = fmt.Fprintln(w, "exiting gracefully...")
			return
		default:
			s.printPrompt(w)
			line, err = readLoop.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				_, _ = fmt.Fprintln(errW, err)
				return
			}
			if herr := s.handleInput(w, line, exit); herr != nil {
				s.logger.Debug("shell command failed", logging.ErrAttr(herr))
				_, _ = fmt.Fprintln(errW, herr)
			}
			if err != nil {
				_, _ = fmt.Fprintln(w)
				return
			}
		}
	}
}

func (s *Shell) printPrompt(w io.Writer) {
	_, _ = fmt.Fprintf(w, "cpusched [%d procs, q=%d] $ ", len(s.pairs), s.quantum)
}

func (s *Shell) handleInput(w io.Writer, line string, exit chan<- struct{}) error {
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil
	}
	name, args := strings.ToLower(args[0]), args[1:]

	switch name {
	case "add":
		return s.add(args...)
	case "load":
		return s.load(args...)
	case "save":
		return s.save(args...)
	case "list":
		return s.list(w)
	case "clear":
		s.pairs = nil
		return nil
	case "quantum":
		return s.setQuantum(w, args...)
	case "format":
		return s.setFormat(w, args...)
	case "run":
		return s.run(w, args...)
	case "help":
		_, err := fmt.Fprintln(w, help)
		return err
	case "exit", "quit":
		exit <- struct{}{}
		return nil
	}
	return fmt.Errorf("%w: %q, try help", ErrUnknownCommand, name)
}

func (s *Shell) add(args ...string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: add needs arrival and burst", input.ErrInvalidArgs)
	}
	pairs, err := input.ReadPairs(strings.NewReader(strings.Join(args, " ")))
	if err != nil {
		return err
	}
	next := append(append([]input.Pair(nil), s.pairs...), pairs...)
	if _, err := input.Build(next, s.maxProcesses); err != nil {
		return err
	}
	s.pairs = next
	return nil
}

func (s *Shell) load(args ...string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: load needs exactly one file", input.ErrInvalidArgs)
	}
	r, closeFile, err := input.Open(args[0])
	if err != nil {
		return err
	}
	defer closeFile()

	pairs, err := input.ReadPairs(r)
	if err != nil {
		return err
	}
	if _, err := input.Build(pairs, s.maxProcesses); err != nil {
		return err
	}
	s.pairs = pairs
	return nil
}

func (s *Shell) save(args ...string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: save needs exactly one file", input.ErrInvalidArgs)
	}
	procs, err := s.processes()
	if err != nil {
		return err
	}
	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	if err := input.Format(f, procs); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (s *Shell) list(w io.Writer) error {
	if len(s.pairs) == 0 {
		_, err := fmt.Fprintln(w, "no processes")
		return err
	}
	for pid, p := range s.pairs {
		if _, err := fmt.Fprintf(w, "%d: arrival %d, burst %d\n", pid, p.Arrival, p.Burst); err != nil {
			return err
		}
	}
	return nil
}

func (s *Shell) setQuantum(w io.Writer, args ...string) error {
	if len(args) == 0 {
		_, err := fmt.Fprintln(w, s.quantum)
		return err
	}
	q, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || q <= 0 {
		return fmt.Errorf("%w: %q", scheduler.ErrInvalidQuantum, args[0])
	}
	s.quantum = q
	return nil
}

func (s *Shell) setFormat(w io.Writer, args ...string) error {
	if len(args) == 0 {
		_, err := fmt.Fprintln(w, s.format)
		return err
	}
	f, err := report.ParseFormat(args[0])
	if err != nil {
		return err
	}
	s.format = f
	return nil
}

func (s *Shell) processes() ([]process.Process, error) {
	return input.Build(s.pairs, s.maxProcesses)
}

func (s *Shell) run(w io.Writer, args ...string) error {
	procs, err := s.processes()
	if err != nil {
		return err
	}

	algs := scheduler.Algorithms
	if len(args) > 0 {
		algs = make([]scheduler.Algorithm, 0, len(args))
		for _, name := range args {
			alg, err := scheduler.ParseAlgorithm(name)
			if err != nil {
				return err
			}
			algs = append(algs, alg)
		}
	}

	results, err := scheduler.NewSimulator(s.quantum, scheduler.NewLogHook(s.logger)).RunEach(algs, procs)
	if err != nil {
		return err
	}
	return report.Write(w, s.format, metrics.SummarizeAll(results))
}
