// Package stress runs concurrent writers and cursor readers against a
// conclist list and checks that no item is lost, duplicated, or observed
// out of order.
package stress

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Iron-Ham/conclist/internal/collection"
	"github.com/Iron-Ham/conclist/internal/config"
	"github.com/Iron-Ham/conclist/internal/errors"
	"github.com/Iron-Ham/conclist/internal/event"
	"github.com/Iron-Ham/conclist/internal/logging"
	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/sourcegraph/conc"
)

// Runner executes the scenario described by its configuration.
type Runner struct {
	mu       sync.Mutex
	cfg      config.StressConfig
	logger   *logging.Logger
	progress func(RoundResult)
}

// NewRunner creates a Runner. A nil logger discards output.
func NewRunner(cfg config.StressConfig, logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Runner{cfg: cfg, logger: logger}
}

// SetConfig replaces the configuration. A round already in progress keeps
// the parameters it started with.
func (r *Runner) SetConfig(cfg config.StressConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg = cfg
}

// OnRound registers fn to be called after each round completes, from the
// goroutine running Run.
func (r *Runner) OnRound(fn func(RoundResult)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = fn
}

func (r *Runner) onRound() func(RoundResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress
}

// Config returns the current configuration.
func (r *Runner) Config() config.StressConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg
}

// Run executes rounds and returns the collected report. The round count is
// re-read before each round, so a reload that lowers Rounds ends the run
// early and one that raises it extends the run.
// If ctx is cancelled, Run returns the rounds completed so far together
// with the context's error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	logger := r.logger.WithRun(runID).WithComponent("stress")

	cfg := r.Config()
	if timeout := cfg.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	report := &Report{RunID: runID, Observable: cfg.Observable}
	start := time.Now()
	defer func() { report.Duration = time.Since(start) }()

	for round := 1; ; round++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		// Pick up configuration reloaded between rounds.
		current := r.Config()
		if round > current.Rounds {
			break
		}
		roundLogger := logger.With("round", round)
		roundLogger.Info("round started",
			"writers", current.Writers,
			"readers", current.Readers,
			"observable", current.Observable,
		)

		result, err := runRound(ctx, round, current, roundLogger)
		report.Rounds = append(report.Rounds, result)
		if err != nil {
			roundLogger.Error("round aborted", "error", err)
			return report, err
		}
		if fn := r.onRound(); fn != nil {
			fn(result)
		}

		roundLogger.Info("round finished",
			"ok", result.OK(),
			"actual", result.Actual,
			"traversals", result.Traversals,
			"duration_ms", result.Duration.Milliseconds(),
		)
	}
	return report, nil
}

// target adapts either list flavor to the operations the scenario needs.
type target struct {
	add    func(string) error
	reader collection.Reader[string]
	// announced counts add events per item; nil for the plain list.
	announced *cmap.ConcurrentMap[string, int]
}

func newTarget(observable bool, logger *logging.Logger) target {
	if !observable {
		l := collection.New[string]()
		return target{
			add:    func(s string) error { l.Add(s); return nil },
			reader: l,
		}
	}

	l := collection.NewObservable[string](collection.WithLogger(logger))
	announced := cmap.New[int]()
	l.OnCollectionChanged(func(e event.CollectionChangedEvent[string]) {
		if e.Action != event.ActionAdd {
			return
		}
		for _, item := range e.NewItems {
			announced.Upsert(item, 1, func(exist bool, old, n int) int {
				if exist {
					return old + n
				}
				return n
			})
		}
	})
	return target{add: l.Add, reader: l, announced: &announced}
}

// Tag returns the item written by writer w as its n-th append.
func Tag(w, n int) string {
	return fmt.Sprintf("w%d_%d", w, n)
}

func runRound(ctx context.Context, round int, cfg config.StressConfig, logger *logging.Logger) (result RoundResult, err error) {
	result = RoundResult{
		Round:      round,
		Writers:    cfg.Writers,
		Readers:    cfg.Readers,
		Expected:   cfg.ExpectedItems(),
		observable: cfg.Observable,
	}
	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	list := newTarget(cfg.Observable, logger)

	var (
		mu           sync.Mutex
		readerErrors []string
		writerErrors []string
		traversals   atomic.Int64
	)
	recordReader := func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		readerErrors = append(readerErrors, fmt.Sprintf(format, args...))
	}

	writersDone := make(chan struct{})
	var readers conc.WaitGroup
	for id := range cfg.Readers {
		readers.Go(func() {
			last := 0
			for {
				select {
				case <-writersDone:
					return
				case <-ctx.Done():
					return
				default:
				}
				n, err := traverse(list.reader)
				traversals.Add(1)
				if err != nil {
					recordReader("reader %d: %v", id, err)
					return
				}
				if n < last {
					recordReader("reader %d: traversal shrank from %d to %d", id, last, n)
					return
				}
				last = n
			}
		})
	}

	var writers conc.WaitGroup
	for w := range cfg.Writers {
		writers.Go(func() {
			for n := range cfg.ItemsPerWriter {
				if ctx.Err() != nil {
					return
				}
				if err := list.add(Tag(w, n)); err != nil {
					mu.Lock()
					writerErrors = append(writerErrors, errors.Wrapf(err, "writer %d", w).Error())
					mu.Unlock()
					return
				}
			}
		})
	}

	writerPanic := writers.WaitAndRecover()
	close(writersDone)
	readerPanic := readers.WaitAndRecover()

	result.Traversals = int(traversals.Load())
	result.ReaderErrors = readerErrors
	result.WriterErrors = writerErrors

	if writerPanic != nil {
		return result, errors.Wrap(writerPanic.AsError(), "writer panicked")
	}
	if readerPanic != nil {
		return result, errors.Wrap(readerPanic.AsError(), "reader panicked")
	}
	if err = ctx.Err(); err != nil {
		return result, err
	}

	verify(&result, list.reader.Snapshot(), cfg)
	if list.announced != nil {
		verifyEvents(&result, *list.announced, cfg)
	}
	return result, nil
}

// traverse walks the list once with a cursor and returns the number of
// elements seen. A repeated element is an error.
func traverse(list collection.Reader[string]) (int, error) {
	c := list.Iterate()
	defer func() { _ = c.Close() }()

	seen := make(map[string]struct{})
	for c.Next() {
		v, err := c.Current()
		if err != nil {
			return len(seen), err
		}
		if _, dup := seen[v]; dup {
			return len(seen), fmt.Errorf("duplicate element %q in one traversal", v)
		}
		seen[v] = struct{}{}
	}
	return len(seen), nil
}

func verify(result *RoundResult, items []string, cfg config.StressConfig) {
	result.Actual = len(items)

	counts := make(map[string]int, len(items))
	for _, item := range items {
		counts[item]++
	}
	for w := range cfg.Writers {
		for n := range cfg.ItemsPerWriter {
			switch c := counts[Tag(w, n)]; {
			case c == 0:
				result.Missing++
			case c > 1:
				result.Duplicates += c - 1
			}
		}
	}
}

// verifyEvents checks that every tag was announced by exactly one add event.
func verifyEvents(result *RoundResult, announced cmap.ConcurrentMap[string, int], cfg config.StressConfig) {
	for entry := range announced.IterBuffered() {
		result.AddEvents += entry.Val
	}
	for w := range cfg.Writers {
		for n := range cfg.ItemsPerWriter {
			if c, _ := announced.Get(Tag(w, n)); c != 1 {
				result.EventMismatches++
			}
		}
	}
}
