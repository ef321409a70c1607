package sweep

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ethanol-sim/ethanol-sim/sim"
)

// ErrorPolicy decides what the driver does with a combination whose run failed.
type ErrorPolicy string

const (
	// PolicyHalt stops the sweep at the first failed combination.
	PolicyHalt ErrorPolicy = "halt"
	// PolicySkip logs the failure and emits nothing for that combination.
	PolicySkip ErrorPolicy = "skip"
	// PolicyRecord emits a record carrying the error instead of a result.
	PolicyRecord ErrorPolicy = "record"
)

var validPolicies = map[ErrorPolicy]bool{
	PolicyHalt:   true,
	PolicySkip:   true,
	PolicyRecord: true,
	"":           true, // empty defaults to halt
}

// IsValidPolicy returns true if the given string is a recognized error policy.
func IsValidPolicy(p string) bool {
	return validPolicies[ErrorPolicy(p)]
}

// Record is the outcome of one combination. Exactly one of Result and Err is set.
type Record struct {
	Combination Combination
	Result      *sim.Result
	Err         error
}

// Valid reports whether the run produced a result.
func (r Record) Valid() bool { return r.Err == nil }

// Sink receives records in enumeration order, one call per record, from a single goroutine.
type Sink interface {
	Emit(Record) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Record) error

// Emit calls f.
func (f SinkFunc) Emit(r Record) error { return f(r) }

// Progress is notified after each combination is handled. It must not affect results.
type Progress interface {
	Advance(done, total int)
}

// Stats summarizes a sweep.
type Stats struct {
	Total     int // combinations in the space
	Evaluated int // combinations handed to the sink or policy, in order
	Emitted   int
	Invalid   int // failed runs, whatever the policy did with them
}

// Driver runs every combination of a Space through a Pipeline.
type Driver struct {
	Pipeline *sim.Pipeline
	Tables   sim.EquipmentTables
	Layout   Layout
	Workers  int // <= 0 means GOMAXPROCS
	Policy   ErrorPolicy
	Sink     Sink
	Progress Progress // optional
	Metrics  *Metrics // optional
}

// Evaluate builds and runs a single combination.
func (d *Driver) Evaluate(comb Combination) Record {
	site, err := comb.Build(d.Pipeline.Constants, d.Tables, d.Layout)
	if err != nil {
		return Record{Combination: comb, Err: err}
	}
	res, err := d.Pipeline.Run(site, comb.Plan)
	if err != nil {
		return Record{Combination: comb, Err: err}
	}
	return Record{Combination: comb, Result: res}
}

func (d *Driver) validate(space *Space) error {
	if d.Pipeline == nil {
		return errors.New("sweep driver: nil pipeline")
	}
	if d.Sink == nil {
		return errors.New("sweep driver: nil sink")
	}
	if !IsValidPolicy(string(d.Policy)) {
		return fmt.Errorf("sweep driver: unknown error policy %q; valid: halt, skip, record", d.Policy)
	}
	if err := d.Tables.Validate(); err != nil {
		return fmt.Errorf("sweep driver: %w", err)
	}
	return space.Validate()
}

// Run evaluates every combination. Runs execute concurrently on Workers goroutines; records
// reach the sink in enumeration order. Cancelling ctx stops the sweep between combinations;
// every record already emitted is complete.
func (d *Driver) Run(ctx context.Context, space *Space) (Stats, error) {
	stats := Stats{Total: space.Len()}
	if err := d.validate(space); err != nil {
		return stats, err
	}
	workers := d.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	jobs := make(chan Combination, workers)
	outcomes := make(chan Record, workers)

	g.Go(func() error {
		defer close(jobs)
		for _, comb := range space.All() {
			select {
			case jobs <- comb:
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for comb := range jobs {
				rec := d.Evaluate(comb)
				select {
				case outcomes <- rec:
				case <-gctx.Done():
					return nil
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(outcomes)
	}()

	runErr := d.collect(ctx, outcomes, &stats)
	cancel()
	if err := g.Wait(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr == nil && stats.Evaluated < stats.Total {
		// outcomes closed early: only cancellation of ctx gets here
		runErr = ctx.Err()
		if runErr == nil {
			runErr = fmt.Errorf("sweep stopped after %d of %d combinations", stats.Evaluated, stats.Total)
		}
	}
	return stats, runErr
}

// collect reorders outcomes into enumeration order and applies the error policy.
func (d *Driver) collect(ctx context.Context, outcomes <-chan Record, stats *Stats) error {
	pending := make(map[int]Record)
	next := 0
	for rec := range outcomes {
		pending[rec.Combination.Index] = rec
		for {
			r, ok := pending[next]
			if !ok {
				break
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			delete(pending, next)
			next++
			if err := d.handle(r, stats); err != nil {
				return err
			}
			if d.Progress != nil {
				d.Progress.Advance(stats.Evaluated, stats.Total)
			}
		}
	}
	return ctx.Err()
}

func (d *Driver) handle(r Record, stats *Stats) error {
	stats.Evaluated++
	d.Metrics.observe(r)
	if r.Valid() {
		return d.emit(r, stats)
	}

	stats.Invalid++
	if d.Policy == PolicyHalt || d.Policy == "" || sim.IsConfigurationError(r.Err) {
		return fmt.Errorf("combination %s: %w", r.Combination, r.Err)
	}
	logrus.WithFields(logrus.Fields{
		"combination": r.Combination.Index,
		"policy":      d.Policy,
	}).Warnf("invalid configuration: %v", r.Err)
	if d.Policy == PolicyRecord {
		return d.emit(r, stats)
	}
	return nil
}

func (d *Driver) emit(r Record, stats *Stats) error {
	if err := d.Sink.Emit(r); err != nil {
		return fmt.Errorf("emitting combination %d: %w", r.Combination.Index, err)
	}
	stats.Emitted++
	d.Metrics.emitted()
	return nil
}
