package sweep

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethanol-sim/ethanol-sim/sim"
	"github.com/ethanol-sim/ethanol-sim/sim/internal/testutil"
)

type collector struct {
	mu      sync.Mutex
	records []Record
}

func (c *collector) Emit(r Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r)
	return nil
}

type countingProgress struct{ calls, lastDone, lastTotal int }

func (p *countingProgress) Advance(done, total int) {
	p.calls++
	p.lastDone, p.lastTotal = done, total
}

func newDriver(t *testing.T, sink Sink, policy ErrorPolicy) *Driver {
	t.Helper()
	p, err := sim.NewPipeline(sim.DefaultConstants(), sim.DefaultFeed())
	require.NoError(t, err)
	return &Driver{
		Pipeline: p,
		Tables:   testutil.Tables(t),
		Layout:   DefaultLayout(),
		Workers:  4,
		Policy:   policy,
		Sink:     sink,
	}
}

func smallSpace() *Space {
	cat := sim.DefaultCatalog()
	return &Space{
		Fermenters: cat.Fermenters, Distillers: cat.Distillers[:2],
		Dehydrators: cat.Dehydrators[:1], Filters: cat.Filters[:2],
		PipeGrades: []int{0, 5}, Diameters: []float64{0.10, 0.15}, PumpGrades: []int{0, 4}, ValveGrades: []int{1, 3},
	}
}

// leakySpace adds a distiller that cannot meet its recovery with the feed's impurities.
func leakySpace() *Space {
	s := smallSpace()
	s.Distillers = append([]sim.Operation{}, s.Distillers...)
	s.Distillers = append(s.Distillers, sim.Operation{Name: "leaky", Efficiency: 0.01, CostPerVolume: 1})
	return s
}

func TestDriver_Run_EmitsEveryCombinationInOrder(t *testing.T) {
	// GIVEN a small space and several workers
	sink := &collector{}
	progress := &countingProgress{}
	d := newDriver(t, sink, PolicyHalt)
	d.Workers = 8
	d.Progress = progress
	space := smallSpace()

	// WHEN swept
	stats, err := d.Run(context.Background(), space)
	require.NoError(t, err)

	// THEN one record per combination in enumeration order
	require.Len(t, sink.records, space.Len())
	for i, r := range sink.records {
		assert.Equal(t, i, r.Combination.Index)
		assert.True(t, r.Valid())
		assert.NotNil(t, r.Result)
	}
	assert.Equal(t, Stats{Total: space.Len(), Evaluated: space.Len(), Emitted: space.Len()}, stats)
	assert.Equal(t, space.Len(), progress.calls)
	assert.Equal(t, space.Len(), progress.lastDone)
}

func TestDriver_Run_MatchesSequentialEvaluation(t *testing.T) {
	sink := &collector{}
	d := newDriver(t, sink, PolicyHalt)
	space := smallSpace()

	_, err := d.Run(context.Background(), space)
	require.NoError(t, err)

	for i, comb := range space.All() {
		want := d.Evaluate(comb)
		require.NoError(t, want.Err)
		assert.Equal(t, want.Result.Purity, sink.records[i].Result.Purity)
		assert.Equal(t, want.Result.TotalCost, sink.records[i].Result.TotalCost)
	}
}

func TestDriver_Run_FullDefaultSweepIsComplete(t *testing.T) {
	if testing.Short() {
		t.Skip("full sweep")
	}
	count := 0
	d := newDriver(t, SinkFunc(func(Record) error { count++; return nil }), PolicyHalt)
	d.Workers = 0
	space := NewSpace(sim.DefaultCatalog(), defaultDiameters)

	stats, err := d.Run(context.Background(), space)
	require.NoError(t, err)
	assert.Equal(t, 4*4*4*4*6*6*5*4, count)
	assert.Equal(t, count, stats.Emitted)
}

func TestDriver_Run_HaltPolicyStopsAtFirstFailure(t *testing.T) {
	sink := &collector{}
	d := newDriver(t, sink, PolicyHalt)
	space := leakySpace()

	stats, err := d.Run(context.Background(), space)
	require.Error(t, err)
	assert.True(t, sim.IsPhysicallyInvalid(err))

	// The leaky distiller is index 2 on the distiller axis; every earlier combination was emitted.
	firstBad := -1
	for i, c := range space.All() {
		if c.Distiller == 2 {
			firstBad = i
			break
		}
	}
	require.Len(t, sink.records, firstBad)
	assert.Equal(t, 1, stats.Invalid)
}

func TestDriver_Run_SkipPolicyOmitsInvalid(t *testing.T) {
	sink := &collector{}
	d := newDriver(t, sink, PolicySkip)
	space := leakySpace()

	stats, err := d.Run(context.Background(), space)
	require.NoError(t, err)

	invalid := space.Len() / 3 // one of three distillers
	assert.Equal(t, invalid, stats.Invalid)
	assert.Len(t, sink.records, space.Len()-invalid)
	for _, r := range sink.records {
		assert.NotEqual(t, 2, r.Combination.Distiller)
	}
}

func TestDriver_Run_RecordPolicyEmitsFailures(t *testing.T) {
	sink := &collector{}
	d := newDriver(t, sink, PolicyRecord)
	space := leakySpace()

	stats, err := d.Run(context.Background(), space)
	require.NoError(t, err)
	require.Len(t, sink.records, space.Len())
	for _, r := range sink.records {
		if r.Combination.Distiller == 2 {
			assert.False(t, r.Valid())
			assert.Nil(t, r.Result)
		} else {
			assert.True(t, r.Valid())
		}
	}
	assert.Equal(t, space.Len()/3, stats.Invalid)
}

func TestDriver_Run_ConfigurationErrorAlwaysHalts(t *testing.T) {
	// GIVEN a diameter the tables do not cover, under a lenient policy
	sink := &collector{}
	d := newDriver(t, sink, PolicySkip)
	space := smallSpace()
	space.Diameters = []float64{0.10, 0.16}

	_, err := d.Run(context.Background(), space)
	assert.True(t, sim.IsConfigurationError(err))
}

func TestDriver_Run_CancellationKeepsRecordsWhole(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var records []Record
	d := newDriver(t, SinkFunc(func(r Record) error {
		records = append(records, r)
		if len(records) == 10 {
			cancel()
		}
		return nil
	}), PolicyHalt)
	space := smallSpace()

	stats, err := d.Run(ctx, space)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.Less(t, stats.Emitted, space.Len())
	for i, r := range records {
		assert.Equal(t, i, r.Combination.Index)
		assert.NotNil(t, r.Result)
	}
}

func TestDriver_Run_SinkErrorAborts(t *testing.T) {
	boom := errors.New("disk full")
	d := newDriver(t, SinkFunc(func(r Record) error {
		if r.Combination.Index == 3 {
			return boom
		}
		return nil
	}), PolicyHalt)

	stats, err := d.Run(context.Background(), smallSpace())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, stats.Emitted)
}

func TestDriver_Run_RejectsUnknownPolicy(t *testing.T) {
	d := newDriver(t, &collector{}, ErrorPolicy("retry"))
	_, err := d.Run(context.Background(), smallSpace())
	assert.Error(t, err)
}

func TestDriver_Run_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	d := newDriver(t, &collector{}, PolicySkip)
	d.Metrics = NewMetrics(reg)
	space := leakySpace()

	stats, err := d.Run(context.Background(), space)
	require.NoError(t, err)

	assert.Equal(t, float64(space.Len()), promtest.ToFloat64(d.Metrics.Evaluated))
	assert.Equal(t, float64(stats.Emitted), promtest.ToFloat64(d.Metrics.Emitted))
	assert.Equal(t, float64(stats.Invalid), promtest.ToFloat64(d.Metrics.Failures.WithLabelValues("physical")))
}

func TestIsValidPolicy(t *testing.T) {
	for _, p := range []string{"halt", "skip", "record", ""} {
		assert.True(t, IsValidPolicy(p), p)
	}
	assert.False(t, IsValidPolicy("HALT"))
}
