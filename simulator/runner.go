package simulator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/gridsched/core/dispatch"
	"github.com/kilianp07/gridsched/core/dispatch/logging"
	"github.com/kilianp07/gridsched/core/logger"
	"github.com/kilianp07/gridsched/core/metrics"
	"github.com/kilianp07/gridsched/core/model"
	"github.com/kilianp07/gridsched/core/monitoring"
)

// ErrDayComplete is returned by Step once every block has been processed.
var ErrDayComplete = errors.New("simulation day complete")

// Interval is one row of the day schedule.
type Interval struct {
	Block         int                     `json:"block"`
	Label         string                  `json:"label"`
	Start         time.Time               `json:"start"`
	ExpectedMW    float64                 `json:"expected_mw"`
	ActualMW      float64                 `json:"actual_mw"`
	YesterdayRate float64                 `json:"yesterday_rate"`
	TodayRate     float64                 `json:"today_rate"`
	Result        dispatch.IntervalResult `json:"result"`
	OptimalCost   float64                 `json:"optimal_cost,omitempty"`
}

// Gap is the cost above the LP optimum, zero when the check did not run.
func (iv Interval) Gap() float64 {
	if iv.OptimalCost == 0 {
		return 0
	}
	return iv.Result.Cost - iv.OptimalCost
}

// Options configures a Runner. Zero values pick no-op collaborators.
type Options struct {
	RunID   string
	Day     time.Time
	Sink    metrics.MetricsSink
	Store   logging.Store
	Logger  logger.Logger
	Optimal bool // solve the LP bound every block
	// Pace is the wall-clock delay between blocks in Run, leaving time for
	// live commands to arrive. Zero runs flat out.
	Pace time.Duration
}

// Runner walks an engine through the horizon one block at a time.
type Runner struct {
	engine   *dispatch.Engine
	horizon  model.Horizon
	commands map[int][]Command
	known    map[string]bool
	rng      *rand.Rand

	mu      sync.Mutex
	pending []Command

	expected  []float64
	actual    []float64
	yesterday []float64
	schedule  []Interval
	next      int

	runID   string
	day     time.Time
	sink    metrics.MetricsSink
	store   logging.Store
	log     logger.Logger
	optimal bool
	pace    time.Duration
}

// NewRunner prepares a day: the forecast, the jittered actual demand and
// yesterday's rates are drawn up front from the demand seed. Script
// commands are checked against the engine's fleet.
func NewRunner(engine *dispatch.Engine, demand DemandConfig, script Script, opts Options) (*Runner, error) {
	if engine == nil {
		return nil, fmt.Errorf("%w: nil engine", model.ErrInvalidArgument)
	}
	demand.SetDefaults()
	if err := demand.Validate(); err != nil {
		return nil, err
	}
	h := engine.Horizon()
	known := make(map[string]bool)
	for _, name := range engine.MeritOrder() {
		known[name] = true
	}
	if err := script.Validate(h, func(name string) bool { return known[name] }); err != nil {
		return nil, err
	}
	r := &Runner{
		engine:   engine,
		horizon:  h,
		commands: script.ByBlock(),
		known:    known,
		rng:      rand.New(rand.NewSource(demand.Seed)),
		runID:    opts.RunID,
		day:      opts.Day,
		sink:     opts.Sink,
		store:    opts.Store,
		log:      opts.Logger,
		optimal:  opts.Optimal,
		pace:     opts.Pace,
	}
	if r.runID == "" {
		r.runID = uuid.NewString()
	}
	if r.day.IsZero() {
		r.day = time.Now().UTC().Truncate(24 * time.Hour)
	}
	if r.sink == nil {
		r.sink = metrics.NopSink{}
	}
	if r.store == nil {
		r.store = logging.NewMemoryStore()
	}
	if r.log == nil {
		r.log = logger.Nop{}
	}
	r.expected = DemandProfile(h, demand.BaseMW, demand.PeakMW)
	r.actual = Jitter(r.rng, r.expected, demand.Jitter)
	r.yesterday = YesterdayRates(r.rng, h.Blocks)
	engine.SetClock(func() time.Time { return h.BlockStart(r.day, r.next) })
	return r, nil
}

func (r *Runner) RunID() string            { return r.runID }
func (r *Runner) Next() int                { return r.next }
func (r *Runner) Done() bool               { return r.next >= r.horizon.Blocks }
func (r *Runner) Engine() *dispatch.Engine { return r.engine }
func (r *Runner) Store() logging.Store     { return r.store }

// Expected returns the demand forecast for every block.
func (r *Runner) Expected() []float64 { return append([]float64(nil), r.expected...) }

// Actual returns the demand that is fed to the engine for every block.
func (r *Runner) Actual() []float64 { return append([]float64(nil), r.actual...) }

// Schedule returns the rows processed so far.
func (r *Runner) Schedule() []Interval { return append([]Interval(nil), r.schedule...) }

// Enqueue queues an operator command for the next block. It is safe to call
// while the day is running.
func (r *Runner) Enqueue(action Action, unit string) error {
	parsed, err := ParseAction(string(action))
	if err != nil {
		return err
	}
	if !r.known[unit] {
		return fmt.Errorf("%w: %q", dispatch.ErrNotFound, unit)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, Command{Action: parsed, Unit: unit})
	return nil
}

func (r *Runner) drain(block int) []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.pending
	r.pending = nil
	for i := range out {
		out[i].Block = block
	}
	return out
}

// Step applies the commands scheduled for the next block, then any queued
// live commands, processes the block and forwards the outcome. Sink failures
// are logged; interval log failures are returned after the block has been
// counted.
func (r *Runner) Step(ctx context.Context) (Interval, error) {
	if r.Done() {
		return Interval{}, ErrDayComplete
	}
	b := r.next
	cmds := append(append([]Command(nil), r.commands[b]...), r.drain(b)...)
	for _, c := range cmds {
		if err := c.Apply(r.engine); err != nil {
			if errors.Is(err, dispatch.ErrUnitInOutage) {
				r.log.Warnf("command %s ignored: %v", c, err)
				continue
			}
			return Interval{}, fmt.Errorf("block %d: %s: %w", b, c, err)
		}
	}

	res, err := r.engine.ProcessInterval(r.actual[b], b)
	if err != nil {
		return Interval{}, err
	}
	r.next++

	iv := Interval{
		Block:         b,
		Label:         r.horizon.Label(b),
		Start:         r.horizon.BlockStart(r.day, b),
		ExpectedMW:    r.expected[b],
		ActualMW:      r.actual[b],
		YesterdayRate: r.yesterday[b],
		TodayRate:     TodayRate(r.rng),
		Result:        res,
	}
	if r.optimal {
		opt, err := dispatch.OptimalDispatchCost(res.Units, res.DemandMW, r.horizon.BlockHours())
		if err != nil {
			r.log.Warnf("optimality check for block %d: %v", b, err)
		} else {
			iv.OptimalCost = opt
			if gap := iv.Gap(); gap > 1e-6*(1+opt) {
				r.log.Warnf("block %d dispatched %.2f above the optimum", b, gap)
			}
		}
	}
	r.schedule = append(r.schedule, iv)
	r.forward(iv)

	rec := logging.IntervalRecord{
		RunID:        r.runID,
		Block:        b,
		Label:        iv.Label,
		Timestamp:    iv.Start,
		DemandMW:     res.DemandMW,
		DispatchedMW: res.DispatchedMW,
		ShortfallMW:  res.ShortfallMW,
		Cost:         res.Cost,
		OptimalCost:  iv.OptimalCost,
		Committed:    res.Committed,
		Units:        res.Units,
	}
	if err := r.store.Append(ctx, rec); err != nil {
		err = fmt.Errorf("interval log: %w", err)
		monitoring.CaptureException(err, r.tags(b))
		return iv, err
	}
	return iv, nil
}

func (r *Runner) forward(iv Interval) {
	res := iv.Result
	ev := metrics.IntervalEvent{
		RunID:        r.runID,
		Block:        iv.Block,
		Label:        iv.Label,
		Time:         iv.Start,
		DemandMW:     res.DemandMW,
		DispatchedMW: res.DispatchedMW,
		ShortfallMW:  res.ShortfallMW,
		Cost:         res.Cost,
		OptimalCost:  iv.OptimalCost,
		Units:        res.Units,
	}
	if err := r.sink.RecordInterval(ev); err != nil {
		r.log.Errorf("record interval %d: %v", iv.Block, err)
		monitoring.CaptureException(err, r.tags(iv.Block))
	}
	if sr, ok := r.sink.(metrics.SummaryRecorder); ok {
		s := r.engine.Summary()
		if err := sr.RecordSummary(metrics.SummaryEvent{
			RunID:             r.runID,
			Time:              iv.Start,
			Intervals:         s.Intervals,
			TotalCost:         s.TotalCost,
			TotalEnergyMWh:    s.TotalEnergyMWh,
			ShortfallEvents:   s.ShortfallEvents,
			TotalShortfallMWh: s.TotalShortfallMWh,
		}); err != nil {
			r.log.Errorf("record summary: %v", err)
		}
	}
}

func (r *Runner) tags(block int) map[string]string {
	return map[string]string{"run_id": r.runID, "block": strconv.Itoa(block)}
}

// Run processes the remaining blocks until the day is complete or ctx is
// canceled. Cancellation is checked between blocks.
func (r *Runner) Run(ctx context.Context) ([]Interval, error) {
	r.log.Infof("run %s: simulating %d blocks from block %d", r.runID, r.horizon.Blocks, r.next)
	for !r.Done() {
		if err := ctx.Err(); err != nil {
			return r.Schedule(), err
		}
		if _, err := r.Step(ctx); err != nil {
			return r.Schedule(), err
		}
		if r.pace > 0 && !r.Done() {
			t := time.NewTimer(r.pace)
			select {
			case <-ctx.Done():
				t.Stop()
				return r.Schedule(), ctx.Err()
			case <-t.C:
			}
		}
	}
	s := r.engine.Summary()
	r.log.Infof("run %s complete: cost %.2f, energy %.2f MWh, %d shortfall blocks (%.2f MWh)",
		r.runID, s.TotalCost, s.TotalEnergyMWh, s.ShortfallEvents, s.TotalShortfallMWh)
	return r.Schedule(), nil
}
