package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/proximalabs/tradepulse/internal/cache"
	"github.com/proximalabs/tradepulse/internal/core/domain"
)

// LoopStatus is a read-only view of the loop's progress, served by the
// health endpoint.
type LoopStatus struct {
	CyclesRun      uint64    `json:"cycles_run"`
	TradesExecuted uint64    `json:"trades_executed"`
	LastDecision   string    `json:"last_decision"`
	LastPrice      float64   `json:"last_price"`
	LastCycleAt    time.Time `json:"last_cycle_at"`
}

// Orchestrator drives the fetch-decide-filter-execute-report cycle on a
// fixed interval, forever. Cycles run synchronously on the timer goroutine,
// so at most one cycle is ever in flight; if a cycle overruns the interval,
// the missed ticks coalesce and the next cycle starts on the following
// tick. A failed cycle is logged here and only here, and never stops the
// loop.
type Orchestrator struct {
	price      domain.PriceSource
	engine     domain.DecisionEngine
	filter     *TradeFilter
	executor   *TradeExecutor
	sink       domain.MetricsSink
	cycleCache cache.CycleCache
	interval   time.Duration

	mu     sync.RWMutex
	status LoopStatus
}

// NewOrchestrator wires the cycle pipeline.
func NewOrchestrator(
	price domain.PriceSource,
	engine domain.DecisionEngine,
	filter *TradeFilter,
	executor *TradeExecutor,
	sink domain.MetricsSink,
	cycleCache cache.CycleCache,
	interval time.Duration,
) *Orchestrator {
	return &Orchestrator{
		price:      price,
		engine:     engine,
		filter:     filter,
		executor:   executor,
		sink:       sink,
		cycleCache: cycleCache,
		interval:   interval,
	}
}

// Run executes one cycle immediately, then one per tick until ctx is done.
func (o *Orchestrator) Run(ctx context.Context) {
	log.Printf("[loop] starting, interval %s", o.interval)

	o.runCycle(ctx)

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[loop] stopping: %v", ctx.Err())
			return
		case <-ticker.C:
			o.runCycle(ctx)
		}
	}
}

// RunCycle executes exactly one cycle and returns its snapshot. Used by the
// dry-run command; Run calls the same path.
func (o *Orchestrator) RunCycle(ctx context.Context) (domain.CycleSnapshot, error) {
	return o.cycle(ctx)
}

// Status returns a copy of the loop's progress counters.
func (o *Orchestrator) Status() LoopStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.status
}

// runCycle is the per-tick wrapper: it is the single place a cycle-level
// failure is logged and discarded.
func (o *Orchestrator) runCycle(ctx context.Context) {
	if _, err := o.cycle(ctx); err != nil {
		log.Printf("[loop] cycle failed: %v", err)
	}
}

func (o *Orchestrator) cycle(ctx context.Context) (domain.CycleSnapshot, error) {
	seq := o.bumpCycle()
	log.Printf("[loop] cycle %d starting", seq)

	sample := o.price.GetPrice(ctx)

	text, err := o.engine.Decide(ctx, sample.Price)
	if err != nil {
		return domain.CycleSnapshot{}, fmt.Errorf("decision failed at price %.4f: %w", sample.Price, err)
	}

	kind := domain.ParseDecision(text)
	log.Printf("[loop] cycle %d decision: %s (%q)", seq, kind, text)

	label := text
	outcome := domain.FilterNotApplicable
	result := domain.TradeResult{}

	if kind == domain.DecisionBuy {
		if o.filter.ShouldExecute(sample.Price) {
			outcome = domain.FilterExecuted
			result = o.executor.Execute(ctx)
		} else {
			outcome = domain.FilterFilteredOut
			label = "BUY (FILTERED): " + text
		}
	}

	o.sink.Report(ctx, domain.CycleReport{
		Decision:    label,
		Price:       sample.Price,
		Executed:    result.Executed,
		TxHash:      result.TxHash,
		Amount:      result.AmountTraded(),
		PriceSource: sample.Source,
	})

	snapshot := domain.CycleSnapshot{
		Sequence:    seq,
		Price:       sample.Price,
		PriceSource: sample.Source,
		Decision:    label,
		Kind:        kind,
		Outcome:     outcome,
		Executed:    result.Executed,
		TxHash:      result.TxHash,
		Amount:      result.AmountTraded().String(),
		CompletedAt: time.Now().UTC(),
	}

	// Best effort, like the metrics report: a cache failure is worth a log
	// line and nothing more.
	if err := o.cycleCache.StoreSnapshot(ctx, snapshot); err != nil {
		log.Printf("[loop] failed to cache cycle snapshot (ignored): %v", err)
	}

	o.recordCycle(snapshot)
	log.Printf("[loop] cycle %d done: outcome=%s executed=%v", seq, outcome, result.Executed)

	return snapshot, nil
}

func (o *Orchestrator) bumpCycle() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status.CyclesRun++
	return o.status.CyclesRun
}

func (o *Orchestrator) recordCycle(snapshot domain.CycleSnapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if snapshot.Executed {
		o.status.TradesExecuted++
	}
	o.status.LastDecision = snapshot.Decision
	o.status.LastPrice = snapshot.Price
	o.status.LastCycleAt = snapshot.CompletedAt
}
