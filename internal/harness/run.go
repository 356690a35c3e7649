// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package harness drives concurrent producers and consumers against a faaq
// queue and checks the run for lost, duplicated and reordered elements.
package harness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/faaq"
	"code.hybscloud.com/faaq/internal/logctx"
	"code.hybscloud.com/iox"
	"github.com/pbnjay/memory"
	"golang.org/x/sync/errgroup"
)

// ErrInsufficientMemory is returned when a round would not fit in free memory.
var ErrInsufficientMemory = errors.New("harness: workload exceeds free memory")

// slotBytes approximates one slot of a uint64 queue: state word plus payload.
const slotBytes = 16

// cancelCheckEvery is how many loop iterations pass between context checks.
const cancelCheckEvery = 256

// Run executes one round of cfg and returns its report.
//
// A round that completes but finds a violation returns a failed report and a
// nil error. Errors are reserved for invalid configs, insufficient memory
// and cancellation of ctx.
func Run(ctx context.Context, round int, cfg Config) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	cfg = cfg.WithDefaults()
	need := EstimateBytes(cfg)
	if free := memory.FreeMemory(); free > 0 && need > free {
		return Report{}, fmt.Errorf("%w: need %d bytes, %d free", ErrInsufficientMemory, need, free)
	}

	ctx = logctx.WithTag(ctx, fmt.Sprintf("round-%d", round))
	log := logctx.From(ctx)

	r := Report{
		Round:       round,
		Variant:     cfg.Variant,
		Producers:   cfg.Producers,
		Consumers:   cfg.Consumers,
		Items:       cfg.Items,
		Total:       cfg.Total(),
		StartedAt:   time.Now(),
		SegmentSize: cfg.SegmentSize,
	}
	if cfg.Variant == VariantFlat {
		r.SegmentSize = 0
		r.Capacity = cfg.Capacity
	}

	q := cfg.build()
	c := newChecker(cfg)

	runCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	for p := range cfg.Producers {
		g.Go(func() error {
			err := guard(func() { produce(gctx, q, p, cfg.Items) })
			log.Debug("producer done", "id", p, "err", err)
			return err
		})
	}
	for range cfg.Consumers {
		g.Go(func() error {
			return c.consume(gctx, q)
		})
	}

	err := g.Wait()
	r.Elapsed = time.Since(r.StartedAt)

	if ctx.Err() != nil {
		return r, ctx.Err()
	}
	switch {
	case err != nil:
		r.Failure = err.Error()
	case runCtx.Err() != nil:
		r.Failure = fmt.Sprintf("timeout after %v", cfg.Timeout)
	}

	c.fill(&r)
	if r.Failure == "" {
		r.Extra = drain(q)
	}
	if v, ok := q.(faaq.Validator); ok {
		if verr := v.Validate(); verr != nil {
			r.ValidateError = verr.Error()
		}
	}
	if s, ok := q.(faaq.StatsReporter); ok {
		r.Stats = s.Stats()
	}
	r.Passed = r.ok()

	log.Info("round finished", "passed", r.Passed, "elapsed", r.Elapsed,
		"poisoned", r.Stats.PoisonedSlots, "retries", r.Stats.EnqueueRetries)
	return r, nil
}

// EstimateBytes approximates the peak memory of one round.
func EstimateBytes(cfg Config) uint64 {
	slots := uint64(cfg.Total())
	if cfg.Variant == VariantFlat {
		slots = uint64(cfg.Capacity)
	}
	seen := uint64(cfg.Total()) * 4
	order := uint64(cfg.Consumers) * uint64(cfg.Producers) * 8
	return slots*slotBytes + seen + order
}

func produce(ctx context.Context, q faaq.Producer[uint64], id, items int) {
	for i := range items {
		if i%cancelCheckEvery == 0 && ctx.Err() != nil {
			return
		}
		v := encode(id, i)
		q.Enqueue(&v)
	}
}

// guard turns a flat queue running out of slots into an error. Any other
// panic is re-raised.
func guard(fn func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(error); ok && errors.Is(e, faaq.ErrCapacityExhausted) {
			err = e
			return
		}
		panic(r)
	}()
	fn()
	return nil
}

// drain counts elements still dequeueable after every value was seen.
func drain(q faaq.Consumer[uint64]) int64 {
	var n int64
	for {
		if _, err := q.Dequeue(); err != nil {
			return n
		}
		n++
	}
}

func encode(producer, seq int) uint64 {
	return uint64(producer)<<32 | uint64(seq)
}

func decode(v uint64) (producer, seq int) {
	return int(v >> 32), int(v & (maxSeq - 1))
}

// checker records what consumers observed.
type checker struct {
	producers, items int
	total            int64
	seen             []atomix.Int32
	consumed         atomix.Int64
	outOfRange       atomix.Int64
	outOfOrder       atomix.Int64
}

func newChecker(cfg Config) *checker {
	return &checker{
		producers: cfg.Producers,
		items:     cfg.Items,
		total:     int64(cfg.Total()),
		seen:      make([]atomix.Int32, cfg.Total()),
	}
}

// consume dequeues until every value has been seen or ctx ends.
//
// A single consumer claims positions in increasing order, and one producer's
// elements win increasing positions, so each consumer must see every
// producer's sequence numbers strictly increasing.
func (c *checker) consume(ctx context.Context, q faaq.Consumer[uint64]) error {
	last := make([]int, c.producers)
	for i := range last {
		last[i] = -1
	}
	backoff := iox.Backoff{}
	for n := 0; c.consumed.Load() < c.total; n++ {
		if n%cancelCheckEvery == 0 && ctx.Err() != nil {
			return nil
		}
		v, err := q.Dequeue()
		if err != nil {
			if !faaq.IsWouldBlock(err) {
				return fmt.Errorf("dequeue: %w", err)
			}
			backoff.Wait()
			continue
		}
		backoff.Reset()

		p, seq := decode(v)
		if p >= c.producers || seq >= c.items {
			c.outOfRange.Add(1)
			c.consumed.Add(1)
			continue
		}
		if seq <= last[p] {
			c.outOfOrder.Add(1)
		}
		last[p] = seq
		c.seen[p*c.items+seq].Add(1)
		c.consumed.Add(1)
	}
	return nil
}

func (c *checker) fill(r *Report) {
	r.Dequeued = c.consumed.Load()
	r.OutOfRange = c.outOfRange.Load()
	r.OutOfOrder = c.outOfOrder.Load()
	for i := range c.seen {
		switch n := c.seen[i].Load(); {
		case n == 0:
			r.Missing++
		case n > 1:
			r.Duplicates += int64(n - 1)
		}
	}
}
