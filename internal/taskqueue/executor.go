// Package taskqueue runs fire-and-forget jobs on a small pool of worker
// goroutines partitioned by a stable hash of a key. Jobs sharing a key (for
// this engine: a post id) execute strictly in submission order, which is what
// keeps comment appends from racing each other; jobs with different keys may
// run in parallel.
package taskqueue

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

type queuedJob struct {
	ctx context.Context
	job Job
}

// Executor is the sharded worker pool. Construct with New, release with Stop.
type Executor struct {
	cfg    Config
	queues []chan queuedJob

	done   chan struct{}
	closed uint32

	wg sync.WaitGroup
}

// New constructs the executor and starts its shard workers, applying
// zero-value defaults to cfg.
func New(cfg Config) *Executor {
	if cfg.Shards <= 0 {
		cfg.Shards = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 128
	}
	if cfg.EnqueueTimeout <= 0 {
		cfg.EnqueueTimeout = 100 * time.Millisecond
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 100 * time.Millisecond
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 10 * time.Second
	}

	e := &Executor{
		cfg:    cfg,
		queues: make([]chan queuedJob, cfg.Shards),
		done:   make(chan struct{}),
	}
	for i := 0; i < cfg.Shards; i++ {
		ch := make(chan queuedJob, cfg.QueueSize)
		e.queues[i] = ch
		e.wg.Add(1)
		go e.runWorker(i, ch)
	}
	return e
}

// Submit enqueues job on the shard derived from key.
//
//   - nil on success
//   - ErrExecutorClosed after Stop
//   - *QueueFullError (matches ErrQueueFull) when the shard stays full past
//     EnqueueTimeout
//   - ctx.Err() if the caller's context is canceled first
func (e *Executor) Submit(ctx context.Context, key string, job Job) error {
	if atomic.LoadUint32(&e.closed) == 1 {
		return ErrExecutorClosed
	}
	select {
	case <-e.done:
		return ErrExecutorClosed
	default:
	}

	shard := e.shardFor(key)
	ch := e.queues[shard]

	timer := time.NewTimer(e.cfg.EnqueueTimeout)
	defer timer.Stop()

	select {
	case ch <- queuedJob{ctx: ctx, job: job}:
		submissionsTotal.WithLabelValues(labelFor(shard)).Inc()
		return nil
	case <-e.done:
		return ErrExecutorClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		queueFullTotal.WithLabelValues(labelFor(shard)).Inc()
		return &QueueFullError{Shard: shard, Length: len(ch), Capacity: cap(ch)}
	}
}

// Barrier blocks until every job submitted for key before the call has run,
// by pushing a marker job through the same shard and waiting for it.
func (e *Executor) Barrier(ctx context.Context, key string) error {
	done := make(chan struct{})
	marker := JobFunc(func(context.Context) error {
		close(done)
		return nil
	})
	if err := e.Submit(ctx, key, marker); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Stop tells every worker to drain its queue, waits for them, and returns.
// Idempotent and safe for concurrent use.
func (e *Executor) Stop() {
	if !atomic.CompareAndSwapUint32(&e.closed, 0, 1) {
		return
	}
	close(e.done)
	e.wg.Wait()
}

// Close lets Executor satisfy io.Closer.
func (e *Executor) Close() error {
	e.Stop()
	return nil
}

func (e *Executor) runWorker(idx int, ch <-chan queuedJob) {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Int("shard", idx).Interface("panic", r).Msg("taskqueue worker panicked")
		}
	}()

	label := labelFor(idx)

	for {
		select {
		case qj := <-ch:
			if qj.job == nil {
				continue
			}
			select {
			case <-qj.ctx.Done():
				// Skip a job whose context died while queued so it cannot
				// stall the shard.
				e.handleError(qj.ctx.Err())
			default:
				e.runJob(qj, label)
			}
			queueDepth.WithLabelValues(label).Set(float64(len(ch)))

		case <-e.done:
			drained := 0
			for {
				select {
				case qj := <-ch:
					if qj.job != nil {
						_ = runRecovered(qj.ctx, qj.job)
						drained++
					}
				default:
					if drained > 0 {
						log.Debug().Int("shard", idx).Int("jobs", drained).Msg("taskqueue shard drained on stop")
					}
					queueDepth.WithLabelValues(label).Set(0)
					return
				}
			}
		}
	}
}

func (e *Executor) runJob(qj queuedJob, label string) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = e.cfg.BaseBackoff
	exp.Multiplier = 2
	exp.MaxInterval = e.cfg.MaxInterval
	exp.Reset()

	for attempt := 1; ; attempt++ {
		start := time.Now()
		err := runRecovered(qj.ctx, qj.job)
		runDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())

		if err == nil {
			return
		}
		if attempt >= e.cfg.MaxAttempts {
			e.handleError(err)
			return
		}
		select {
		case <-time.After(exp.NextBackOff()):
		case <-qj.ctx.Done():
			e.handleError(qj.ctx.Err())
			return
		case <-e.done:
			return
		}
	}
}

// runRecovered converts a job panic into an error so one bad task can never
// take its shard worker down with it.
func runRecovered(ctx context.Context, j Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("taskqueue: job panic: %v", r)
		}
	}()
	return j.Run(ctx)
}

func (e *Executor) handleError(err error) {
	if err == nil || e.cfg.ErrorHandler == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("taskqueue error handler panicked")
		}
	}()
	e.cfg.ErrorHandler(err)
}

func (e *Executor) shardFor(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32()) % e.cfg.Shards
}
