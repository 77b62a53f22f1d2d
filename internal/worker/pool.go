// Package worker analyzes many match logs concurrently on a bounded pool.
// Each job is one log; logs are never merged.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/snapstats/analyzer/internal/loader"
	"github.com/snapstats/analyzer/internal/logic"
	"github.com/snapstats/analyzer/internal/models"
)

// Prometheus metrics
var (
	jobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapstats_batch_jobs_total",
		Help: "Match logs processed by the batch pool, by result",
	}, []string{"result"})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "snapstats_batch_queue_depth",
		Help: "Current depth of the batch queue",
	})

	jobsShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapstats_batch_jobs_shed_total",
		Help: "Jobs rejected because the queue was full or stopped",
	})
)

// ErrPoolStopped is returned for jobs that were still queued when the pool's
// context ended.
var ErrPoolStopped = errors.New("worker pool stopped")

// Job is one match log to analyze.
type Job struct {
	Source string
	Loader loader.Loader
	index  int
}

// Result is the outcome of one job. Exactly one of Report and Err is set.
type Result struct {
	Source   string
	Report   *models.Report
	Err      error
	Duration time.Duration
	index    int
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount int
	QueueSize   int
	Normalize   logic.NormalizeOptions
	Analysis    logic.AnalysisService
	Logger      *zap.Logger
}

// Pool runs jobs on a fixed number of workers.
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	results  chan Result
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger

	mu      sync.RWMutex
	stopped bool
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Normalize.Padding == "" || cfg.Normalize.Delimiter == "" {
		cfg.Normalize = logic.DefaultNormalizeOptions()
	}
	if cfg.Analysis == nil {
		cfg.Analysis = logic.NewAnalysisService(nil, cfg.Logger)
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		results:  make(chan Result, cfg.QueueSize+cfg.WorkerCount),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.logger.Infow("Worker pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
	)
}

// Stop closes the queue, waits for queued jobs to finish and then closes
// Results.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobQueue)
	p.mu.Unlock()

	p.wg.Wait()
	if p.cancel != nil {
		p.cancel()
	}
	close(p.results)
	queueDepth.Set(0)
	p.logger.Info("Worker pool stopped")
}

// Enqueue adds a job without blocking. It returns false when the queue is
// full or the pool is stopped.
func (p *Pool) Enqueue(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped || p.ctx == nil || p.ctx.Err() != nil {
		jobsShed.Inc()
		return false
	}
	select {
	case p.jobQueue <- job:
		queueDepth.Set(float64(len(p.jobQueue)))
		return true
	default:
		p.logger.Warnw("Batch queue full, dropping job", "source", job.Source)
		jobsShed.Inc()
		return false
	}
}

// Results delivers one Result per accepted job. It is closed by Stop.
// It is buffered to QueueSize+WorkerCount; callers that enqueue more than
// that must drain it concurrently.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for job := range p.jobQueue {
		queueDepth.Set(float64(len(p.jobQueue)))

		start := time.Now()
		report, err := p.process(job)
		res := Result{
			Source:   job.Source,
			Report:   report,
			Err:      err,
			Duration: time.Since(start),
			index:    job.index,
		}

		if err != nil {
			jobsProcessed.WithLabelValues("error").Inc()
			p.logger.Warnw("Match log failed", "worker", id, "source", job.Source, "error", err)
		} else {
			jobsProcessed.WithLabelValues("ok").Inc()
			p.logger.Debugw("Match log analyzed", "worker", id, "source", job.Source, "games", report.Games, "duration", res.Duration)
		}
		p.results <- res
	}
}

func (p *Pool) process(job Job) (*models.Report, error) {
	if err := p.ctx.Err(); err != nil {
		return nil, ErrPoolStopped
	}

	records, err := job.Loader.Load(p.ctx)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	ds, err := logic.Normalize(records, p.config.Normalize)
	if err != nil {
		return nil, err
	}
	return p.config.Analysis.Analyze(p.ctx, ds)
}

// Run analyzes every job and returns the results in job order.
func Run(ctx context.Context, cfg PoolConfig, jobs []Job) []Result {
	if cfg.QueueSize < len(jobs) {
		cfg.QueueSize = len(jobs)
	}
	p := NewPool(cfg)
	p.Start(ctx)

	out := make([]Result, len(jobs))
	for i, job := range jobs {
		job.index = i
		if !p.Enqueue(job) {
			out[i] = Result{Source: job.Source, Err: ErrPoolStopped, index: i}
		}
	}
	p.Stop()

	for res := range p.Results() {
		out[res.index] = res
	}
	return out
}
