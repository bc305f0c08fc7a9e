package worker

import (
	"context"
	"errors"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// Pool manages a pool of workers that execute jobs concurrently
type Pool struct {
	workers    int
	jobQueue   chan Job
	results    chan Result
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(workers int) *Pool {
	return NewPoolWithContext(context.Background(), workers)
}

// NewPoolWithContext creates a pool whose jobs observe cancellation of parent
func NewPoolWithContext(parent context.Context, workers int) *Pool {
	return newPool(parent, workers, 0)
}

// newPool sizes the results buffer to at least resultBuffer. Callers that
// submit more than a few times the worker count before calling Wait must
// buffer every result, otherwise Submit blocks on a full pipeline.
func newPool(parent context.Context, workers, resultBuffer int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if resultBuffer < workers*2 {
		resultBuffer = workers * 2
	}

	ctx, cancel := context.WithCancel(parent)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan Job, workers*2),
		results:    make(chan Result, resultBuffer),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the worker pool
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			// A finished result is delivered whenever the buffer has room,
			// even after cancellation
			select {
			case p.results <- result:
				continue
			default:
			}
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit submits a job to the pool for execution. It returns false if the
// pool was shut down before the job could be queued.
func (p *Pool) Submit(job Job) bool {
	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- job:
		return true
	}
}

// Wait closes the queue, waits for all jobs to complete and returns the
// results in completion order
func (p *Pool) Wait() []Result {
	close(p.jobQueue)

	go func() {
		p.wg.Wait()
		p.closeResults()
		p.cancelFunc()
	}()

	var results []Result
	for result := range p.results {
		results = append(results, result)
	}

	return results
}

// Shutdown shuts down the worker pool immediately
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}

// indexedJob runs fn on one input and remembers its position
type indexedJob[In, Out any] struct {
	index int
	input In
	fn    func(ctx context.Context, in In) (Out, error)
}

type indexedResult[Out any] struct {
	index int
	value Out
	err   error
}

func (r *indexedResult[Out]) GetError() error { return r.err }

func (j *indexedJob[In, Out]) Execute(ctx context.Context) Result {
	out, err := j.fn(ctx, j.input)
	return &indexedResult[Out]{index: j.index, value: out, err: err}
}

// Outcome is the per-input result of RunOrdered
type Outcome[Out any] struct {
	Value Out
	Err   error
}

// RunOrdered applies fn to every input on a pool of the given size and
// returns the outcomes in input order, regardless of completion order
func RunOrdered[In, Out any](ctx context.Context, workers int, inputs []In, fn func(ctx context.Context, in In) (Out, error)) []Outcome[Out] {
	outcomes := make([]Outcome[Out], len(inputs))
	if len(inputs) == 0 {
		return outcomes
	}

	pool := newPool(ctx, workers, len(inputs))
	pool.Start()

	for i, in := range inputs {
		if !pool.Submit(&indexedJob[In, Out]{index: i, input: in, fn: fn}) {
			break
		}
	}

	ran := make([]bool, len(inputs))
	for _, r := range pool.Wait() {
		res := r.(*indexedResult[Out])
		outcomes[res.index] = Outcome[Out]{Value: res.value, Err: res.err}
		ran[res.index] = true
	}

	// Inputs that never ran report the cancellation cause
	for i := range outcomes {
		if !ran[i] {
			outcomes[i].Err = errNotRun(ctx)
		}
	}

	return outcomes
}

func errNotRun(ctx context.Context) error {
	if err := context.Cause(ctx); err != nil {
		return err
	}
	return errors.New("job did not run")
}
