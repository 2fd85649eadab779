package worker

import (
	"context"
	"sync"

	"github.com/miroads/go-road-risk/internal/models"
)

type ProcessFunc func(ctx context.Context, h *models.Hazard) error

// Pool fans normalized hazards out to a fixed set of workers. Used by the
// ingestion manager to decouple feed polling from persistence.
type Pool struct {
	numWorkers int
	jobs       chan *models.Hazard
	processor  ProcessFunc
	wg         sync.WaitGroup
}

func NewPool(numWorkers int, bufferSize int, processor ProcessFunc) *Pool {
	return &Pool{
		numWorkers: numWorkers,
		jobs:       make(chan *models.Hazard, bufferSize),
		processor:  processor,
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 1; i <= p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case h, ok := <-p.jobs:
			if !ok {
				return
			}
			p.processor(ctx, h)
		}
	}
}

func (p *Pool) Submit(h *models.Hazard) {
	p.jobs <- h
}

func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}
