package pipeline

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Stage defines the interface for a pipeline stage.
// Each stage processes input from an input channel and sends results to an output channel.
// A stage must return once ctx is done or its input is closed, so that a cancel
// reaching the first stage drains the whole chain.
type Stage interface {
	Execute(ctx context.Context, input <-chan interface{}, output chan<- interface{}, logger *zap.Logger) error
}

// Pipeline manages a sequence of stages that process data in a chain.
type Pipeline struct {
	stages []Stage     // List of stages in the pipeline
	logger *zap.Logger // Logger for pipeline-wide logging
}

// New creates a new Pipeline instance with the given logger.
func New(logger *zap.Logger) *Pipeline {
	return &Pipeline{
		logger: logger,
	}
}

// AddStage adds a stage to the pipeline's sequence.
func (p *Pipeline) AddStage(stage Stage) {
	p.stages = append(p.stages, stage)
}

// Run executes the pipeline with the given input channel.
//
// The pipeline chains stages such that each stage's output becomes the next stage's input.
// The first stage uses the provided input channel, and subsequent stages use channels created internally.
// Whatever the last stage emits is collected and returned in emission order.
//
// On cancellation Run waits for every stage to return before it does.
//
// Returns:
//   - The last stage's output and the first stage error, or ctx.Err() on cancellation.
func (p *Pipeline) Run(ctx context.Context, input <-chan interface{}) ([]interface{}, error) {
	if len(p.stages) == 0 {
		p.logger.Warn("no stages in pipeline")
		return nil, nil
	}

	channels := make([]chan interface{}, len(p.stages))
	for i := range channels {
		channels[i] = make(chan interface{}, 50)
	}

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	wg.Add(len(p.stages))

	for i, stage := range p.stages {
		inChan := input
		if i > 0 {
			inChan = channels[i-1]
		}
		outChan := channels[i]

		go func(stage Stage, in <-chan interface{}, out chan<- interface{}, idx int) {
			defer wg.Done()
			defer close(out)
			if err := stage.Execute(ctx, in, out, p.logger); err != nil {
				p.logger.Error("stage execution failed",
					zap.Int("stage", idx),
					zap.Error(err))
				errOnce.Do(func() { firstErr = err })
			}
			// keep upstream from blocking on a stage that gave up early
			for {
				select {
				case _, ok := <-in:
					if !ok {
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}(stage, inChan, outChan, i)
	}

	var results []interface{}
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for item := range channels[len(channels)-1] {
			results = append(results, item)
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		<-collected
		close(done)
	}()

	select {
	case <-done:
		if firstErr != nil {
			return results, firstErr
		}
		p.logger.Info("pipeline completed successfully")
		return results, nil
	case <-ctx.Done():
		p.logger.Info("pipeline canceled, waiting for stages", zap.Error(ctx.Err()))
		<-done
		return nil, ctx.Err()
	}
}
