// Package workerpool runs a fixed-size pool of goroutines draining a shared
// task queue, supervised by a tomb so the pool shuts down cleanly with the
// rest of the process.
package workerpool

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

// TaskQueueSize bounds how many pending connections may queue before AddTask
// blocks.
const TaskQueueSize = 100

// Worker is the function every pool goroutine runs against each task.
type Worker = func(t *tomb.Tomb, task any) error

// Pool is a fixed-size pool of worker goroutines.
type Pool struct {
	size  int
	tasks chan any
}

// New creates a Pool with the given number of workers.
func New(size int) *Pool {
	return &Pool{
		size:  size,
		tasks: make(chan any, TaskQueueSize),
	}
}

// AddTask enqueues a task for the next free worker.
func (p *Pool) AddTask(task any) {
	p.tasks <- task
}

// Run starts size worker goroutines under t, each running work against
// tasks as they arrive, until t is dying.
func (p *Pool) Run(t *tomb.Tomb, work Worker) {
	log.Info().Int("workers", p.size).Msg("starting worker pool")
	for i := 0; i < p.size; i++ {
		t.Go(func() error {
			return p.worker(t, work)
		})
	}
}

func (p *Pool) worker(t *tomb.Tomb, work Worker) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case task := <-p.tasks:
			if err := work(t, task); err != nil {
				log.Error().Err(err).Msg("worker exiting")
				return err
			}
		}
	}
}
