// Package workerpool runs a bounded number of goroutines pulling
// connections off a shared queue, supervised by a tomb so the whole pool
// shuts down cleanly when the parent does.
package workerpool

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const taskChanSize = 128

// Task is a unit of work handed to a worker — a net.Conn, in practice.
type Task any

// WorkerFunc processes one task. Returning an error is fatal for that
// worker's goroutine (the tomb records it and begins tearing down).
type WorkerFunc func(t *tomb.Tomb, task Task) error

// Pool is a fixed-size pool of workers pulling from a shared task channel.
type Pool struct {
	size  int
	tasks chan Task
}

// New builds a pool with size workers. A size <= 0 is treated as 1.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{
		size:  size,
		tasks: make(chan Task, taskChanSize),
	}
}

// AddTask enqueues a task for the next free worker.
func (p *Pool) AddTask(task Task) {
	p.tasks <- task
}

// Run starts all workers under t and blocks until t is dying.
func (p *Pool) Run(t *tomb.Tomb, work WorkerFunc) {
	for i := 0; i < p.size; i++ {
		id := i
		t.Go(func() error {
			return p.worker(t, id, work)
		})
	}
	<-t.Dying()
}

func (p *Pool) worker(t *tomb.Tomb, id int, work WorkerFunc) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case task := <-p.tasks:
			if err := work(t, task); err != nil {
				log.Error().Err(err).Int("worker", id).Msg("worker exiting")
				return err
			}
		}
	}
}
