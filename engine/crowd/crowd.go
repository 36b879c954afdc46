// Package crowd evaluates many animation controllers in parallel.
package crowd

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/controller"
)

// ErrReleased is returned by Update after Release.
var ErrReleased = errors.New("crowd released")

// crowd is the implementation of the Crowd interface.
type crowd struct {
	mu *sync.Mutex

	// pool keeps a bounded set of goroutines alive across frames.
	pool        worker.DynamicWorkerPool
	workers     int
	queueSize   int
	idleTimeout time.Duration

	controllers []controller.Controller
	errs        []error
	released    bool
}

// Crowd advances a set of controllers together, one pool task per controller, and waits for
// all of them before returning. Controllers own their buffers, so no evaluation state is shared
// between tasks.
type Crowd interface {
	// Add registers a controller.
	//
	// Parameters:
	//   - c: the controller, which must not be added to another crowd
	//
	// Returns:
	//   - int: the controller's index
	Add(c controller.Controller) int

	// Len returns the number of registered controllers.
	//
	// Returns:
	//   - int: the controller count
	Len() int

	// Controller returns a registered controller.
	//
	// Parameters:
	//   - i: the index returned by Add
	//
	// Returns:
	//   - controller.Controller: the controller, nil if i is out of range
	Controller(i int) controller.Controller

	// Update calls Update(dt) on every controller in parallel and blocks until all finish.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	//
	// Returns:
	//   - error: the per-controller errors joined, each prefixed with its index; ErrReleased after Release
	Update(dt float32) error

	// Workers returns the configured worker count.
	//
	// Returns:
	//   - int: the pool size
	Workers() int

	// Release drops every controller. Pool goroutines exit after their idle timeout.
	Release()
}

var _ Crowd = &crowd{}

// NewCrowd creates an empty crowd with one worker per CPU but one.
//
// Parameters:
//   - options: functional options to configure the crowd
//
// Returns:
//   - Crowd: the crowd
func NewCrowd(options ...CrowdBuilderOption) Crowd {
	c := &crowd{
		mu:          &sync.Mutex{},
		workers:     max(runtime.NumCPU()-1, 1),
		queueSize:   256,
		idleTimeout: time.Second,
	}
	for _, option := range options {
		option(c)
	}
	c.pool = worker.NewDynamicWorkerPool(c.workers, c.queueSize, c.idleTimeout)
	common.Logger().Debug("crowd created", "workers", c.workers, "queue", c.queueSize)
	return c
}

func (c *crowd) Add(ctrl controller.Controller) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controllers = append(c.controllers, ctrl)
	c.errs = append(c.errs, nil)
	return len(c.controllers) - 1
}

func (c *crowd) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.controllers)
}

func (c *crowd) Controller(i int) controller.Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.controllers) {
		return nil
	}
	return c.controllers[i]
}

func (c *crowd) Update(dt float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return ErrReleased
	}

	// Workers are reused across frames; the WaitGroup is the frame barrier.
	var wg sync.WaitGroup
	for i, ctrl := range c.controllers {
		wg.Add(1)
		c.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				c.errs[i] = ctrl.Update(dt)
				return nil, nil
			},
		})
	}
	wg.Wait()

	var failed []error
	for i, err := range c.errs {
		if err != nil {
			failed = append(failed, fmt.Errorf("controller %d: %w", i, err))
			c.errs[i] = nil
		}
	}
	return errors.Join(failed...)
}

func (c *crowd) Workers() int {
	return c.workers
}

func (c *crowd) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controllers = nil
	c.errs = nil
	c.released = true
}
