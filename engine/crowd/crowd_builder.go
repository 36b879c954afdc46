package crowd

import "time"

// CrowdBuilderOption is a functional option for configuring a Crowd during construction.
type CrowdBuilderOption func(*crowd)

// WithWorkers sets the number of pool goroutines.
//
// Parameters:
//   - n: the worker count, values below 1 are ignored
//
// Returns:
//   - CrowdBuilderOption: a function that sets the worker count
func WithWorkers(n int) CrowdBuilderOption {
	return func(c *crowd) {
		if n >= 1 {
			c.workers = n
		}
	}
}

// WithQueueSize sets the pool's task queue capacity.
//
// Parameters:
//   - n: the queue size, values below 1 are ignored
//
// Returns:
//   - CrowdBuilderOption: a function that sets the queue size
func WithQueueSize(n int) CrowdBuilderOption {
	return func(c *crowd) {
		if n >= 1 {
			c.queueSize = n
		}
	}
}

// WithIdleTimeout sets how long an idle worker waits for a task before exiting.
//
// Parameters:
//   - d: the idle timeout
//
// Returns:
//   - CrowdBuilderOption: a function that sets the idle timeout
func WithIdleTimeout(d time.Duration) CrowdBuilderOption {
	return func(c *crowd) {
		if d > 0 {
			c.idleTimeout = d
		}
	}
}
