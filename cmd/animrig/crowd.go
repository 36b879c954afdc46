package main

import (
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine/config"
	"github.com/Carmen-Shannon/oxy-anim/engine/crowd"
	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
)

// crowdStagger offsets each controller's start time so the crowd is out of phase.
const crowdStagger = 0.137

// runCrowd evaluates cfg.CrowdSize controllers in parallel over the playback range and
// reports throughput through the profiler.
func runCrowd(cfg config.Config, r *rig) error {
	var options []crowd.CrowdBuilderOption
	if cfg.Workers > 0 {
		options = append(options, crowd.WithWorkers(cfg.Workers))
	}
	c := crowd.NewCrowd(options...)
	defer c.Release()

	for i := 0; i < cfg.CrowdSize; i++ {
		ctrl, err := r.newController(cfg, cfg.StartTime+float32(i)*crowdStagger)
		if err != nil {
			return err
		}
		c.Add(ctrl)
	}

	times := frameTimes(cfg.StartTime, r.endTime(cfg), cfg.FrameRate)
	dt := 1 / cfg.FrameRate
	prof := profiler.NewProfiler()

	fmt.Printf("Evaluating %d controllers x %d frames on %d workers\n", c.Len(), len(times), c.Workers())
	start := time.Now()
	for range times {
		if err := c.Update(dt); err != nil {
			return err
		}
		prof.Tick(c.Len())
	}
	elapsed := time.Since(start)

	evals := float64(c.Len() * len(times))
	fmt.Printf("Done in %.3fs: %.0f evaluations/s\n", elapsed.Seconds(), evals/max(elapsed.Seconds(), 1e-9))
	return nil
}
