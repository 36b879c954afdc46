// Package profiler reports pose evaluation throughput and memory statistics.
package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

// Stats is one interval's worth of measurements.
type Stats struct {
	EvaluationsPerSecond float64
	FramesPerSecond      float64
	HeapMB               float64
	AllocRateMB          float64
	GCCount              uint32
	LastPauseUs          uint64
	MaxPauseUs           uint64
	SysMB                float64
}

// Profiler tracks evaluation rate and memory statistics for performance monitoring.
// Outputs stats to the shared logger at a configurable interval.
type Profiler struct {
	frameCount      int
	evaluationCount int
	lastTime        time.Time
	updateInterval  time.Duration
	memStats        runtime.MemStats
	lastGCCount     uint32
	lastTotalAlloc  uint64
	last            Stats
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
	for _, option := range options {
		option(p)
	}

	runtime.ReadMemStats(&p.memStats)
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return p
}

// Tick should be called once per frame with the number of poses evaluated that frame.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: evaluations and frames per second, heap usage, allocation rate,
// GC count/pause times, total memory.
//
// Parameters:
//   - evaluations: controllers evaluated since the previous tick
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(evaluations int) bool {
	p.frameCount++
	p.evaluationCount += evaluations
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval || elapsed <= 0 {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	seconds := elapsed.Seconds()

	s := Stats{
		EvaluationsPerSecond: float64(p.evaluationCount) / seconds,
		FramesPerSecond:      float64(p.frameCount) / seconds,
		// Alloc is live heap; TotalAlloc only grows and tracks churn.
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / seconds,
		GCCount:     p.memStats.NumGC,
		SysMB:       float64(p.memStats.Sys) / 1024 / 1024,
	}

	if gcCount := p.memStats.NumGC; gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses.
		s.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			s.MaxPauseUs = max(s.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	common.Logger().Info("profiler",
		"evals_per_sec", s.EvaluationsPerSecond,
		"fps", s.FramesPerSecond,
		"heap_mb", s.HeapMB,
		"alloc_rate_mb_per_sec", s.AllocRateMB,
		"gc", s.GCCount,
		"gc_last_us", s.LastPauseUs,
		"gc_max_us", s.MaxPauseUs,
		"sys_mb", s.SysMB,
	)

	p.last = s
	p.frameCount = 0
	p.evaluationCount = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the statistics logged by the most recent reporting Tick.
//
// Returns:
//   - Stats: the last interval's measurements, zero before the first report
func (p *Profiler) Last() Stats {
	return p.last
}
