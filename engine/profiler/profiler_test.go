package profiler

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

func TestTickBeforeInterval(t *testing.T) {
	p := NewProfiler(WithInterval(time.Hour))
	for i := 0; i < 10; i++ {
		if p.Tick(4) {
			t.Fatalf("Tick %d reported before the interval elapsed", i)
		}
	}
	if p.Last() != (Stats{}) {
		t.Errorf("Last = %+v, want zero", p.Last())
	}
}

func TestTickReports(t *testing.T) {
	var buf bytes.Buffer
	common.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { common.SetLogger(nil) })

	p := NewProfiler(WithInterval(time.Millisecond))
	p.Tick(10)
	time.Sleep(5 * time.Millisecond)

	reported := false
	for i := 0; i < 100 && !reported; i++ {
		reported = p.Tick(10)
		if !reported {
			time.Sleep(time.Millisecond)
		}
	}
	if !reported {
		t.Fatal("Tick never reported")
	}

	s := p.Last()
	if s.EvaluationsPerSecond <= 0 || s.FramesPerSecond <= 0 {
		t.Errorf("rates = %v evals/s, %v fps, want positive", s.EvaluationsPerSecond, s.FramesPerSecond)
	}
	if got := s.EvaluationsPerSecond / s.FramesPerSecond; got < 9.99 || got > 10.01 {
		t.Errorf("evaluations per frame = %v, want 10", got)
	}
	if s.HeapMB <= 0 || s.SysMB <= 0 {
		t.Errorf("memory = %v heap, %v sys, want positive", s.HeapMB, s.SysMB)
	}
	if out := buf.String(); !strings.Contains(out, "msg=profiler") || !strings.Contains(out, "evals_per_sec=") {
		t.Errorf("log output = %q", out)
	}
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithInterval(0), WithInterval(-time.Second))
	if p.updateInterval != time.Second {
		t.Errorf("interval = %v, want 1s", p.updateInterval)
	}
}
