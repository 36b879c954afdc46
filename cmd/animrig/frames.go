package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/camera"
	"github.com/Carmen-Shannon/oxy-anim/engine/config"
	"github.com/Carmen-Shannon/oxy-anim/engine/debugdraw"
)

// renderFrames writes one snapshot per frame time into the output directory.
func renderFrames(cfg config.Config, r *rig) error {
	ctrl, err := r.newController(cfg, cfg.StartTime)
	if err != nil {
		return err
	}
	times := frameTimes(cfg.StartTime, r.endTime(cfg), cfg.FrameRate)

	cam := camera.NewCamera(camera.WithAzimuth(0.6))
	if err := frameCamera(cam, ctrl, times); err != nil {
		return err
	}

	renderer, err := debugdraw.NewRasterRenderer(cfg.ImageSize, cfg.ImageSize, cam.ViewProjectionMatrix(),
		debugdraw.WithSupersample(cfg.Supersample),
	)
	if err != nil {
		return err
	}
	defer renderer.Close()

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	fmt.Printf("Rendering %d frames of %s (%d joints) to %s\n", len(times), r.asset.Name, r.asset.Skeleton.JointCount(), cfg.OutputDir)
	start := time.Now()
	for i, t := range times {
		ctrl.SetTime(t)
		if err := ctrl.Evaluate(); err != nil {
			return err
		}

		if !inView(cam, ctrl.GlobalPoses()) {
			common.Logger().Warn("skeleton outside the view", "frame", i, "time", t)
		}

		renderer.Clear()
		if err := debugdraw.DrawSkeleton(r.asset.Skeleton, ctrl.GlobalPoses(), renderer, cfg.DrawLabels); err != nil {
			return err
		}

		path := filepath.Join(cfg.OutputDir, fmt.Sprintf("%s_%04d.%s", r.asset.Name, i, cfg.OutputFormat))
		if err := writeFrame(path, renderer, cfg.OutputFormat); err != nil {
			return err
		}
		common.Logger().Debug("frame written", "path", path, "time", t)
	}
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())
	return nil
}

func writeFrame(path string, renderer debugdraw.RasterRenderer, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)

	if format == config.FormatWebP {
		err = renderer.WriteWebP(w)
	} else {
		err = renderer.WritePNG(w)
	}
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
