// Command animrig loads a skinned glTF asset, drives its skeleton through a blend tree and
// draws the posed skeleton to image files or the terminal.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/config"
	"github.com/Carmen-Shannon/oxy-anim/engine/loader"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	gltfPath := flag.String("gltf", "", "Path to a .gltf or .glb asset")
	treePath := flag.String("tree", "", "Path to a blend tree JSON file (default: play the first clip)")
	outputDir := flag.String("out", "", "Output directory for frames (default: frames)")
	format := flag.String("format", "", "Frame format: png or webp (default: png)")
	terminal := flag.Bool("terminal", false, "Animate in the terminal instead of writing frames")
	crowdSize := flag.Int("crowd", 0, "Evaluate N controllers in parallel and report throughput")
	workers := flag.Int("workers", 0, "Crowd worker goroutines (default: NumCPU-1)")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	cfg.Resolve(config.Flags{
		GLTFPath:  *gltfPath,
		TreePath:  *treePath,
		OutputDir: *outputDir,
		Format:    *format,
		Terminal:  *terminal,
		Crowd:     *crowdSize,
		Workers:   *workers,
		Verbose:   *verbose,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	var logOut io.Writer = os.Stderr
	if cfg.Terminal {
		// The screen owns the terminal.
		logOut = io.Discard
	}
	common.SetLogger(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level})))

	l := loader.NewLoader(
		loader.WithSampleRate(cfg.AnimationSampleRate),
		loader.WithSkinIndex(cfg.Skin()),
		loader.WithClipDurations(cfg.ClipDurations),
	)
	asset, err := l.LoadGLTF(cfg.GLTFPath)
	if err != nil {
		return err
	}
	if len(asset.Clips) == 0 {
		return fmt.Errorf("%s has no animations for its skeleton", cfg.GLTFPath)
	}
	common.Logger().Info("asset loaded",
		"name", asset.Name,
		"joints", asset.Skeleton.JointCount(),
		"clips", asset.ClipNames,
	)

	r, err := newRig(cfg, l, asset)
	if err != nil {
		return err
	}

	switch {
	case cfg.CrowdSize > 0:
		return runCrowd(cfg, r)
	case cfg.Terminal:
		return runTerminal(cfg, r)
	default:
		return renderFrames(cfg, r)
	}
}
