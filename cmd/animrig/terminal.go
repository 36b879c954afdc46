package main

import (
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine/camera"
	"github.com/Carmen-Shannon/oxy-anim/engine/config"
	"github.com/Carmen-Shannon/oxy-anim/engine/controller"
	"github.com/Carmen-Shannon/oxy-anim/engine/debugdraw"
	"github.com/gdamore/tcell/v2"
)

const terminalHelp = "arrows orbit  +/- zoom  space pause  q quit"

// viewer animates one controller on a tcell screen until the user quits.
type viewer struct {
	screen   tcell.Screen
	renderer debugdraw.TerminalRenderer
	cam      camera.Camera
	ctrl     controller.Controller
	labels   bool
	paused   bool
}

func runTerminal(cfg config.Config, r *rig) error {
	ctrl, err := r.newController(cfg, cfg.StartTime)
	if err != nil {
		return err
	}
	cam := camera.NewCamera(camera.WithAzimuth(0.6), camera.WithOrbitSpeed(0.15), camera.WithZoomSpeed(0.1))
	if err := frameCamera(cam, ctrl, frameTimes(cfg.StartTime, r.endTime(cfg), cfg.FrameRate)); err != nil {
		return err
	}
	ctrl.SetTime(cfg.StartTime)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	v := &viewer{
		screen:   screen,
		renderer: debugdraw.NewTerminalRenderer(screen, cam.ViewProjectionMatrix()),
		cam:      cam,
		ctrl:     ctrl,
		labels:   cfg.DrawLabels,
	}
	v.resize()
	return v.run(time.Duration(float64(time.Second) / float64(cfg.FrameRate)))
}

func (v *viewer) run(frame time.Duration) error {
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	dt := float32(frame.Seconds())
	for {
		select {
		case ev := <-events:
			if !v.handleInput(ev) {
				return nil
			}
		case <-ticker.C:
			if !v.paused {
				if err := v.ctrl.Update(dt); err != nil {
					return err
				}
			}
			if err := v.draw(); err != nil {
				return err
			}
		}
	}
}

func (v *viewer) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			v.cam.OrbitLeft()
		case tcell.KeyRight:
			v.cam.OrbitRight()
		case tcell.KeyUp:
			v.cam.OrbitUp()
		case tcell.KeyDown:
			v.cam.OrbitDown()
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case '+', '=':
				v.cam.Zoom(1)
			case '-':
				v.cam.Zoom(-1)
			case ' ':
				v.paused = !v.paused
			case 'l':
				v.labels = !v.labels
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
		v.resize()
	}
	return true
}

// resize matches the camera aspect to the screen.
func (v *viewer) resize() {
	v.renderer.SetViewProjection(v.cam.ViewProjectionMatrix())
	v.cam.SetAspect(v.renderer.Aspect())
}

func (v *viewer) draw() error {
	v.renderer.SetViewProjection(v.cam.ViewProjectionMatrix())
	v.renderer.Clear()
	if err := debugdraw.DrawSkeleton(v.ctrl.Skeleton(), v.ctrl.GlobalPoses(), v.renderer, v.labels); err != nil {
		return err
	}

	status := fmt.Sprintf("t=%6.2fs  %s", v.ctrl.Time(), terminalHelp)
	if v.paused {
		status = "[paused] " + status
	}
	if !inView(v.cam, v.ctrl.GlobalPoses()) {
		status = "[off screen] " + status
	}
	style := tcell.StyleDefault.Foreground(tcell.ColorGray)
	for i, ch := range status {
		v.screen.SetContent(i, 0, ch, nil, style)
	}
	v.renderer.Show()
	return nil
}
