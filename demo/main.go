package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"go.uber.org/zap"

	"gonoisesurface/camera"
	"gonoisesurface/common"
	"gonoisesurface/common/logger"
	"gonoisesurface/demo/config"
	"gonoisesurface/demo/gui"
	"gonoisesurface/demo/ui"
	"gonoisesurface/geometry"
	"gonoisesurface/loop"
	"gonoisesurface/noise"
	"gonoisesurface/params"
	"gonoisesurface/raster"
	"gonoisesurface/surface"
)

func init() {
	// glfw and fyne both need the main thread
	runtime.LockOSThread()
}

type flags struct {
	config   string
	mode     string
	frames   int
	out      string
	geometry string
	meshOut  string
}

func main() {
	var f flags
	flag.StringVar(&f.config, "config", "", "TOML configuration file")
	flag.StringVar(&f.mode, "mode", "", config.Usage())
	flag.IntVar(&f.frames, "frames", 0, "number of frames to render in headless mode")
	flag.StringVar(&f.out, "out", "", "directory for headless PNG frames")
	flag.StringVar(&f.geometry, "geometry", "", "initial geometry: Plane, Sphere, Capsule or Dodecahedron")
	flag.StringVar(&f.meshOut, "mesh-out", "", "headless: write the last displaced mesh to this file")
	flag.Parse()

	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log, flush, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, f.meshOut, log)
	stop()
	if err != nil {
		log.Error("exit", zap.Error(err))
		flush()
		os.Exit(1)
	}
	flush()
}

func loadConfig(f flags) (*config.Config, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return nil, err
	}
	if f.mode != "" {
		cfg.Mode = config.Mode(f.mode)
	}
	if f.frames > 0 {
		cfg.Frames = f.frames
	}
	if f.out != "" {
		cfg.Out = f.out
	}
	if f.geometry != "" {
		cfg.Geometry.Initial = f.geometry
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	cfg.Mode, _ = config.ParseMode(string(cfg.Mode))
	return cfg, nil
}

// app is what every front end shares.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	store    *params.Store
	eval     *surface.Evaluator
	provider *geometry.Builder
	initial  *geometry.Handle
	cam      *camera.Orbit
}

func (a *app) loopOptions() loop.Options {
	return loop.Options{
		FixedStep:      a.cfg.Loop.FixedStep,
		TickRate:       a.cfg.Loop.TickRate,
		Workers:        a.cfg.Loop.Workers,
		ResizeDebounce: a.cfg.Loop.ResizeDebounce.Duration,
	}
}

func (a *app) newLoop(target loop.RenderTarget) (*loop.Loop, error) {
	lp, err := loop.New(a.store, a.eval, target, a.initial, a.loopOptions(), a.log.Named("loop"))
	if err != nil {
		_ = a.initial.Dispose()
		return nil, err
	}
	return lp, nil
}

func (a *app) clear() common.Vec4 {
	return common.Vec4(a.cfg.Window.ClearColor)
}

func run(ctx context.Context, cfg *config.Config, meshOut string, log *zap.Logger) error {
	store, err := params.NewStore(params.DefaultTable())
	if err != nil {
		return err
	}
	backend, err := noise.ParseBackend(cfg.Noise.Backend)
	if err != nil {
		return err
	}
	field, err := noise.New(backend, cfg.Noise.Seed)
	if err != nil {
		return err
	}
	kind, err := geometry.ParseKind(cfg.Geometry.Initial)
	if err != nil {
		return err
	}
	provider := geometry.NewBuilder(geometry.DefaultParams(), log.Named("geometry"))
	initial, err := provider.Create(kind)
	if err != nil {
		return err
	}
	a := &app{
		cfg:      cfg,
		log:      log,
		store:    store,
		eval:     surface.NewEvaluator(field),
		provider: provider,
		initial:  initial,
		cam:      camera.NewOrbit(),
	}
	log.Info("starting",
		zap.String("mode", string(cfg.Mode)),
		zap.String("noise", string(backend)),
		zap.Stringer("geometry", initial))

	switch cfg.Mode {
	case config.ModeGL:
		return a.runGL(ctx)
	case config.ModePanel:
		return a.runPanel(ctx)
	case config.ModeHeadless:
		return a.runHeadless(ctx, meshOut)
	}
	return errors.New("no front end for mode " + string(cfg.Mode))
}

func (a *app) runGL(ctx context.Context) error {
	viewer, err := gui.NewViewer(gui.Options{
		Title:  a.cfg.Window.Title,
		Width:  a.cfg.Window.Width,
		Height: a.cfg.Window.Height,
		Clear:  a.clear(),
	}, a.cam, a.log.Named("gui"))
	if err != nil {
		_ = a.initial.Dispose()
		return err
	}
	defer viewer.Close()
	lp, err := a.newLoop(viewer.Renderer())
	if err != nil {
		return err
	}
	return viewer.Run(ctx, lp, a.store, a.provider)
}

func (a *app) runPanel(ctx context.Context) error {
	r, err := a.newRaster()
	if err != nil {
		return err
	}
	lp, err := a.newLoop(r)
	if err != nil {
		return err
	}
	return ui.Run(ctx, ui.Options{
		Title:  a.cfg.Window.Title,
		Width:  a.cfg.Window.Width,
		Height: a.cfg.Window.Height,
	}, a.store, a.provider, lp, r, a.log.Named("ui"))
}

func (a *app) newRaster() (*raster.Renderer, error) {
	r, err := raster.New(a.cam, raster.Options{
		Width:   a.cfg.Window.Width,
		Height:  a.cfg.Window.Height,
		Clear:   a.clear(),
		Workers: a.cfg.Loop.Workers,
		HUD:     a.cfg.Window.HUD,
	}, a.log.Named("raster"))
	if err != nil {
		_ = a.initial.Dispose()
		return nil, err
	}
	return r, nil
}
