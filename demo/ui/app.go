// Package ui is the fyne front end: the parameter panel next to a software-rendered
// viewport, with the frame loop running on its own goroutine.
package ui

import (
	"context"
	"fmt"
	"image/png"
	"sync"
	"time"

	"github.com/gorustyt/fyne/v2"
	"github.com/gorustyt/fyne/v2/app"
	"github.com/gorustyt/fyne/v2/container"
	"github.com/gorustyt/fyne/v2/dialog"
	"github.com/gorustyt/fyne/v2/storage"
	"github.com/gorustyt/fyne/v2/theme"
	"github.com/gorustyt/fyne/v2/widget"
	"go.uber.org/zap"

	"gonoisesurface/geometry"
	"gonoisesurface/loop"
	"gonoisesurface/params"
	"gonoisesurface/raster"
)

const refreshInterval = time.Second / 30

type Options struct {
	Title         string
	Width, Height int
}

// Run shows the window and blocks until it is closed or ctx is done. The loop is
// started here and stopped before Run returns.
func Run(ctx context.Context, opts Options, store *params.Store, provider geometry.Provider, lp *loop.Loop, r *raster.Renderer, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	a := app.NewWithID("gonoisesurface")
	w := a.NewWindow(opts.Title)

	panel := NewPanel(w, store, provider, lp, log)
	defer panel.Close()
	view := NewViewport(r, lp)
	SetMainMenu(a, w, view)
	w.SetContent(container.NewBorder(nil, nil, panel.GetRenderObj(), nil, view.GetRenderObj()))
	w.Resize(fyne.NewSize(float32(opts.Width), float32(opts.Height)))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var runErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		if runErr = lp.Run(ctx); runErr != nil {
			log.Error("frame loop", zap.Error(runErr))
		}
	}()
	go func() {
		defer wg.Done()
		t := time.NewTicker(refreshInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				view.Refresh()
				panel.refreshStats(r.FragmentFaults())
			}
		}
	}()
	go func() {
		<-ctx.Done()
		a.Quit()
	}()

	w.ShowAndRun()
	cancel()
	wg.Wait()
	return runErr
}

func SetMainMenu(a fyne.App, w fyne.Window, view *Viewport) {
	saveItem := fyne.NewMenuItem("Save Frame", func() {
		fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if writer == nil {
				return
			}
			defer writer.Close()
			if err := png.Encode(writer, view.Snapshot()); err != nil {
				dialog.ShowError(fmt.Errorf("save frame: %w", err), w)
			}
		}, w)
		fd.SetFilter(storage.NewExtensionFileFilter([]string{".png"}))
		fd.SetFileName("surface.png")
		fd.Show()
	})

	label := widget.NewLabel("setting theme")
	themes := container.NewGridWithColumns(2,
		widget.NewButton("Dark", func() {
			fyne.CurrentApp().Settings().SetTheme(theme.DarkTheme())
		}),
		widget.NewButton("Light", func() {
			fyne.CurrentApp().Settings().SetTheme(theme.LightTheme())
		}),
	)
	themeItem := fyne.NewMenuItem("Theme", func() {
		w1 := a.NewWindow("Theme Settings")
		w1.SetContent(container.NewVBox(
			label,
			themes,
		))
		w1.Resize(fyne.NewSize(200, 200))
		w1.Show()
	})

	// a quit item will be appended to our first (File) menu
	w.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu("File", saveItem),
		fyne.NewMenu("Settings", themeItem),
	))
}
