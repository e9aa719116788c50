package ui

import (
	"image/color"
	"sync/atomic"

	"github.com/gorustyt/fyne/v2"
	"github.com/gorustyt/fyne/v2/canvas"
	"github.com/gorustyt/fyne/v2/container"
	"github.com/gorustyt/fyne/v2/data/binding"
	"github.com/gorustyt/fyne/v2/dialog"
	"github.com/gorustyt/fyne/v2/widget"
	"go.uber.org/zap"

	"gonoisesurface/common"
	"gonoisesurface/geometry"
	"gonoisesurface/loop"
	"gonoisesurface/params"
)

// folders lists the panel sections below "Geometry", in display order.
var folders = []string{
	params.GroupColor1,
	params.GroupColor2,
	params.GroupColor3,
	params.GroupNoise,
	params.GroupOther,
}

// Panel edits the parameter store. Widgets write through Store.Set and follow the
// store through subscriptions, so writes from elsewhere show up too.
type Panel struct {
	log      *zap.Logger
	win      fyne.Window
	store    *params.Store
	provider geometry.Provider
	loop     *loop.Loop

	c      *fyne.Container
	stats  binding.String
	unsubs []func()

	// syncing is set while a store change is pushed into the widgets, whose
	// OnChanged would otherwise write the same value straight back.
	syncing atomic.Bool
}

func NewPanel(win fyne.Window, store *params.Store, provider geometry.Provider, lp *loop.Loop, log *zap.Logger) *Panel {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Panel{log: log, win: win, store: store, provider: provider, loop: lp, stats: binding.NewString()}

	groups := map[string][]fyne.CanvasObject{}
	for _, d := range store.Table() {
		if d.Hidden {
			continue
		}
		switch d.Kind {
		case params.KindScalar:
			groups[d.Group] = append(groups[d.Group], p.scalarControl(d))
		case params.KindColor:
			groups[d.Group] = append(groups[d.Group], p.colorControl(d)...)
		}
	}

	acc := widget.NewAccordion(widget.NewAccordionItem("Geometry", p.geometryControl()))
	for _, name := range folders {
		if objs := groups[name]; len(objs) > 0 {
			acc.Append(widget.NewAccordionItem(name, container.NewVBox(objs...)))
		}
	}
	acc.MultiOpen = true
	acc.OpenAll()

	p.c = container.NewVBox(
		acc,
		widget.NewSeparator(),
		widget.NewButton("Reset", p.reset),
		widget.NewLabelWithData(p.stats),
	)
	return p
}

func (p *Panel) GetRenderObj() fyne.CanvasObject {
	s := container.NewVScroll(p.c)
	s.SetMinSize(fyne.NewSize(280, 600))
	return container.NewBorder(widget.NewLabel("Parameters"), nil, nil, nil, s)
}

// Close drops the store subscriptions.
func (p *Panel) Close() {
	for _, u := range p.unsubs {
		u()
	}
	p.unsubs = nil
}

func (p *Panel) watch(name string, fn func(v params.Value)) {
	unsub, err := p.store.Subscribe(name, func(_ string, v params.Value) {
		p.syncing.Store(true)
		defer p.syncing.Store(false)
		fn(v)
	})
	if err != nil {
		p.log.Warn("subscribe", zap.String("param", name), zap.Error(err))
		return
	}
	p.unsubs = append(p.unsubs, unsub)
}

func (p *Panel) set(name string, v params.Value) {
	if p.syncing.Load() {
		return
	}
	if err := p.store.Set(name, v); err != nil {
		p.log.Warn("parameter write rejected", zap.String("param", name), zap.Error(err))
		dialog.ShowError(err, p.win)
	}
}

func (p *Panel) scalarControl(d params.Descriptor) fyne.CanvasObject {
	s := widget.NewSlider(float64(d.Min), float64(d.Max))
	s.Step = float64(d.Step)
	s.Value = float64(p.store.Scalar(d.Name))
	row := PackSlider(s, func(f float64) {
		p.set(d.Name, params.ScalarValue(float32(f)))
	})
	p.watch(d.Name, func(v params.Value) {
		if float32(s.Value) != v.Scalar {
			s.SetValue(float64(v.Scalar))
		}
	})
	return container.NewVBox(widget.NewLabel(d.Label), row)
}

// colorControl is an RGB picker plus an alpha slider; both merge into one RGBA
// write.
func (p *Panel) colorControl(d params.Descriptor) []fyne.CanvasObject {
	cur := p.store.Color(d.Name)
	swatch := canvas.NewRectangle(common.ToNRGBA(cur))
	swatch.SetMinSize(fyne.NewSize(48, 24))

	pick := widget.NewButton("Pick", func() {
		c := p.store.Color(d.Name)
		picker := dialog.NewColorPicker(d.Label, "RGB", func(picked color.Color) {
			p.set(d.Name, params.ColorValue(common.WithRGB(p.store.Color(d.Name), picked)))
		}, p.win)
		picker.Advanced = true
		c[3] = 1
		picker.SetColor(common.ToNRGBA(c))
		picker.Show()
	})

	alpha := widget.NewSlider(0, 1)
	alpha.Step = 0.01
	alpha.Value = float64(cur[3])
	alphaRow := PackSlider(alpha, func(f float64) {
		c := p.store.Color(d.Name)
		c[3] = float32(f)
		p.set(d.Name, params.ColorValue(c))
	})

	p.watch(d.Name, func(v params.Value) {
		swatch.FillColor = common.ToNRGBA(v.Color)
		swatch.Refresh()
		if float32(alpha.Value) != v.Color[3] {
			alpha.SetValue(float64(v.Color[3]))
		}
	})
	return []fyne.CanvasObject{
		container.NewBorder(nil, nil, swatch, nil, pick),
		widget.NewLabel("Alpha"),
		alphaRow,
	}
}

func (p *Panel) geometryControl() fyne.CanvasObject {
	var names []string
	for _, k := range geometry.Kinds() {
		names = append(names, k.String())
	}
	sel := widget.NewSelect(names, nil)
	if b := p.loop.Bound(); b != nil {
		sel.Selected = b.Kind().String()
	}
	sel.OnChanged = func(s string) {
		kind, err := geometry.ParseKind(s)
		if err != nil {
			dialog.ShowError(err, p.win)
			return
		}
		h, err := p.provider.Create(kind)
		if err != nil {
			dialog.ShowError(err, p.win)
			return
		}
		if err := p.loop.UpdateGeometry(h); err != nil {
			_ = h.Dispose()
			dialog.ShowError(err, p.win)
		}
	}
	return sel
}

func (p *Panel) reset() {
	if err := p.store.Reset(); err != nil {
		dialog.ShowError(err, p.win)
		return
	}
	p.log.Info("parameters reset")
}

// refreshStats shows the loop counters under the controls.
func (p *Panel) refreshStats(fragmentFaults uint64) {
	s := p.loop.Stats()
	_ = p.stats.Set(statsText(s, fragmentFaults))
}
