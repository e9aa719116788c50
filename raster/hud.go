package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	"gonoisesurface/loop"
)

// HUD draws a few lines of status text in the top-left corner.
type HUD struct {
	face   font.Face
	height int
	ink    image.Image
	shadow image.Image
}

func NewHUD(points float64) (*HUD, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("raster: hud font: %w", err)
	}
	face := truetype.NewFace(f, &truetype.Options{Size: points, Hinting: font.HintingFull})
	return &HUD{
		face:   face,
		height: face.Metrics().Height.Ceil(),
		ink:    image.NewUniform(color.RGBA{0x20, 0x20, 0x20, 0xff}),
		shadow: image.NewUniform(color.RGBA{0xff, 0xff, 0xff, 0xc0}),
	}, nil
}

func (h *HUD) Draw(dst draw.Image, lines []string) {
	d := &font.Drawer{Dst: dst, Face: h.face}
	for i, line := range lines {
		y := (i + 1) * h.height
		d.Src = h.shadow
		d.Dot = fixed.P(7, y+1)
		d.DrawString(line)
		d.Src = h.ink
		d.Dot = fixed.P(6, y)
		d.DrawString(line)
	}
}

func (r *Renderer) hudLines(f *loop.Frame) []string {
	return []string{
		fmt.Sprintf("%v  %d vertices  %.0f fps", f.Geometry, len(f.Samples), r.fps),
		fmt.Sprintf("tick %d  t=%.2f", f.Tick, f.Uniforms.Time),
		fmt.Sprintf("faults: %d vertex, %d fragment", f.Faults, r.fragBad.Load()),
	}
}
