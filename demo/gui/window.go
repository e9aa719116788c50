package gui

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"gonoisesurface/geometry"
)

const (
	rotateSpeed = 0.005
	zoomStep    = 0.9
)

func initGlfw() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	return nil
}

func createWindow(title string, width, height int, log *zap.Logger) (*glfw.Window, error) {
	if err := initGlfw(); err != nil {
		return nil, err
	}
	window, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	window.MakeContextCurrent()
	if err = gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("gl init: %w", err)
	}
	glfw.SwapInterval(1)
	log.Info("window created",
		zap.String("gl_version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.Int("width", width), zap.Int("height", height))
	return window, nil
}

// keyKinds maps the number keys to geometry kinds.
var keyKinds = map[glfw.Key]geometry.Kind{
	glfw.Key1: geometry.Plane,
	glfw.Key2: geometry.Sphere,
	glfw.Key3: geometry.Capsule,
	glfw.Key4: geometry.Dodecahedron,
}

func (v *Viewer) registerEvents() {
	w := v.window
	w.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		switch action {
		case glfw.Press:
			v.dragging = true
			v.lastX, v.lastY = w.GetCursorPos()
		case glfw.Release:
			v.dragging = false
		}
	})
	w.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		if !v.dragging {
			return
		}
		dx, dy := float32(x-v.lastX), float32(y-v.lastY)
		v.lastX, v.lastY = x, y
		v.cam.Rotate(-dx*rotateSpeed, dy*rotateSpeed)
	})
	// mouse wheels only report yoff; touchpads report both
	w.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		v.cam.Zoom(math32.Pow(zoomStep, float32(yoff)))
	})
	w.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		v.loop.RequestResize(width, height)
	})
	w.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		if kind, ok := keyKinds[key]; ok {
			v.switchGeometry(kind)
			return
		}
		switch key {
		case glfw.KeyR:
			v.reset()
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		}
	})
	w.SetCloseCallback(func(w *glfw.Window) {
		v.log.Info("window closing")
	})
}
