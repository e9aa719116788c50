package config

import (
	"fmt"
	"strings"
)

type Mode string

const (
	ModeGL       Mode = "gl"
	ModePanel    Mode = "panel"
	ModeHeadless Mode = "headless"

	DescModeGL       = "OpenGL viewer with mouse orbit and keyboard shortcuts"
	DescModePanel    = "control panel with a software-rendered viewport"
	DescModeHeadless = "render frames to PNG files without a window"
)

var modeDesc = map[Mode]string{
	ModeGL:       DescModeGL,
	ModePanel:    DescModePanel,
	ModeHeadless: DescModeHeadless,
}

func Modes() []Mode {
	return []Mode{ModeGL, ModePanel, ModeHeadless}
}

func (m Mode) Desc() string {
	return modeDesc[m]
}

func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := modeDesc[m]; !ok {
		return "", fmt.Errorf("unknown mode %q", s)
	}
	return m, nil
}

// Usage lists the modes for the -mode flag.
func Usage() string {
	var b strings.Builder
	b.WriteString("front end:")
	for _, m := range Modes() {
		fmt.Fprintf(&b, "\n  %-9s %s", m, m.Desc())
	}
	return b.String()
}
