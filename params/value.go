package params

import (
	"errors"
	"fmt"

	"gonoisesurface/common"
)

var (
	ErrUnknownParameter = errors.New("params: unknown parameter")
	ErrKindMismatch     = errors.New("params: value kind does not match parameter")
	ErrNotFinite        = errors.New("params: value is not finite")
)

// ConfigurationError reports a malformed parameter table. It is only produced while
// building a Store and is fatal to startup.
type ConfigurationError struct {
	Name   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("params: parameter %q: %s", e.Name, e.Reason)
}

// Value is either a scalar or an RGBA color, selected by Kind.
type Value struct {
	Kind   Kind
	Scalar float32
	Color  common.Vec4
}

func ScalarValue(v float32) Value {
	return Value{Kind: KindScalar, Scalar: v}
}

func ColorValue(c common.Vec4) Value {
	return Value{Kind: KindColor, Color: c}
}

func (v Value) finite() bool {
	if v.Kind == KindColor {
		return common.Visfinite4(v.Color)
	}
	return common.IsFinite(v.Scalar)
}

func (v Value) String() string {
	if v.Kind == KindColor {
		return fmt.Sprintf("rgba(%.3f, %.3f, %.3f, %.3f)", v.Color[0], v.Color[1], v.Color[2], v.Color[3])
	}
	return fmt.Sprintf("%.4g", v.Scalar)
}
