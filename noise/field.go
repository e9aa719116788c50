// Package noise provides the scalar gradient-noise fields sampled by the surface
// evaluator. All fields are safe for concurrent use.
package noise

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Field is a continuous pseudo-random scalar field over R^3 bounded to [-1, 1].
type Field interface {
	Eval3(x, y, z float64) float64
}

// FieldFunc adapts a plain function to Field.
type FieldFunc func(x, y, z float64) float64

func (f FieldFunc) Eval3(x, y, z float64) float64 {
	return f(x, y, z)
}

// Simplex is the canonical seedless field. Every stage of the pipeline samples it
// unless configured otherwise, which keeps frames reproducible across runs.
var Simplex Field = FieldFunc(Simplex3)

type Backend string

const (
	BackendSimplex     Backend = "simplex"
	BackendOpenSimplex Backend = "opensimplex"
	BackendPerlin      Backend = "perlin"
)

var ErrUnknownBackend = errors.New("noise: unknown backend")

func Backends() []Backend {
	return []Backend{BackendSimplex, BackendOpenSimplex, BackendPerlin}
}

func ParseBackend(s string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Backends() {
		if v == b {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
}

// New builds the field for backend. The seed is ignored by the simplex backend.
func New(backend Backend, seed int64) (Field, error) {
	switch backend {
	case BackendSimplex, "":
		return Simplex, nil
	case BackendOpenSimplex:
		return &openSimplexField{n: opensimplex.New(seed)}, nil
	case BackendPerlin:
		return &perlinField{p: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed)}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}

type openSimplexField struct {
	n opensimplex.Noise
}

func (f *openSimplexField) Eval3(x, y, z float64) float64 {
	return bound(f.n.Eval3(x, y, z))
}

const (
	perlinAlpha   = 2.0
	perlinBeta    = 2.0
	perlinOctaves = 1
)

type perlinField struct {
	p *perlin.Perlin
}

func (f *perlinField) Eval3(x, y, z float64) float64 {
	return bound(f.p.Noise3D(x, y, z))
}

func bound(v float64) float64 {
	return min(max(v, -1), 1)
}
