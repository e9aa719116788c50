package params

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonoisesurface/common"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(DefaultTable())
	require.NoError(t, err)
	return s
}

func TestDefaults(t *testing.T) {
	s := newStore(t)
	snap := s.Snapshot()
	assert.Equal(t, float32(0), snap.Time)
	assert.Equal(t, float32(0.5), snap.DistortionStrength)
	assert.Equal(t, float32(1), snap.ColorNoiseScale)
	assert.Equal(t, float32(1), snap.AlphaNoiseStrength)
	assert.Equal(t, float32(0), snap.EdgeAlpha)
	assert.Equal(t, common.Vec4{0, 1, 0, 1}, snap.Color2)
	assert.Equal(t, common.Vec4{0, 0, 1, 1}, snap.Color3)
	assert.Equal(t, uint64(0), snap.Version)
}

func TestSetClampsToRange(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.SetScalar(DistortionStrength, 7))
	assert.Equal(t, float32(2), s.Scalar(DistortionStrength))

	require.NoError(t, s.SetScalar(ColorNoiseScale, 0))
	assert.Equal(t, float32(0.1), s.Scalar(ColorNoiseScale))

	require.NoError(t, s.SetColor(Color1, common.Vec4{1.5, -1, 0.5, 3}))
	assert.Equal(t, common.Vec4{1, 0, 0.5, 1}, s.Color(Color1))
}

func TestSetRejectsBadWrites(t *testing.T) {
	s := newStore(t)
	assert.ErrorIs(t, s.SetScalar("noiseScale", 1), ErrUnknownParameter)
	assert.ErrorIs(t, s.SetScalar(Color1, 1), ErrKindMismatch)
	assert.ErrorIs(t, s.SetColor(EdgeAlpha, common.Vec4{}), ErrKindMismatch)
	assert.ErrorIs(t, s.SetScalar(EdgeAlpha, float32(math.NaN())), ErrNotFinite)
	assert.Equal(t, uint64(0), s.Version())
}

func TestSubscribeFiresSynchronously(t *testing.T) {
	s := newStore(t)
	var got []string
	_, err := s.Subscribe(EdgeAlpha, func(name string, v Value) {
		got = append(got, name+"="+v.String())
	})
	require.NoError(t, err)

	require.NoError(t, s.SetScalar(EdgeAlpha, 0.25))
	require.Equal(t, []string{"edgeAlpha=0.25"}, got)

	require.NoError(t, s.SetScalar(DistortionStrength, 1))
	assert.Len(t, got, 1, "listener bound to another parameter")

	_, err = s.Subscribe("bogus", func(string, Value) {})
	assert.ErrorIs(t, err, ErrUnknownParameter)
}

func TestSetSameValueIsIdempotent(t *testing.T) {
	s := newStore(t)
	calls := 0
	_, err := s.Subscribe("", func(string, Value) { calls++ })
	require.NoError(t, err)

	require.NoError(t, s.SetScalar(AlphaNoiseScale, 2))
	v1, s1 := s.Version(), s.Snapshot()
	require.NoError(t, s.SetScalar(AlphaNoiseScale, 2))
	assert.Equal(t, v1, s.Version())
	assert.Equal(t, s1, s.Snapshot())
	assert.Equal(t, 1, calls)

	// clamped writes compare after clamping
	require.NoError(t, s.SetScalar(AlphaNoiseScale, 9))
	require.NoError(t, s.SetScalar(AlphaNoiseScale, 12))
	assert.Equal(t, 2, calls)
}

func TestUnsubscribe(t *testing.T) {
	s := newStore(t)
	calls := 0
	cancel, err := s.Subscribe("", func(string, Value) { calls++ })
	require.NoError(t, err)
	require.NoError(t, s.SetScalar(EdgeAlpha, 0.5))
	cancel()
	require.NoError(t, s.SetScalar(EdgeAlpha, 0.6))
	assert.Equal(t, 1, calls)
}

func TestColorWriteIsAtomic(t *testing.T) {
	s := newStore(t)
	var seen []common.Vec4
	_, err := s.Subscribe(Color2, func(_ string, v Value) { seen = append(seen, v.Color) })
	require.NoError(t, err)

	require.NoError(t, s.SetColor(Color2, common.RGBA255(0, 0, 255, 0.4)))
	require.Len(t, seen, 1)
	assert.Equal(t, float32(0.4), seen[0][3], "alpha written together with rgb")
	assert.Equal(t, float32(1), seen[0][2])
}

func TestListenerMayWriteBack(t *testing.T) {
	s := newStore(t)
	// a widget that mirrors the store and writes its own value back on change
	var widget float32
	_, err := s.Subscribe(EdgeAlpha, func(_ string, v Value) {
		if widget != v.Scalar {
			widget = v.Scalar
			assert.NoError(t, s.SetScalar(EdgeAlpha, widget))
		}
	})
	require.NoError(t, err)
	require.NoError(t, s.SetScalar(EdgeAlpha, 0.7))

	done := make(chan error, 1)
	go func() { done <- s.Reset() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Reset blocked on a listener writing back")
	}
	assert.Equal(t, float32(0), s.Scalar(EdgeAlpha))
	assert.Equal(t, float32(0), widget)
}

func TestNestedWritesKeepOrder(t *testing.T) {
	s := newStore(t)
	var got []string
	_, err := s.Subscribe("", func(name string, v Value) {
		got = append(got, name+"="+v.String())
		if name == EdgeAlpha {
			assert.NoError(t, s.SetScalar(AlphaNoiseStrength, 2))
		}
	})
	require.NoError(t, err)

	require.NoError(t, s.SetScalar(EdgeAlpha, 0.5))
	assert.Equal(t, []string{"edgeAlpha=0.5", "alphaNoiseStrength=2"}, got)
	assert.Equal(t, uint64(2), s.Version())

	// delivery resumes normally afterwards
	require.NoError(t, s.SetScalar(DistortionStrength, 1))
	assert.Len(t, got, 3)
}

func TestReset(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.SetScalar(EdgeAlpha, 0.9))
	require.NoError(t, s.SetColor(Color3, common.Vec4{1, 1, 1, 1}))
	require.NoError(t, s.SetScalar(Time, 12))
	require.NoError(t, s.Reset())
	assert.Equal(t, DefaultSnapshot().Color3, s.Color(Color3))
	assert.Equal(t, float32(0), s.Scalar(EdgeAlpha))
	assert.Equal(t, float32(12), s.Scalar(Time))
}

func TestSnapshotIsConsistentUnderConcurrentWrites(t *testing.T) {
	s := newStore(t)
	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			v := float32(i%2)*0.5 + 0.25
			_ = s.SetColor(Color1, common.Vec4{v, 0, 0, v / 2})
		}
	}()
	for i := 0; i < 2000; i++ {
		c := s.Snapshot().Color1
		if c[3] != c[0]/2 && c != DefaultSnapshot().Color1 {
			t.Fatalf("torn color %v", c)
		}
	}
	close(stop)
	wg.Wait()
}

func TestValidateTable(t *testing.T) {
	require.NoError(t, DefaultTable().Validate())

	cases := map[string]func(Table) Table{
		"missing": func(tb Table) Table { return tb[1:] },
		"duplicate": func(tb Table) Table {
			return append(tb, tb[len(tb)-1])
		},
		"unknown": func(tb Table) Table {
			return append(tb, Descriptor{Name: "noiseScale", Kind: KindScalar, Max: 1, Default: ScalarValue(0)})
		},
		"inverted range": func(tb Table) Table {
			tb[len(tb)-1].Min, tb[len(tb)-1].Max = 1, 0
			return tb
		},
		"default out of range": func(tb Table) Table {
			tb[len(tb)-1].Default = ScalarValue(4)
			return tb
		},
		"wrong kind": func(tb Table) Table {
			tb[1].Kind = KindScalar
			return tb
		},
		"color default out of range": func(tb Table) Table {
			tb[1].Default = ColorValue(common.Vec4{2, 0, 0, 1})
			return tb
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewStore(mutate(DefaultTable()))
			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.NotEmpty(t, cfgErr.Name)
		})
	}
}

func TestSnapshotFields(t *testing.T) {
	f := DefaultSnapshot().Fields()
	assert.Len(t, f, 10)
	assert.Equal(t, 0.5, f[DistortionStrength])
	assert.Len(t, f[Color3], 4)
}
