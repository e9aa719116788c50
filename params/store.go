package params

import (
	"fmt"
	"sync"

	"gonoisesurface/common"
)

// Listener is called after a write changed the stored value. Changes reach
// listeners in the order they were written.
type Listener func(name string, v Value)

type subscription struct {
	id   uint64
	name string // empty for every parameter
	fn   Listener
}

type event struct {
	name string
	v    Value
	fns  []Listener
}

// Store is the single source of truth for the surface parameters. Writes come from
// the control panel, reads from the frame loop; both may run on different goroutines.
type Store struct {
	table Table

	mu      sync.RWMutex
	values  map[string]Value
	version uint64
	subs    []subscription
	nextSub uint64

	// queue holds changes not yet handed to listeners, in write order. One
	// goroutine drains it at a time; writes made while it is draining, including
	// writes from inside a listener, are appended and delivered by that drain.
	queue      []event
	delivering bool
}

// NewStore validates table and fills the store with its defaults.
func NewStore(table Table) (*Store, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	s := &Store{
		table:  append(Table(nil), table...),
		values: make(map[string]Value, len(table)),
	}
	for _, d := range table {
		s.values[d.Name] = d.Default
	}
	return s, nil
}

func (s *Store) Table() Table {
	return s.table
}

// Get returns the current value of name.
func (s *Store) Get(name string) (Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	if !ok {
		return Value{}, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	return v, nil
}

func (s *Store) Scalar(name string) float32 {
	v, _ := s.Get(name)
	return v.Scalar
}

func (s *Store) Color(name string) common.Vec4 {
	v, _ := s.Get(name)
	return v.Color
}

// Set clamps v to the declared range of name and stores it. A write that leaves the
// stored value unchanged has no effect: listeners are not called and the version
// does not advance. Listeners run without any store lock held and may call Set;
// such nested writes are delivered after the current listener returns.
func (s *Store) Set(name string, v Value) error {
	d, ok := s.table.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	if v.Kind != d.Kind {
		return fmt.Errorf("%w: %q is a %v, got a %v", ErrKindMismatch, name, d.Kind, v.Kind)
	}
	if !v.finite() {
		return fmt.Errorf("%w: %q = %v", ErrNotFinite, name, v)
	}
	v = d.Clamp(v)

	s.mu.Lock()
	if s.values[name] == v {
		s.mu.Unlock()
		return nil
	}
	s.values[name] = v
	s.version++
	if fns := s.listenersLocked(name); len(fns) > 0 {
		s.queue = append(s.queue, event{name: name, v: v, fns: fns})
	}
	if s.delivering || len(s.queue) == 0 {
		s.mu.Unlock()
		return nil
	}
	s.delivering = true
	s.mu.Unlock()

	s.drain()
	return nil
}

func (s *Store) drain() {
	done := false
	defer func() {
		if !done {
			// a listener panicked; let the next writer deliver the rest
			s.mu.Lock()
			s.delivering = false
			s.mu.Unlock()
		}
	}()
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.queue = nil
			s.delivering = false
			s.mu.Unlock()
			done = true
			return
		}
		ev := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		for _, fn := range ev.fns {
			fn(ev.name, ev.v)
		}
	}
}

func (s *Store) SetScalar(name string, v float32) error {
	return s.Set(name, ScalarValue(v))
}

// SetColor stores all four channels of a color in one write.
func (s *Store) SetColor(name string, c common.Vec4) error {
	return s.Set(name, ColorValue(c))
}

// Reset restores the defaults of every visible parameter. Hidden ones, such as the
// clock, keep their value.
func (s *Store) Reset() error {
	for _, d := range s.table {
		if d.Hidden {
			continue
		}
		if err := s.Set(d.Name, d.Default); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe registers fn for writes to name, or to every parameter when name is
// empty. The returned function removes the subscription.
func (s *Store) Subscribe(name string, fn Listener) (func(), error) {
	if name != "" {
		if _, ok := s.table.Lookup(name); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
		}
	}
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription{id: id, name: name, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}, nil
}

func (s *Store) listenersLocked(name string) []Listener {
	var out []Listener
	for _, sub := range s.subs {
		if sub.name == "" || sub.name == name {
			out = append(out, sub.fn)
		}
	}
	return out
}

// Version counts the writes that changed a value.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Names lists the parameters in table order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.table))
	for _, d := range s.table {
		names = append(names, d.Name)
	}
	return names
}
