package durable

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Memory is a process-local backing store. Each Open call hands out an
// independent context handle, so tests can model several "tabs" sharing one
// store and observing each other's writes.
type Memory struct {
	mu       sync.Mutex
	values   map[string]string
	watchers map[string][]*memWatcher
}

type memWatcher struct {
	origin string
	ch     chan Event
}

func NewMemory() *Memory {
	return &Memory{
		values:   make(map[string]string),
		watchers: make(map[string][]*memWatcher),
	}
}

// Open returns a new context handle with its own origin identity.
func (m *Memory) Open() Store {
	return &memoryStore{backend: m, origin: uuid.NewString()}
}

func (m *Memory) get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *Memory) set(origin, key, value string) {
	m.mu.Lock()
	m.values[key] = value
	targets := m.notifyTargets(origin, key)
	m.mu.Unlock()
	dispatch(targets, Event{Key: key, Value: value})
}

func (m *Memory) remove(origin, key string) {
	m.mu.Lock()
	delete(m.values, key)
	targets := m.notifyTargets(origin, key)
	m.mu.Unlock()
	dispatch(targets, Event{Key: key, Removed: true})
}

// notifyTargets returns the watcher channels for key excluding the writer's
// own. Caller must hold mu.
func (m *Memory) notifyTargets(origin, key string) []chan Event {
	var targets []chan Event
	for _, w := range m.watchers[key] {
		if w.origin != origin {
			targets = append(targets, w.ch)
		}
	}
	return targets
}

func dispatch(targets []chan Event, ev Event) {
	for _, ch := range targets {
		// Drop rather than block when a watcher is not draining.
		select {
		case ch <- ev:
		default:
		}
	}
}

func (m *Memory) watch(ctx context.Context, origin, key string) <-chan Event {
	w := &memWatcher{origin: origin, ch: make(chan Event, 16)}

	m.mu.Lock()
	m.watchers[key] = append(m.watchers[key], w)
	m.mu.Unlock()

	out := make(chan Event)
	go func() {
		defer close(out)
		defer m.detach(key, w)
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-w.ch:
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func (m *Memory) detach(key string, w *memWatcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current := m.watchers[key]
	next := current[:0]
	for _, other := range current {
		if other != w {
			next = append(next, other)
		}
	}
	if len(next) == 0 {
		delete(m.watchers, key)
	} else {
		m.watchers[key] = next
	}
}

type memoryStore struct {
	backend *Memory
	origin  string
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.backend.get(key)
	return v, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string) error {
	s.backend.set(s.origin, key, value)
	return nil
}

func (s *memoryStore) Remove(_ context.Context, key string) error {
	s.backend.remove(s.origin, key)
	return nil
}

func (s *memoryStore) Watch(ctx context.Context, key string) (<-chan Event, error) {
	return s.backend.watch(ctx, s.origin, key), nil
}

func (s *memoryStore) Close() error {
	return nil
}
