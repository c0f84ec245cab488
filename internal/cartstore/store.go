package cartstore

import (
	"context"
	"sync"

	"github.com/aurelia-atelier/aurelia-backend/internal/cart"
	"github.com/aurelia-atelier/aurelia-backend/internal/durable"
	"github.com/aurelia-atelier/aurelia-backend/pkg/logger"
)

// Store owns one cart's state for one execution context. Commands are
// applied one at a time under the mutex, so within a context they are
// totally ordered; across contexts the durable store's last write wins.
//
// Store failures never reach callers: reads fall back to the empty cart,
// writes are logged and dropped, and in-memory state stays authoritative.
type Store struct {
	key     string
	durable durable.Store

	mu    sync.Mutex
	state cart.State
	subs  []chan cart.State

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a store for the given durable key. Call Init before use.
func New(d durable.Store, key string) *Store {
	return &Store{
		key:     key,
		durable: d,
		state:   cart.Empty(),
		done:    make(chan struct{}),
	}
}

// Init rehydrates the cart from the durable store and starts watching for
// changes made by other contexts. Missing or malformed data means an empty
// cart; Init only fails if the change feed cannot be established.
func (s *Store) Init(ctx context.Context) error {
	raw, ok, err := s.durable.Get(ctx, s.key)
	if err != nil {
		logger.Error("Failed to read persisted cart, starting empty", err, map[string]interface{}{
			"key": s.key,
		})
	} else if ok {
		if state, decodeErr := Decode(raw); decodeErr != nil {
			logger.Warn("Discarding malformed persisted cart", map[string]interface{}{
				"key":   s.key,
				"error": decodeErr.Error(),
			})
		} else {
			s.mu.Lock()
			s.state = cart.Apply(s.state, cart.Load{State: state})
			s.mu.Unlock()
			logger.Debug("Cart rehydrated", map[string]interface{}{
				"key":        s.key,
				"item_count": state.ItemCount,
			})
		}
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	events, err := s.durable.Watch(watchCtx, s.key)
	if err != nil {
		cancel()
		close(s.done)
		return err
	}
	s.cancel = cancel

	go func() {
		defer close(s.done)
		for ev := range events {
			s.applyRemote(ev)
		}
	}()
	return nil
}

// applyRemote folds an externally-originated change into local state. It
// does not write back to the durable store: the change is already there.
func (s *Store) applyRemote(ev durable.Event) {
	var incoming cart.State
	if ev.Removed {
		incoming = cart.Empty()
		// The other context cleared the cart; panel visibility is local
		// chrome and keeps its current value.
		s.mu.Lock()
		incoming.Open = s.state.Open
		s.mu.Unlock()
	} else {
		state, err := Decode(ev.Value)
		if err != nil {
			logger.Warn("Ignoring malformed cart change notification", map[string]interface{}{
				"key":   s.key,
				"error": err.Error(),
			})
			return
		}
		incoming = state
	}

	s.mu.Lock()
	s.state = cart.Apply(s.state, cart.Load{State: incoming})
	next := s.state
	subs := append([]chan cart.State(nil), s.subs...)
	s.mu.Unlock()

	notify(subs, next)
}

// Dispatch applies one command, persists the result, and returns the new
// state. Persistence failures are logged and swallowed.
func (s *Store) Dispatch(ctx context.Context, cmd cart.Command) cart.State {
	s.mu.Lock()
	s.state = cart.Apply(s.state, cmd)
	next := s.state
	subs := append([]chan cart.State(nil), s.subs...)
	s.mu.Unlock()

	s.persist(ctx, next)
	notify(subs, next)
	return next
}

// persist writes the state under the key, or deletes the key when the cart
// is empty rather than storing an empty record.
func (s *Store) persist(ctx context.Context, state cart.State) {
	if state.IsEmpty() && state.Subtotal.IsZero() {
		if err := s.durable.Remove(ctx, s.key); err != nil {
			logger.Warn("Failed to remove persisted cart", map[string]interface{}{
				"key":   s.key,
				"error": err.Error(),
			})
		}
		return
	}

	raw, err := Encode(state)
	if err != nil {
		logger.Error("Failed to encode cart state", err, map[string]interface{}{
			"key": s.key,
		})
		return
	}
	if err := s.durable.Set(ctx, s.key, raw); err != nil {
		logger.Warn("Failed to persist cart", map[string]interface{}{
			"key":   s.key,
			"error": err.Error(),
		})
	}
}

// State returns the current cart state.
func (s *Store) State() cart.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe returns a channel receiving every state change, local or
// remote. Slow subscribers miss intermediate states, never the latest one
// being delivered.
func (s *Store) Subscribe() <-chan cart.State {
	ch := make(chan cart.State, 8)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func notify(subs []chan cart.State, state cart.State) {
	for _, ch := range subs {
		select {
		case ch <- state:
		default:
		}
	}
}

// Close stops the change watcher and closes subscriber channels.
func (s *Store) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.done

	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()
	for _, ch := range subs {
		close(ch)
	}
}
