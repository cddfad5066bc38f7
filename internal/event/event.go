// Package event provides component-scoped listener registration. Every
// registration returns a dispose func so a component can release its
// listeners when it unmounts.
package event

import (
	"sync"
)

type Type string

const (
	Click   Type = "click"
	KeyDown Type = "keydown"
)

// Event is one browser event relayed to the console.
type Event struct {
	Type Type
	// Target is the id of the element that received the event.
	Target string
	// Path holds the ids of Target's ancestors, innermost first.
	Path []string
	// Kind is the element kind of Target, such as "img" or "iframe".
	Kind string
	Key  string

	prevented bool
}

func (e *Event) PreventDefault() { e.prevented = true }

func (e *Event) DefaultPrevented() bool { return e.prevented }

// Within reports whether the event happened on id or inside it.
func (e *Event) Within(id string) bool {
	if e.Target == id {
		return true
	}
	for _, p := range e.Path {
		if p == id {
			return true
		}
	}
	return false
}

// Feed fans a value out to its subscribers in subscription order.
type Feed[T any] struct {
	mu   sync.RWMutex
	next uint64
	subs []subscription[T]
}

type subscription[T any] struct {
	id uint64
	fn func(T)
}

// Subscribe registers fn. Calling the returned func more than once is safe.
func (f *Feed[T]) Subscribe(fn func(T)) func() {
	f.mu.Lock()
	f.next++
	id := f.next
	f.subs = append(f.subs, subscription[T]{id: id, fn: fn})
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			for i, s := range f.subs {
				if s.id == id {
					f.subs = append(f.subs[:i:i], f.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish calls every subscriber with v. Subscribers may dispose themselves
// while being called.
func (f *Feed[T]) Publish(v T) {
	f.mu.RLock()
	subs := append([]subscription[T](nil), f.subs...)
	f.mu.RUnlock()
	for _, s := range subs {
		s.fn(v)
	}
}

func (f *Feed[T]) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

// Bus routes events by type to the listeners of one page.
type Bus struct {
	mu    sync.Mutex
	feeds map[Type]*Feed[*Event]
}

func NewBus() *Bus {
	return &Bus{feeds: make(map[Type]*Feed[*Event])}
}

func (b *Bus) feed(t Type) *Feed[*Event] {
	b.mu.Lock()
	defer b.mu.Unlock()
	f, ok := b.feeds[t]
	if !ok {
		f = &Feed[*Event]{}
		b.feeds[t] = f
	}
	return f
}

// On registers h for events of type t and returns its dispose func.
func (b *Bus) On(t Type, h func(*Event)) func() {
	return b.feed(t).Subscribe(h)
}

// Dispatch delivers e to its listeners and returns it so callers can check
// DefaultPrevented.
func (b *Bus) Dispatch(e *Event) *Event {
	b.feed(e.Type).Publish(e)
	return e
}

// Listeners returns the number of listeners registered for t.
func (b *Bus) Listeners(t Type) int {
	return b.feed(t).Len()
}

// Disposer collects dispose funcs and releases them together.
type Disposer []func()

func (d *Disposer) Add(fn func()) { *d = append(*d, fn) }

// Dispose releases in reverse registration order.
func (d *Disposer) Dispose() {
	for i := len(*d) - 1; i >= 0; i-- {
		(*d)[i]()
	}
	*d = nil
}
