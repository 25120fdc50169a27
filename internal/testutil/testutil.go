// Package testutil provides shared fixtures for conclist tests.
package testutil

import (
	"sync"

	"github.com/Iron-Ham/conclist/internal/event"
	"github.com/Iron-Ham/conclist/internal/notify"
)

// Item is an observable test element with one mutable field.
type Item struct {
	notify.Properties

	mu    sync.Mutex
	Name  string
	value int
}

// NewItem creates an Item with the given name.
func NewItem(name string) *Item {
	return &Item{Name: name}
}

// SetValue updates the value field and notifies handlers.
func (i *Item) SetValue(v int) {
	i.mu.Lock()
	i.value = v
	i.mu.Unlock()
	i.NotifyPropertyChanged("value")
}

// Value returns the current value.
func (i *Item) Value() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.value
}

// Recorder collects events delivered to its handler methods. It is safe for
// concurrent use.
type Recorder[T any] struct {
	mu          sync.Mutex
	collections []event.CollectionChangedEvent[T]
	items       []event.ItemChangedEvent[T]
}

// NewRecorder creates an empty Recorder.
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{}
}

// OnCollectionChanged records a structural change event.
func (r *Recorder[T]) OnCollectionChanged(e event.CollectionChangedEvent[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections = append(r.collections, e)
}

// OnItemChanged records an item field change event.
func (r *Recorder[T]) OnItemChanged(e event.ItemChangedEvent[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, e)
}

// Collections returns a copy of the recorded structural events.
func (r *Recorder[T]) Collections() []event.CollectionChangedEvent[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.CollectionChangedEvent[T], len(r.collections))
	copy(out, r.collections)
	return out
}

// Items returns a copy of the recorded item events.
func (r *Recorder[T]) Items() []event.ItemChangedEvent[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.ItemChangedEvent[T], len(r.items))
	copy(out, r.items)
	return out
}

// Actions returns the action of every recorded structural event in order.
func (r *Recorder[T]) Actions() []event.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.Action, len(r.collections))
	for i, e := range r.collections {
		out[i] = e.Action
	}
	return out
}

// Reset discards everything recorded so far.
func (r *Recorder[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections = nil
	r.items = nil
}
