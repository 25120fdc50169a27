package collection

import (
	"iter"
	"reflect"
	"slices"

	"github.com/Iron-Ham/conclist/internal/errors"
	"github.com/Iron-Ham/conclist/internal/event"
	"github.com/Iron-Ham/conclist/internal/guard"
)

// registration is the field-change subscription held for one distinct item.
// refs counts how many positions in the list hold that item.
type registration struct {
	id   string
	refs int
}

// ObservableList is a List that publishes an event.CollectionChangedEvent
// after every structural mutation and, for item types created with
// NewNotifying, forwards item field changes as event.ItemChangedEvent.
//
// Collection events are delivered synchronously while the list's write lock
// is held. Handlers must not call back into the list: a same-goroutine call
// panics with a lock recursion error, which the event bus recovers and logs.
//
// T may be an interface type, but every stored value must have a comparable
// dynamic type, as for a map key. Mutations reject other values with
// errors.ErrInvalidArgument; read operations such as Contains and IndexOf
// panic on them like == does.
type ObservableList[T comparable] struct {
	base[T]
	bus *event.Bus

	// watch and unwatch are nil for item types without field-change support.
	watch    func(item T) string
	unwatch  func(item T, id string)
	registry map[T]*registration // guarded by the sequence's write lock
}

// NewObservable creates an empty ObservableList whose items do not report
// field changes.
func NewObservable[T comparable](opts ...Option) *ObservableList[T] {
	o := buildOptions(opts)
	return &ObservableList[T]{
		base:     newBase(equalComparable[T], o, nil),
		bus:      event.NewBus(event.WithLogger(o.logger.WithComponent("observable"))),
		registry: make(map[T]*registration),
	}
}

// ObservableFrom creates an ObservableList holding a copy of items. It fails
// with errors.ErrInvalidArgument, and creates nothing, if any item is absent
// or not comparable.
func ObservableFrom[T comparable](items []T, opts ...Option) (*ObservableList[T], error) {
	l := NewObservable[T](opts...)
	if err := l.seed(items); err != nil {
		return nil, err
	}
	return l, nil
}

// NewNotifying creates an empty ObservableList that subscribes to each
// distinct contained item and forwards its field changes.
func NewNotifying[T Notifying](opts ...Option) *ObservableList[T] {
	l := NewObservable[T](opts...)
	l.watch = func(item T) string {
		return item.OnPropertyChanged(func(field string) {
			l.forward(item, field)
		})
	}
	l.unwatch = func(item T, id string) {
		item.RemovePropertyChangedHandler(id)
	}
	return l
}

// NotifyingFrom is NewNotifying seeded with a copy of items, each of which
// is watched from the start.
func NotifyingFrom[T Notifying](items []T, opts ...Option) (*ObservableList[T], error) {
	l := NewNotifying[T](opts...)
	if err := l.seed(items); err != nil {
		return nil, err
	}
	return l, nil
}

// seed fills a list nobody can observe yet, so it publishes nothing.
func (l *ObservableList[T]) seed(items []T) error {
	if err := checkItems("from", items); err != nil {
		return err
	}
	l.seq.Write(func(s *[]T) {
		l.registerAll(items)
		*s = append(*s, items...)
	})
	return nil
}

// OnCollectionChanged registers fn for structural change events and returns
// a subscription id for Unsubscribe.
func (l *ObservableList[T]) OnCollectionChanged(fn func(event.CollectionChangedEvent[T])) string {
	return l.bus.Subscribe(event.TypeCollectionChanged, func(e event.Event) {
		if changed, ok := e.(event.CollectionChangedEvent[T]); ok {
			fn(changed)
		}
	})
}

// OnItemChanged registers fn for forwarded item field changes.
func (l *ObservableList[T]) OnItemChanged(fn func(event.ItemChangedEvent[T])) string {
	return l.bus.Subscribe(event.TypeItemChanged, func(e event.Event) {
		if changed, ok := e.(event.ItemChangedEvent[T]); ok {
			fn(changed)
		}
	})
}

// OnChange registers fn for every event the list publishes, structural or
// forwarded, in publication order.
func (l *ObservableList[T]) OnChange(fn func(event.Event)) string {
	return l.bus.SubscribeAll(fn)
}

// Unsubscribe removes a handler registered with OnCollectionChanged,
// OnItemChanged or OnChange.
func (l *ObservableList[T]) Unsubscribe(id string) bool {
	return l.bus.Unsubscribe(id)
}

// UnsubscribeAll removes every handler. Item subscriptions are unaffected.
func (l *ObservableList[T]) UnsubscribeAll() {
	l.bus.Clear()
}

// ListenerCount returns the number of distinct items the list is subscribed
// to. It is always zero for lists created with NewObservable.
func (l *ObservableList[T]) ListenerCount() int {
	n, _ := guard.WithReadLock(l.seq, func([]T) (int, error) {
		return len(l.registry), nil
	})
	return n
}

// Set replaces the element at index. Setting the element that is already
// there is a no-op and publishes nothing.
func (l *ObservableList[T]) Set(index int, item T) error {
	if err := checkItem("set", "item", item); err != nil {
		return err
	}
	_, err := guard.WithWriteLock(l.seq, func(items *[]T) (struct{}, error) {
		if index < 0 || index >= len(*items) {
			return struct{}{}, errors.NewRangeError("set", index, len(*items))
		}
		old := (*items)[index]
		if old == item {
			return struct{}{}, nil
		}
		l.register(item)
		(*items)[index] = item
		l.unregister(old)
		if l.observed() {
			l.bus.Publish(event.NewReplaceEvent(item, old, index))
		}
		return struct{}{}, nil
	})
	return err
}

// Add appends item.
func (l *ObservableList[T]) Add(item T) error {
	if err := checkItem("add", "item", item); err != nil {
		return err
	}
	l.seq.Write(func(items *[]T) {
		l.register(item)
		*items = append(*items, item)
		if l.observed() {
			l.bus.Publish(event.NewAddEvent([]T{item}, event.NoIndex))
		}
	})
	return nil
}

// AddRange appends items as one atomic step and publishes a single event
// carrying all of them. If any item is absent nothing is added. An empty
// call publishes nothing.
func (l *ObservableList[T]) AddRange(items ...T) error {
	if err := checkItems("add_range", items); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	l.seq.Write(func(s *[]T) {
		l.registerAll(items)
		*s = append(*s, items...)
		if l.observed() {
			l.bus.Publish(event.NewAddEvent(slices.Clone(items), event.NoIndex))
		}
	})
	return nil
}

// AddSeq drains seq and adds the collected values with AddRange.
func (l *ObservableList[T]) AddSeq(seq iter.Seq[T]) error {
	return l.AddRange(slices.Collect(seq)...)
}

// Insert places item at index, shifting later elements up.
func (l *ObservableList[T]) Insert(index int, item T) error {
	if err := checkItem("insert", "item", item); err != nil {
		return err
	}
	_, err := guard.WithWriteLock(l.seq, func(items *[]T) (struct{}, error) {
		if index < 0 || index > len(*items) {
			return struct{}{}, errors.NewRangeError("insert", index, len(*items))
		}
		l.register(item)
		*items = slices.Insert(*items, index, item)
		if l.observed() {
			l.bus.Publish(event.NewAddEvent([]T{item}, index))
		}
		return struct{}{}, nil
	})
	return err
}

// RemoveAt deletes the element at index.
func (l *ObservableList[T]) RemoveAt(index int) error {
	_, err := guard.WithWriteLock(l.seq, func(items *[]T) (struct{}, error) {
		if index < 0 || index >= len(*items) {
			return struct{}{}, errors.NewRangeError("remove_at", index, len(*items))
		}
		old := (*items)[index]
		*items = slices.Delete(*items, index, index+1)
		l.unregister(old)
		if l.observed() {
			l.bus.Publish(event.NewRemoveEvent(old, index))
		}
		return struct{}{}, nil
	})
	return err
}

// Remove deletes the first occurrence of item and reports whether one was
// found. Nothing is published when it was not.
func (l *ObservableList[T]) Remove(item T) bool {
	if checkItem("remove", "item", item) != nil {
		return false
	}
	removed, _ := guard.WithWriteLock(l.seq, func(items *[]T) (bool, error) {
		idx := slices.Index(*items, item)
		if idx < 0 {
			return false, nil
		}
		*items = slices.Delete(*items, idx, idx+1)
		l.unregister(item)
		if l.observed() {
			l.bus.Publish(event.NewRemoveEvent(item, event.NoIndex))
		}
		return true, nil
	})
	return removed
}

// Clear removes every element, drops every item subscription and publishes
// one reset event, even when the list was already empty.
func (l *ObservableList[T]) Clear() {
	l.seq.Write(func(items *[]T) {
		registry := l.registry
		l.registry = make(map[T]*registration)
		clear(*items)
		*items = (*items)[:0]
		for item, reg := range registry {
			l.detach(item, reg.id)
		}
		if l.observed() {
			l.bus.Publish(event.NewResetEvent[T]())
		}
	})
}

// observed reports whether a structural event would reach any handler.
func (l *ObservableList[T]) observed() bool {
	return l.bus.HasSubscribers(event.TypeCollectionChanged)
}

// register must be called with the write lock held and before the item is
// stored: if the item's subscription panics, nothing has changed yet.
func (l *ObservableList[T]) register(item T) {
	if l.watch == nil {
		return
	}
	if reg, ok := l.registry[item]; ok {
		reg.refs++
		return
	}
	l.registry[item] = &registration{id: l.watch(item), refs: 1}
	l.logger.Debug("item watched", "listeners", len(l.registry))
}

// registerAll registers items in order. If one of them panics, the ones
// already registered are released before the panic continues.
func (l *ObservableList[T]) registerAll(items []T) {
	done := 0
	defer func() {
		if done == len(items) {
			return
		}
		for _, item := range items[:done] {
			l.unregister(item)
		}
	}()
	for _, item := range items {
		l.register(item)
		done++
	}
}

// unregister must be called with the write lock held.
func (l *ObservableList[T]) unregister(item T) {
	reg, ok := l.registry[item]
	if !ok {
		return
	}
	if reg.refs--; reg.refs > 0 {
		return
	}
	delete(l.registry, item)
	l.detach(item, reg.id)
	l.logger.Debug("item unwatched", "listeners", len(l.registry))
}

// detach removes the list's handler from item. The item has already left
// the list, so a panicking item is logged and the mutation stands.
func (l *ObservableList[T]) detach(item T, id string) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("failed to detach item handler",
				"subscription_id", id,
				"error", errors.FromPanic(r).Error(),
			)
		}
	}()
	l.unwatch(item, id)
}

// forward runs on the goroutine that changed the item, outside the list
// lock. An item removed concurrently may still deliver one last event.
func (l *ObservableList[T]) forward(item T, field string) {
	if !l.bus.HasSubscribers(event.TypeItemChanged) {
		return
	}
	l.bus.Publish(event.NewItemChangedEvent(item, field))
}

// checkItem rejects values the list cannot store: absent ones, which cannot
// be watched, and ones whose dynamic type is not comparable.
func checkItem[T any](op, argument string, item T) error {
	if isAbsent(item) {
		return errors.NewArgumentError(op, argument)
	}
	if !reflect.ValueOf(any(item)).Comparable() {
		return errors.NewArgumentError(op, argument).WithReason("must have a comparable type")
	}
	return nil
}

// checkItems validates a whole batch before anything is applied.
func checkItems[T any](op string, items []T) error {
	for _, item := range items {
		if err := checkItem(op, "items", item); err != nil {
			return err
		}
	}
	return nil
}

// isAbsent reports whether item is a nil pointer, map, slice, func, channel
// or interface.
func isAbsent[T any](item T) bool {
	v := reflect.ValueOf(any(item))
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan,
		reflect.Interface, reflect.UnsafePointer:
		return v.IsNil()
	default:
		return false
	}
}
