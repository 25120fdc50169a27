package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "collection.changed")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeCollectionChanged = "collection.changed"
	TypeItemChanged       = "collection.item_changed"
	TypePropertyChanged   = "property.changed"
)

// NoIndex marks a CollectionChangedEvent that carries no position.
const NoIndex = -1

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Collection Events
// -----------------------------------------------------------------------------

// Action is the kind of structural change a CollectionChangedEvent describes.
type Action int

const (
	// ActionAdd reports one or more items added or inserted.
	ActionAdd Action = iota
	// ActionRemove reports one item removed.
	ActionRemove
	// ActionReplace reports one item replaced at an index.
	ActionReplace
	// ActionReset reports that the collection was cleared.
	ActionReset
)

// String returns the lower-case name of the action.
func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionRemove:
		return "remove"
	case ActionReplace:
		return "replace"
	case ActionReset:
		return "reset"
	default:
		return "unknown"
	}
}

// CollectionChangedEvent is published once per structural mutation of an
// observable list, after the mutation is applied.
type CollectionChangedEvent[T any] struct {
	baseEvent
	Action   Action
	NewItems []T // Added items, or the replacement for ActionReplace
	OldItems []T // Removed item, or the replaced item for ActionReplace
	Index    int // Position of the change, or NoIndex
}

// Item returns the first new item, or the zero value when there is none.
func (e CollectionChangedEvent[T]) Item() T {
	var zero T
	if len(e.NewItems) == 0 {
		return zero
	}
	return e.NewItems[0]
}

// OldItem returns the first old item, or the zero value when there is none.
func (e CollectionChangedEvent[T]) OldItem() T {
	var zero T
	if len(e.OldItems) == 0 {
		return zero
	}
	return e.OldItems[0]
}

// NewAddEvent creates an ActionAdd event. Pass NoIndex for appends.
func NewAddEvent[T any](items []T, index int) CollectionChangedEvent[T] {
	return CollectionChangedEvent[T]{
		baseEvent: newBaseEvent(TypeCollectionChanged),
		Action:    ActionAdd,
		NewItems:  items,
		Index:     index,
	}
}

// NewRemoveEvent creates an ActionRemove event.
func NewRemoveEvent[T any](item T, index int) CollectionChangedEvent[T] {
	return CollectionChangedEvent[T]{
		baseEvent: newBaseEvent(TypeCollectionChanged),
		Action:    ActionRemove,
		OldItems:  []T{item},
		Index:     index,
	}
}

// NewReplaceEvent creates an ActionReplace event.
func NewReplaceEvent[T any](newItem, oldItem T, index int) CollectionChangedEvent[T] {
	return CollectionChangedEvent[T]{
		baseEvent: newBaseEvent(TypeCollectionChanged),
		Action:    ActionReplace,
		NewItems:  []T{newItem},
		OldItems:  []T{oldItem},
		Index:     index,
	}
}

// NewResetEvent creates an ActionReset event.
func NewResetEvent[T any]() CollectionChangedEvent[T] {
	return CollectionChangedEvent[T]{
		baseEvent: newBaseEvent(TypeCollectionChanged),
		Action:    ActionReset,
		Index:     NoIndex,
	}
}

// ItemChangedEvent is published when a contained item reports that one of
// its fields changed.
type ItemChangedEvent[T any] struct {
	baseEvent
	Item  T
	Field string
}

// NewItemChangedEvent creates an ItemChangedEvent.
func NewItemChangedEvent[T any](item T, field string) ItemChangedEvent[T] {
	return ItemChangedEvent[T]{
		baseEvent: newBaseEvent(TypeItemChanged),
		Item:      item,
		Field:     field,
	}
}

// -----------------------------------------------------------------------------
// Item Events
// -----------------------------------------------------------------------------

// PropertyChangedEvent is published by an observable item on its own bus.
type PropertyChangedEvent struct {
	baseEvent
	Field string
}

// NewPropertyChangedEvent creates a PropertyChangedEvent.
func NewPropertyChangedEvent(field string) PropertyChangedEvent {
	return PropertyChangedEvent{
		baseEvent: newBaseEvent(TypePropertyChanged),
		Field:     field,
	}
}
