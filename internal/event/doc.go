// Package event provides the synchronous pub-sub channel that carries change
// notifications out of the observable collections.
//
// # Main Types
//
//   - [Event]: Interface that all events must implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous multicast dispatcher with thread-safe subscription management
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Event Shapes
//
//   - [CollectionChangedEvent]: structural change (add, remove, replace, reset)
//     with the affected items and, where meaningful, the index
//   - [ItemChangedEvent]: a contained item reported a field change
//   - [PropertyChangedEvent]: published by an item on its own bus
//
// # Thread Safety
//
// The [Bus] type is safe for concurrent use. Handlers are called synchronously
// on the publishing goroutine and outside the bus's own lock. A panicking
// handler is recovered and logged and does not stop delivery to the others.
//
// Collections publish while holding their write lock. A handler must not
// call back into the list that published the event; doing so on the same
// goroutine panics with a lock recursion error, and doing so from another
// goroutine the handler waits on deadlocks.
//
// # Basic Usage
//
//	bus := event.NewBus()
//
//	id := bus.Subscribe(event.TypeCollectionChanged, func(e event.Event) {
//	    changed := e.(event.CollectionChangedEvent[string])
//	    log.Printf("%s %v at %d", changed.Action, changed.NewItems, changed.Index)
//	})
//
//	bus.Publish(event.NewAddEvent([]string{"A"}, event.NoIndex))
//	bus.Unsubscribe(id)
package event
