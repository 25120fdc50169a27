// Package notify defines the field-change capability that items stored in an
// observable list may implement.
package notify

import (
	"sync"

	"github.com/Iron-Ham/conclist/internal/event"
)

// Source is implemented by items that report changes to their own fields.
// An observable list subscribes to every distinct contained Source and
// forwards its notifications as item-changed events.
type Source interface {
	// OnPropertyChanged registers fn and returns an id for removal.
	OnPropertyChanged(fn func(field string)) string

	// RemovePropertyChangedHandler removes a handler registered with
	// OnPropertyChanged. Returns false if id is unknown.
	RemovePropertyChangedHandler(id string) bool
}

// Properties is an embeddable Source implementation. The zero value is ready
// to use; it must not be copied after first use.
//
//	type Task struct {
//	    notify.Properties
//	    name string
//	}
//
//	func (t *Task) SetName(name string) {
//	    t.name = name
//	    t.NotifyPropertyChanged("name")
//	}
type Properties struct {
	once sync.Once
	bus  *event.Bus
}

var _ Source = (*Properties)(nil)

func (p *Properties) events() *event.Bus {
	p.once.Do(func() {
		p.bus = event.NewBus()
	})
	return p.bus
}

// OnPropertyChanged implements Source.
func (p *Properties) OnPropertyChanged(fn func(field string)) string {
	return p.events().Subscribe(event.TypePropertyChanged, func(e event.Event) {
		if changed, ok := e.(event.PropertyChangedEvent); ok {
			fn(changed.Field)
		}
	})
}

// RemovePropertyChangedHandler implements Source.
func (p *Properties) RemovePropertyChangedHandler(id string) bool {
	return p.events().Unsubscribe(id)
}

// NotifyPropertyChanged delivers field to every registered handler on the
// calling goroutine.
func (p *Properties) NotifyPropertyChanged(field string) {
	p.events().Publish(event.NewPropertyChangedEvent(field))
}

// HandlerCount returns the number of registered handlers.
func (p *Properties) HandlerCount() int {
	return p.events().SubscriptionCount()
}
