package engine

import (
	stderrors "errors"
	"slices"
	"sync"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/orgchart"
)

// EventType names a chart event a host can dispatch.
type EventType string

// Chart events handled by a mounted Engine.
const (
	EventAppendRoots    EventType = "append-roots"
	EventAppendChildren EventType = "append-children"
	EventRemoveNode     EventType = "remove-node"
	EventReparentNode   EventType = "reparent-node"
	EventSetVisible     EventType = "set-visible"
	EventLayout         EventType = "layout"
)

// EventTypes lists every event an Engine listens for.
var EventTypes = []EventType{
	EventAppendRoots,
	EventAppendChildren,
	EventRemoveNode,
	EventReparentNode,
	EventSetVisible,
	EventLayout,
}

// Event is a request to change the chart.
//
// NodeID is the node acted on: the parent for append-children, the moved
// node for reparent-node. ParentID is the new parent for reparent-node.
type Event struct {
	Type     EventType
	NodeID   string
	ParentID string
	Specs    []orgchart.NodeSpec
	Visible  bool

	// Result, when set, receives the outcome of the event: the appended
	// nodes for append events, and the error if handling failed.
	Result func(nodes []*orgchart.Node, err error)
}

// Listener handles an event.
type Listener func(Event) error

// ListenerID identifies a registered listener.
type ListenerID uint64

// EventTarget is the event source an Engine attaches to.
type EventTarget interface {
	AddEventListener(t EventType, l Listener) ListenerID
	RemoveEventListener(id ListenerID)
}

type registration struct {
	id       ListenerID
	listener Listener
}

// Dispatcher is an in-process EventTarget.
// It is safe for concurrent use; listeners run on the dispatching goroutine.
type Dispatcher struct {
	mu        sync.Mutex
	listeners map[EventType][]registration
	next      ListenerID
}

// NewDispatcher returns a dispatcher without listeners.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[EventType][]registration)}
}

// AddEventListener implements EventTarget.
func (d *Dispatcher) AddEventListener(t EventType, l Listener) ListenerID {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.next++
	d.listeners[t] = append(d.listeners[t], registration{id: d.next, listener: l})
	return d.next
}

// RemoveEventListener implements EventTarget.
func (d *Dispatcher) RemoveEventListener(id ListenerID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for t, regs := range d.listeners {
		d.listeners[t] = slices.DeleteFunc(regs, func(r registration) bool { return r.id == id })
		if len(d.listeners[t]) == 0 {
			delete(d.listeners, t)
		}
	}
}

// Listeners returns the number of listeners registered for t.
func (d *Dispatcher) Listeners(t EventType) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners[t])
}

// Dispatch delivers e to the listeners of e.Type in registration order and
// joins their errors. An event nobody listens for fails with
// errors.ErrCodeUnsupported.
func (d *Dispatcher) Dispatch(e Event) error {
	d.mu.Lock()
	regs := slices.Clone(d.listeners[e.Type])
	d.mu.Unlock()

	if len(regs) == 0 {
		return errors.New(errors.ErrCodeUnsupported, "no listener for event %q", e.Type)
	}
	var errs []error
	for _, r := range regs {
		if err := r.listener(e); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return stderrors.Join(errs...)
}
