// Package heart is a synchronous publish/subscribe bus for chart lifecycle
// notifications.
//
// Handlers run on the publishing goroutine in registration order. A handler
// that panics is recovered and logged; delivery continues with the next
// handler.
package heart

import (
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
)

// LifeCycleType names a lifecycle milestone.
type LifeCycleType string

// Lifecycle milestones raised by the chart.
const (
	OnOrgChartInit     LifeCycleType = "onOrgChartInit"
	OnOrgChartMount    LifeCycleType = "onOrgChartMount"
	OnOrgChartUnmount  LifeCycleType = "onOrgChartUnmount"
	OnOrgChartEditable LifeCycleType = "onOrgChartEditable"
	OnNodesAppend      LifeCycleType = "onNodesAppend"
)

// LifeCycleTypes lists every milestone in the order a chart raises them.
var LifeCycleTypes = []LifeCycleType{
	OnOrgChartInit,
	OnOrgChartMount,
	OnOrgChartEditable,
	OnNodesAppend,
	OnOrgChartUnmount,
}

// Handler receives a lifecycle notification.
type Handler func(t LifeCycleType, payload any)

// Token identifies a subscription.
type Token uint64

type subscription struct {
	token   Token
	handler Handler
}

// Heart is the notification bus. The zero value is ready to use and logs
// recovered panics to log.Default().
type Heart struct {
	mu     sync.Mutex
	subs   []subscription
	next   Token
	logger *log.Logger
}

// New returns a Heart that logs recovered panics to logger.
// A nil logger falls back to log.Default().
func New(logger *log.Logger) *Heart {
	return &Heart{logger: logger}
}

// Subscribe registers h and returns its token.
func (h *Heart) Subscribe(handler Handler) Token {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	h.subs = append(h.subs, subscription{token: h.next, handler: handler})
	return h.next
}

// Unsubscribe removes the handlers registered under tokens.
// With no tokens, every handler is removed.
func (h *Heart) Unsubscribe(tokens ...Token) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(tokens) == 0 {
		h.subs = nil
		return
	}
	h.subs = slices.DeleteFunc(h.subs, func(s subscription) bool {
		return slices.Contains(tokens, s.token)
	})
}

// Len returns the number of registered handlers.
func (h *Heart) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Publish delivers (t, payload) to every handler registered at the time of
// the call. It returns the number of handlers that panicked.
func (h *Heart) Publish(t LifeCycleType, payload any) int {
	h.mu.Lock()
	subs := slices.Clone(h.subs)
	h.mu.Unlock()

	failed := 0
	for _, s := range subs {
		if err := deliver(s.handler, t, payload); err != nil {
			failed++
			h.log().Error("lifecycle handler panicked", "type", t, "token", s.token, "err", err)
		}
	}
	return failed
}

func deliver(handler Handler, t LifeCycleType, payload any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	handler(t, payload)
	return nil
}

func (h *Heart) log() *log.Logger {
	if h.logger != nil {
		return h.logger
	}
	return log.Default()
}
