package heart

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestPublishOrder(t *testing.T) {
	h := New(nil)
	var got []string
	h.Subscribe(func(LifeCycleType, any) { got = append(got, "first") })
	h.Subscribe(func(LifeCycleType, any) { got = append(got, "second") })
	h.Subscribe(func(LifeCycleType, any) { got = append(got, "third") })

	h.Publish(OnOrgChartInit, nil)

	want := []string{"first", "second", "third"}
	if !slices.Equal(got, want) {
		t.Errorf("delivery order = %v, want %v", got, want)
	}
}

func TestPublishPayload(t *testing.T) {
	var h Heart
	var gotType LifeCycleType
	var gotPayload any
	h.Subscribe(func(t LifeCycleType, p any) { gotType, gotPayload = t, p })

	h.Publish(OnNodesAppend, 42)

	if gotType != OnNodesAppend || gotPayload != 42 {
		t.Errorf("got (%v, %v), want (%v, 42)", gotType, gotPayload, OnNodesAppend)
	}
}

func TestPanickingHandlerIsIsolated(t *testing.T) {
	var buf bytes.Buffer
	h := New(log.New(&buf))

	var after bool
	h.Subscribe(func(LifeCycleType, any) { panic("boom") })
	h.Subscribe(func(LifeCycleType, any) { after = true })

	if failed := h.Publish(OnOrgChartMount, nil); failed != 1 {
		t.Errorf("Publish() failed = %d, want 1", failed)
	}
	if !after {
		t.Error("handler after the panicking one was not called")
	}
	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("panic not logged: %q", buf.String())
	}
}

func TestUnsubscribe(t *testing.T) {
	h := New(nil)
	var calls []int
	t1 := h.Subscribe(func(LifeCycleType, any) { calls = append(calls, 1) })
	h.Subscribe(func(LifeCycleType, any) { calls = append(calls, 2) })
	t3 := h.Subscribe(func(LifeCycleType, any) { calls = append(calls, 3) })

	h.Unsubscribe(t1, t3)
	h.Publish(OnOrgChartEditable, nil)

	if !slices.Equal(calls, []int{2}) {
		t.Errorf("calls = %v, want [2]", calls)
	}
	if h.Len() != 1 {
		t.Errorf("Len() = %d, want 1", h.Len())
	}
}

func TestUnsubscribeAll(t *testing.T) {
	h := New(nil)
	var called bool
	h.Subscribe(func(LifeCycleType, any) { called = true })
	h.Subscribe(func(LifeCycleType, any) { called = true })

	h.Unsubscribe()
	h.Publish(OnOrgChartUnmount, nil)

	if called {
		t.Error("handler called after Unsubscribe()")
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
}

func TestSubscribeDuringPublish(t *testing.T) {
	h := New(nil)
	var late bool
	h.Subscribe(func(LifeCycleType, any) {
		h.Subscribe(func(LifeCycleType, any) { late = true })
	})

	h.Publish(OnOrgChartInit, nil)
	if late {
		t.Error("handler added during Publish received the same event")
	}
	h.Publish(OnOrgChartInit, nil)
	if !late {
		t.Error("handler added during Publish missed the next event")
	}
}

func ExampleHeart() {
	h := New(nil)
	tok := h.Subscribe(func(t LifeCycleType, payload any) {
		fmt.Println(t, payload)
	})
	h.Publish(OnOrgChartInit, "chart")
	h.Unsubscribe(tok)
	h.Publish(OnOrgChartInit, "ignored")
	// Output: onOrgChartInit chart
}
