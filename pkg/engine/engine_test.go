package engine

import (
	"io"
	"slices"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/heart"
	"github.com/matzehuels/orgchart/pkg/orgchart"
	"github.com/matzehuels/orgchart/pkg/surface"
)

func newMountedEngine(t *testing.T, opts ...Option) (*Engine, *Dispatcher) {
	t.Helper()
	opts = append([]Option{WithLogger(log.New(io.Discard))}, opts...)
	eng := New(opts...)
	if err := eng.Chart().SetGraph(surface.NewCanvas()); err != nil {
		t.Fatalf("SetGraph: %v", err)
	}
	d := NewDispatcher()
	if err := eng.Mount(d); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	return eng, d
}

func TestNewRunsEffectsBeforeInit(t *testing.T) {
	var seen []heart.LifeCycleType
	eng := New(
		WithLogger(log.New(io.Discard)),
		WithEffects(func(t heart.LifeCycleType, _ any) { seen = append(seen, t) }),
	)
	if eng.ID() == "" {
		t.Error("ID() is empty")
	}
	if !eng.Chart().Initialized() {
		t.Error("chart not initialized")
	}
	if !slices.Equal(seen, []heart.LifeCycleType{heart.OnOrgChartInit}) {
		t.Errorf("effects saw %v", seen)
	}
	if other := New(WithLogger(log.New(io.Discard))); other.ID() == eng.ID() {
		t.Error("engines share an id")
	}
}

func TestMount(t *testing.T) {
	eng, d := newMountedEngine(t)
	if !eng.Mounted() {
		t.Fatal("Mounted() = false")
	}
	for _, et := range EventTypes {
		if d.Listeners(et) != 1 {
			t.Errorf("listeners for %s = %d, want 1", et, d.Listeners(et))
		}
	}
	if err := eng.Mount(d); err != nil {
		t.Errorf("mounting on the same target: %v", err)
	}
	if err := eng.Mount(NewDispatcher()); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("mounting on a second target: %v", err)
	}
	if err := eng.Mount(nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Mount(nil): %v", err)
	}
}

func TestEvents(t *testing.T) {
	eng, d := newMountedEngine(t)
	c := eng.Chart()

	var appended []*orgchart.Node
	err := d.Dispatch(Event{
		Type:   EventAppendRoots,
		Specs:  []orgchart.NodeSpec{{ID: "ceo"}, {ID: "board"}},
		Result: func(nodes []*orgchart.Node, _ error) { appended = nodes },
	})
	if err != nil {
		t.Fatalf("append-roots: %v", err)
	}
	if len(appended) != 2 {
		t.Fatalf("Result got %d nodes, want 2", len(appended))
	}

	steps := []Event{
		{Type: EventAppendChildren, NodeID: "ceo", Specs: []orgchart.NodeSpec{{ID: "cto"}, {ID: "cfo"}}},
		{Type: EventReparentNode, NodeID: "cfo", ParentID: "board"},
		{Type: EventSetVisible, NodeID: "cto", Visible: false},
		{Type: EventLayout},
	}
	for _, ev := range steps {
		if err := d.Dispatch(ev); err != nil {
			t.Fatalf("%s: %v", ev.Type, err)
		}
	}

	cfo, _ := c.NodeByID("cfo")
	if cfo.Parent().ID() != "board" {
		t.Errorf("cfo parent = %s, want board", cfo.Parent().ID())
	}
	cto, _ := c.NodeByID("cto")
	if cto.Visible() {
		t.Error("cto still visible")
	}

	if err := d.Dispatch(Event{Type: EventRemoveNode, NodeID: "board"}); err != nil {
		t.Fatalf("remove-node: %v", err)
	}
	if c.Len() != 2 || len(c.Edges()) != 1 {
		t.Errorf("Len() = %d, Edges() = %d, want 2 and 1", c.Len(), len(c.Edges()))
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestEventErrors(t *testing.T) {
	_, d := newMountedEngine(t)
	if err := d.Dispatch(Event{Type: EventAppendRoots, Specs: []orgchart.NodeSpec{{ID: "a"}}}); err != nil {
		t.Fatalf("append-roots: %v", err)
	}

	tests := []struct {
		name string
		ev   Event
		code errors.Code
	}{
		{"unknown parent", Event{Type: EventAppendChildren, NodeID: "x"}, errors.ErrCodeParentNotFound},
		{"remove unknown", Event{Type: EventRemoveNode, NodeID: "x"}, errors.ErrCodeNodeNotFound},
		{"reparent unknown node", Event{Type: EventReparentNode, NodeID: "x", ParentID: "a"}, errors.ErrCodeNodeNotFound},
		{"reparent unknown parent", Event{Type: EventReparentNode, NodeID: "a", ParentID: "x"}, errors.ErrCodeParentNotFound},
		{"reparent under self", Event{Type: EventReparentNode, NodeID: "a", ParentID: "a"}, errors.ErrCodeCycle},
		{"duplicate", Event{Type: EventAppendRoots, Specs: []orgchart.NodeSpec{{ID: "a"}}}, errors.ErrCodeDuplicateID},
		{"no listener", Event{Type: "rename"}, errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got error
			tt.ev.Result = func(_ []*orgchart.Node, err error) { got = err }
			err := d.Dispatch(tt.ev)
			if !errors.Is(err, tt.code) {
				t.Fatalf("err = %v, want %s", err, tt.code)
			}
			if tt.code != errors.ErrCodeUnsupported && got != err {
				t.Errorf("Result got %v, want %v", got, err)
			}
		})
	}
}

func TestEventsBeforeSurface(t *testing.T) {
	eng := New(WithLogger(log.New(io.Discard)))
	d := NewDispatcher()
	if err := eng.Mount(d); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	err := d.Dispatch(Event{Type: EventAppendRoots, Specs: []orgchart.NodeSpec{{ID: "a"}}})
	if !errors.Is(err, errors.ErrCodeSurfaceNotBound) {
		t.Errorf("err = %v, want %s", err, errors.ErrCodeSurfaceNotBound)
	}
}

func TestUnmount(t *testing.T) {
	var seen []heart.LifeCycleType
	eng, d := newMountedEngine(t, WithEffects(func(t heart.LifeCycleType, _ any) { seen = append(seen, t) }))

	eng.Unmount()
	if eng.Mounted() {
		t.Error("Mounted() = true after Unmount")
	}
	for _, et := range EventTypes {
		if d.Listeners(et) != 0 {
			t.Errorf("listener for %s left behind", et)
		}
	}
	if err := d.Dispatch(Event{Type: EventLayout}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("dispatch after Unmount: %v", err)
	}
	if !slices.Contains(seen, heart.OnOrgChartUnmount) {
		t.Errorf("effects did not see unmount: %v", seen)
	}

	n := len(seen)
	eng.Chart().Notify(heart.OnOrgChartEditable, nil)
	if len(seen) != n {
		t.Error("effects still subscribed after Unmount")
	}
	if !eng.Chart().Unmounted() {
		t.Error("chart not unmounted")
	}
}

func TestDispatcherJoinsErrors(t *testing.T) {
	d := NewDispatcher()
	var order []int
	d.AddEventListener(EventLayout, func(Event) error {
		order = append(order, 1)
		return errors.New(errors.ErrCodeLayout, "first")
	})
	id := d.AddEventListener(EventLayout, func(Event) error {
		order = append(order, 2)
		return errors.New(errors.ErrCodeInternal, "second")
	})

	err := d.Dispatch(Event{Type: EventLayout})
	if !errors.Is(err, errors.ErrCodeLayout) {
		t.Errorf("joined error lost the first cause: %v", err)
	}
	if !slices.Equal(order, []int{1, 2}) {
		t.Errorf("order = %v", order)
	}

	d.RemoveEventListener(id)
	if d.Listeners(EventLayout) != 1 {
		t.Errorf("Listeners() = %d, want 1", d.Listeners(EventLayout))
	}
}
