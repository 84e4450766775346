// Package engine hosts one organization chart per editing session and
// connects it to an event source.
//
// A host builds an Engine, binds a rendering surface to its chart, and
// mounts the engine on an [EventTarget]. Chart events dispatched on the
// target are translated into chart operations:
//
//	eng := engine.New(engine.WithLogger(logger))
//	if err := eng.Chart().SetGraph(surface.NewCanvas()); err != nil {
//	    return err
//	}
//	d := engine.NewDispatcher()
//	if err := eng.Mount(d); err != nil {
//	    return err
//	}
//	defer eng.Unmount()
//
//	err := d.Dispatch(engine.Event{
//	    Type:  engine.EventAppendRoots,
//	    Specs: []orgchart.NodeSpec{{Name: "CEO"}},
//	})
package engine

import (
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/heart"
	"github.com/matzehuels/orgchart/pkg/orgchart"
)

// Engine owns a chart and the listeners attached on its behalf.
type Engine struct {
	id     string
	chart  *orgchart.Chart
	logger *log.Logger

	chartOpts []orgchart.Option
	effects   []heart.Handler
	tokens    []heart.Token

	target    EventTarget
	listeners []ListenerID
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger shared by the engine and its chart.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithChartOptions passes options to the chart constructor.
func WithChartOptions(opts ...orgchart.Option) Option {
	return func(e *Engine) { e.chartOpts = append(e.chartOpts, opts...) }
}

// WithEffects subscribes lifecycle handlers before the chart initializes,
// so they observe onOrgChartInit.
func WithEffects(handlers ...heart.Handler) Option {
	return func(e *Engine) { e.effects = append(e.effects, handlers...) }
}

// New creates an engine and initializes its chart.
func New(opts ...Option) *Engine {
	e := &Engine{id: uuid.NewString()}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	chartOpts := append([]orgchart.Option{orgchart.WithLogger(e.logger)}, e.chartOpts...)
	e.chart = orgchart.New(chartOpts...)
	for _, h := range e.effects {
		e.tokens = append(e.tokens, e.chart.Heart().Subscribe(h))
	}
	e.chart.Init()
	return e
}

// ID returns the session id.
func (e *Engine) ID() string { return e.id }

// Chart returns the session's chart.
func (e *Engine) Chart() *orgchart.Chart { return e.chart }

// Mounted reports whether the engine listens on a target.
func (e *Engine) Mounted() bool { return e.target != nil }

// Mount attaches a listener per chart event to target. Mounting on the
// current target again does nothing.
func (e *Engine) Mount(target EventTarget) error {
	if target == nil {
		return errors.New(errors.ErrCodeInvalidInput, "event target is nil")
	}
	if e.target != nil {
		if e.target == target {
			return nil
		}
		return errors.New(errors.ErrCodeInvalidInput, "engine %s is already mounted", e.id)
	}
	e.target = target
	for _, t := range EventTypes {
		e.listeners = append(e.listeners, target.AddEventListener(t, e.handle))
	}
	e.logger.Debug("engine mounted", "engine", e.id)
	return nil
}

// Unmount removes the engine's listeners, raises onOrgChartUnmount and
// drops the effects. The chart stays usable for reading.
func (e *Engine) Unmount() {
	if e.target != nil {
		for _, id := range e.listeners {
			e.target.RemoveEventListener(id)
		}
		e.listeners = nil
		e.target = nil
	}
	e.chart.Unmount()
	if len(e.tokens) > 0 {
		e.chart.Heart().Unsubscribe(e.tokens...)
		e.tokens = nil
	}
	e.logger.Debug("engine unmounted", "engine", e.id)
}

// Apply handles ev directly, without an event target.
func (e *Engine) Apply(ev Event) ([]*orgchart.Node, error) {
	nodes, err := e.apply(ev)
	if err != nil {
		e.logger.Warn("chart event failed", "event", ev.Type, "node", ev.NodeID, "err", err)
	} else {
		e.logger.Debug("chart event", "event", ev.Type, "node", ev.NodeID, "nodes", len(nodes))
	}
	return nodes, err
}

func (e *Engine) handle(ev Event) error {
	nodes, err := e.Apply(ev)
	if ev.Result != nil {
		ev.Result(nodes, err)
	}
	return err
}

func (e *Engine) apply(ev Event) ([]*orgchart.Node, error) {
	switch ev.Type {
	case EventAppendRoots:
		return e.chart.AppendRootNodes(ev.Specs)
	case EventAppendChildren:
		n, err := e.node(ev.NodeID, errors.ErrCodeParentNotFound)
		if err != nil {
			return nil, err
		}
		return n.AppendNodes(ev.Specs)
	case EventRemoveNode:
		n, err := e.node(ev.NodeID, errors.ErrCodeNodeNotFound)
		if err != nil {
			return nil, err
		}
		return nil, n.Remove()
	case EventReparentNode:
		n, err := e.node(ev.NodeID, errors.ErrCodeNodeNotFound)
		if err != nil {
			return nil, err
		}
		p, err := e.node(ev.ParentID, errors.ErrCodeParentNotFound)
		if err != nil {
			return nil, err
		}
		return nil, n.ResetParent(p)
	case EventSetVisible:
		n, err := e.node(ev.NodeID, errors.ErrCodeNodeNotFound)
		if err != nil {
			return nil, err
		}
		return nil, n.SetVisible(ev.Visible)
	case EventLayout:
		return nil, e.chart.Layout()
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown event %q", ev.Type)
	}
}

func (e *Engine) node(id string, code errors.Code) (*orgchart.Node, error) {
	n, ok := e.chart.NodeByID(id)
	if !ok {
		return nil, errors.New(code, "node %q not found", id)
	}
	return n, nil
}
