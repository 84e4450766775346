// Package server exposes a single organization chart over HTTP.
//
// The server owns one [engine.Engine] mounted on an [engine.Dispatcher];
// every mutating request is turned into a chart event and dispatched, so
// HTTP clients drive the chart the same way an embedding host would.
// Requests are serialized by a mutex.
//
// Routes:
//
//	GET    /chart                 snapshot JSON
//	GET    /chart.svg             SVG of the rendering surface
//	GET    /chart.dot             Graphviz DOT
//	POST   /nodes                 append root nodes
//	POST   /nodes/{id}/children   append children under id
//	DELETE /nodes/{id}            remove id and its subtree
//	PUT    /nodes/{id}/parent     move id under another node
//	PUT    /nodes/{id}/visible    show or hide id
//	GET    /charts                list stored charts
//	PUT    /charts/{name}         save the current chart
//	POST   /charts/{name}/load    replace the current chart with a stored one
//	DELETE /charts/{name}         delete a stored chart
//
// The /charts routes answer 501 when no store is configured.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/orgchart/pkg/engine"
	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/orgchart"
	"github.com/matzehuels/orgchart/pkg/orgio"
	"github.com/matzehuels/orgchart/pkg/store"
	"github.com/matzehuels/orgchart/pkg/surface"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// Options configures a Server.
type Options struct {
	Logger       *log.Logger
	ChartOptions []orgchart.Option
	// Store enables the /charts routes. The server does not close it.
	Store store.Store
}

// Server serves one chart.
type Server struct {
	mu         sync.Mutex
	opts       Options
	logger     *log.Logger
	dispatcher *engine.Dispatcher
	engine     *engine.Engine
	canvas     *surface.Canvas
	name       string
}

// New creates a server with an empty chart bound to an in-memory canvas.
func New(opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	s := &Server{
		opts:       opts,
		logger:     opts.Logger.WithPrefix("server"),
		dispatcher: engine.NewDispatcher(),
	}
	if err := s.reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// reset replaces the chart with an empty one. Callers hold mu, except New.
func (s *Server) reset() error {
	e, canvas, err := s.newEngine()
	if err != nil {
		return err
	}
	return s.swap(e, canvas, "")
}

// newEngine builds an engine bound to a fresh canvas. It is not mounted.
func (s *Server) newEngine() (*engine.Engine, *surface.Canvas, error) {
	e := engine.New(
		engine.WithLogger(s.opts.Logger),
		engine.WithChartOptions(s.opts.ChartOptions...),
	)
	canvas := surface.NewCanvas()
	if err := e.Chart().SetGraph(canvas); err != nil {
		e.Unmount()
		return nil, nil, err
	}
	return e, canvas, nil
}

// swap mounts e on the dispatcher and then retires the served engine. The
// served engine stays in place when mounting fails.
func (s *Server) swap(e *engine.Engine, canvas *surface.Canvas, name string) error {
	if err := e.Mount(s.dispatcher); err != nil {
		e.Unmount()
		return err
	}
	if s.engine != nil {
		s.engine.Unmount()
	}
	s.engine, s.canvas, s.name = e, canvas, name
	return nil
}

// Chart returns the served chart. It is replaced when a stored chart is
// loaded.
func (s *Server) Chart() *orgchart.Chart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Chart()
}

// Restore replaces the served chart with snap.
func (s *Server) Restore(name string, snap orgchart.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restore(name, snap)
}

// restore builds snap on a new engine and serves it only once the whole
// snapshot was appended. A failed restore leaves the served chart alone.
func (s *Server) restore(name string, snap orgchart.Snapshot) error {
	e, canvas, err := s.newEngine()
	if err != nil {
		return err
	}
	if _, err := orgio.Restore(e.Chart(), snap); err != nil {
		e.Unmount()
		return err
	}
	return s.swap(e, canvas, name)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/chart", s.handleSnapshot)
	r.Get("/chart.svg", s.handleSVG)
	r.Get("/chart.dot", s.handleDOT)

	r.Route("/nodes", func(r chi.Router) {
		r.Post("/", s.handleAppendRoots)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", s.handleRemove)
			r.Post("/children", s.handleAppendChildren)
			r.Put("/parent", s.handleReparent)
			r.Put("/visible", s.handleVisible)
		})
	})

	r.Route("/charts", func(r chi.Router) {
		r.Use(s.requireStore)
		r.Get("/", s.handleListCharts)
		r.Put("/{name}", s.handleSaveChart)
		r.Delete("/{name}", s.handleDeleteChart)
		r.Post("/{name}/load", s.handleLoadChart)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("stopped")
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"dur", time.Since(start).Round(time.Microsecond),
			"id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) requireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Store == nil {
			writeError(w, errors.New(errors.ErrCodeUnsupported, "no chart store configured"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// dispatch sends ev through the event target and returns the nodes the
// engine reported back.
func (s *Server) dispatch(ev engine.Event) ([]*orgchart.Node, error) {
	var nodes []*orgchart.Node
	ev.Result = func(n []*orgchart.Node, _ error) { nodes = n }
	err := s.dispatcher.Dispatch(ev)
	return nodes, err
}
