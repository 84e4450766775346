package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/orgchart/pkg/engine"
	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/orgchart"
	"github.com/matzehuels/orgchart/pkg/render/dot"
	"github.com/matzehuels/orgchart/pkg/render/svg"
	"github.com/matzehuels/orgchart/pkg/store"
)

type appendRequest struct {
	Nodes []orgchart.NodeSpec `json:"nodes"`
}

type appendResponse struct {
	Nodes []orgchart.NodeSnapshot `json:"nodes"`
}

type reparentRequest struct {
	Parent string `json:"parent"`
}

type visibleRequest struct {
	Visible *bool `json:"visible"`
}

type chartsResponse struct {
	Charts []store.Info `json:"charts"`
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.engine.Chart().Snapshot()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := svg.FromCanvas(s.canvas, svg.WithTitle(s.name), svg.WithDetails())
	s.mu.Unlock()
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(out)
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := dot.ToDOT(s.engine.Chart().Snapshot(), dot.Options{Detailed: r.URL.Query().Has("detailed")})
	s.mu.Unlock()
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	io.WriteString(w, out)
}

func (s *Server) handleAppendRoots(w http.ResponseWriter, r *http.Request) {
	var req appendRequest
	if !decode(w, r, &req) {
		return
	}
	s.appendNodes(w, engine.Event{Type: engine.EventAppendRoots, Specs: req.Nodes})
}

func (s *Server) handleAppendChildren(w http.ResponseWriter, r *http.Request) {
	var req appendRequest
	if !decode(w, r, &req) {
		return
	}
	s.appendNodes(w, engine.Event{Type: engine.EventAppendChildren, NodeID: chi.URLParam(r, "id"), Specs: req.Nodes})
}

func (s *Server) appendNodes(w http.ResponseWriter, ev engine.Event) {
	if len(ev.Specs) == 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "nodes is empty"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	nodes, err := s.dispatch(ev)
	if err != nil {
		writeError(w, err)
		return
	}

	snap := s.engine.Chart().Snapshot()
	byID := make(map[string]orgchart.NodeSnapshot, len(snap.Nodes))
	for _, n := range snap.Nodes {
		byID[n.ID] = n
	}
	resp := appendResponse{Nodes: make([]orgchart.NodeSnapshot, 0, len(nodes))}
	for _, n := range nodes {
		resp.Nodes = append(resp.Nodes, byID[n.ID()])
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.dispatch(engine.Event{Type: engine.EventRemoveNode, NodeID: chi.URLParam(r, "id")}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReparent(w http.ResponseWriter, r *http.Request) {
	var req reparentRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Parent == "" {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "parent is required"))
		return
	}
	s.mutate(w, engine.Event{Type: engine.EventReparentNode, NodeID: chi.URLParam(r, "id"), ParentID: req.Parent})
}

func (s *Server) handleVisible(w http.ResponseWriter, r *http.Request) {
	var req visibleRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Visible == nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "visible is required"))
		return
	}
	s.mutate(w, engine.Event{Type: engine.EventSetVisible, NodeID: chi.URLParam(r, "id"), Visible: *req.Visible})
}

// mutate dispatches ev and answers with the resulting snapshot.
func (s *Server) mutate(w http.ResponseWriter, ev engine.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.dispatch(ev); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Chart().Snapshot())
}

func (s *Server) handleListCharts(w http.ResponseWriter, r *http.Request) {
	infos, err := s.opts.Store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if infos == nil {
		infos = []store.Info{}
	}
	writeJSON(w, http.StatusOK, chartsResponse{Charts: infos})
}

func (s *Server) handleSaveChart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := errors.ValidateChartName(name); err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	snap := s.engine.Chart().Snapshot()
	s.mu.Unlock()

	if err := s.opts.Store.Save(r.Context(), name, snap); err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLoadChart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	snap, err := s.opts.Store.Load(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.restore(name, snap); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Chart().Snapshot())
}

func (s *Server) handleDeleteChart(w http.ResponseWriter, r *http.Request) {
	if err := s.opts.Store.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, errors.HTTPStatus(err), errorResponse{Code: code, Message: errors.UserMessage(err)})
}
