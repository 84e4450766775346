package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/orgchart"
	"github.com/matzehuels/orgchart/pkg/store"
)

func newTestServer(t *testing.T, st store.Store) *httptest.Server {
	t.Helper()
	s, err := New(Options{Logger: log.New(io.Discard), Store: st})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func wantStatus(t *testing.T, resp *http.Response, status int) {
	t.Helper()
	if resp.StatusCode != status {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s = %d, want %d: %s", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, status, body)
	}
}

const familyBody = `{"nodes":[{"id":"ceo","name":"Ada","children":[{"id":"cto","name":"Grace"},{"id":"cfo","name":"Linus"}]}]}`

func seed(t *testing.T, ts *httptest.Server) {
	t.Helper()
	resp := do(t, ts, http.MethodPost, "/nodes", `{"nodes":[{"id":"ceo","name":"Ada"}]}`)
	wantStatus(t, resp, http.StatusCreated)
	resp = do(t, ts, http.MethodPost, "/nodes/ceo/children", `{"nodes":[{"id":"cto","name":"Grace"},{"id":"cfo","name":"Linus"}]}`)
	wantStatus(t, resp, http.StatusCreated)
}

func TestAppendAndSnapshot(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := do(t, ts, http.MethodPost, "/nodes", `{"nodes":[{"id":"ceo","name":"Ada"}]}`)
	wantStatus(t, resp, http.StatusCreated)
	got := decodeBody[appendResponse](t, resp)
	if len(got.Nodes) != 1 || got.Nodes[0].ID != "ceo" || !got.Nodes[0].Visible {
		t.Fatalf("append response = %+v", got)
	}

	resp = do(t, ts, http.MethodPost, "/nodes/ceo/children", `{"nodes":[{"id":"cto"},{"id":"cfo"}]}`)
	wantStatus(t, resp, http.StatusCreated)
	kids := decodeBody[appendResponse](t, resp)
	if len(kids.Nodes) != 2 || kids.Nodes[0].Parent != "ceo" {
		t.Fatalf("children response = %+v", kids)
	}

	resp = do(t, ts, http.MethodGet, "/chart", "")
	wantStatus(t, resp, http.StatusOK)
	snap := decodeBody[orgchart.Snapshot](t, resp)
	if len(snap.Nodes) != 3 || len(snap.Edges) != 2 {
		t.Fatalf("snapshot has %d nodes, %d edges", len(snap.Nodes), len(snap.Edges))
	}
	if snap.Nodes[0].X != 68 || snap.Nodes[0].Y != 0 {
		t.Errorf("ceo at (%v, %v), want (68, 0)", snap.Nodes[0].X, snap.Nodes[0].Y)
	}
}

func TestAppendIgnoresNestedChildren(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := do(t, ts, http.MethodPost, "/nodes", familyBody)
	wantStatus(t, resp, http.StatusCreated)

	snap := decodeBody[orgchart.Snapshot](t, do(t, ts, http.MethodGet, "/chart", ""))
	if len(snap.Nodes) != 1 || snap.Nodes[0].ID != "ceo" {
		t.Fatalf("nodes = %+v, want only ceo", snap.Nodes)
	}
}

func TestRemove(t *testing.T) {
	ts := newTestServer(t, nil)
	seed(t, ts)

	wantStatus(t, do(t, ts, http.MethodDelete, "/nodes/cto", ""), http.StatusNoContent)

	snap := decodeBody[orgchart.Snapshot](t, do(t, ts, http.MethodGet, "/chart", ""))
	if len(snap.Nodes) != 2 || len(snap.Edges) != 1 {
		t.Errorf("after remove: %d nodes, %d edges", len(snap.Nodes), len(snap.Edges))
	}
	wantStatus(t, do(t, ts, http.MethodDelete, "/nodes/cto", ""), http.StatusNotFound)
}

func TestReparent(t *testing.T) {
	ts := newTestServer(t, nil)
	seed(t, ts)

	resp := do(t, ts, http.MethodPut, "/nodes/cfo/parent", `{"parent":"cto"}`)
	wantStatus(t, resp, http.StatusOK)
	snap := decodeBody[orgchart.Snapshot](t, resp)
	for _, n := range snap.Nodes {
		if n.ID == "cfo" && n.Parent != "cto" {
			t.Errorf("cfo parent = %q, want cto", n.Parent)
		}
	}

	resp = do(t, ts, http.MethodPut, "/nodes/ceo/parent", `{"parent":"cfo"}`)
	wantStatus(t, resp, http.StatusBadRequest)
	if e := decodeBody[errorResponse](t, resp); e.Code != errors.ErrCodeCycle {
		t.Errorf("cycle code = %s", e.Code)
	}

	wantStatus(t, do(t, ts, http.MethodPut, "/nodes/cfo/parent", `{"parent":"nobody"}`), http.StatusNotFound)
	wantStatus(t, do(t, ts, http.MethodPut, "/nodes/cfo/parent", `{}`), http.StatusBadRequest)
}

func TestVisible(t *testing.T) {
	ts := newTestServer(t, nil)
	seed(t, ts)

	resp := do(t, ts, http.MethodPut, "/nodes/cfo/visible", `{"visible":false}`)
	wantStatus(t, resp, http.StatusOK)
	snap := decodeBody[orgchart.Snapshot](t, resp)
	for _, n := range snap.Nodes {
		if n.ID == "cfo" && n.Visible {
			t.Error("cfo still visible")
		}
	}

	svg := do(t, ts, http.MethodGet, "/chart.svg", "")
	wantStatus(t, svg, http.StatusOK)
	body, _ := io.ReadAll(svg.Body)
	if bytes.Contains(body, []byte(`id="node-cfo"`)) || !bytes.Contains(body, []byte(`id="node-cto"`)) {
		t.Errorf("svg visibility wrong:\n%s", body)
	}

	wantStatus(t, do(t, ts, http.MethodPut, "/nodes/cfo/visible", `{}`), http.StatusBadRequest)
}

func TestDOT(t *testing.T) {
	ts := newTestServer(t, nil)
	seed(t, ts)

	resp := do(t, ts, http.MethodGet, "/chart.dot", "")
	wantStatus(t, resp, http.StatusOK)
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(body, []byte(`"ceo" -> "cto";`)) {
		t.Errorf("dot missing edge:\n%s", body)
	}
}

func TestAppendErrors(t *testing.T) {
	ts := newTestServer(t, nil)
	seed(t, ts)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   errors.Code
	}{
		{"bad json", "/nodes", `{`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"empty", "/nodes", `{"nodes":[]}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"duplicate", "/nodes", `{"nodes":[{"id":"ceo"}]}`, http.StatusConflict, errors.ErrCodeDuplicateID},
		{"unknown parent", "/nodes/ghost/children", `{"nodes":[{"id":"x"}]}`, http.StatusNotFound, errors.ErrCodeParentNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, ts, http.MethodPost, tt.path, tt.body)
			wantStatus(t, resp, tt.status)
			if e := decodeBody[errorResponse](t, resp); e.Code != tt.code {
				t.Errorf("code = %s, want %s", e.Code, tt.code)
			}
		})
	}
}

func TestChartsWithoutStore(t *testing.T) {
	ts := newTestServer(t, nil)
	wantStatus(t, do(t, ts, http.MethodGet, "/charts", ""), http.StatusNotImplemented)
}

func TestChartsStore(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ts := newTestServer(t, st)
	seed(t, ts)
	wantStatus(t, do(t, ts, http.MethodPut, "/nodes/cfo/visible", `{"visible":false}`), http.StatusOK)

	wantStatus(t, do(t, ts, http.MethodPut, "/charts/acme", ""), http.StatusNoContent)
	wantStatus(t, do(t, ts, http.MethodPut, "/charts/a..b", ""), http.StatusBadRequest)

	resp := do(t, ts, http.MethodGet, "/charts", "")
	wantStatus(t, resp, http.StatusOK)
	list := decodeBody[chartsResponse](t, resp)
	if len(list.Charts) != 1 || list.Charts[0].Name != "acme" || list.Charts[0].Nodes != 3 {
		t.Fatalf("charts = %+v", list)
	}

	wantStatus(t, do(t, ts, http.MethodDelete, "/nodes/cto", ""), http.StatusNoContent)

	resp = do(t, ts, http.MethodPost, "/charts/acme/load", "")
	wantStatus(t, resp, http.StatusOK)
	snap := decodeBody[orgchart.Snapshot](t, resp)
	if len(snap.Nodes) != 3 {
		t.Fatalf("loaded %d nodes, want 3", len(snap.Nodes))
	}
	for _, n := range snap.Nodes {
		if n.ID == "cfo" && n.Visible {
			t.Error("cfo should stay hidden after load")
		}
	}

	// the loaded chart takes events
	wantStatus(t, do(t, ts, http.MethodDelete, "/nodes/cto", ""), http.StatusNoContent)

	wantStatus(t, do(t, ts, http.MethodPost, "/charts/missing/load", ""), http.StatusNotFound)
	wantStatus(t, do(t, ts, http.MethodDelete, "/charts/acme", ""), http.StatusNoContent)
}

func TestLoadBrokenChartKeepsServedChart(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(Options{Logger: log.New(io.Discard), Store: st})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	seed(t, ts)
	served := s.Chart()

	broken := orgchart.Snapshot{Nodes: []orgchart.NodeSnapshot{
		{ID: "x", Name: "First", Visible: true},
		{ID: "x", Name: "Second", Visible: true},
	}}
	if err := s.Restore("broken", broken); !errors.Is(err, errors.ErrCodeDuplicateID) {
		t.Fatalf("Restore = %v, want %s", err, errors.ErrCodeDuplicateID)
	}
	if s.Chart() != served || served.Len() != 3 {
		t.Fatalf("served chart replaced or changed: same=%v len=%d", s.Chart() == served, s.Chart().Len())
	}

	if err := st.Save(t.Context(), "broken", broken); err != nil {
		t.Fatalf("Save: %v", err)
	}
	wantStatus(t, do(t, ts, http.MethodPost, "/charts/broken/load", ""), http.StatusConflict)

	resp := do(t, ts, http.MethodGet, "/chart", "")
	wantStatus(t, resp, http.StatusOK)
	if snap := decodeBody[orgchart.Snapshot](t, resp); len(snap.Nodes) != 3 {
		t.Fatalf("served %d nodes after failed load, want 3", len(snap.Nodes))
	}
	// the served chart still takes events
	wantStatus(t, do(t, ts, http.MethodDelete, "/nodes/cto", ""), http.StatusNoContent)
	if s.Chart().Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Chart().Len())
	}
}
