package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/orgchart"
	"github.com/matzehuels/orgchart/pkg/surface"
)

func sampleSnapshot(names ...string) orgchart.Snapshot {
	s := orgchart.Snapshot{Layout: "tree"}
	for i, n := range names {
		ns := orgchart.NodeSnapshot{ID: n, Name: n, X: float64(i) * 136, Width: 120, Height: 180, Visible: true}
		if i > 0 {
			ns.Parent = names[0]
			s.Edges = append(s.Edges, orgchart.EdgeSnapshot{
				ID:       "e" + n,
				Source:   names[0],
				Target:   n,
				Vertices: []surface.Point{{X: 60, Y: 196}, {X: ns.X + 60, Y: 196}},
			})
		}
		s.Nodes = append(s.Nodes, ns)
	}
	return s
}

// exerciseStore runs the behavior every backend shares.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Load(ctx, "missing"); !errors.Is(err, errors.ErrCodeChartNotFound) {
		t.Fatalf("Load(missing) = %v, want %s", err, errors.ErrCodeChartNotFound)
	}

	if err := s.Save(ctx, "beta", sampleSnapshot("b")); err != nil {
		t.Fatalf("Save(beta): %v", err)
	}
	if err := s.Save(ctx, "alpha", sampleSnapshot("root", "x")); err != nil {
		t.Fatalf("Save(alpha): %v", err)
	}

	got, err := s.Load(ctx, "alpha")
	if err != nil {
		t.Fatalf("Load(alpha): %v", err)
	}
	if got.Layout != "tree" || len(got.Nodes) != 2 || got.Nodes[1].Parent != "root" {
		t.Errorf("Load(alpha) = %+v", got)
	}
	if len(got.Edges) != 1 || len(got.Edges[0].Vertices) != 2 || got.Edges[0].Vertices[1].X != 196 {
		t.Errorf("edges = %+v", got.Edges)
	}

	// Saving again replaces the snapshot.
	if err := s.Save(ctx, "alpha", sampleSnapshot("root", "x", "y")); err != nil {
		t.Fatalf("Save(alpha) again: %v", err)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Name != "alpha" || list[1].Name != "beta" {
		t.Fatalf("List() = %+v", list)
	}
	if list[0].Nodes != 3 || list[0].UpdatedAt.IsZero() {
		t.Errorf("List()[0] = %+v", list[0])
	}

	if err := s.Delete(ctx, "alpha"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "alpha"); err != nil {
		t.Fatalf("Delete twice: %v", err)
	}
	if _, err := s.Load(ctx, "alpha"); !errors.Is(err, errors.ErrCodeChartNotFound) {
		t.Errorf("Load after Delete = %v", err)
	}

	for _, bad := range []string{"", "../etc", "a/b"} {
		if err := s.Save(ctx, bad, sampleSnapshot("n")); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Save(%q) = %v, want %s", bad, err, errors.ErrCodeInvalidInput)
		}
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestFileStoreSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(context.Background(), "ok", sampleSnapshot("a")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	list, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Name != "ok" {
		t.Errorf("List() = %+v", list)
	}
	if _, err := s.Load(context.Background(), "broken"); !errors.Is(err, errors.ErrCodeStorage) {
		t.Errorf("Load(broken) = %v, want %s", err, errors.ErrCodeStorage)
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "charts.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLiteStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "charts.db")

	s, err := NewSQLiteStore(ctx, path)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := s.Save(ctx, "kept", sampleSnapshot("a", "b")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s.Close()

	s, err = NewSQLiteStore(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.Load(ctx, "kept")
	if err != nil || len(got.Nodes) != 2 {
		t.Errorf("Load after reopen = %+v, %v", got, err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name string
		cfg  Config
		code errors.Code
	}{
		{"file", Config{Backend: BackendFile, Dir: dir}, ""},
		{"default is file", Config{Dir: dir}, ""},
		{"sqlite", Config{Backend: BackendSQLite, Path: filepath.Join(dir, "o.db")}, ""},
		{"sqlite without path", Config{Backend: BackendSQLite}, errors.ErrCodeInvalidPath},
		{"mongo without uri", Config{Backend: BackendMongo}, errors.ErrCodeInvalidInput},
		{"unknown", Config{Backend: "etcd"}, errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.cfg)
			if tt.code == "" {
				if err != nil {
					t.Fatalf("Open: %v", err)
				}
				s.Close()
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}
