package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/orgchart"
)

// FileStore keeps each chart in <dir>/<name>.json.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file store. An empty baseDir defaults to
// ~/.config/orgchart/charts.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, storageErr(err, "get home dir")
		}
		baseDir = filepath.Join(home, ".config", "orgchart", "charts")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, storageErr(err, "create chart dir")
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) chartPath(name string) string {
	return filepath.Join(s.baseDir, name+".json")
}

func (s *FileStore) read(name string) (*Record, error) {
	data, err := os.ReadFile(s.chartPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, storageErr(err, "read chart file")
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, storageErr(err, "parse chart %q", name)
	}
	return &rec, nil
}

func (s *FileStore) Save(ctx context.Context, name string, snap orgchart.Snapshot) error {
	if err := errors.ValidateChartName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	rec := Record{Name: name, Nodes: len(snap.Nodes), Snapshot: snap, CreatedAt: now, UpdatedAt: now}
	if old, err := s.read(name); err == nil && old != nil {
		rec.CreatedAt = old.CreatedAt
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return storageErr(err, "marshal chart")
	}
	tmp := s.chartPath(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return storageErr(err, "write chart file")
	}
	if err := os.Rename(tmp, s.chartPath(name)); err != nil {
		os.Remove(tmp)
		return storageErr(err, "write chart file")
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context, name string) (orgchart.Snapshot, error) {
	if err := errors.ValidateChartName(name); err != nil {
		return orgchart.Snapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.read(name)
	if err != nil {
		return orgchart.Snapshot{}, err
	}
	if rec == nil {
		return orgchart.Snapshot{}, notFound(name)
	}
	return rec.Snapshot, nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateChartName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.chartPath(name)); err != nil && !os.IsNotExist(err) {
		return storageErr(err, "remove chart file")
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, storageErr(err, "read chart dir")
	}
	var out []Info
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		rec, err := s.read(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil || rec == nil {
			continue
		}
		out = append(out, Info{Name: rec.Name, Nodes: rec.Nodes, UpdatedAt: rec.UpdatedAt})
	}
	slices.SortFunc(out, func(a, b Info) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *FileStore) Close() error { return nil }

// Dir returns the directory holding chart files.
func (s *FileStore) Dir() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
