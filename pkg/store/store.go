// Package store persists chart snapshots under a name.
//
// Three backends implement [Store]:
//   - [FileStore]: one JSON file per chart, for the CLI
//   - [SQLiteStore]: a single SQLite database file (pure Go driver)
//   - [MongoStore]: a MongoDB collection, for shared server deployments
//
// Chart names are validated with errors.ValidateChartName by every backend.
// Loading an unknown name fails with errors.ErrCodeChartNotFound.
package store

import (
	"context"
	"time"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/orgchart"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// Record is a stored snapshot.
type Record struct {
	Name      string            `json:"name" bson:"_id"`
	Nodes     int               `json:"nodes" bson:"nodes"`
	Snapshot  orgchart.Snapshot `json:"snapshot" bson:"snapshot"`
	CreatedAt time.Time         `json:"created_at" bson:"createdAt"`
	UpdatedAt time.Time         `json:"updated_at" bson:"updatedAt"`
}

// Info describes a stored chart without its snapshot.
type Info struct {
	Name      string    `json:"name" bson:"_id"`
	Nodes     int       `json:"nodes" bson:"nodes"`
	UpdatedAt time.Time `json:"updated_at" bson:"updatedAt"`
}

// Store is the interface for snapshot storage backends.
type Store interface {
	// Save creates or replaces the snapshot stored under name.
	Save(ctx context.Context, name string, snap orgchart.Snapshot) error

	// Load returns the snapshot stored under name.
	Load(ctx context.Context, name string) (orgchart.Snapshot, error)

	// Delete removes name. Deleting an unknown name is not an error.
	Delete(ctx context.Context, name string) error

	// List returns every stored chart ordered by name.
	List(ctx context.Context) ([]Info, error)

	// Close releases backend resources.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend  string // file, sqlite or mongo
	Dir      string // file: directory; empty uses ~/.config/orgchart/charts
	Path     string // sqlite: database file
	URI      string // mongo: connection string
	Database string // mongo: database name
}

// Open creates the backend named by cfg.Backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return NewFileStore(cfg.Dir)
	case BackendSQLite:
		return NewSQLiteStore(ctx, cfg.Path)
	case BackendMongo:
		return NewMongoStore(ctx, cfg.URI, cfg.Database)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown store backend %q", cfg.Backend)
	}
}

func notFound(name string) error {
	return errors.New(errors.ErrCodeChartNotFound, "chart %q not found", name)
}

func storageErr(err error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeStorage, err, format, args...)
}
