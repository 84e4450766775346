package orgio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/orgchart"
)

// WriteSnapshot encodes s as indented JSON.
func WriteSnapshot(w io.Writer, s orgchart.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportSnapshot writes s to a JSON file at path.
func ExportSnapshot(s orgchart.Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteSnapshot(f, s)
}

// ReadSnapshot decodes a JSON snapshot from r.
func ReadSnapshot(r io.Reader) (orgchart.Snapshot, error) {
	var s orgchart.Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return orgchart.Snapshot{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode snapshot")
	}
	return s, nil
}
