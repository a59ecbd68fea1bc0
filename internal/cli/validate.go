package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/rescuegrid/internal/trace"
	"github.com/aretw0/rescuegrid/pkg/domain"
	"github.com/tidwall/gjson"
)

// ValidateSnapshotFile decodes a scenario JSON file and checks its
// invariants. With entities set, the entity lists must also match the
// responder and survivor cells.
func ValidateSnapshotFile(path string, entities bool) (*domain.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	if entities {
		if err := snap.ValidateEntities(); err != nil {
			return nil, err
		}
	}
	return &snap, nil
}

// ValidateTraceFile reconstructs every step of a trace and writes one line
// per parse error to w. It returns the number of failed steps.
func ValidateTraceFile(w io.Writer, path string, cols, rows int) (int, error) {
	steps, err := trace.Load(path)
	if err != nil {
		return 0, err
	}
	if cols <= 0 || rows <= 0 {
		var ok bool
		if cols, rows, ok = trace.InferDimensions(steps); !ok {
			return 0, fmt.Errorf("cannot infer grid dimensions from %s", path)
		}
	}
	rec, err := trace.New(cols, rows)
	if err != nil {
		return 0, err
	}

	failed := 0
	for _, f := range rec.Reconstruct(steps) {
		if f.Err == nil {
			continue
		}
		failed++
		for _, e := range flatten(f.Err) {
			fmt.Fprintln(w, e)
		}
	}
	return failed, nil
}

func flatten(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

// IsTraceFile reports whether path looks like a trace rather than a
// scenario snapshot: YAML and text files always are; JSON files are
// traces when their top level is an array or has a "steps" key.
func IsTraceFile(path string) (bool, error) {
	if trace.FormatFromPath(path) != trace.FormatJSON {
		return true, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	if !gjson.ValidBytes(data) {
		return false, fmt.Errorf("%s: invalid JSON", path)
	}
	root := gjson.ParseBytes(data)
	return root.IsArray() || root.Get("steps").Exists(), nil
}
