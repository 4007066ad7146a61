package records

import (
	"errors"
	"fmt"
	"os"

	"argocd-diff-preview/internal/diff"

	"gopkg.in/yaml.v3"
)

// record is the YAML form of a diff record
type record struct {
	App struct {
		Name       string `yaml:"name"`
		SourcePath string `yaml:"sourcePath"`
		Revision   string `yaml:"revision"`
		SyncStatus string `yaml:"syncStatus"`
	} `yaml:"app"`
	Diff  string       `yaml:"diff"`
	Error *recordError `yaml:"error"`
}

type recordError struct {
	Stderr  string `yaml:"stderr"`
	Message string `yaml:"message"`
}

// Load reads diff records from a YAML file, e.g.
//
//	- app:
//	    name: web
//	    sourcePath: apps/web
//	    syncStatus: OutOfSync
//	  diff: |
//	    ===== apps/Deployment default/web ======
//	    ...
func Load(path string) ([]diff.DiffRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes diff records from YAML
func Parse(data []byte) ([]diff.DiffRecord, error) {
	var raw []record
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}

	result := make([]diff.DiffRecord, 0, len(raw))
	for i, r := range raw {
		if r.App.Name == "" {
			return nil, fmt.Errorf("record %d: app name is required", i+1)
		}

		status, err := parseSyncStatus(r.App.SyncStatus)
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i+1, r.App.Name, err)
		}

		rec := diff.DiffRecord{
			App: diff.AppRef{
				Name:       r.App.Name,
				SourcePath: r.App.SourcePath,
				Revision:   r.App.Revision,
				SyncStatus: status,
			},
			Diff: r.Diff,
		}
		if r.Error != nil {
			message := r.Error.Message
			if message == "" {
				message = "diff generation failed"
			}
			rec.Error = &diff.DiffError{Stderr: r.Error.Stderr, Err: errors.New(message)}
		}
		result = append(result, rec)
	}
	return result, nil
}

func parseSyncStatus(s string) (diff.SyncStatus, error) {
	switch s {
	case "", string(diff.SyncStatusUnknown):
		return diff.SyncStatusUnknown, nil
	case string(diff.SyncStatusSynced):
		return diff.SyncStatusSynced, nil
	case string(diff.SyncStatusOutOfSync):
		return diff.SyncStatusOutOfSync, nil
	default:
		return "", fmt.Errorf("invalid sync status %q (must be Synced, OutOfSync or Unknown)", s)
	}
}
