package structure

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"marketbrief/internal/core"
)

// SaveRecordSet persists a record set as indented JSON, creating parent
// directories as needed. The written document re-parses into an equal
// record set; an empty set writes an empty articles array, never null.
func SaveRecordSet(recordSet core.RecordSet, path string) error {
	if recordSet.Articles == nil {
		recordSet.Articles = []core.ArticleRecord{}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	data, err := json.MarshalIndent(recordSet, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record set: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write record set to %s: %w", path, err)
	}
	return nil
}

// LoadRecordSet reads a previously saved record set artifact.
func LoadRecordSet(path string) (core.RecordSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.RecordSet{}, fmt.Errorf("failed to read record set from %s: %w", path, err)
	}

	var recordSet core.RecordSet
	if err := json.Unmarshal(data, &recordSet); err != nil {
		return core.RecordSet{}, fmt.Errorf("failed to parse record set from %s: %w", path, err)
	}
	return recordSet, nil
}
