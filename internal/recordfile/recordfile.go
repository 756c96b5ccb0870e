// Package recordfile persists a single traffic record as JSON so that a peer
// can fetch it over SSH.
package recordfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zhaobenny/vnstat-notify/internal/model"
	"github.com/zhaobenny/vnstat-notify/internal/parser"
)

// Save writes rec to path, replacing any previous file atomically.
func Save(path string, rec model.TrafficRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create record directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".record-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close record: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("chmod record: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename record: %w", err)
	}
	return nil
}

// Load reads a record written by Save.
func Load(path string) (model.TrafficRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.TrafficRecord{}, err
	}
	rec, err := parser.DecodeRecord(data)
	if err != nil {
		return model.TrafficRecord{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return rec, nil
}
