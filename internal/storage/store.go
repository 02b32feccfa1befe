package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"coc_roster_eval/internal/app"

	"github.com/rs/zerolog/log"
)

// Store persists war snapshots and configuration documents as JSON files
// under a single data directory. War snapshots are named war_<tag>.json;
// documents are named <key>.json.
type Store struct {
	dataDir string
}

// NewStore creates the data directory if needed and returns a Store
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}

	log.Info().Str("data_dir", dataDir).Msg("Initialized local storage")

	return &Store{dataDir: dataDir}, nil
}

// fileKey strips characters that cannot appear in a filename from a war tag
func fileKey(tag string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
}

// SaveWarSnapshot writes one war record to disk
func (s *Store) SaveWarSnapshot(snap *app.WarSnapshot) error {
	if snap.WarTag == "" {
		return fmt.Errorf("war snapshot is missing its war tag")
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal war snapshot: %w", err)
	}

	path := filepath.Join(s.dataDir, "war_"+fileKey(snap.WarTag)+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write war snapshot: %w", err)
	}

	log.Debug().
		Str("war_tag", snap.WarTag).
		Str("path", path).
		Msg("Saved war snapshot")

	return nil
}

// HasWarSnapshot reports whether a snapshot for the given war tag exists
func (s *Store) HasWarSnapshot(warTag string) bool {
	path := filepath.Join(s.dataDir, "war_"+fileKey(warTag)+".json")
	_, err := os.Stat(path)
	return err == nil
}

// ListWarSnapshots loads every stored war record. Files that cannot be read
// or parsed are logged and skipped rather than failing the whole listing.
func (s *Store) ListWarSnapshots() ([]app.WarSnapshot, error) {
	pattern := filepath.Join(s.dataDir, "war_*.json")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list war snapshots: %w", err)
	}
	sort.Strings(paths)

	snapshots := make([]app.WarSnapshot, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("Failed to read war snapshot")
			continue
		}

		var snap app.WarSnapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			log.Error().Err(err).Str("path", path).Msg("Failed to parse war snapshot")
			continue
		}

		snapshots = append(snapshots, snap)
	}

	return snapshots, nil
}

// GetDocument reads a configuration document by key. Returns false with no
// error when the document does not exist.
func (s *Store) GetDocument(key string, out interface{}) (bool, error) {
	path := filepath.Join(s.dataDir, key+".json")

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read document %s: %w", key, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to parse document %s: %w", key, err)
	}

	return true, nil
}

// PutDocument writes a configuration document under the given key
func (s *Store) PutDocument(key string, doc interface{}) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document %s: %w", key, err)
	}

	path := filepath.Join(s.dataDir, key+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write document %s: %w", key, err)
	}

	log.Debug().Str("key", key).Str("path", path).Msg("Saved document")

	return nil
}
