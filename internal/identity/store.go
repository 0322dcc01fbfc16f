package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/AkatukiSora/pokernow-ohh/internal/fileutil"
)

// FileName is the name map's file name inside the config directory.
const FileName = "name-map.json"

// FileStore persists a Directory as indented JSON.
type FileStore struct {
	path string
}

func NewFileStore(configDir string) *FileStore {
	return &FileStore{path: filepath.Join(configDir, FileName)}
}

func (s *FileStore) Path() string { return s.path }

// Load reads the name map. A missing file is created empty so that
// operators can find and edit it.
func (s *FileStore) Load() (*Directory, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("name map not found, creating an empty one", "path", s.path)
		dir := NewDirectory(nil)
		if err := s.Save(dir); err != nil {
			return nil, err
		}
		return dir, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read name map: %w", err)
	}

	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode name map %s: %w", s.path, err)
	}
	return NewDirectory(entries), nil
}

// Save writes the map with sorted keys and four-space indentation. The
// directory is marked clean on success.
func (s *FileStore) Save(d *Directory) error {
	entries := d.Entries()
	if entries == nil {
		entries = map[string]Entry{}
	}
	// encoding/json sorts map keys.
	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("encode name map: %w", err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write name map: %w", err)
	}
	d.MarkClean()
	return nil
}
