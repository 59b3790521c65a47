package memstore

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

const collectionFile = "customers.json"

// Persistence handles the disk I/O for the Store: one JSON file holding the
// whole collection, replaced atomically on every save.
type Persistence struct {
	dir string
	mu  sync.Mutex
}

// NewPersistence initializes a persistence handler, creating the data
// directory if needed.
func NewPersistence(dir string) (*Persistence, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Persistence{dir: dir}, nil
}

// Save writes the collection to disk: marshal, write a temp file, rename.
// The rename is atomic, so a crash leaves either the old file or the new one.
func (p *Persistence) Save(docs map[string]map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	target := filepath.Join(p.dir, collectionFile)
	tmp := target + ".tmp"

	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		return err
	}
	return nil
}

// Load reads the persisted collection. A missing file yields an empty
// collection; a corrupt file is logged and treated as empty rather than
// blocking startup.
func (p *Persistence) Load() (map[string]map[string]any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	content, err := os.ReadFile(filepath.Join(p.dir, collectionFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]map[string]any), nil
		}
		return nil, err
	}

	docs := make(map[string]map[string]any)
	if err := json.Unmarshal(content, &docs); err != nil {
		log.Warn().Err(err).Msg("customer collection file is corrupt, starting empty")
		return make(map[string]map[string]any), nil
	}
	return docs, nil
}
