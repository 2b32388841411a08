// Package badger provides BadgerHold-based storage for scan history.
package badger

import (
	"fmt"
	"os"

	"github.com/bobmcallan/valuescout/internal/common"
	"github.com/timshannon/badgerhold/v4"
)

// Store wraps a BadgerHold database connection.
type Store struct {
	db     *badgerhold.Store
	path   string
	logger *common.Logger
}

// NewStore opens (creating if needed) a BadgerHold store in path.
// An empty path opens an in-memory store that is discarded on Close.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	options := badgerhold.DefaultOptions
	options.Logger = nil // badger's own logger is noisy; errors surface through ours

	if path == "" {
		options.InMemory = true
	} else {
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory %s: %w", path, err)
		}
		options.Dir = path
		options.ValueDir = path
	}

	db, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	logger.Debug().Str("path", path).Bool("in_memory", path == "").Msg("History store opened")

	return &Store{
		db:     db,
		path:   path,
		logger: logger,
	}, nil
}

// Path returns the on-disk directory, or "" for an in-memory store.
func (s *Store) Path() string {
	return s.path
}

// Close closes the BadgerHold database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
