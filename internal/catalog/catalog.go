// Package catalog loads and caches the per-year race data files. The store
// hands out read-only snapshots; the engine never mutates a loaded catalog,
// so concurrent requests share the same snapshot safely.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"badmincal/internal/apperr"
	"badmincal/internal/model"
)

// Store reads <dir>/<year>.json documents and keeps the decoded catalogs
// in memory until the next Reload.
type Store struct {
	dir    string
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[int]*model.Catalog
}

// NewStore constructs a Store over the given data directory.
func NewStore(dir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		dir:    dir,
		logger: logger,
		cache:  make(map[int]*model.Catalog),
	}
}

// Year returns the catalog for the given year, loading it from disk on
// first access.
func (s *Store) Year(year int) (*model.Catalog, error) {
	s.mu.RLock()
	cat, ok := s.cache[year]
	s.mu.RUnlock()
	if ok {
		return cat, nil
	}

	cat, err := s.load(year)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[year] = cat
	s.mu.Unlock()
	return cat, nil
}

// Reload re-reads every cached year from disk. Years that fail to load
// keep their previous snapshot; the first failure is returned after all
// years were attempted.
func (s *Store) Reload() error {
	s.mu.RLock()
	years := make([]int, 0, len(s.cache))
	for year := range s.cache {
		years = append(years, year)
	}
	s.mu.RUnlock()

	var firstErr error
	for _, year := range years {
		cat, err := s.load(year)
		if err != nil {
			s.logger.Error("catalog reload failed", zap.Int("year", year), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		s.mu.Lock()
		s.cache[year] = cat
		s.mu.Unlock()
		s.logger.Info("catalog reloaded", zap.Int("year", year), zap.Int("races", len(cat.Races)))
	}
	return firstErr
}

func (s *Store) load(year int) (*model.Catalog, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("%d.json", year))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.Wrap(err, apperr.ErrNotFound.Code, apperr.ErrNotFound.Status,
				fmt.Sprintf("no race data for year %d", year))
		}
		return nil, apperr.Wrap(err, apperr.ErrInternal.Code, apperr.ErrInternal.Status,
			fmt.Sprintf("read race data for year %d", year))
	}

	var cat model.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDataIntegrity.Code, apperr.ErrDataIntegrity.Status,
			fmt.Sprintf("malformed race data for year %d", year))
	}
	cat.Year = year

	for i, race := range cat.Races {
		if race.Slug == "" {
			return nil, apperr.Clone(apperr.ErrDataIntegrity,
				fmt.Sprintf("race data for year %d: race %d is missing a slug", year, i))
		}
	}

	return &cat, nil
}
