// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/recommend"
)

const backendBadger = "badger"

// Key prefixes for BadgerDB storage
const (
	metaKeyPrefix = "model_meta:"
	dataKeyPrefix = "model_data:"
)

// BadgerStore implements ArtifactStore on BadgerDB. Metadata is stored as
// JSON next to the compressed payload so listing never touches payloads.
//
// Badger holds an exclusive lock on its directory, so only one process can
// open a given store; run `cinematch train` through the server's
// POST /api/v1/model/train instead of a second process when using this
// backend. Stores sharing one *badger.DB see each other's saves because the
// latest version is read from the keys on every lookup.
type BadgerStore struct {
	db     *badger.DB
	ownsDB bool
	mu     sync.RWMutex

	// Latest version per model name
	versions map[string]int
}

// OpenBadgerStore opens (or creates) a BadgerDB at path. An empty path opens
// an in-memory database.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for models: %w", err)
	}

	s, err := NewBadgerStore(db)
	if err != nil {
		_ = db.Close() //nolint:errcheck // index error takes precedence
		return nil, err
	}
	s.ownsDB = true
	return s, nil
}

// NewBadgerStore uses an already open database. Close leaves db open.
func NewBadgerStore(db *badger.DB) (*BadgerStore, error) {
	s := &BadgerStore{
		db:       db,
		versions: make(map[string]int),
	}

	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(metaKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			name, version, ok := parseModelKey(string(it.Item().Key()), metaKeyPrefix)
			if !ok {
				continue
			}
			if version > s.versions[name] {
				s.versions[name] = version
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan existing models: %w", err)
	}

	return s, nil
}

// modelKey builds prefix + name + ":" + zero-padded version so keys of one
// model sort by version.
func modelKey(prefix, name string, version int) []byte {
	return []byte(fmt.Sprintf("%s%s:%010d", prefix, name, version))
}

func parseModelKey(key, prefix string) (name string, version int, ok bool) {
	rest, ok := strings.CutPrefix(key, prefix)
	if !ok {
		return "", 0, false
	}
	idx := strings.LastIndex(rest, ":")
	if idx < 1 {
		return "", 0, false
	}
	v, err := strconv.Atoi(rest[idx+1:])
	if err != nil || v < 1 {
		return "", 0, false
	}
	return rest[:idx], v, true
}

// Save stores the model's metadata and payload in one transaction.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *BadgerStore) Save(ctx context.Context, name string, model *recommend.Model, meta ModelMetadata) (_ *ModelMetadata, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation(backendBadger, "save", time.Since(start), err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	artifact, err := NewArtifact(model)
	if err != nil {
		return nil, err
	}
	compressed, checksum, err := encodeArtifact(artifact)
	if err != nil {
		return nil, err
	}
	meta = prepareMetadata(name, model, meta, checksum, len(compressed))

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(modelKey(dataKeyPrefix, name, model.Version), compressed); err != nil {
			return fmt.Errorf("set model data: %w", err)
		}
		if err := txn.Set(modelKey(metaKeyPrefix, name, model.Version), metaJSON); err != nil {
			return fmt.Errorf("set model metadata: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if model.Version > s.versions[name] {
		s.versions[name] = model.Version
	}
	return &meta, nil
}

// Load loads a model by name and version. If version is 0, loads the latest.
func (s *BadgerStore) Load(ctx context.Context, name string, version int) (_ *recommend.Model, _ *ModelMetadata, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation(backendBadger, "load", time.Since(start), err) }()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	if version == 0 {
		var ok bool
		version, ok = s.GetLatestVersion(name)
		if !ok {
			return nil, nil, fmt.Errorf("%s: %w", name, ErrModelNotFound)
		}
	}

	var meta ModelMetadata
	var compressed []byte
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(modelKey(metaKeyPrefix, name, version))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%s v%d: %w", name, version, ErrModelNotFound)
		}
		if err != nil {
			return fmt.Errorf("get model metadata: %w", err)
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		}); err != nil {
			return fmt.Errorf("decode model metadata: %w", err)
		}

		item, err = txn.Get(modelKey(dataKeyPrefix, name, version))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%s v%d payload: %w", name, version, ErrModelNotFound)
		}
		if err != nil {
			return fmt.Errorf("get model data: %w", err)
		}
		compressed, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	artifact, err := decodeArtifact(compressed, meta.Checksum)
	if err != nil {
		return nil, nil, err
	}
	model, err := artifact.Model()
	if err != nil {
		return nil, nil, err
	}
	return model, &meta, nil
}

// GetLatestVersion returns the latest version number for a model. The keys
// are re-read in a read transaction; the cached index answers only when
// that read fails.
func (s *BadgerStore) GetLatestVersion(name string) (int, bool) {
	versions, err := s.storedVersions(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		if len(versions) > 0 {
			s.versions[name] = slices.Max(versions)
		} else {
			delete(s.versions, name)
		}
	}
	version, ok := s.versions[name]
	return version, ok
}

// ListModels returns metadata for the latest version of every stored model,
// sorted by name.
func (s *BadgerStore) ListModels(ctx context.Context) ([]ModelMetadata, error) {
	s.mu.RLock()
	latest := make(map[string]int, len(s.versions))
	for name, version := range s.versions {
		latest[name] = version
	}
	s.mu.RUnlock()

	models := make([]ModelMetadata, 0, len(latest))
	err := s.db.View(func(txn *badger.Txn) error {
		for name, version := range latest {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := txn.Get(modelKey(metaKeyPrefix, name, version))
			if err != nil {
				continue
			}
			var meta ModelMetadata
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &meta)
			}); err != nil {
				continue
			}
			models = append(models, meta)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(models, func(a, b ModelMetadata) int {
		return strings.Compare(a.Name, b.Name)
	})
	return models, nil
}

// storedVersions returns the versions of name present in the database.
func (s *BadgerStore) storedVersions(name string) ([]int, error) {
	var versions []int
	prefix := metaKeyPrefix + name + ":"
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			n, v, ok := parseModelKey(string(it.Item().Key()), metaKeyPrefix)
			if ok && n == name {
				versions = append(versions, v)
			}
		}
		return nil
	})
	return versions, err
}

func (s *BadgerStore) deleteVersions(name string, versions []int) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, v := range versions {
			if err := txn.Delete(modelKey(metaKeyPrefix, name, v)); err != nil {
				return err
			}
			if err := txn.Delete(modelKey(dataKeyPrefix, name, v)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a specific model version.
func (s *BadgerStore) Delete(ctx context.Context, name string, version int) (err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation(backendBadger, "delete", time.Since(start), err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	versions, err := s.storedVersions(name)
	if err != nil {
		return fmt.Errorf("list versions: %w", err)
	}
	if !slices.Contains(versions, version) {
		return fmt.Errorf("%s v%d: %w", name, version, ErrModelNotFound)
	}
	if err := s.deleteVersions(name, []int{version}); err != nil {
		return fmt.Errorf("delete model: %w", err)
	}

	remaining := slices.DeleteFunc(versions, func(v int) bool { return v == version })
	if len(remaining) > 0 {
		s.versions[name] = slices.Max(remaining)
	} else {
		delete(s.versions, name)
	}
	return nil
}

// Prune removes old model versions, keeping only the latest keepVersions.
func (s *BadgerStore) Prune(ctx context.Context, name string, keepVersions int) (err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation(backendBadger, "prune", time.Since(start), err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if keepVersions < 1 {
		keepVersions = 1
	}

	versions, err := s.storedVersions(name)
	if err != nil {
		return fmt.Errorf("list versions: %w", err)
	}
	if len(versions) <= keepVersions {
		return nil
	}

	// Iteration order is ascending, so the oldest come first.
	slices.Sort(versions)
	return s.deleteVersions(name, versions[:len(versions)-keepVersions])
}

// Close closes the database if the store opened it.
func (s *BadgerStore) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}

var _ ArtifactStore = (*BadgerStore)(nil)
