// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package storage

import (
	"context"
	"encoding/gob"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/recommend"
)

const (
	backendFile = "file"
	modelExt    = ".gob.gz"
)

// storedFile is the on-disk format for model files.
type storedFile struct {
	Metadata       ModelMetadata
	CompressedData []byte
}

// FileStore keeps one file per model version in a directory, named
// {name}_v{version}.gob.gz. Several processes may share the directory:
// lookups of the latest version rescan it, so a model saved by a separate
// `cinematch train` run becomes visible to a running server.
type FileStore struct {
	baseDir string
	mu      sync.RWMutex

	// Latest version per model name, as of the last scan or Save
	versions map[string]int
}

// NewFileStore creates a model store at the given directory, creating it if
// needed and indexing the models already present.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	s := &FileStore{baseDir: baseDir}
	if err := s.reindex(); err != nil {
		return nil, fmt.Errorf("scan existing models: %w", err)
	}

	return s, nil
}

// reindex rebuilds the version index from the directory. The caller holds
// s.mu for writing.
func (s *FileStore) reindex() error {
	files, err := s.scan()
	if err != nil {
		return err
	}
	versions := make(map[string]int, len(files))
	for name, found := range files {
		versions[name] = slices.Max(found)
	}
	s.versions = versions
	return nil
}

// latest rescans the directory and returns a copy of the version index.
// A failed scan leaves the previous index in place.
func (s *FileStore) latest() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.reindex() //nolint:errcheck // stale index is served when the directory is unreadable
	return maps.Clone(s.versions)
}

// scan returns the stored versions of every model name in the directory.
func (s *FileStore) scan() (map[string][]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	found := make(map[string][]int)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		base, ok := strings.CutSuffix(entry.Name(), modelExt)
		if !ok {
			continue
		}
		name, version := parseModelFilename(base)
		if name == "" {
			continue
		}
		found[name] = append(found[name], version)
	}
	return found, nil
}

// parseModelFilename extracts the model name and version from a base name
// like "tmdb_v12".
func parseModelFilename(base string) (name string, version int) {
	idx := strings.LastIndex(base, "_v")
	if idx < 1 {
		return "", 0
	}
	v, err := strconv.Atoi(base[idx+2:])
	if err != nil || v < 1 {
		return "", 0
	}
	return base[:idx], v
}

// Save writes the model to a temporary file and renames it into place, so a
// crashed save never leaves a readable partial model.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *FileStore) Save(ctx context.Context, name string, model *recommend.Model, meta ModelMetadata) (_ *ModelMetadata, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation(backendFile, "save", time.Since(start), err) }()

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

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.baseDir, name+"_*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create model file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName) //nolint:errcheck // best-effort cleanup of failed write
		}
	}()

	sf := storedFile{Metadata: meta, CompressedData: compressed}
	if err := gob.NewEncoder(tmp).Encode(sf); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error takes precedence
		return nil, fmt.Errorf("write model file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close model file: %w", err)
	}
	if err := os.Rename(tmpName, s.modelPath(name, model.Version)); err != nil {
		return nil, fmt.Errorf("commit model file: %w", err)
	}

	if current, ok := s.versions[name]; !ok || model.Version > current {
		s.versions[name] = model.Version
	}

	return &meta, nil
}

// Load loads a model by name and version. If version is 0, loads the latest.
func (s *FileStore) Load(ctx context.Context, name string, version int) (_ *recommend.Model, _ *ModelMetadata, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation(backendFile, "load", time.Since(start), err) }()

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

	s.mu.RLock()
	defer s.mu.RUnlock()

	sf, err := s.readFile(name, version)
	if err != nil {
		return nil, nil, err
	}

	artifact, err := decodeArtifact(sf.CompressedData, sf.Metadata.Checksum)
	if err != nil {
		return nil, nil, err
	}
	model, err := artifact.Model()
	if err != nil {
		return nil, nil, err
	}
	return model, &sf.Metadata, nil
}

func (s *FileStore) readFile(name string, version int) (*storedFile, error) {
	f, err := os.Open(s.modelPath(name, version)) //nolint:gosec // path is built from the store directory and model name
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s v%d: %w", name, version, ErrModelNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	return &sf, nil
}

// GetLatestVersion returns the latest version number for a model, including
// versions written by other stores on the same directory.
func (s *FileStore) GetLatestVersion(name string) (int, bool) {
	version, ok := s.latest()[name]
	return version, ok
}

// ListModels returns metadata for the latest version of every stored model,
// sorted by name. Unreadable files are skipped.
func (s *FileStore) ListModels(ctx context.Context) ([]ModelMetadata, error) {
	latest := s.latest()

	s.mu.RLock()
	defer s.mu.RUnlock()

	models := make([]ModelMetadata, 0, len(latest))
	for name, version := range latest {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sf, err := s.readFile(name, version)
		if err != nil {
			continue
		}
		models = append(models, sf.Metadata)
	}

	slices.SortFunc(models, func(a, b ModelMetadata) int {
		return strings.Compare(a.Name, b.Name)
	})
	return models, nil
}

// Delete removes a specific model version.
func (s *FileStore) Delete(ctx context.Context, name string, version int) (err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation(backendFile, "delete", time.Since(start), err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.modelPath(name, version)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s v%d: %w", name, version, ErrModelNotFound)
		}
		return fmt.Errorf("delete model: %w", err)
	}

	if err := s.reindex(); err != nil {
		return fmt.Errorf("read directory: %w", err)
	}
	return nil
}

// Prune removes old model versions, keeping only the latest keepVersions.
func (s *FileStore) Prune(ctx context.Context, name string, keepVersions int) (err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation(backendFile, "prune", time.Since(start), err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if keepVersions < 1 {
		keepVersions = 1
	}

	files, err := s.scan()
	if err != nil {
		return fmt.Errorf("read directory: %w", err)
	}

	versions := files[name]
	slices.Sort(versions)
	slices.Reverse(versions)
	for i := keepVersions; i < len(versions); i++ {
		_ = os.Remove(s.modelPath(name, versions[i])) //nolint:errcheck // best-effort cleanup of old versions
	}
	return nil
}

// Close is a no-op; files are opened per operation.
func (s *FileStore) Close() error {
	return nil
}

// modelPath returns the file path for a model.
func (s *FileStore) modelPath(name string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d%s", name, version, modelExt))
}

//nolint:gochecknoinits // gob.Register must be called in init for type registration
func init() {
	gob.Register(storedFile{})
	gob.Register(Artifact{})
}

var _ ArtifactStore = (*FileStore)(nil)
