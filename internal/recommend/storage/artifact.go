// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tomtom215/cinematch/internal/recommend"
)

// ErrModelNotFound is returned when no stored model matches a name and version.
var ErrModelNotFound = errors.New("model not found")

// ErrChecksumMismatch is returned when a stored payload fails verification.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// ModelMetadata contains information about a stored model.
type ModelMetadata struct {
	// Name is the model family (e.g., "tmdb").
	Name string `json:"name"`

	// Version is the model version (monotonically increasing).
	Version int `json:"version"`

	// TrainedAt is when the model was trained.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the model was saved.
	SavedAt time.Time `json:"saved_at"`

	// MovieCount is the number of movies in the tag table.
	MovieCount int `json:"movie_count"`

	// VocabularySize is the number of terms (vector length).
	VocabularySize int `json:"vocabulary_size"`

	// Checksum is the SHA-256 checksum of the uncompressed payload.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed payload size in bytes.
	SizeBytes int64 `json:"size_bytes"`

	// TrainingDurationMS is how long training took.
	TrainingDurationMS int64 `json:"training_duration_ms"`
}

// ArtifactStore persists trained models by name and version.
type ArtifactStore interface {
	// Save stores model under name at model.Version.
	Save(ctx context.Context, name string, model *recommend.Model, meta ModelMetadata) (*ModelMetadata, error)

	// Load returns a stored model. Version 0 selects the latest.
	Load(ctx context.Context, name string, version int) (*recommend.Model, *ModelMetadata, error)

	// GetLatestVersion returns the highest stored version of name.
	GetLatestVersion(name string) (int, bool)

	// ListModels returns metadata for the latest version of every name.
	ListModels(ctx context.Context) ([]ModelMetadata, error)

	// Delete removes one version.
	Delete(ctx context.Context, name string, version int) error

	// Prune removes all but the newest keepVersions versions of name.
	Prune(ctx context.Context, name string, keepVersions int) error

	// Close releases resources held by the store.
	Close() error
}

// Artifact is the serialized form of a recommend.Model.
type Artifact struct {
	Version    int
	TrainedAt  time.Time
	Movies     []recommend.TaggedMovie
	Terms      []string
	MatrixSize int
	MatrixData []float64
	Stats      recommend.CatalogStats
}

// NewArtifact captures m for persistence. The artifact shares m's slices.
func NewArtifact(m *recommend.Model) (*Artifact, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model: %w", err)
	}
	return &Artifact{
		Version:    m.Version,
		TrainedAt:  m.TrainedAt,
		Movies:     m.Movies,
		Terms:      m.Vocabulary.Terms(),
		MatrixSize: m.Matrix.Size(),
		MatrixData: m.Matrix.Data(),
		Stats:      m.Stats,
	}, nil
}

// Model rebuilds and validates the model.
func (a *Artifact) Model() (*recommend.Model, error) {
	vocab, err := recommend.NewVocabulary(a.Terms)
	if err != nil {
		return nil, fmt.Errorf("restore vocabulary: %w", err)
	}
	matrix, err := recommend.SimilarityMatrixFromData(a.MatrixSize, a.MatrixData)
	if err != nil {
		return nil, fmt.Errorf("restore matrix: %w", err)
	}

	m := &recommend.Model{
		Version:    a.Version,
		TrainedAt:  a.TrainedAt,
		Movies:     a.Movies,
		Vocabulary: vocab,
		Matrix:     matrix,
		Stats:      a.Stats,
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("restored model: %w", err)
	}
	return m, nil
}

// encodeArtifact gob-encodes and gzips a, returning the compressed bytes
// and the checksum of the uncompressed encoding.
func encodeArtifact(a *Artifact) (compressed []byte, checksum string, err error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(a); err != nil {
		return nil, "", fmt.Errorf("encode model: %w", err)
	}

	rawData := buf.Bytes()
	hash := sha256.Sum256(rawData)

	var out bytes.Buffer
	gzw := gzip.NewWriter(&out)
	if _, err := gzw.Write(rawData); err != nil {
		return nil, "", fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize compression: %w", err)
	}

	return out.Bytes(), hex.EncodeToString(hash[:]), nil
}

// decodeArtifact reverses encodeArtifact and verifies the checksum.
func decodeArtifact(compressed []byte, checksum string) (*Artifact, error) {
	gzr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("decompress model: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(rawData)
	if got := hex.EncodeToString(hash[:]); got != checksum {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, checksum, got)
	}

	var a Artifact
	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return &a, nil
}

// prepareMetadata fills the fields derived from the model and its encoding.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func prepareMetadata(name string, m *recommend.Model, meta ModelMetadata, checksum string, size int) ModelMetadata {
	meta.Name = name
	meta.Version = m.Version
	meta.TrainedAt = m.TrainedAt
	meta.SavedAt = time.Now()
	meta.MovieCount = len(m.Movies)
	meta.VocabularySize = m.Vocabulary.Size()
	meta.Checksum = checksum
	meta.SizeBytes = int64(size)
	return meta
}

// Supported store backends.
const (
	BackendFile   = backendFile
	BackendBadger = backendBadger
)

// Open opens the store for backend rooted at dir.
func Open(backend, dir string) (ArtifactStore, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(dir)
	case BackendBadger:
		return OpenBadgerStore(dir)
	default:
		return nil, fmt.Errorf("unknown model store backend %q", backend)
	}
}
