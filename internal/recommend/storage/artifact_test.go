// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package storage

import (
	"errors"
	"testing"
)

func TestArtifact_EncodeDecode(t *testing.T) {
	model := testModel(t, 4)

	artifact, err := NewArtifact(model)
	if err != nil {
		t.Fatalf("NewArtifact() error = %v", err)
	}
	compressed, checksum, err := encodeArtifact(artifact)
	if err != nil {
		t.Fatalf("encodeArtifact() error = %v", err)
	}
	if len(checksum) != 64 {
		t.Errorf("checksum length = %d, want 64 hex chars", len(checksum))
	}

	decoded, err := decodeArtifact(compressed, checksum)
	if err != nil {
		t.Fatalf("decodeArtifact() error = %v", err)
	}
	restored, err := decoded.Model()
	if err != nil {
		t.Fatalf("Model() error = %v", err)
	}
	if restored.Version != 4 || restored.Matrix.Size() != 3 || restored.Vocabulary.Size() != 3 {
		t.Errorf("restored model = v%d, %d rows, %d terms", restored.Version, restored.Matrix.Size(), restored.Vocabulary.Size())
	}
}

func TestArtifact_ChecksumMismatch(t *testing.T) {
	artifact, err := NewArtifact(testModel(t, 1))
	if err != nil {
		t.Fatalf("NewArtifact() error = %v", err)
	}
	compressed, _, err := encodeArtifact(artifact)
	if err != nil {
		t.Fatalf("encodeArtifact() error = %v", err)
	}

	bogus := "0000000000000000000000000000000000000000000000000000000000000000"
	if _, err := decodeArtifact(compressed, bogus); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("decodeArtifact() error = %v, want ErrChecksumMismatch", err)
	}
}

func TestArtifact_ModelRejectsCorruptShapes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *Artifact)
	}{
		{"unsorted terms", func(a *Artifact) { a.Terms = []string{"space", "action"} }},
		{"short matrix", func(a *Artifact) { a.MatrixData = a.MatrixData[:4] }},
		{"matrix and catalog disagree", func(a *Artifact) { a.Movies = a.Movies[:1] }},
		{"empty vocabulary", func(a *Artifact) { a.Terms = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artifact, err := NewArtifact(testModel(t, 1))
			if err != nil {
				t.Fatalf("NewArtifact() error = %v", err)
			}
			tt.mutate(artifact)
			if _, err := artifact.Model(); err == nil {
				t.Error("Model() should fail")
			}
		})
	}
}
