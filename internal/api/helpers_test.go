// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/recommend/matching"
	"github.com/tomtom215/cinematch/internal/recommend/storage"
	"github.com/tomtom215/cinematch/internal/recommend/training"
)

// testModel is a four-movie catalog with a hand-written symmetric matrix.
func testModel(t *testing.T) *recommend.Model {
	t.Helper()

	movies := []recommend.TaggedMovie{
		{ID: 155, Title: "The Dark Knight", Tags: "action crime christianbale batman"},
		{ID: 49026, Title: "The Dark Knight Rises", Tags: "action crime christianbale batman sequel"},
		{ID: 272, Title: "Batman Begins", Tags: "action christianbale batman origin"},
		{ID: 27205, Title: "Inception", Tags: "scifi dream heist"},
	}
	data := []float64{
		1.0, 0.9, 0.8, 0.2,
		0.9, 1.0, 0.7, 0.1,
		0.8, 0.7, 1.0, 0.3,
		0.2, 0.1, 0.3, 1.0,
	}
	matrix, err := recommend.SimilarityMatrixFromData(len(movies), data)
	if err != nil {
		t.Fatalf("SimilarityMatrixFromData() error = %v", err)
	}
	vocab, err := recommend.NewVocabulary([]string{"action", "batman", "christianbale", "crime", "dream"})
	if err != nil {
		t.Fatalf("NewVocabulary() error = %v", err)
	}

	return &recommend.Model{
		Version:    2,
		TrainedAt:  time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
		Movies:     movies,
		Vocabulary: vocab,
		Matrix:     matrix,
		Stats:      recommend.CatalogStats{MoviesRead: 4, Tagged: 4},
	}
}

// newTestEngine returns an engine using the production fuzzy matcher,
// loaded with testModel unless load is false.
func newTestEngine(t *testing.T, cfg *recommend.Config, load bool) *recommend.Engine {
	t.Helper()

	if cfg == nil {
		cfg = recommend.DefaultConfig()
	}
	engine, err := recommend.NewEngine(cfg, matching.NewMatcher(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if load {
		if err := engine.Load(testModel(t)); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
	}
	return engine
}

// fakeTrainer reserves runs like training.Trainer and blocks each run
// until release is closed.
type fakeTrainer struct {
	mu       sync.Mutex
	status   training.Status
	model    *recommend.Model
	err      error
	release  chan struct{}
	runCalls int
}

func newFakeTrainer(model *recommend.Model, err error) *fakeTrainer {
	return &fakeTrainer{model: model, err: err, release: make(chan struct{})}
}

func (f *fakeTrainer) TryStart() (training.RunFunc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status.IsTraining {
		return nil, training.ErrTrainingInProgress
	}
	f.status.IsTraining = true
	f.runCalls++
	return f.run, nil
}

func (f *fakeTrainer) run(ctx context.Context) (*recommend.Model, *storage.ModelMetadata, error) {
	select {
	case <-f.release:
	case <-ctx.Done():
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.status.IsTraining = false
	if f.err != nil {
		f.status.LastError = f.err.Error()
		return nil, nil, f.err
	}
	f.status.LastVersion = f.model.Version
	return f.model, nil, nil
}

func (f *fakeTrainer) Status() training.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeTrainer) setTraining(v bool) {
	f.mu.Lock()
	f.status.IsTraining = v
	f.mu.Unlock()
}

func (f *fakeTrainer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runCalls
}

// newTestHandler creates a handler over engine and an optional trainer.
func newTestHandler(t *testing.T, engine Recommender, trainer TrainingController) *Handler {
	t.Helper()

	h, err := NewHandler(engine, trainer, HandlerConfig{MaxK: 10, RequestTimeout: time.Second}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	return h
}

// decodedResponse mirrors APIResponse with a raw payload.
type decodedResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) decodedResponse {
	t.Helper()

	var resp decodedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return resp
}

func decodeData(t *testing.T, resp decodedResponse, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(resp.Data, v); err != nil {
		t.Fatalf("decode data %q: %v", string(resp.Data), err)
	}
}

func doRequest(h http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(nil))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
