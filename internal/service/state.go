package service

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jengzang/riskdash-backend/internal/observability"
	"github.com/jengzang/riskdash-backend/internal/repository"
	"github.com/jengzang/riskdash-backend/internal/riskmodel"
)

// ModelLoader reads a classifier from its artifact
type ModelLoader func(path string) (riskmodel.Classifier, error)

// LoadArtifact is the default ModelLoader
func LoadArtifact(path string) (riskmodel.Classifier, error) {
	return riskmodel.Load(path)
}

// State owns the feature table and the risk model. Both are loaded on first
// use; concurrent first callers share one load and failures are not kept.
type State struct {
	source    repository.FeatureSource
	region    string
	modelPath string
	loadModel ModelLoader

	flight singleflight.Group

	mu    sync.RWMutex
	table *repository.FeatureTable
	model riskmodel.Classifier
}

// NewState creates a lazily loading state
func NewState(source repository.FeatureSource, region, modelPath string, loader ModelLoader) *State {
	if loader == nil {
		loader = LoadArtifact
	}
	return &State{
		source:    source,
		region:    region,
		modelPath: modelPath,
		loadModel: loader,
	}
}

// NewLoadedState wraps an already built table and model
func NewLoadedState(table *repository.FeatureTable, model riskmodel.Classifier) *State {
	return &State{table: table, model: model, region: table.Region()}
}

// Region returns the configured region
func (s *State) Region() string {
	return s.region
}

// Table returns the feature table, loading it on first use
func (s *State) Table(ctx context.Context) (*repository.FeatureTable, error) {
	s.mu.RLock()
	table := s.table
	s.mu.RUnlock()
	if table != nil {
		return table, nil
	}

	v, err, _ := s.flight.Do("table", func() (interface{}, error) {
		s.mu.RLock()
		cached := s.table
		s.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		rows, err := s.source.Load(ctx, s.region)
		if err != nil {
			return nil, err
		}
		t := repository.NewFeatureTable(s.region, rows)

		s.mu.Lock()
		s.table = t
		s.mu.Unlock()

		observability.SnapshotRows.Set(float64(t.Len()))
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*repository.FeatureTable), nil
}

// Model returns the risk classifier, loading it on first use
func (s *State) Model(ctx context.Context) (riskmodel.Classifier, error) {
	s.mu.RLock()
	model := s.model
	s.mu.RUnlock()
	if model != nil {
		return model, nil
	}

	v, err, _ := s.flight.Do("model", func() (interface{}, error) {
		s.mu.RLock()
		cached := s.model
		s.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		m, err := s.loadModel(s.modelPath)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.model = m
		s.mu.Unlock()

		slog.Info("Risk model loaded", "path", s.modelPath)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(riskmodel.Classifier), nil
}

// Preload loads the table and the model eagerly
func (s *State) Preload(ctx context.Context) error {
	if _, err := s.Table(ctx); err != nil {
		return err
	}
	if _, err := s.Model(ctx); err != nil {
		return err
	}
	return nil
}

// Ready reports whether both the table and the model are loaded
func (s *State) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table != nil && s.model != nil
}
