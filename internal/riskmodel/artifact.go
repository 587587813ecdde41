package riskmodel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/jengzang/riskdash-backend/internal/apperr"
)

// ArtifactVersion is bumped whenever the serialized layout changes
const ArtifactVersion = 1

type artifact struct {
	Version   int            `json:"version"`
	Features  []string       `json:"features"`
	TrainedAt time.Time      `json:"trained_at"`
	Encoder   OneHotEncoder  `json:"encoder"`
	Scaler    StandardScaler `json:"scaler"`
	Booster   Booster        `json:"booster"`
}

// Save writes m as gzip-compressed JSON, replacing any existing file
func Save(m *Model, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create model directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create model file: %w", err)
	}

	zw := gzip.NewWriter(f)
	a := artifact{
		Version:   ArtifactVersion,
		Features:  FeatureColumns,
		TrainedAt: time.Now().UTC(),
		Encoder:   m.Encoder,
		Scaler:    m.Scaler,
		Booster:   m.Booster,
	}
	if err := json.NewEncoder(zw).Encode(&a); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if err := zw.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to compress model: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close model file: %w", err)
	}
	return os.Rename(tmp, path)
}

// Load reads an artifact written by Save. Unknown versions and artifacts
// fitted on other feature columns are DataUnavailable.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.DataUnavailable, err, "model artifact %s cannot be opened", path)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, apperr.Wrap(apperr.DataUnavailable, err, "model artifact %s is not gzip", path)
	}
	defer zr.Close()

	var a artifact
	if err := json.NewDecoder(zr).Decode(&a); err != nil {
		return nil, apperr.Wrap(apperr.DataUnavailable, err, "model artifact %s is corrupt", path)
	}

	if a.Version != ArtifactVersion {
		return nil, apperr.New(apperr.DataUnavailable, "model artifact version %d, want %d", a.Version, ArtifactVersion)
	}
	if !slices.Equal(a.Features, FeatureColumns) {
		return nil, apperr.New(apperr.DataUnavailable, "model artifact features %v do not match %v", a.Features, FeatureColumns)
	}
	if len(a.Scaler.Mean) != 5 || len(a.Scaler.Scale) != 5 {
		return nil, apperr.New(apperr.DataUnavailable, "model artifact scaler is malformed")
	}
	width := len(a.Encoder.Categories) + len(a.Scaler.Mean)
	for i, tree := range a.Booster.Trees {
		if err := tree.validate(width); err != nil {
			return nil, apperr.Wrap(apperr.DataUnavailable, err, "model artifact tree %d is malformed", i)
		}
	}

	return &Model{Encoder: a.Encoder, Scaler: a.Scaler, Booster: a.Booster}, nil
}
