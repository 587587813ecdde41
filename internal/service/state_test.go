package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/riskdash-backend/internal/apperr"
	"github.com/jengzang/riskdash-backend/internal/riskmodel"
)

func TestState_ConcurrentFirstCallsShareOneLoad(t *testing.T) {
	src := &fakeSource{rows: fixtureRows(), delay: 20 * time.Millisecond}
	st := NewState(src, "SANTANDER", "unused", func(string) (riskmodel.Classifier, error) {
		return cumModel{}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			table, err := st.Table(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, 8, table.Len())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.loads.Load())

	_, err := st.Table(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.loads.Load(), "later calls reuse the table")
}

func TestState_FailuresAreNotKept(t *testing.T) {
	src := &fakeSource{err: apperr.New(apperr.DataUnavailable, "missing snapshot")}
	st := NewState(src, "SANTANDER", "unused", nil)

	_, err := st.Table(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.DataUnavailable))

	src.err = nil
	src.rows = fixtureRows()
	table, err := st.Table(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, table.Len())
	assert.Equal(t, int32(2), src.loads.Load())
}

func TestState_PreloadAndReady(t *testing.T) {
	src := &fakeSource{rows: fixtureRows()}
	loads := 0
	st := NewState(src, "SANTANDER", "model.json.gz", func(path string) (riskmodel.Classifier, error) {
		loads++
		assert.Equal(t, "model.json.gz", path)
		return cumModel{}, nil
	})

	assert.False(t, st.Ready())
	require.NoError(t, st.Preload(context.Background()))
	assert.True(t, st.Ready())

	_, err := st.Model(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, loads)
}

func TestState_ModelLoadError(t *testing.T) {
	st := NewState(&fakeSource{rows: fixtureRows()}, "SANTANDER", "x", func(string) (riskmodel.Classifier, error) {
		return nil, errors.New("corrupt")
	})
	err := st.Preload(context.Background())
	require.Error(t, err)
	assert.False(t, st.Ready())
}
