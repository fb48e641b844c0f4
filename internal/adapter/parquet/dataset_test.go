package parquet_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hf-eolus/sar-catalog/internal/adapter/parquet"
	"github.com/hf-eolus/sar-catalog/internal/domain"
	"github.com/hf-eolus/sar-catalog/internal/observability"
)

// flakyStore fails the first failures writes, then succeeds. Safe for
// concurrent use so tests can inspect it while the writer runs in a
// goroutine.
type flakyStore struct {
	mu       sync.Mutex
	failures int
	err      error
	attempts int
	written  map[string][]byte
}

func newFlakyStore(failures int, err error) *flakyStore {
	return &flakyStore{failures: failures, err: err, written: map[string][]byte{}}
}

func (s *flakyStore) Read(context.Context, string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (s *flakyStore) Write(_ context.Context, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.attempts <= s.failures {
		return s.err
	}
	s.written[path] = data
	return nil
}

func (s *flakyStore) attemptCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

func (s *flakyStore) paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for p := range s.written {
		out = append(out, p)
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleObservations(t *testing.T, dates ...time.Time) []domain.Observation {
	t.Helper()
	var obs []domain.Observation
	for i, d := range dates {
		geom, err := wkb.Marshal(orb.Point{-9.5, 43.0})
		require.NoError(t, err)
		obs = append(obs, domain.Observation{
			RowID:                int64(i),
			FirstMeasurementTime: d.Add(6 * time.Hour),
			LastMeasurementTime:  d.Add(6*time.Hour + 2*time.Minute),
			Lon:                  -9.5,
			Lat:                  43.0,
			WindSpeed:            7.2,
			WindDirection:        281.0,
			Mask:                 0,
			InversionQuality:     2,
			Heading:              347.5,
			WindQuality:          1,
			RadVel:               0.4,
			Date:                 d,
			Geometry:             geom,
		})
	}
	return obs
}

func TestWriteDataset_PartitionLayout(t *testing.T) {
	day1 := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC)
	obs := sampleObservations(t, day1, day1, day2)

	store := newFlakyStore(0, nil)
	w := parquet.NewDatasetWriter(parquet.WriterConfig{}, discardLogger(), observability.NewMetricsForTesting())

	err := w.WriteDataset(context.Background(), obs, "out/assets", []string{"date"}, store)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"out/assets/date=2021-01-01/part-0.parquet",
		"out/assets/date=2021-01-02/part-0.parquet",
	}, store.paths())
}

func TestWriteDataset_KeepsObjectStoreScheme(t *testing.T) {
	day := time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC)
	store := newFlakyStore(0, nil)
	w := parquet.NewDatasetWriter(parquet.WriterConfig{
		BasenameTemplate: "owi_20210304_{i}.parquet",
	}, discardLogger(), observability.NewMetricsForTesting())

	err := w.WriteDataset(context.Background(), sampleObservations(t, day), "s3://bucket/catalog/assets/", []string{"date"}, store)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"s3://bucket/catalog/assets/date=2021-03-04/owi_20210304_0.parquet",
	}, store.paths())
}

func TestWriteDataset_RetriesThrottlingWithExponentialBackoff(t *testing.T) {
	fc := clockwork.NewFakeClock()
	parquet.SetClock(fc)
	defer parquet.SetClock(nil)

	day := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newFlakyStore(2, errors.New("PutObject: SLOW_DOWN: reduce request rate"))
	backoff := 5 * time.Second
	w := parquet.NewDatasetWriter(parquet.WriterConfig{Retries: 5, Backoff: backoff},
		discardLogger(), observability.NewMetricsForTesting())

	start := fc.Now()
	done := make(chan error, 1)
	go func() {
		done <- w.WriteDataset(context.Background(), sampleObservations(t, day), "out", []string{"date"}, store)
	}()

	// First attempt fails, writer sleeps backoff * 1.
	fc.BlockUntil(1)
	fc.Advance(backoff)
	// Second attempt fails, writer sleeps backoff * 2.
	fc.BlockUntil(1)
	fc.Advance(2 * backoff)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("writer did not finish")
	}

	assert.Equal(t, 3, store.attemptCount())
	assert.Equal(t, 3*backoff, fc.Since(start), "total slept time must be backoff*1 + backoff*2")
	assert.Len(t, store.paths(), 1)
}

func TestWriteDataset_NonThrottlingErrorFailsFast(t *testing.T) {
	fc := clockwork.NewFakeClock()
	parquet.SetClock(fc)
	defer parquet.SetClock(nil)

	day := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	wantErr := errors.New("PutObject: access denied")
	store := newFlakyStore(10, wantErr)
	w := parquet.NewDatasetWriter(parquet.WriterConfig{}, discardLogger(), observability.NewMetricsForTesting())

	err := w.WriteDataset(context.Background(), sampleObservations(t, day), "out", []string{"date"}, store)
	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, store.attemptCount(), "no retry without the throttling marker")
}

func TestWriteDataset_ExhaustsRetryBudget(t *testing.T) {
	fc := clockwork.NewFakeClock()
	parquet.SetClock(fc)
	defer parquet.SetClock(nil)

	day := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	wantErr := errors.New("SLOW_DOWN")
	store := newFlakyStore(10, wantErr)
	w := parquet.NewDatasetWriter(parquet.WriterConfig{Retries: 3, Backoff: time.Second},
		discardLogger(), observability.NewMetricsForTesting())

	done := make(chan error, 1)
	go func() {
		done <- w.WriteDataset(context.Background(), sampleObservations(t, day), "out", []string{"date"}, store)
	}()

	// Two sleeps separate the three attempts.
	fc.BlockUntil(1)
	fc.Advance(time.Second)
	fc.BlockUntil(1)
	fc.Advance(2 * time.Second)

	select {
	case err := <-done:
		require.ErrorIs(t, err, wantErr)
	case <-time.After(5 * time.Second):
		t.Fatal("writer did not finish")
	}
	assert.Equal(t, 3, store.attemptCount())
}

func TestWriteDataset_RejectsUnknownPartitionColumn(t *testing.T) {
	day := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newFlakyStore(0, nil)
	w := parquet.NewDatasetWriter(parquet.WriterConfig{}, discardLogger(), observability.NewMetricsForTesting())

	err := w.WriteDataset(context.Background(), sampleObservations(t, day), "out", []string{"owiLon"}, store)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported partition column")
	assert.Equal(t, 0, store.attemptCount())
}
