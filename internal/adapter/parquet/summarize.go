// Package parquet adapts the GeoParquet file family to the catalog: a
// summarizer that digests one file into its spatial/temporal footprint, and
// a dataset writer with throttling-aware retry used by the ingestion side.
package parquet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/paulmach/orb/encoding/wkb"

	"github.com/hf-eolus/sar-catalog/internal/domain"
)

// Summarizer derives per-file summaries by reading only the geometry and
// timestamp columns. Row counts come from the file footer, so unrelated
// columns are never loaded.
type Summarizer struct {
	logger *slog.Logger
	mem    memory.Allocator
}

// NewSummarizer creates a Summarizer.
func NewSummarizer(logger *slog.Logger) *Summarizer {
	return &Summarizer{logger: logger, mem: memory.DefaultAllocator}
}

// Summarize reads one GeoParquet file and reduces it to a FileSummary:
// bbox over all decoded points, min/max of the measurement timestamps, and
// the footer row count. Fails with domain.EmptyFileError when the geometry
// column has no rows.
func (s *Summarizer) Summarize(ctx context.Context, path string) (domain.FileSummary, error) {
	start := time.Now()

	rdr, err := file.OpenParquetFile(path, false)
	if err != nil {
		return domain.FileSummary{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer rdr.Close()

	rowCount := rdr.NumRows()
	if rowCount == 0 {
		return domain.FileSummary{}, &domain.EmptyFileError{Path: path}
	}

	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{BatchSize: 4096}, s.mem)
	if err != nil {
		return domain.FileSummary{}, fmt.Errorf("arrow reader for %s: %w", path, err)
	}

	indices, err := projectionIndices(fr,
		domain.GeometryColumn, domain.FirstTimeColumn, domain.LastTimeColumn)
	if err != nil {
		return domain.FileSummary{}, fmt.Errorf("%s: %w", path, err)
	}

	rr, err := fr.GetRecordReader(ctx, indices, nil)
	if err != nil {
		return domain.FileSummary{}, fmt.Errorf("record reader for %s: %w", path, err)
	}
	defer rr.Release()

	acc := newSummaryAccumulator()
	for rr.Next() {
		if err := acc.consume(rr.Record()); err != nil {
			return domain.FileSummary{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := rr.Err(); err != nil {
		return domain.FileSummary{}, fmt.Errorf("read %s: %w", path, err)
	}
	if acc.points == 0 {
		return domain.FileSummary{}, &domain.EmptyFileError{Path: path}
	}

	s.logger.Debug("summarized file",
		"path", path,
		"rows", rowCount,
		"duration", time.Since(start),
	)

	return domain.FileSummary{
		BBox:     acc.bbox,
		Times:    acc.times,
		RowCount: rowCount,
	}, nil
}

// projectionIndices maps column names to leaf indices in the file schema.
func projectionIndices(fr *pqarrow.FileReader, names ...string) ([]int, error) {
	schema, err := fr.Schema()
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	indices := make([]int, 0, len(names))
	for _, name := range names {
		found := schema.FieldIndices(name)
		if len(found) == 0 {
			return nil, fmt.Errorf("missing column %q", name)
		}
		indices = append(indices, found[0])
	}
	return indices, nil
}

// summaryAccumulator folds record batches into a running bbox and time
// range. The bbox fold is seeded at +Inf/-Inf so a single row yields a
// degenerate box rather than an error.
type summaryAccumulator struct {
	bbox   domain.BBox
	times  domain.TimeRange
	points int
}

func newSummaryAccumulator() *summaryAccumulator {
	return &summaryAccumulator{bbox: domain.EmptyBBox()}
}

func (a *summaryAccumulator) consume(rec arrow.Record) error {
	schema := rec.Schema()

	geomIdx := schema.FieldIndices(domain.GeometryColumn)
	firstIdx := schema.FieldIndices(domain.FirstTimeColumn)
	lastIdx := schema.FieldIndices(domain.LastTimeColumn)
	if len(geomIdx) == 0 || len(firstIdx) == 0 || len(lastIdx) == 0 {
		return fmt.Errorf("projected batch is missing a required column")
	}

	if err := a.consumeGeometry(rec.Column(geomIdx[0])); err != nil {
		return err
	}
	if err := a.consumeTimes(rec.Column(firstIdx[0]), rec.Column(lastIdx[0])); err != nil {
		return err
	}
	return nil
}

// binaryColumn is satisfied by both array.Binary and array.LargeBinary.
type binaryColumn interface {
	arrow.Array
	Value(i int) []byte
}

func (a *summaryAccumulator) consumeGeometry(col arrow.Array) error {
	bin, ok := col.(binaryColumn)
	if !ok {
		return fmt.Errorf("geometry column has non-binary type %s", col.DataType())
	}
	for i := 0; i < bin.Len(); i++ {
		if bin.IsNull(i) {
			continue
		}
		geom, err := wkb.Unmarshal(bin.Value(i))
		if err != nil {
			return fmt.Errorf("decode geometry row %d: %w", i, err)
		}
		bound := geom.Bound()
		a.bbox = a.bbox.ExtendPoint(bound.Min[0], bound.Min[1])
		a.bbox = a.bbox.ExtendPoint(bound.Max[0], bound.Max[1])
		a.points++
	}
	return nil
}

func (a *summaryAccumulator) consumeTimes(first, last arrow.Array) error {
	firsts, err := timestampValues(first, domain.FirstTimeColumn)
	if err != nil {
		return err
	}
	lasts, err := timestampValues(last, domain.LastTimeColumn)
	if err != nil {
		return err
	}
	// Start is the minimum of the first-timestamps only and End the maximum
	// of the last-timestamps only; the two need not come from the same row,
	// and for malformed input Start > End is representable.
	for _, t := range firsts {
		if a.times.Start.IsZero() || t.Before(a.times.Start) {
			a.times.Start = t
		}
	}
	for _, t := range lasts {
		if a.times.End.IsZero() || t.After(a.times.End) {
			a.times.End = t
		}
	}
	return nil
}

// timestampValues converts a timestamp column to UTC instants. A column
// stored without a timezone holds naive values that are already UTC; the
// arrow conversion treats them as such, and NormalizeUTC converts zoned
// values. Either way the result carries a location, which downstream
// RFC3339 formatting depends on.
func timestampValues(col arrow.Array, name string) ([]time.Time, error) {
	ts, ok := col.(*array.Timestamp)
	if !ok {
		return nil, fmt.Errorf("column %q has non-timestamp type %s", name, col.DataType())
	}
	tsType, ok := ts.DataType().(*arrow.TimestampType)
	if !ok {
		return nil, fmt.Errorf("column %q has non-timestamp type %s", name, col.DataType())
	}
	toTime, err := tsType.GetToTimeFunc()
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", name, err)
	}

	out := make([]time.Time, 0, ts.Len())
	for i := 0; i < ts.Len(); i++ {
		if ts.IsNull(i) {
			continue
		}
		out = append(out, domain.NormalizeUTC(toTime(ts.Value(i))))
	}
	return out, nil
}
