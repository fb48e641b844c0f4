package parquet

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	pq "github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/hf-eolus/sar-catalog/internal/adapter/storage"
	"github.com/hf-eolus/sar-catalog/internal/domain"
	"github.com/hf-eolus/sar-catalog/internal/observability"
)

// ThrottlingMarker is the substring the object store embeds in an I/O error
// when it is shedding load. Throttling is not a distinct error kind on the
// wire, so detection is by message text.
const ThrottlingMarker = "SLOW_DOWN"

// WriterConfig tunes the dataset writer's retry policy and file naming.
type WriterConfig struct {
	// Retries is the total attempt budget, default 5.
	Retries int
	// Backoff is the base delay; attempt n waits Backoff * 2^(n-1), so the
	// defaults sleep 5s, 10s, 20s, 40s between the five attempts.
	Backoff time.Duration
	// BasenameTemplate names partition files; "{i}" expands to the file
	// index within the partition. Default "part-{i}.parquet".
	BasenameTemplate string
}

// DatasetWriter writes observation rows as a hive-partitioned Parquet
// dataset, retrying the whole write on transient throttling. It guarantees
// retry of the call, not transactionality: partial partition writes from a
// throttled attempt are left to the backend's own semantics.
type DatasetWriter struct {
	retries  int
	backoff  time.Duration
	basename string
	logger   *slog.Logger
	metrics  *observability.Metrics
	mem      memory.Allocator
}

// NewDatasetWriter creates a DatasetWriter, applying defaults for zero
// config fields.
func NewDatasetWriter(cfg WriterConfig, logger *slog.Logger, metrics *observability.Metrics) *DatasetWriter {
	if cfg.Retries <= 0 {
		cfg.Retries = 5
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 5 * time.Second
	}
	if cfg.BasenameTemplate == "" {
		cfg.BasenameTemplate = "part-{i}.parquet"
	}
	return &DatasetWriter{
		retries:  cfg.Retries,
		backoff:  cfg.Backoff,
		basename: cfg.BasenameTemplate,
		logger:   logger,
		metrics:  metrics,
		mem:      memory.DefaultAllocator,
	}
}

// WriteDataset partitions the rows by the given columns and writes one
// Parquet file per partition under rootPath through the backend. On an
// error marked with ThrottlingMarker the whole write is retried with
// exponential backoff; any other error, or retry exhaustion, propagates
// unchanged.
func (w *DatasetWriter) WriteDataset(ctx context.Context, obs []domain.Observation, rootPath string, partitionCols []string, backend storage.Store) error {
	parts, err := partition(obs, partitionCols)
	if err != nil {
		return err
	}

	for attempt := 1; ; attempt++ {
		err := w.writeAll(ctx, parts, rootPath, backend)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), ThrottlingMarker) || attempt >= w.retries {
			return err
		}

		wait := w.backoff * (1 << (attempt - 1))
		w.metrics.WriteRetries.Inc()
		w.logger.Warn("dataset write throttled, backing off",
			"attempt", attempt,
			"wait", wait,
			"error", err,
		)
		clock.Sleep(wait)
	}
}

func (w *DatasetWriter) writeAll(ctx context.Context, parts []part, rootPath string, backend storage.Store) error {
	for _, p := range parts {
		data, err := w.encode(p.rows)
		if err != nil {
			return fmt.Errorf("encode partition %s: %w", p.dir, err)
		}
		name := strings.ReplaceAll(w.basename, "{i}", "0")
		dest := joinPath(rootPath, p.dir, name)
		if err := backend.Write(ctx, dest, data); err != nil {
			return err
		}
	}
	return nil
}

// encode serializes one partition's rows to Parquet bytes.
func (w *DatasetWriter) encode(rows []domain.Observation) ([]byte, error) {
	rec := NewRecord(w.mem, rows)
	defer rec.Release()

	var buf bytes.Buffer
	fw, err := pqarrow.NewFileWriter(Schema(), &buf,
		pq.NewWriterProperties(), pqarrow.DefaultWriterProps())
	if err != nil {
		return nil, err
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// part is one hive-style partition: its key=value directory path and rows,
// in first-seen order for deterministic output.
type part struct {
	dir  string
	rows []domain.Observation
}

func partition(obs []domain.Observation, cols []string) ([]part, error) {
	if len(cols) == 0 {
		return []part{{rows: obs}}, nil
	}

	index := make(map[string]int)
	var parts []part
	for _, o := range obs {
		segs := make([]string, len(cols))
		for i, col := range cols {
			val, err := partitionValue(o, col)
			if err != nil {
				return nil, err
			}
			segs[i] = col + "=" + val
		}
		dir := strings.Join(segs, "/")
		at, ok := index[dir]
		if !ok {
			at = len(parts)
			index[dir] = at
			parts = append(parts, part{dir: dir})
		}
		parts[at].rows = append(parts[at].rows, o)
	}
	return parts, nil
}

// partitionValue renders an observation column as a path segment.
func partitionValue(o domain.Observation, col string) (string, error) {
	switch col {
	case "date":
		return o.Date.UTC().Format("2006-01-02"), nil
	case "rowid":
		return strconv.FormatInt(o.RowID, 10), nil
	default:
		return "", fmt.Errorf("unsupported partition column %q", col)
	}
}

// joinPath joins with forward slashes, keeping any s3:// scheme intact.
func joinPath(parts ...string) string {
	out := strings.TrimRight(parts[0], "/")
	for _, p := range parts[1:] {
		if p = strings.Trim(p, "/"); p != "" {
			out += "/" + p
		}
	}
	return out
}
