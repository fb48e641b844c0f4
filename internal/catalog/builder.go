// Package catalog builds and persists the two-level metadata hierarchy:
// one collection, one item per GeoParquet file, assets linked by relative
// href. It orchestrates summarization, running extent aggregation, layout
// assignment, persistence, and the two-phase validation protocol.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/hf-eolus/sar-catalog/internal/adapter/storage"
	"github.com/hf-eolus/sar-catalog/internal/domain"
	"github.com/hf-eolus/sar-catalog/internal/observability"
	"github.com/hf-eolus/sar-catalog/internal/stac"
)

// AssetsDir is the fixed subdirectory of the catalog root holding data files.
const AssetsDir = "assets"

// FileSummarizer digests one GeoParquet file.
type FileSummarizer interface {
	Summarize(ctx context.Context, path string) (domain.FileSummary, error)
}

// Builder produces and persists a complete, internally consistent catalog.
type Builder struct {
	summarizer FileSummarizer
	store      storage.Store
	logger     *slog.Logger
	metrics    *observability.Metrics
	layout     stac.Layout

	// diag receives the combined one-line diagnostics emitted before a
	// fatal validation error propagates.
	diag io.Writer
}

// Option adjusts builder construction.
type Option func(*Builder)

// WithDiagnostics redirects the combined diagnostic line, which defaults
// to standard output.
func WithDiagnostics(w io.Writer) Option {
	return func(b *Builder) { b.diag = w }
}

// WithLayout overrides the default on-disk layout.
func WithLayout(l stac.Layout) Option {
	return func(b *Builder) { b.layout = l }
}

// New creates a Builder.
func New(s FileSummarizer, store storage.Store, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Builder {
	b := &Builder{
		summarizer: s,
		store:      store,
		logger:     logger,
		metrics:    metrics,
		layout:     stac.DefaultLayout(),
		diag:       os.Stdout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build scans root/assets for GeoParquet files, builds one item per file
// plus the enclosing collection, assigns the layout, persists every
// document through the storage adapter, and validates the hierarchy both
// per item at construction and as a whole after persistence. Any failure
// aborts the run; no partial catalog is persisted before the item loop
// completes.
func (b *Builder) Build(ctx context.Context, root, collectionID string, itemProps, collectionProps map[string]any) (*stac.Collection, error) {
	assetsDir := filepath.Join(root, AssetsDir)
	files, err := discover(assetsDir)
	if err != nil {
		return nil, err
	}

	agg := newAggregate()
	for _, path := range files {
		item, summary, err := b.buildItem(ctx, assetsDir, path, itemProps)
		if err != nil {
			return nil, err
		}
		agg.add(item, summary)
	}
	if len(agg.items) == 0 {
		return nil, &EmptyCatalogError{AssetsDir: assetsDir}
	}

	collection := b.buildCollection(collectionID, collectionProps, agg)

	if err := b.layout.Apply(collection); err != nil {
		return nil, err
	}
	if err := b.persist(ctx, root, collection); err != nil {
		return nil, err
	}
	if err := b.revalidate(collection); err != nil {
		return nil, err
	}

	b.logger.Info("catalog built",
		"collection", collectionID,
		"items", len(collection.Items),
		"rows", agg.rows,
	)
	return collection, nil
}

// discover lists every parquet file under the assets directory, sorted by
// path so re-runs over an unchanged tree fold in the same order.
func discover(assetsDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(assetsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".parquet") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", assetsDir, err)
	}
	sort.Strings(files)
	return files, nil
}

// buildItem summarizes one file, constructs its item, and validates the
// item immediately. Validating early localizes schema violations to a file
// instead of surfacing them after the whole collection is assembled.
func (b *Builder) buildItem(ctx context.Context, assetsDir, path string, overlay map[string]any) (*stac.Item, domain.FileSummary, error) {
	start := time.Now()
	summary, err := b.summarizer.Summarize(ctx, path)
	if err != nil {
		return nil, domain.FileSummary{}, err
	}
	b.metrics.FilesSummarized.Inc()
	b.metrics.SummarizeDuration.Observe(time.Since(start).Seconds())

	rel, err := filepath.Rel(assetsDir, path)
	if err != nil {
		return nil, domain.FileSummary{}, fmt.Errorf("relativize %s: %w", path, err)
	}
	assetHref := AssetsDir + "/" + filepath.ToSlash(rel)

	props := make(map[string]any, len(overlay)+5)
	for k, v := range overlay {
		props[k] = v
	}
	props[stac.PropStartDatetime] = stac.FormatRFC3339Z(summary.Times.Start)
	props[stac.PropEndDatetime] = stac.FormatRFC3339Z(summary.Times.End)
	props[stac.PropTableColumns] = domain.Columns()
	props[stac.PropPrimaryGeometry] = domain.GeometryColumn
	props[stac.PropTableRowCount] = summary.RowCount

	item := &stac.Item{
		ID:         itemID(path),
		Geometry:   stac.RectangleGeometry(summary.BBox),
		BBox:       summary.BBox,
		Datetime:   summary.Times.Start,
		Properties: props,
		Assets: map[string]stac.Asset{
			"data": {
				Href:      assetHref,
				MediaType: stac.MediaTypeParquet,
				Roles:     []string{"data"},
			},
		},
	}

	if err := item.Validate(); err != nil {
		b.metrics.ValidationFailures.Inc()
		b.printDiagnostic(fmt.Sprintf("ERROR: Item validation failed for item ID %s", item.ID), err)
		return nil, domain.FileSummary{}, &ItemValidationError{ItemID: item.ID, Err: err}
	}
	return item, summary, nil
}

func (b *Builder) buildCollection(id string, extra map[string]any, agg *aggregate) *stac.Collection {
	b.metrics.RowsCataloged.Add(float64(agg.rows))
	c := &stac.Collection{
		ID:          id,
		Description: domain.CollectionDescription,
		Extent: stac.Extent{
			BBox:  agg.bbox,
			Times: agg.times,
		},
		ExtraProperties: extra,
		Tables: []stac.Table{{
			Name:        domain.TableName,
			Description: domain.TableDescription,
			Columns:     domain.Columns(),
			RowCount:    agg.rows,
		}},
	}
	for _, item := range agg.items {
		c.Add(item)
	}
	return c
}

// persist writes every document through the storage adapter. Documents are
// self-contained: each embeds its own resolved links and can be read
// without a shared root catalog document.
func (b *Builder) persist(ctx context.Context, root string, c *stac.Collection) error {
	for _, item := range c.Items {
		data, err := item.MarshalDocument()
		if err != nil {
			return fmt.Errorf("serialize item %q: %w", item.ID, err)
		}
		if err := b.store.Write(ctx, joinHref(root, item.SelfHref), data); err != nil {
			return err
		}
		b.metrics.DocumentsWritten.Inc()
	}

	data, err := c.MarshalDocument()
	if err != nil {
		return fmt.Errorf("serialize collection %q: %w", c.ID, err)
	}
	if err := b.store.Write(ctx, joinHref(root, c.SelfHref), data); err != nil {
		return err
	}
	b.metrics.DocumentsWritten.Inc()
	return nil
}

// revalidate runs the second validation pass. Link resolution can only be
// checked once layout assignment has made every href concrete; validating
// the collection before save would spuriously fail on the still-unset
// links.
func (b *Builder) revalidate(c *stac.Collection) error {
	err := c.Validate()
	if err == nil {
		for _, item := range c.Items {
			if err = item.Validate(); err != nil {
				break
			}
		}
	}
	if err != nil {
		b.metrics.ValidationFailures.Inc()
		b.printDiagnostic(fmt.Sprintf("ERROR: Post-save validation failed for collection '%s'", c.ID), err)
		return &CollectionValidationError{CollectionID: c.ID, Err: err}
	}
	return nil
}

// printDiagnostic emits the top-level message, every nested sub-error, and
// a stack trace as a single combined line, so multi-cause validation
// failures are diagnosable without re-running.
func (b *Builder) printDiagnostic(prefix string, err error) {
	parts := []string{fmt.Sprintf("%s: %v", prefix, err)}
	var ve *stac.ValidationError
	if errors.As(err, &ve) {
		parts = append(parts, ve.Errors...)
	}
	for _, line := range strings.Split(strings.TrimSpace(string(debug.Stack())), "\n") {
		parts = append(parts, strings.TrimSpace(line))
	}
	fmt.Fprintln(b.diag, strings.Join(parts, " | "))
}

// aggregate is the running collection-level fold over item summaries.
type aggregate struct {
	bbox  domain.BBox
	times domain.TimeRange
	rows  int64
	items []*stac.Item
}

func newAggregate() *aggregate {
	return &aggregate{bbox: domain.EmptyBBox()}
}

func (a *aggregate) add(item *stac.Item, s domain.FileSummary) {
	a.bbox = a.bbox.Extend(s.BBox)
	a.times = a.times.Extend(s.Times)
	a.rows += s.RowCount
	a.items = append(a.items, item)
}

func itemID(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// joinHref resolves a layout-relative href against the catalog root,
// keeping any s3:// scheme intact.
func joinHref(root, href string) string {
	return strings.TrimRight(root, "/") + "/" + strings.Trim(href, "/")
}
