// Command build-catalog generates a STAC catalog for a tree of SAR
// GeoParquet assets: one collection with an item per file. Parquet files
// must live under an "assets" directory inside the provided root; the
// collection document lands at <root>/collection.json and items under
// <root>/items/.
//
// Usage:
//
//	build-catalog <root> --collection-id <id> \
//	  [--item-properties props.json] [--collection-properties props.json]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/hf-eolus/sar-catalog/internal/adapter/parquet"
	"github.com/hf-eolus/sar-catalog/internal/adapter/storage"
	"github.com/hf-eolus/sar-catalog/internal/catalog"
	"github.com/hf-eolus/sar-catalog/internal/config"
	"github.com/hf-eolus/sar-catalog/internal/observability"
)

func main() {
	if err := run(); err != nil {
		slog.Error("catalog build failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("build-catalog", flag.ExitOnError)
	collectionID := fs.String("collection-id", "", "identifier of the generated collection (required)")
	itemPropsPath := fs.String("item-properties", "", "JSON file with extra properties for every item")
	collPropsPath := fs.String("collection-properties", "", "JSON file with extra collection properties")

	// Accept the root either before or after the flags.
	args := os.Args[1:]
	var root string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		root, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if root == "" && fs.NArg() > 0 {
		root = fs.Arg(0)
	}
	if root == "" || *collectionID == "" {
		fs.Usage()
		return fmt.Errorf("usage: build-catalog <root> --collection-id <id>")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	itemProps, err := loadProperties(*itemPropsPath)
	if err != nil {
		return fmt.Errorf("item properties: %w", err)
	}
	collectionProps, err := loadProperties(*collPropsPath)
	if err != nil {
		return fmt.Errorf("collection properties: %w", err)
	}

	store := storage.NewRouter(storage.S3Options{
		Endpoint: cfg.S3Endpoint,
		Region:   cfg.AWSRegion,
		Profile:  cfg.AWSProfile,
	})
	summarizer := parquet.NewSummarizer(logger)
	builder := catalog.New(summarizer, store, logger, metrics)

	collection, err := builder.Build(context.Background(), root, *collectionID, itemProps, collectionProps)
	if err != nil {
		return err
	}

	logger.Info("catalog written",
		"collection", collection.ID,
		"items", len(collection.Items),
		"root", root,
	)
	return nil
}

// loadProperties reads a JSON object of user-supplied properties; an empty
// path yields an empty overlay.
func loadProperties(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var props map[string]any
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return props, nil
}
