// Command gen-assets writes synthetic daily OWI GeoParquet files under
// <root>/assets, standing in for the upstream ingestion job. It uses the
// actual dataset writer so the files match real pipeline output, including
// hive-style date partitioning. Output is deterministic for a given seed.
//
// Usage:
//
//	gen-assets -root data/catalog -days 3 -rows 500 -start 2021-01-01
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"

	"github.com/hf-eolus/sar-catalog/internal/adapter/parquet"
	"github.com/hf-eolus/sar-catalog/internal/adapter/storage"
	"github.com/hf-eolus/sar-catalog/internal/config"
	"github.com/hf-eolus/sar-catalog/internal/domain"
	"github.com/hf-eolus/sar-catalog/internal/observability"
)

// Area of interest: NW Iberian Peninsula and S Bay of Biscay.
const (
	aoiMinLon = -10.5
	aoiMaxLon = -1.5
	aoiMinLat = 41.5
	aoiMaxLat = 46.5
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	root := flag.String("root", "", "catalog root directory; files land under <root>/assets")
	days := flag.Int("days", 3, "number of consecutive daily files")
	rows := flag.Int("rows", 500, "observation rows per daily file")
	start := flag.String("start", "2021-01-01", "first observation date (YYYY-MM-DD)")
	seed := flag.Int64("seed", 42, "random seed for reproducible output")
	flag.Parse()

	if *root == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -root")
	}
	day, err := time.ParseInLocation("2006-01-02", *start, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	store := storage.NewRouter(storage.S3Options{
		Endpoint: cfg.S3Endpoint,
		Region:   cfg.AWSRegion,
		Profile:  cfg.AWSProfile,
	})

	rng := rand.New(rand.NewSource(*seed))
	assetsRoot := *root + "/assets"
	ctx := context.Background()

	for d := 0; d < *days; d++ {
		date := day.AddDate(0, 0, d)
		obs, err := synthesizeDay(rng, date, *rows)
		if err != nil {
			return fmt.Errorf("synthesize %s: %w", date.Format("2006-01-02"), err)
		}

		writer := parquet.NewDatasetWriter(parquet.WriterConfig{
			Retries:          cfg.WriteRetries,
			Backoff:          cfg.WriteBackoff,
			BasenameTemplate: "owi_" + date.Format("20060102") + "_{i}.parquet",
		}, logger, metrics)

		if err := writer.WriteDataset(ctx, obs, assetsRoot, []string{"date"}, store); err != nil {
			return fmt.Errorf("write %s: %w", date.Format("2006-01-02"), err)
		}
		log.Printf("%s: %d rows", date.Format("2006-01-02"), len(obs))
	}

	log.Printf("wrote %d daily files under %s", *days, assetsRoot)
	return nil
}

// synthesizeDay produces one day of plausible wind observations inside the
// area of interest. Each row's measurement window is a short interval
// within the day's Sentinel-1 pass.
func synthesizeDay(rng *rand.Rand, date time.Time, rows int) ([]domain.Observation, error) {
	passStart := date.Add(6 * time.Hour)
	obs := make([]domain.Observation, 0, rows)

	for i := 0; i < rows; i++ {
		lon := aoiMinLon + rng.Float64()*(aoiMaxLon-aoiMinLon)
		lat := aoiMinLat + rng.Float64()*(aoiMaxLat-aoiMinLat)

		geom, err := wkb.Marshal(orb.Point{lon, lat})
		if err != nil {
			return nil, err
		}

		first := passStart.Add(time.Duration(rng.Intn(600)) * time.Second)
		obs = append(obs, domain.Observation{
			RowID:                int64(i + 1),
			FirstMeasurementTime: first,
			LastMeasurementTime:  first.Add(time.Duration(30+rng.Intn(90)) * time.Second),
			Lon:                  lon,
			Lat:                  lat,
			WindSpeed:            rng.Float64() * 25,
			WindDirection:        rng.Float64() * 360,
			Mask:                 float64(rng.Intn(2)),
			InversionQuality:     float64(rng.Intn(3)),
			Heading:              rng.Float64() * 360,
			WindQuality:          float64(rng.Intn(4)),
			RadVel:               rng.Float64()*10 - 5,
			Date:                 date,
			Geometry:             geom,
		})
	}
	return obs, nil
}
