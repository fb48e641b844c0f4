package domain

import "time"

// Observation is one OWI measurement row as produced by the upstream
// ingestion job. Field order mirrors the column contract in Columns.
type Observation struct {
	RowID                int64
	FirstMeasurementTime time.Time
	LastMeasurementTime  time.Time
	Lon                  float64
	Lat                  float64
	WindSpeed            float64
	WindDirection        float64
	Mask                 float64
	InversionQuality     float64
	Heading              float64
	WindQuality          float64
	RadVel               float64
	Date                 time.Time // observation date (UTC midnight)
	Geometry             []byte    // WKB-encoded WGS84 point
}
