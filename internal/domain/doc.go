// Package domain models the Sentinel-1 Ocean Wind Field (OWI) GeoParquet
// dataset family.
//
// # Data Source
//
// Observations derive from Copernicus Sentinel-1 Level-2 OCN OWI products
// processed into daily GeoParquet files for the HF-EOLUS project area of
// interest (NW Iberian Peninsula and S Bay of Biscay). Each file holds point
// geometries in WGS84 (EPSG:4326) with wind speed, direction, and quality
// attributes at approximately 10 m above sea level.
//
// # Column Contract
//
// Every file in the family carries the same columns (see [Columns]). The
// set is a fixed contract, not derived from data: catalog items and the
// collection publish it verbatim through the table extension. Row ids are
// unique within a file only, never globally.
//
// # Timestamps
//
// firstMeasurementTime and lastMeasurementTime are UTC instants. A value
// stored without an offset is already UTC and is tagged as such; an
// offset-aware value is converted. Normalization happens before any
// serialization because RFC3339 formatting depends on the location being set.
package domain
