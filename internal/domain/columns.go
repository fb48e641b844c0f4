package domain

// Fixed identifiers shared between items and the collection table block.
const (
	TableName        = "owi"
	TableDescription = "Sentinel-1 Ocean Wind Field measurements"

	// GeometryColumn is the primary geometry column of every file.
	GeometryColumn = "geometry"

	// FirstTimeColumn and LastTimeColumn bound each observation in time.
	FirstTimeColumn = "firstMeasurementTime"
	LastTimeColumn  = "lastMeasurementTime"
)

// CollectionDescription is the fixed free-text description published on the
// collection document for this dataset family.
const CollectionDescription = "Synthetic Aperture Radar wind vectors for " +
	"HF-EOLUS Project area of interest (NW Iberian Peninsula and S Bay of " +
	"Biscay) derived from Copernicus Sentinel-1 Level-2 OCN OWI products, " +
	"processed into a GeoParquet dataset. The dataset contains wind speed, " +
	"direction, and quality flag at approximately 10 m above sea level, " +
	"along with satellite metadata. Data is provided in daily files covering " +
	"the period from November 2020 to February 2023. Each file contains " +
	"point geometries in WGS84 (EPSG:4326) with associated attributes."

// Column describes one column of the OWI table for the table extension.
type Column struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// columns is the fixed column contract of the dataset family.
var columns = []Column{
	{Name: "rowid", Description: "Unique row identifier", Type: "integer"},
	{Name: FirstTimeColumn, Description: "Time of the first measurement (UTC)", Type: "datetime"},
	{Name: LastTimeColumn, Description: "Time of the last measurement (UTC)", Type: "datetime"},
	{Name: "owiLon", Description: "Longitude of the pixel center (degrees East)", Type: "number"},
	{Name: "owiLat", Description: "Latitude of the pixel center (degrees North)", Type: "number"},
	{Name: "owiWindSpeed", Description: "Surface wind speed (m/s)", Type: "number"},
	{Name: "owiWindDirection", Description: "Direction of the surface wind vector (degrees clockwise from North)", Type: "number"},
	{Name: "owiMask", Description: "Wind field mask", Type: "number"},
	{Name: "owiInversionQuality", Description: "Wind inversion quality index", Type: "number"},
	{Name: "owiHeading", Description: "Satellite heading (degrees clockwise from North)", Type: "number"},
	{Name: "owiWindQuality", Description: "Wind quality flag", Type: "number"},
	{Name: "owiRadVel", Description: "Radial wind velocity (m/s)", Type: "number"},
	{Name: "date", Description: "Date of the observation (UTC)", Type: "date"},
	{Name: GeometryColumn, Description: "Point geometry of the observation in WGS84 encoded as WKB", Type: "binary"},
}

// Columns returns the column contract. The slice is a copy; callers may
// attach it to metadata records without aliasing the package state.
func Columns() []Column {
	out := make([]Column, len(columns))
	copy(out, columns)
	return out
}
