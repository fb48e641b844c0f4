// Package stac models the slice of the SpatioTemporal Asset Catalog spec
// this project emits: one collection, one item per GeoParquet file, and the
// table extension describing the file columns. Records are built in memory,
// linked, laid out, and only then serialized, so hrefs stay unset until
// layout assignment.
package stac

import (
	"time"

	"github.com/hf-eolus/sar-catalog/internal/domain"
)

// Core document constants.
const (
	Version = "1.0.0"

	// TableExtensionURI identifies the table extension schema both record
	// kinds declare.
	TableExtensionURI = "https://stac-extensions.github.io/table/v1.2.0/schema.json"

	// MediaTypeParquet is the declared media type of data assets.
	MediaTypeParquet = "application/x-parquet"

	// DefaultLicense is published when the caller supplies none.
	DefaultLicense = "proprietary"
)

// Link relation types used by the two-level hierarchy.
const (
	RelSelf       = "self"
	RelRoot       = "root"
	RelParent     = "parent"
	RelCollection = "collection"
	RelItem       = "item"
)

// Link is a typed reference between records. Href is empty until layout
// assignment resolves it.
type Link struct {
	Rel       string `json:"rel"`
	Href      string `json:"href"`
	MediaType string `json:"type,omitempty"`

	// Target is the in-memory record the link resolves to, if any. Layout
	// assignment turns it into a concrete Href.
	Target *Item `json:"-"`
}

// Asset points at one data file relative to the catalog root.
type Asset struct {
	Href      string   `json:"href"`
	MediaType string   `json:"type,omitempty"`
	Roles     []string `json:"roles,omitempty"`
}

// Geometry is a GeoJSON geometry. Only Polygon is produced here (the
// rectangle of a file's bounding box).
type Geometry struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

// RectangleGeometry builds a closed counter-clockwise Polygon ring covering
// the bounding box, [lon, lat] vertex order.
func RectangleGeometry(b domain.BBox) Geometry {
	return Geometry{
		Type: "Polygon",
		Coordinates: [][][2]float64{{
			{b.MinX, b.MinY},
			{b.MaxX, b.MinY},
			{b.MaxX, b.MaxY},
			{b.MinX, b.MaxY},
			{b.MinX, b.MinY},
		}},
	}
}

// Item is the per-file record. It is immutable after construction except for
// link and href assignment during layout normalization.
type Item struct {
	ID       string
	Geometry Geometry
	BBox     domain.BBox
	Datetime time.Time // representative instant, the range start

	// Properties holds the user-supplied overlay plus computed
	// start_datetime / end_datetime and the table extension fields.
	Properties map[string]any

	Assets map[string]Asset
	Links  []*Link

	// CollectionID is the back-reference recorded for serialization; the
	// item does not own the collection.
	CollectionID string

	// SelfHref is the resolved relative path, set by Layout.Apply.
	SelfHref string
}

// Table is the collection-level table extension entry.
type Table struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Columns     []domain.Column `json:"columns"`
	RowCount    int64           `json:"row_count"`
}

// Extent is the collection's spatial/temporal coverage.
type Extent struct {
	BBox  domain.BBox
	Times domain.TimeRange
}

// Collection is the single root record of a catalog run. It owns its items
// by reference.
type Collection struct {
	ID          string
	Description string
	License     string
	Extent      Extent

	// ExtraProperties is the user-supplied overlay serialized at the top
	// level of the collection document.
	ExtraProperties map[string]any

	Tables []Table
	Items  []*Item
	Links  []*Link

	SelfHref string
}

// Add links an item into the collection bidirectionally. The item link's
// href stays unset until layout assignment.
func (c *Collection) Add(item *Item) {
	item.CollectionID = c.ID
	c.Items = append(c.Items, item)
	c.Links = append(c.Links, &Link{Rel: RelItem, Target: item})
}
