package stac

import (
	"encoding/json"
)

// Table extension property keys.
const (
	PropDatetime        = "datetime"
	PropStartDatetime   = "start_datetime"
	PropEndDatetime     = "end_datetime"
	PropTableColumns    = "table:columns"
	PropPrimaryGeometry = "table:primary_geometry"
	PropTableRowCount   = "table:row_count"
	PropTableTables     = "table:tables"
)

// ItemDocument is the serialized form of an Item.
type ItemDocument struct {
	Type           string           `json:"type"`
	StacVersion    string           `json:"stac_version"`
	StacExtensions []string         `json:"stac_extensions"`
	ID             string           `json:"id"`
	Geometry       Geometry         `json:"geometry"`
	BBox           []float64        `json:"bbox"`
	Properties     map[string]any   `json:"properties"`
	Links          []*Link          `json:"links"`
	Assets         map[string]Asset `json:"assets"`
	Collection     string           `json:"collection,omitempty"`
}

// Document builds the serializable form. The representative datetime is
// injected into properties here so callers cannot desynchronize the two.
func (i *Item) Document() ItemDocument {
	props := make(map[string]any, len(i.Properties)+1)
	for k, v := range i.Properties {
		props[k] = v
	}
	props[PropDatetime] = FormatRFC3339Z(i.Datetime)

	links := i.Links
	if links == nil {
		links = []*Link{}
	}

	return ItemDocument{
		Type:           "Feature",
		StacVersion:    Version,
		StacExtensions: []string{TableExtensionURI},
		ID:             i.ID,
		Geometry:       i.Geometry,
		BBox:           i.BBox.Slice(),
		Properties:     props,
		Links:          links,
		Assets:         i.Assets,
		Collection:     i.CollectionID,
	}
}

// MarshalDocument serializes the item document with stable two-space
// indentation. Map keys marshal in sorted order, so re-running the builder
// over unchanged input produces byte-identical output.
func (i *Item) MarshalDocument() ([]byte, error) {
	return json.MarshalIndent(i.Document(), "", "  ")
}

// SpatialExtentDocument and TemporalExtentDocument follow the collection
// document shape: a list of bboxes / intervals whose first entry is the
// overall extent.
type SpatialExtentDocument struct {
	BBox [][]float64 `json:"bbox"`
}

type TemporalExtentDocument struct {
	Interval [][]string `json:"interval"`
}

type ExtentDocument struct {
	Spatial  SpatialExtentDocument  `json:"spatial"`
	Temporal TemporalExtentDocument `json:"temporal"`
}

// CollectionDocument is the serialized form of a Collection, used both for
// writing and for decoding persisted catalogs during integrity checks.
type CollectionDocument struct {
	Type           string         `json:"type"`
	StacVersion    string         `json:"stac_version"`
	StacExtensions []string       `json:"stac_extensions"`
	ID             string         `json:"id"`
	Description    string         `json:"description"`
	License        string         `json:"license"`
	Extent         ExtentDocument `json:"extent"`
	Links          []*Link        `json:"links"`
	Tables         []Table        `json:"table:tables"`
}

// Document builds the serializable form of the collection.
func (c *Collection) Document() CollectionDocument {
	license := c.License
	if license == "" {
		license = DefaultLicense
	}
	return CollectionDocument{
		Type:           "Collection",
		StacVersion:    Version,
		StacExtensions: []string{TableExtensionURI},
		ID:             c.ID,
		Description:    c.Description,
		License:        license,
		Extent: ExtentDocument{
			Spatial: SpatialExtentDocument{BBox: [][]float64{c.Extent.BBox.Slice()}},
			Temporal: TemporalExtentDocument{Interval: [][]string{{
				FormatRFC3339Z(c.Extent.Times.Start),
				FormatRFC3339Z(c.Extent.Times.End),
			}}},
		},
		Links:  c.Links,
		Tables: c.Tables,
	}
}

// MarshalDocument serializes the collection document, merging the caller's
// extra properties at the top level. Core fields win on key collision.
func (c *Collection) MarshalDocument() ([]byte, error) {
	core, err := json.Marshal(c.Document())
	if err != nil {
		return nil, err
	}
	if len(c.ExtraProperties) == 0 {
		return indent(core)
	}

	var doc map[string]any
	if err := json.Unmarshal(core, &doc); err != nil {
		return nil, err
	}
	for k, v := range c.ExtraProperties {
		if _, taken := doc[k]; !taken {
			doc[k] = v
		}
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return indent(merged)
}

func indent(data []byte) ([]byte, error) {
	var out json.RawMessage = data
	return json.MarshalIndent(out, "", "  ")
}
