package stac_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hf-eolus/sar-catalog/internal/domain"
	"github.com/hf-eolus/sar-catalog/internal/stac"
)

func TestFormatRFC3339Z_ForcesZSuffix(t *testing.T) {
	utc := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2021-01-01T00:00:00Z", stac.FormatRFC3339Z(utc))

	cet := time.Date(2021, 1, 1, 1, 0, 0, 0, time.FixedZone("CET", 3600))
	got := stac.FormatRFC3339Z(cet)
	assert.Equal(t, "2021-01-01T00:00:00Z", got)
	assert.False(t, strings.Contains(got, "+00:00"))
}

func TestFormatRFC3339Z_KeepsSubsecondPrecision(t *testing.T) {
	ts := time.Date(2021, 1, 1, 0, 0, 0, 500*int(time.Millisecond), time.UTC)
	assert.Equal(t, "2021-01-01T00:00:00.5Z", stac.FormatRFC3339Z(ts))
}

func TestParseRFC3339Z(t *testing.T) {
	_, err := stac.ParseRFC3339Z("2021-01-01T00:00:00Z")
	require.NoError(t, err)

	_, err = stac.ParseRFC3339Z("2021-01-01T00:00:00+00:00")
	assert.Error(t, err)
}

func TestRectangleGeometry_ClosedRing(t *testing.T) {
	b := domain.BBox{MinX: -10, MinY: 40, MaxX: -8, MaxY: 42}
	g := stac.RectangleGeometry(b)

	require.Equal(t, "Polygon", g.Type)
	require.Len(t, g.Coordinates, 1)
	ring := g.Coordinates[0]
	require.Len(t, ring, 5)
	assert.Equal(t, ring[0], ring[4])
	assert.Equal(t, [2]float64{-10, 40}, ring[0])
	assert.Equal(t, [2]float64{-8, 42}, ring[2])
}

func testItem(id string) *stac.Item {
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	return &stac.Item{
		ID:       id,
		Geometry: stac.RectangleGeometry(domain.BBox{MinX: -10, MinY: 40, MaxX: -9, MaxY: 41}),
		BBox:     domain.BBox{MinX: -10, MinY: 40, MaxX: -9, MaxY: 41},
		Datetime: start,
		Properties: map[string]any{
			stac.PropStartDatetime:   stac.FormatRFC3339Z(start),
			stac.PropEndDatetime:     stac.FormatRFC3339Z(end),
			stac.PropTableColumns:    domain.Columns(),
			stac.PropPrimaryGeometry: domain.GeometryColumn,
			stac.PropTableRowCount:   int64(3),
		},
		Assets: map[string]stac.Asset{
			"data": {Href: "assets/" + id + ".parquet", MediaType: stac.MediaTypeParquet, Roles: []string{"data"}},
		},
	}
}

func testCollection(items ...*stac.Item) *stac.Collection {
	bbox := domain.EmptyBBox()
	times := domain.TimeRange{}
	var rows int64
	for _, item := range items {
		bbox = bbox.Extend(item.BBox)
		start, _ := stac.ParseRFC3339Z(item.Properties[stac.PropStartDatetime].(string))
		end, _ := stac.ParseRFC3339Z(item.Properties[stac.PropEndDatetime].(string))
		times = times.Extend(domain.TimeRange{Start: start, End: end})
		rows += item.Properties[stac.PropTableRowCount].(int64)
	}
	c := &stac.Collection{
		ID:          "owi-test",
		Description: domain.CollectionDescription,
		Extent:      stac.Extent{BBox: bbox, Times: times},
		Tables: []stac.Table{{
			Name:        domain.TableName,
			Description: domain.TableDescription,
			Columns:     domain.Columns(),
			RowCount:    rows,
		}},
	}
	for _, item := range items {
		c.Add(item)
	}
	return c
}

func TestItemValidate_FreshItemPasses(t *testing.T) {
	require.NoError(t, testItem("a").Validate())
}

func TestItemValidate_CollectsSubErrors(t *testing.T) {
	item := testItem("bad")
	item.BBox = domain.EmptyBBox() // non-finite bounds
	delete(item.Properties, stac.PropStartDatetime)
	item.Assets = nil

	err := item.Validate()
	require.Error(t, err)

	var ve *stac.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "item", ve.RecordKind)
	assert.Equal(t, "bad", ve.RecordID)
	assert.GreaterOrEqual(t, len(ve.Errors), 3)
}

func TestItemValidate_RejectsOffsetDatetime(t *testing.T) {
	item := testItem("a")
	item.Properties[stac.PropEndDatetime] = "2021-01-01T01:00:00+00:00"

	var ve *stac.ValidationError
	require.ErrorAs(t, item.Validate(), &ve)
}

func TestCollectionValidate_RequiresLayout(t *testing.T) {
	c := testCollection(testItem("a"))

	// Pre-layout the item links have no hrefs, which is a violation: the
	// collection is only validated after layout assignment.
	require.Error(t, c.Validate())

	require.NoError(t, stac.DefaultLayout().Apply(c))
	require.NoError(t, c.Validate())
}

func TestCollectionValidate_ExtentMustBoundItems(t *testing.T) {
	c := testCollection(testItem("a"))
	require.NoError(t, stac.DefaultLayout().Apply(c))

	c.Extent.BBox = domain.BBox{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}

	var ve *stac.ValidationError
	require.ErrorAs(t, c.Validate(), &ve)
	assert.Contains(t, strings.Join(ve.Errors, "\n"), "does not bound item")
}

func TestCollectionValidate_RowCountMustMatchSum(t *testing.T) {
	c := testCollection(testItem("a"), testItem("b"))
	require.NoError(t, stac.DefaultLayout().Apply(c))

	c.Tables[0].RowCount = 999

	var ve *stac.ValidationError
	require.ErrorAs(t, c.Validate(), &ve)
	assert.Contains(t, strings.Join(ve.Errors, "\n"), "row_count")
}

func TestLayout_Apply(t *testing.T) {
	a, b := testItem("a"), testItem("b")
	c := testCollection(a, b)

	require.NoError(t, stac.DefaultLayout().Apply(c))

	assert.Equal(t, "collection.json", c.SelfHref)
	assert.Equal(t, "items/a.json", a.SelfHref)
	assert.Equal(t, "items/b.json", b.SelfHref)

	hrefs := map[string]string{}
	for _, link := range c.Links {
		if link.Rel == stac.RelItem {
			hrefs[link.Target.ID] = link.Href
		}
	}
	assert.Equal(t, map[string]string{"a": "items/a.json", "b": "items/b.json"}, hrefs)

	var rels []string
	for _, link := range a.Links {
		rels = append(rels, link.Rel)
		assert.NotEmpty(t, link.Href, "rel=%s", link.Rel)
	}
	assert.Contains(t, rels, stac.RelParent)
	assert.Contains(t, rels, stac.RelCollection)
}

func TestItemMarshalDocument(t *testing.T) {
	item := testItem("a")
	c := testCollection(item)
	require.NoError(t, stac.DefaultLayout().Apply(c))

	data, err := item.MarshalDocument()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "Feature", doc["type"])
	assert.Equal(t, stac.Version, doc["stac_version"])
	assert.Equal(t, "a", doc["id"])
	assert.Equal(t, "owi-test", doc["collection"])
	assert.Equal(t, []any{stac.TableExtensionURI}, doc["stac_extensions"])

	props := doc["properties"].(map[string]any)
	assert.Equal(t, "2021-01-01T00:00:00Z", props["datetime"])
	assert.Equal(t, "2021-01-01T00:00:00Z", props[stac.PropStartDatetime])
	assert.Equal(t, "2021-01-01T01:00:00Z", props[stac.PropEndDatetime])
	assert.Equal(t, domain.GeometryColumn, props[stac.PropPrimaryGeometry])
	assert.EqualValues(t, 3, props[stac.PropTableRowCount])
}

func TestCollectionMarshalDocument_MergesExtraProperties(t *testing.T) {
	c := testCollection(testItem("a"))
	c.ExtraProperties = map[string]any{
		"keywords": []string{"sar", "wind"},
		"id":       "must-not-override",
	}
	require.NoError(t, stac.DefaultLayout().Apply(c))

	data, err := c.MarshalDocument()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "Collection", doc["type"])
	assert.Equal(t, "owi-test", doc["id"], "core fields win on collision")
	assert.Equal(t, stac.DefaultLicense, doc["license"])
	assert.Equal(t, []any{"sar", "wind"}, doc["keywords"])

	extent := doc["extent"].(map[string]any)
	spatial := extent["spatial"].(map[string]any)
	assert.Equal(t, []any{[]any{-10.0, 40.0, -9.0, 41.0}}, spatial["bbox"])
	temporal := extent["temporal"].(map[string]any)
	assert.Equal(t,
		[]any{[]any{"2021-01-01T00:00:00Z", "2021-01-01T01:00:00Z"}},
		temporal["interval"])

	tables := doc["table:tables"].([]any)
	require.Len(t, tables, 1)
	assert.EqualValues(t, 3, tables[0].(map[string]any)["row_count"])
}

func TestMarshalDocument_Deterministic(t *testing.T) {
	build := func() []byte {
		c := testCollection(testItem("a"), testItem("b"))
		c.ExtraProperties = map[string]any{"keywords": []string{"sar"}}
		require.NoError(t, stac.DefaultLayout().Apply(c))
		data, err := c.MarshalDocument()
		require.NoError(t, err)
		return data
	}
	assert.Equal(t, string(build()), string(build()))
}
