package stac

import (
	"fmt"
	"math"

	"github.com/hf-eolus/sar-catalog/internal/domain"
)

// ValidationError reports a record that violates its schema. Errors holds
// the ordered list of individual violations so callers can emit them as one
// combined diagnostic.
type ValidationError struct {
	RecordKind string // "item" or "collection"
	RecordID   string
	Errors     []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q failed validation (%d errors)", e.RecordKind, e.RecordID, len(e.Errors))
}

// violations accumulates problems for one record.
type violations struct {
	problems []string
}

func (v *violations) addf(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *violations) err(kind, id string) error {
	if len(v.problems) == 0 {
		return nil
	}
	return &ValidationError{RecordKind: kind, RecordID: id, Errors: v.problems}
}

// Validate checks the item's structural invariants. It is called twice per
// build: right after construction, and again after the catalog is persisted
// once layout assignment has made every href concrete. A pre-layout item
// carries no links, so the link checks only bite on the second pass.
func (i *Item) Validate() error {
	var v violations

	if i.ID == "" {
		v.addf("id must not be empty")
	}
	v.checkBBox(i.BBox.Slice())
	v.checkGeometry(i.Geometry, i.BBox.Slice())

	if i.Datetime.IsZero() {
		v.addf("datetime is unset")
	}
	v.checkDatetimeProperty(i.Properties, PropStartDatetime)
	v.checkDatetimeProperty(i.Properties, PropEndDatetime)
	v.checkTableProperties(i.Properties)

	data, ok := i.Assets["data"]
	switch {
	case !ok:
		v.addf("missing %q asset", "data")
	case data.Href == "":
		v.addf("data asset href is empty")
	default:
		if !hasRole(data.Roles, "data") {
			v.addf("data asset must carry role %q", "data")
		}
	}

	for _, link := range i.Links {
		if link.Href == "" {
			v.addf("link rel=%s has an unresolved href", link.Rel)
		}
	}

	return v.err("item", i.ID)
}

// Validate checks the collection's structural invariants, including that
// the published extent bounds every linked item and that the aggregate row
// count equals the sum over items. Meaningful only after layout assignment:
// unresolved links are violations by design.
func (c *Collection) Validate() error {
	var v violations

	if c.ID == "" {
		v.addf("id must not be empty")
	}
	if c.Description == "" {
		v.addf("description must not be empty")
	}
	v.checkBBox(c.Extent.BBox.Slice())
	if c.Extent.Times.Start.IsZero() || c.Extent.Times.End.IsZero() {
		v.addf("temporal extent is unset")
	} else if c.Extent.Times.End.Before(c.Extent.Times.Start) {
		v.addf("temporal extent ends (%s) before it starts (%s)",
			FormatRFC3339Z(c.Extent.Times.End), FormatRFC3339Z(c.Extent.Times.Start))
	}

	if len(c.Tables) == 0 {
		v.addf("missing %s block", PropTableTables)
	}
	var rowSum int64
	for _, item := range c.Items {
		if !c.Extent.BBox.Contains(item.BBox) {
			v.addf("spatial extent does not bound item %q", item.ID)
		}
		if n, ok := item.Properties[PropTableRowCount].(int64); ok {
			rowSum += n
		}
	}
	for _, table := range c.Tables {
		if len(table.Columns) == 0 {
			v.addf("table %q has no columns", table.Name)
		}
		if table.RowCount != rowSum {
			v.addf("table %q row_count %d does not equal item sum %d", table.Name, table.RowCount, rowSum)
		}
	}

	for _, link := range c.Links {
		if link.Href == "" {
			v.addf("link rel=%s has an unresolved href", link.Rel)
		}
	}

	return v.err("collection", c.ID)
}

func (v *violations) checkBBox(b []float64) {
	if len(b) != 4 {
		v.addf("bbox must have 4 values, has %d", len(b))
		return
	}
	for _, f := range b {
		if math.IsInf(f, 0) || math.IsNaN(f) {
			v.addf("bbox contains non-finite value %v", f)
			return
		}
	}
	if b[0] > b[2] || b[1] > b[3] {
		v.addf("bbox lower bounds exceed upper bounds: %v", b)
	}
}

func (v *violations) checkGeometry(g Geometry, bbox []float64) {
	if g.Type != "Polygon" {
		v.addf("geometry type must be Polygon, is %q", g.Type)
		return
	}
	if len(g.Coordinates) != 1 || len(g.Coordinates[0]) < 4 {
		v.addf("polygon must have one ring of at least 4 vertices")
		return
	}
	ring := g.Coordinates[0]
	if ring[0] != ring[len(ring)-1] {
		v.addf("polygon ring is not closed")
	}
}

func (v *violations) checkDatetimeProperty(props map[string]any, key string) {
	raw, ok := props[key]
	if !ok {
		v.addf("missing %s property", key)
		return
	}
	s, ok := raw.(string)
	if !ok {
		v.addf("%s must be a string, is %T", key, raw)
		return
	}
	if _, err := ParseRFC3339Z(s); err != nil {
		v.addf("%s: %v", key, err)
	}
}

func (v *violations) checkTableProperties(props map[string]any) {
	cols, ok := props[PropTableColumns]
	if !ok {
		v.addf("missing %s property", PropTableColumns)
	} else if n := columnCount(cols); n == 0 {
		v.addf("%s must not be empty", PropTableColumns)
	}
	if g, ok := props[PropPrimaryGeometry].(string); !ok || g == "" {
		v.addf("missing %s property", PropPrimaryGeometry)
	}
	if n, ok := props[PropTableRowCount].(int64); !ok {
		v.addf("missing %s property", PropTableRowCount)
	} else if n <= 0 {
		v.addf("%s must be positive, is %d", PropTableRowCount, n)
	}
}

// columnCount tolerates both the typed form used at build time and the
// generic form produced by decoding a persisted document.
func columnCount(cols any) int {
	switch c := cols.(type) {
	case []domain.Column:
		return len(c)
	case []any:
		return len(c)
	}
	return 0
}

func hasRole(roles []string, want string) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}
