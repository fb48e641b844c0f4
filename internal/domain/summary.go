package domain

import (
	"math"
	"time"
)

// BBox is a 2D bounding box in WGS84 degrees, [minx miny maxx maxy] order
// when serialized.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// EmptyBBox returns the fold seed: lower bounds at +Inf, upper bounds at
// -Inf, so a single point produces a degenerate but valid box.
func EmptyBBox() BBox {
	return BBox{
		MinX: math.Inf(1),
		MinY: math.Inf(1),
		MaxX: math.Inf(-1),
		MaxY: math.Inf(-1),
	}
}

// IsEmpty reports whether the box is still the fold seed.
func (b BBox) IsEmpty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

// ExtendPoint grows the box to include the point (x, y).
func (b BBox) ExtendPoint(x, y float64) BBox {
	return BBox{
		MinX: math.Min(b.MinX, x),
		MinY: math.Min(b.MinY, y),
		MaxX: math.Max(b.MaxX, x),
		MaxY: math.Max(b.MaxY, y),
	}
}

// Extend grows the box to include another box.
func (b BBox) Extend(o BBox) BBox {
	return BBox{
		MinX: math.Min(b.MinX, o.MinX),
		MinY: math.Min(b.MinY, o.MinY),
		MaxX: math.Max(b.MaxX, o.MaxX),
		MaxY: math.Max(b.MaxY, o.MaxY),
	}
}

// Contains reports whether o lies entirely within b.
func (b BBox) Contains(o BBox) bool {
	return o.MinX >= b.MinX && o.MinY >= b.MinY && o.MaxX <= b.MaxX && o.MaxY <= b.MaxY
}

// Slice returns the box in [minx miny maxx maxy] order.
func (b BBox) Slice() []float64 {
	return []float64{b.MinX, b.MinY, b.MaxX, b.MaxY}
}

// TimeRange is a closed UTC interval.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Extend widens the range to include another range. A zero receiver adopts
// the other range unchanged.
func (r TimeRange) Extend(o TimeRange) TimeRange {
	out := r
	if !o.Start.IsZero() && (out.Start.IsZero() || o.Start.Before(out.Start)) {
		out.Start = o.Start
	}
	if !o.End.IsZero() && (out.End.IsZero() || o.End.After(out.End)) {
		out.End = o.End
	}
	return out
}

// FileSummary is the derived spatial/temporal digest of one GeoParquet file.
// It is computed by the summarizer and never stored.
type FileSummary struct {
	BBox     BBox
	Times    TimeRange
	RowCount int64
}

// NormalizeUTC tags a naive timestamp as UTC and converts an offset-aware
// one. Must run before RFC3339 serialization.
func NormalizeUTC(t time.Time) time.Time {
	return t.UTC()
}
