package parquet

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hf-eolus/sar-catalog/internal/domain"
)

// timestampUTC is the storage type of the measurement time columns.
var timestampUTC = &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}

// Schema returns the Arrow schema matching the OWI column contract, in
// contract order.
func Schema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "rowid", Type: arrow.PrimitiveTypes.Int64},
		{Name: domain.FirstTimeColumn, Type: timestampUTC},
		{Name: domain.LastTimeColumn, Type: timestampUTC},
		{Name: "owiLon", Type: arrow.PrimitiveTypes.Float64},
		{Name: "owiLat", Type: arrow.PrimitiveTypes.Float64},
		{Name: "owiWindSpeed", Type: arrow.PrimitiveTypes.Float64},
		{Name: "owiWindDirection", Type: arrow.PrimitiveTypes.Float64},
		{Name: "owiMask", Type: arrow.PrimitiveTypes.Float64},
		{Name: "owiInversionQuality", Type: arrow.PrimitiveTypes.Float64},
		{Name: "owiHeading", Type: arrow.PrimitiveTypes.Float64},
		{Name: "owiWindQuality", Type: arrow.PrimitiveTypes.Float64},
		{Name: "owiRadVel", Type: arrow.PrimitiveTypes.Float64},
		{Name: "date", Type: arrow.FixedWidthTypes.Date32},
		{Name: domain.GeometryColumn, Type: arrow.BinaryTypes.Binary},
	}, nil)
}

// NewRecord builds an Arrow record from observation rows. The caller owns
// the returned record and must Release it.
func NewRecord(mem memory.Allocator, obs []domain.Observation) arrow.Record {
	b := array.NewRecordBuilder(mem, Schema())
	defer b.Release()

	for _, o := range obs {
		b.Field(0).(*array.Int64Builder).Append(o.RowID)
		b.Field(1).(*array.TimestampBuilder).Append(arrow.Timestamp(o.FirstMeasurementTime.UTC().UnixMicro()))
		b.Field(2).(*array.TimestampBuilder).Append(arrow.Timestamp(o.LastMeasurementTime.UTC().UnixMicro()))
		b.Field(3).(*array.Float64Builder).Append(o.Lon)
		b.Field(4).(*array.Float64Builder).Append(o.Lat)
		b.Field(5).(*array.Float64Builder).Append(o.WindSpeed)
		b.Field(6).(*array.Float64Builder).Append(o.WindDirection)
		b.Field(7).(*array.Float64Builder).Append(o.Mask)
		b.Field(8).(*array.Float64Builder).Append(o.InversionQuality)
		b.Field(9).(*array.Float64Builder).Append(o.Heading)
		b.Field(10).(*array.Float64Builder).Append(o.WindQuality)
		b.Field(11).(*array.Float64Builder).Append(o.RadVel)
		b.Field(12).(*array.Date32Builder).Append(arrow.Date32FromTime(o.Date.UTC()))
		b.Field(13).(*array.BinaryBuilder).Append(o.Geometry)
	}

	return b.NewRecord()
}
