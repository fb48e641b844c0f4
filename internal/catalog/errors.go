package catalog

import "fmt"

// EmptyCatalogError reports an assets tree with no GeoParquet files. A
// catalog with zero items is not a valid deliverable.
type EmptyCatalogError struct {
	AssetsDir string
}

func (e *EmptyCatalogError) Error() string {
	return fmt.Sprintf("no parquet files found under %s", e.AssetsDir)
}

// ItemValidationError wraps a schema violation detected right after an item
// was constructed.
type ItemValidationError struct {
	ItemID string
	Err    error
}

func (e *ItemValidationError) Error() string {
	return fmt.Sprintf("validation failed for catalog item %q: %v", e.ItemID, e.Err)
}

func (e *ItemValidationError) Unwrap() error { return e.Err }

// CollectionValidationError wraps a schema violation detected by the
// post-save validation pass.
type CollectionValidationError struct {
	CollectionID string
	Err          error
}

func (e *CollectionValidationError) Error() string {
	return fmt.Sprintf("validation failed after saving catalog %q: %v", e.CollectionID, e.Err)
}

func (e *CollectionValidationError) Unwrap() error { return e.Err }
