package domain

import "fmt"

// EmptyFileError reports a GeoParquet file whose geometry column has no
// rows. A summary over zero rows is undefined, so the file is rejected.
type EmptyFileError struct {
	Path string
}

func (e *EmptyFileError) Error() string {
	return fmt.Sprintf("no geometry rows in %s", e.Path)
}
