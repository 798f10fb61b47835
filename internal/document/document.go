package document

import (
	"fmt"
	"image"
	"io"
)

// Document is an ordered collection of pages. Pages are addressed only by
// their current 0-based position.
//
// Implementations are not safe for concurrent mutation. Readers such as
// Rasterize and Save may run on a background goroutine provided no mutation
// is in flight.
type Document interface {
	PageCount() int
	// Rotation returns the page rotation in degrees, one of 0, 90, 180, 270.
	Rotation(index int) (int, error)
	// PageSize returns the unrotated media box size in points.
	PageSize(index int) (width, height float64, err error)
	// Rotate adds delta degrees to the page rotation. delta must be a multiple of 90.
	Rotate(index, delta int) error
	// InsertDocument copies every page of src so that the first copied page
	// lands at position at. It returns the number of pages inserted.
	InsertDocument(src Document, at int) (int, error)
	// InsertImagePage creates one page holding img at position at. A nil
	// paper sizes the page to the image's pixel dimensions.
	InsertImagePage(img image.Image, at int, paper *Paper) error
	// DeletePages removes the inclusive range start..end.
	DeletePages(start, end int) error
	// Extract returns a new document holding copies of pages start..end.
	Extract(start, end int) (Document, error)
	Rasterize(index int, dpi float64) (image.Image, error)
	Save(w io.Writer, opts SaveOptions) error
	Close() error
}

// SaveOptions controls serialization.
type SaveOptions struct {
	// Cleanup drops unreferenced objects and compacts content streams.
	Cleanup bool
	// Compress writes object and xref streams flate encoded.
	Compress bool
}

// ExportOptions are the options used for every export.
var ExportOptions = SaveOptions{Cleanup: true, Compress: true}

// CheckIndex validates 0 <= index < count.
func CheckIndex(op string, index, count int) error {
	if index < 0 || index >= count {
		return RangeError(op, fmt.Errorf("page index %d out of range [0,%d)", index, count))
	}
	return nil
}

// CheckSpan validates 0 <= start <= end < count.
func CheckSpan(op string, start, end, count int) error {
	if start < 0 || end >= count || start > end {
		return RangeError(op, fmt.Errorf("page range %d..%d out of range [0,%d)", start, end, count))
	}
	return nil
}

// CheckInsert validates 0 <= at <= count.
func CheckInsert(op string, at, count int) error {
	if at < 0 || at > count {
		return RangeError(op, fmt.Errorf("insert position %d out of range [0,%d]", at, count))
	}
	return nil
}

// NormalizeRotation maps any multiple of 90 into 0..270.
func NormalizeRotation(degrees int) int {
	return ((degrees % 360) + 360) % 360
}
