package catalog

import (
	"fmt"
	"time"
)

// BoundingBox is a spatial extent plus the pixel grid size of the images it
// describes. The natural key for deduplication in the backing store is the
// full 6-tuple (xmin, xmax, ymin, ymax, width, height).
type BoundingBox struct {
	xmin, xmax float64
	ymin, ymax float64
	width      int
	height     int
}

// NewBoundingBox constructs a BoundingBox, validating that the extent is not
// inverted and the pixel grid is positive.
func NewBoundingBox(xmin, xmax, ymin, ymax float64, width, height int) (*BoundingBox, error) {
	if xmin > xmax || ymin > ymax {
		return nil, NewDataIntegrityError("GridGeometries", "",
			fmt.Sprintf("inverted extent: x [%g, %g], y [%g, %g]", xmin, xmax, ymin, ymax))
	}
	if width <= 0 || height <= 0 {
		return nil, NewDataIntegrityError("GridGeometries", "",
			fmt.Sprintf("pixel grid must be positive: %dx%d", width, height))
	}
	return &BoundingBox{xmin: xmin, xmax: xmax, ymin: ymin, ymax: ymax, width: width, height: height}, nil
}

// XMin returns the western bound.
func (b *BoundingBox) XMin() float64 { return b.xmin }

// XMax returns the eastern bound.
func (b *BoundingBox) XMax() float64 { return b.xmax }

// YMin returns the southern bound.
func (b *BoundingBox) YMin() float64 { return b.ymin }

// YMax returns the northern bound.
func (b *BoundingBox) YMax() float64 { return b.ymax }

// Width returns the pixel grid width.
func (b *BoundingBox) Width() int { return b.width }

// Height returns the pixel grid height.
func (b *BoundingBox) Height() int { return b.height }

// Equal reports structural equality over the 6-tuple.
func (b *BoundingBox) Equal(o *BoundingBox) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.xmin == o.xmin && b.xmax == o.xmax &&
		b.ymin == o.ymin && b.ymax == o.ymax &&
		b.width == o.width && b.height == o.height
}

// String implements fmt.Stringer for log output.
func (b *BoundingBox) String() string {
	return fmt.Sprintf("[%g, %g] x [%g, %g] (%dx%d px)",
		b.xmin, b.xmax, b.ymin, b.ymax, b.width, b.height)
}

// Rect is a plain spatial rectangle without a pixel grid, used for aggregate
// extents.
type Rect struct {
	XMin, XMax float64
	YMin, YMax float64
}

// TimeRange is a closed temporal interval.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Extent is the overall spatial rectangle and time range covered by a set of
// catalog records.
type Extent struct {
	Rect Rect
	Time TimeRange
}
