package catalog

import (
	"fmt"
	"math"
	"slices"
)

// Category describes one range of sample values in an image band and its
// optional linear transfer to geophysical values.
//
// A qualitative category (land mask, clouds, missing data) has NaN scale and
// offset. A quantitative category converts a sample value s to a geophysical
// value with scale*s + offset.
type Category struct {
	name   string
	lower  int
	upper  int
	scale  float64
	offset float64
}

// NewCategory constructs a Category covering sample values [lower, upper].
// Pass NaN scale and offset for a qualitative category.
func NewCategory(name string, lower, upper int, scale, offset float64) (*Category, error) {
	if name == "" {
		return nil, NewDataIntegrityError("Categories", name, "category name must not be empty")
	}
	if lower > upper {
		return nil, NewDataIntegrityError("Categories", name,
			fmt.Sprintf("category sample range inverted: [%d, %d]", lower, upper))
	}
	return &Category{name: name, lower: lower, upper: upper, scale: scale, offset: offset}, nil
}

// Name returns the category name.
func (c *Category) Name() string { return c.name }

// Lower returns the smallest sample value in the category, inclusive.
func (c *Category) Lower() int { return c.lower }

// Upper returns the largest sample value in the category, inclusive.
func (c *Category) Upper() int { return c.upper }

// Scale returns the linear transfer scale (NaN for qualitative categories).
func (c *Category) Scale() float64 { return c.scale }

// Offset returns the linear transfer offset (NaN for qualitative categories).
func (c *Category) Offset() float64 { return c.offset }

// Quantitative reports whether the category carries a geophysical transfer.
func (c *Category) Quantitative() bool { return !math.IsNaN(c.scale) }

// Equal reports structural equality over all fields (NaN == NaN for the
// transfer coefficients).
func (c *Category) Equal(o *Category) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.name == o.name && c.lower == o.lower && c.upper == o.upper &&
		floatEqual(c.scale, o.scale) && floatEqual(c.offset, o.offset)
}

// SampleDimension describes one image band: its 1-based band number, an
// optional physical unit, and the ordered categories partitioning its sample
// values.
type SampleDimension struct {
	band       int
	unit       string
	categories []*Category
}

// NewSampleDimension constructs a SampleDimension. The categories slice is
// copied; callers may reuse it afterwards.
func NewSampleDimension(band int, unit string, categories []*Category) (*SampleDimension, error) {
	if band < 1 {
		return nil, NewDataIntegrityError("SampleDimensions", fmt.Sprintf("band %d", band),
			"band numbers start at 1")
	}
	return &SampleDimension{band: band, unit: unit, categories: slices.Clone(categories)}, nil
}

// Band returns the 1-based band number.
func (d *SampleDimension) Band() int { return d.band }

// Unit returns the physical unit symbol ("" when dimensionless or unknown).
func (d *SampleDimension) Unit() string { return d.unit }

// Categories returns a copy of the band's categories in stored order.
func (d *SampleDimension) Categories() []*Category { return slices.Clone(d.categories) }

// Equal reports structural equality: band, unit, and all categories in order.
func (d *SampleDimension) Equal(o *SampleDimension) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.band != o.band || d.unit != o.unit || len(d.categories) != len(o.categories) {
		return false
	}
	for i := range d.categories {
		if !d.categories[i].Equal(o.categories[i]) {
			return false
		}
	}
	return true
}

// Format describes an image format: its catalog entry plus the ordered sample
// dimensions, one per band.
//
// Band numbering is exactly 1..N with no gaps or duplicates. NewFormat
// enforces this; a violation is a DATA_INTEGRITY error.
type Format struct {
	entry Entry
	bands []*SampleDimension
}

// NewFormat constructs a Format from its entry and sample dimensions.
// Dimensions are sorted by band number, then validated for contiguity:
// the sorted band numbers must be exactly 1..N.
func NewFormat(entry Entry, dims []*SampleDimension) (*Format, error) {
	bands := slices.Clone(dims)
	slices.SortFunc(bands, func(a, b *SampleDimension) int { return a.band - b.band })
	for i, d := range bands {
		if d.band != i+1 {
			return nil, NewDataIntegrityError(entry.table, entry.identifier,
				fmt.Sprintf("non-contiguous band numbering: expected band %d, got %d", i+1, d.band))
		}
	}
	return &Format{entry: entry, bands: bands}, nil
}

// Entry returns the format's catalog entry.
func (f *Format) Entry() Entry { return f.entry }

// Bands returns a copy of the sample dimensions ordered by band number.
func (f *Format) Bands() []*SampleDimension { return slices.Clone(f.bands) }

// NumBands returns the number of bands.
func (f *Format) NumBands() int { return len(f.bands) }

// Equal reports structural equality: entry plus all sample dimensions.
func (f *Format) Equal(o *Format) bool {
	if f == nil || o == nil {
		return f == o
	}
	if !f.entry.Equal(o.entry) || len(f.bands) != len(o.bands) {
		return false
	}
	for i := range f.bands {
		if !f.bands[i].Equal(o.bands[i]) {
			return false
		}
	}
	return true
}
