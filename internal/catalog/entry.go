package catalog

import (
	"fmt"
	"math"
)

// Entry identifies one catalog record by originating table, natural key, and
// optional free-text remarks.
//
// Entries are immutable value objects: two entries are equal iff table,
// identifier, and remarks are all equal. Remarks may be empty; table and
// identifier must not be.
type Entry struct {
	table      string
	identifier string
	remarks    string
}

// NewEntry constructs an Entry. Returns a DATA_INTEGRITY error if table or
// identifier is empty, since the schema guarantees both non-null.
func NewEntry(table, identifier, remarks string) (Entry, error) {
	if table == "" {
		return Entry{}, NewDataIntegrityError(table, identifier, "entry table must not be empty")
	}
	if identifier == "" {
		return Entry{}, NewDataIntegrityError(table, identifier, "entry identifier must not be empty")
	}
	return Entry{table: table, identifier: identifier, remarks: remarks}, nil
}

// Table returns the name of the relation the entry originates from.
func (e Entry) Table() string { return e.table }

// Identifier returns the entry's natural key within its table.
func (e Entry) Identifier() string { return e.identifier }

// Remarks returns the optional free-text remarks ("" when absent).
func (e Entry) Remarks() string { return e.remarks }

// Equal reports structural equality over all three identity fields.
func (e Entry) Equal(o Entry) bool {
	return e.table == o.table && e.identifier == o.identifier && e.remarks == o.remarks
}

// String implements fmt.Stringer for log output.
func (e Entry) String() string {
	return fmt.Sprintf("%s[%s]", e.table, e.identifier)
}

// SeriesEntry extends Entry with the attributes specific to an image series:
// the format reference, the nominal sampling period in days, and the
// quicklook (preview) series reference.
type SeriesEntry struct {
	Entry
	formatRef string
	period    float64
	quicklook string
}

// NewSeriesEntry constructs a SeriesEntry from an already-validated Entry.
//
// period is the nominal interval between images in days; pass NaN when
// unknown. quicklook is the identifier of the preview series; pass "" to
// default it to the series itself.
func NewSeriesEntry(entry Entry, formatRef string, period float64, quicklook string) SeriesEntry {
	if quicklook == "" {
		quicklook = entry.identifier
	}
	return SeriesEntry{Entry: entry, formatRef: formatRef, period: period, quicklook: quicklook}
}

// FormatRef returns the name of the series' image format.
func (s SeriesEntry) FormatRef() string { return s.formatRef }

// Period returns the nominal sampling interval in days (NaN when unknown).
func (s SeriesEntry) Period() float64 { return s.period }

// Quicklook returns the identifier of the preview series (the series' own
// identifier when no dedicated preview exists).
func (s SeriesEntry) Quicklook() string { return s.quicklook }

// Equal reports structural equality: Entry fields plus format reference and
// period. Two unknown periods (both NaN) compare equal so canonicalization
// collapses them to one instance.
func (s SeriesEntry) Equal(o SeriesEntry) bool {
	return s.Entry.Equal(o.Entry) && s.formatRef == o.formatRef && floatEqual(s.period, o.period)
}

// floatEqual compares two float64 with NaN == NaN semantics.
func floatEqual(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}
