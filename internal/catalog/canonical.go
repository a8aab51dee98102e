package catalog

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Domain prefixes for canonical key computation. Version suffix enables
// future algorithm migration without key collisions across types.
const (
	domainEntry           = "rastercat/entry/v1"
	domainSeries          = "rastercat/series/v1"
	domainCategory        = "rastercat/category/v1"
	domainSampleDimension = "rastercat/dimension/v1"
	domainFormat          = "rastercat/format/v1"
	domainBoundingBox     = "rastercat/bbox/v1"
)

// keyWithDomain computes a SHA-256 key with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte separator prevents
// domain/data boundary ambiguity.
func keyWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// keyBuffer accumulates canonical field bytes. Strings are NFC normalized at
// the serialization boundary and length-prefixed so field boundaries are
// unambiguous. Floats are serialized with strconv shortest-round-trip form,
// which maps NaN to a single stable token.
type keyBuffer struct {
	buf bytes.Buffer
}

func (k *keyBuffer) writeString(s string) {
	normalized := norm.NFC.String(s)
	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(len(normalized)))
	k.buf.Write(length[:])
	k.buf.WriteString(normalized)
}

func (k *keyBuffer) writeInt(v int) {
	k.writeString(strconv.Itoa(v))
}

func (k *keyBuffer) writeFloat(v float64) {
	if math.IsNaN(v) {
		k.writeString("NaN")
		return
	}
	k.writeString(strconv.FormatFloat(v, 'g', -1, 64))
}

func (k *keyBuffer) key(domain string) string {
	return keyWithDomain(domain, k.buf.Bytes())
}

// CanonicalKey returns the entry's stable content key.
func (e Entry) CanonicalKey() string {
	var k keyBuffer
	k.writeString(e.table)
	k.writeString(e.identifier)
	k.writeString(e.remarks)
	return k.key(domainEntry)
}

// CanonicalKey returns the series entry's stable content key. It covers the
// same fields as Equal: entry identity, format reference, and period.
func (s SeriesEntry) CanonicalKey() string {
	var k keyBuffer
	k.writeString(s.table)
	k.writeString(s.identifier)
	k.writeString(s.remarks)
	k.writeString(s.formatRef)
	k.writeFloat(s.period)
	return k.key(domainSeries)
}

// CanonicalKey returns the category's stable content key.
func (c *Category) CanonicalKey() string {
	var k keyBuffer
	k.writeString(c.name)
	k.writeInt(c.lower)
	k.writeInt(c.upper)
	k.writeFloat(c.scale)
	k.writeFloat(c.offset)
	return k.key(domainCategory)
}

// CanonicalKey returns the sample dimension's stable content key, covering
// the band number, unit, and every category key in order.
func (d *SampleDimension) CanonicalKey() string {
	var k keyBuffer
	k.writeInt(d.band)
	k.writeString(d.unit)
	k.writeInt(len(d.categories))
	for _, c := range d.categories {
		k.writeString(c.CanonicalKey())
	}
	return k.key(domainSampleDimension)
}

// CanonicalKey returns the format's stable content key, covering the entry
// and every sample dimension key in band order.
func (f *Format) CanonicalKey() string {
	var k keyBuffer
	k.writeString(f.entry.CanonicalKey())
	k.writeInt(len(f.bands))
	for _, d := range f.bands {
		k.writeString(d.CanonicalKey())
	}
	return k.key(domainFormat)
}

// CanonicalKey returns the bounding box's stable content key over the
// 6-tuple natural key.
func (b *BoundingBox) CanonicalKey() string {
	var k keyBuffer
	k.writeFloat(b.xmin)
	k.writeFloat(b.xmax)
	k.writeFloat(b.ymin)
	k.writeFloat(b.ymax)
	k.writeInt(b.width)
	k.writeInt(b.height)
	return k.key(domainBoundingBox)
}
