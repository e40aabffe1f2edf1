// Copyright The OpenTelemetry Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//       http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package schema

import (
	"encoding/binary"
	"math"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/axiomhq/hyperloglog"
)

// Cardinality classifies how many distinct values a field carries,
// relative to the two supported dictionary key widths. The thresholds
// below are deliberately one less than the key width's natural domain
// (255 rather than 256, 65535 rather than 65536): a dictionary-encoded
// column needs one reserved code outside the observed value range for
// the coalescer's running-union bookkeeping (see DESIGN.md).
type Cardinality int

const (
	WithinU8 Cardinality = iota
	WithinU16
	GreaterThanU16
)

const (
	MaxU8Cardinality  = 255
	MaxU16Cardinality = 65535
)

func (c Cardinality) String() string {
	switch c {
	case WithinU8:
		return "WithinU8"
	case WithinU16:
		return "WithinU16"
	case GreaterThanU16:
		return "GreaterThanU16"
	default:
		return "unknown"
	}
}

// exactBitsetMaxWidth is the largest native byte width for which a
// direct bitset over the value's entire domain is cheap (2^16 bits).
// Wider fixed-width natives, and all variable-width types, fall back
// to hash sampling via HyperLogLog.
const exactBitsetMaxWidth = 2

// EstimateCardinality walks info.Values (every batch's logical value
// array for this field, dictionary already unwrapped) and classifies
// the field's distinct-value count against the u8/u16 key-width
// boundaries.
//
// Small fixed-width domains (u8, u16, and their signed/bool
// equivalents) are counted exactly with a bitset, since the entire
// domain is at most 65536 values. Everything else — 4- and 8-byte
// natives, fixed-size binary, and variable-width string/binary columns
// such as attribute keys and string values — is sampled with a
// HyperLogLog sketch, which bounds memory regardless of the number of
// distinct values observed.
func EstimateCardinality(info *FieldInfo) Cardinality {
	if info.TotalValueCount == 0 {
		return WithinU8
	}

	width := NativeWidth(info.ValueType)
	if width > 0 && width <= exactBitsetMaxWidth {
		count := exactCardinality(info.Values, width)
		return classify(count)
	}

	sketch := hyperloglog.New()
	for _, arr := range info.Values {
		appendHashes(sketch, arr)
	}
	return classify(sketch.Estimate())
}

func classify(count uint64) Cardinality {
	switch {
	case count <= MaxU8Cardinality:
		return WithinU8
	case count <= MaxU16Cardinality:
		return WithinU16
	default:
		return GreaterThanU16
	}
}

// exactCardinality counts distinct raw keys across arrays using a
// bitset sized to the native domain (256 or 65536 values).
func exactCardinality(arrays []arrow.Array, width int) uint64 {
	domain := 1 << (width * 8)
	seen := newBitset(domain)
	for _, arr := range arrays {
		for i := 0; i < arr.Len(); i++ {
			if arr.IsNull(i) {
				continue
			}
			key, ok := nativeKey(arr, i)
			if !ok {
				continue
			}
			seen.set(key)
		}
	}
	return uint64(seen.count())
}

// nativeKey extracts a small integer domain key from a fixed-width
// native array at row i.
func nativeKey(arr arrow.Array, i int) (int, bool) {
	switch a := arr.(type) {
	case *array.Uint8:
		return int(a.Value(i)), true
	case *array.Int8:
		return int(uint8(a.Value(i))), true
	case *array.Uint16:
		return int(a.Value(i)), true
	case *array.Int16:
		return int(uint16(a.Value(i))), true
	case *array.Boolean:
		if a.Value(i) {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// appendHashes feeds every non-null value of arr into sketch: 32-bit
// values as a 4-byte key, 64-bit values as an 8-byte key, and
// string/binary values as their raw bytes.
func appendHashes(sketch *hyperloglog.Sketch, arr arrow.Array) {
	switch a := arr.(type) {
	case *array.Int32:
		for i := 0; i < a.Len(); i++ {
			if a.IsNull(i) {
				continue
			}
			sketch.Insert(le32(uint32(a.Value(i))))
		}
	case *array.Uint32:
		for i := 0; i < a.Len(); i++ {
			if a.IsNull(i) {
				continue
			}
			sketch.Insert(le32(a.Value(i)))
		}
	case *array.Float32:
		for i := 0; i < a.Len(); i++ {
			if a.IsNull(i) {
				continue
			}
			sketch.Insert(le32(math.Float32bits(a.Value(i))))
		}
	case *array.Int64:
		for i := 0; i < a.Len(); i++ {
			if a.IsNull(i) {
				continue
			}
			sketch.Insert(le64(uint64(a.Value(i))))
		}
	case *array.Uint64:
		for i := 0; i < a.Len(); i++ {
			if a.IsNull(i) {
				continue
			}
			sketch.Insert(le64(a.Value(i)))
		}
	case *array.Float64:
		for i := 0; i < a.Len(); i++ {
			if a.IsNull(i) {
				continue
			}
			sketch.Insert(le64(math.Float64bits(a.Value(i))))
		}
	case *array.String:
		for i := 0; i < a.Len(); i++ {
			if a.IsNull(i) {
				continue
			}
			sketch.Insert([]byte(a.Value(i)))
		}
	case *array.Binary:
		for i := 0; i < a.Len(); i++ {
			if a.IsNull(i) {
				continue
			}
			sketch.Insert(a.Value(i))
		}
	case *array.FixedSizeBinary:
		for i := 0; i < a.Len(); i++ {
			if a.IsNull(i) {
				continue
			}
			sketch.Insert(a.Value(i))
		}
	}
}

func le32(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

func le64(v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b[:]
}

// bitset is a fixed-domain membership set used for exact small-domain
// cardinality counting.
type bitset struct {
	bits []uint64
	n    int
}

func newBitset(domain int) *bitset {
	return &bitset{bits: make([]uint64, (domain+63)/64)}
}

func (b *bitset) set(key int) {
	word, bit := key/64, uint(key%64)
	mask := uint64(1) << bit
	if b.bits[word]&mask == 0 {
		b.bits[word] |= mask
		b.n++
	}
}

func (b *bitset) count() int {
	return b.n
}
