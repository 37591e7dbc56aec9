package knn

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// idsKind tags which representation of Ids64 is populated. The small
// variants (One..Vec8) avoid a bitmap allocation for the common case of a
// handful of documents sharing a distance; Bits takes over once a ninth
// distinct id would be added.
type idsKind uint8

const (
	idsEmpty idsKind = iota
	idsOne
	idsVec2
	idsVec3
	idsVec4
	idsVec5
	idsVec6
	idsVec7
	idsVec8
	idsBits
)

// Ids64 is a compact, memory-tiered set of uint64 document ids. Inserting
// past 8 members upgrades it to a roaring64.Bitmap; Remove downgrades it back
// to the 8-slot array once the bitmap's cardinality falls to exactly 8.
type Ids64 struct {
	kind idsKind
	vec  [8]uint64
	bits *roaring64.Bitmap
}

// NewIds64 returns the empty set.
func NewIds64() *Ids64 { return &Ids64{kind: idsEmpty} }

func (s *Ids64) Len() uint64 {
	switch s.kind {
	case idsEmpty:
		return 0
	case idsBits:
		return s.bits.GetCardinality()
	default:
		return uint64(s.kind) // idsOne==1 through idsVec8==8
	}
}

func (s *Ids64) Contains(d uint64) bool {
	switch s.kind {
	case idsEmpty:
		return false
	case idsBits:
		return s.bits.Contains(d)
	default:
		n := int(s.kind)
		for i := 0; i < n; i++ {
			if s.vec[i] == d {
				return true
			}
		}
		return false
	}
}

// Insert adds d, upgrading the representation if needed. It returns the
// (possibly new) set and whether d was newly added.
func (s *Ids64) Insert(d uint64) (*Ids64, bool) {
	if s.Contains(d) {
		return s, false
	}
	switch s.kind {
	case idsEmpty:
		return &Ids64{kind: idsOne, vec: [8]uint64{d}}, true
	case idsBits:
		s.bits.Add(d)
		return s, true
	default:
		n := int(s.kind)
		if n < 8 {
			next := *s
			next.kind = idsKind(n + 1)
			next.vec[n] = d
			return &next, true
		}
		b := roaring64.New()
		for i := 0; i < 8; i++ {
			b.Add(s.vec[i])
		}
		b.Add(d)
		return &Ids64{kind: idsBits, bits: b}, true
	}
}

// Remove drops d, downgrading Vec* representations and the 8-member Bits
// case back to Vec8 the way the source's Ids64::remove does.
func (s *Ids64) Remove(d uint64) (*Ids64, bool) {
	switch s.kind {
	case idsEmpty:
		return s, false
	case idsOne:
		if s.vec[0] != d {
			return s, false
		}
		return &Ids64{kind: idsEmpty}, true
	case idsBits:
		if !s.bits.CheckedRemove(d) {
			return s, false
		}
		if s.bits.GetCardinality() != 8 {
			return s, true
		}
		var next Ids64
		next.kind = idsVec8
		i := 0
		it := s.bits.Iterator()
		for it.HasNext() {
			next.vec[i] = it.Next()
			i++
		}
		return &next, true
	default:
		n := int(s.kind)
		var kept [8]uint64
		k := 0
		found := false
		for i := 0; i < n; i++ {
			if s.vec[i] == d {
				found = true
				continue
			}
			kept[k] = s.vec[i]
			k++
		}
		if !found {
			return s, false
		}
		next := &Ids64{kind: idsKind(k), vec: kept}
		return next, true
	}
}

// Iter returns the set's members: in insertion order for the array
// variants, in ascending order for the Bits variant.
func (s *Ids64) Iter() []uint64 {
	switch s.kind {
	case idsEmpty:
		return nil
	case idsBits:
		out := make([]uint64, 0, s.bits.GetCardinality())
		it := s.bits.Iterator()
		for it.HasNext() {
			out = append(out, it.Next())
		}
		return out
	default:
		n := int(s.kind)
		out := make([]uint64, n)
		copy(out, s.vec[:n])
		return out
	}
}

// AppendTo adds every member of s into to.
func (s *Ids64) AppendTo(to *roaring64.Bitmap) {
	for _, d := range s.Iter() {
		to.Add(d)
	}
}

// RemoveTo removes every member of s from to.
func (s *Ids64) RemoveTo(to *roaring64.Bitmap) {
	for _, d := range s.Iter() {
		to.Remove(d)
	}
}

// AppendFrom merges from's members into s, returning the (possibly new) set.
func (s *Ids64) AppendFrom(from *Ids64) *Ids64 {
	cur := s
	for _, d := range from.Iter() {
		cur, _ = cur.Insert(d)
	}
	return cur
}
