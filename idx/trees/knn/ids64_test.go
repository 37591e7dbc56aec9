package knn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIds64InsertUpgradesThroughVariants(t *testing.T) {
	r := require.New(t)
	s := NewIds64()

	for i := uint64(1); i <= 8; i++ {
		next, added := s.Insert(i)
		r.True(added)
		s = next
		r.Equal(i, s.Len())
	}
	r.Equal(idsVec8, s.kind)

	s, added := s.Insert(9)
	r.True(added)
	r.Equal(idsBits, s.kind)
	r.Equal(uint64(9), s.Len())

	for i := uint64(1); i <= 9; i++ {
		r.True(s.Contains(i))
	}
	r.False(s.Contains(10))
}

func TestIds64InsertDuplicateIsNoop(t *testing.T) {
	r := require.New(t)
	s := NewIds64()
	s, _ = s.Insert(5)
	next, added := s.Insert(5)
	r.False(added)
	r.Equal(s, next)
	r.Equal(uint64(1), s.Len())
}

func TestIds64RemoveDowngradesBitsToVec8(t *testing.T) {
	r := require.New(t)
	s := NewIds64()
	for i := uint64(1); i <= 9; i++ {
		s, _ = s.Insert(i)
	}
	r.Equal(idsBits, s.kind)

	s, removed := s.Remove(9)
	r.True(removed)
	r.Equal(idsVec8, s.kind)
	r.Equal(uint64(8), s.Len())
	for i := uint64(1); i <= 8; i++ {
		r.True(s.Contains(i))
	}
}

func TestIds64RemoveShrinksVecVariants(t *testing.T) {
	r := require.New(t)
	s := NewIds64()
	s, _ = s.Insert(1)
	s, _ = s.Insert(2)
	s, _ = s.Insert(3)
	r.Equal(idsVec3, s.kind)

	s, removed := s.Remove(2)
	r.True(removed)
	r.Equal(idsVec2, s.kind)
	r.True(s.Contains(1))
	r.True(s.Contains(3))
	r.False(s.Contains(2))
}

func TestIds64RemoveMissingIsNoop(t *testing.T) {
	r := require.New(t)
	s := NewIds64()
	s, _ = s.Insert(1)
	next, removed := s.Remove(99)
	r.False(removed)
	r.Equal(s, next)
}

func TestIds64AppendFromMergesDistinctMembers(t *testing.T) {
	r := require.New(t)
	a := NewIds64()
	a, _ = a.Insert(1)
	a, _ = a.Insert(2)

	b := NewIds64()
	b, _ = b.Insert(2)
	b, _ = b.Insert(3)

	merged := a.AppendFrom(b)
	r.Equal(uint64(3), merged.Len())
	r.ElementsMatch([]uint64{1, 2, 3}, merged.Iter())
}
