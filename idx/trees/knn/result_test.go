package knn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func oneDoc(id uint64) *Ids64 {
	s := NewIds64()
	s, _ = s.Insert(id)
	return s
}

func TestBuilderReturnsClosestKDocsInOrder(t *testing.T) {
	r := require.New(t)
	b := NewBuilder(2)

	r.True(b.CheckAdd(3.0))
	b.Add(3.0, oneDoc(1))
	r.True(b.CheckAdd(1.0))
	b.Add(1.0, oneDoc(2))
	r.True(b.CheckAdd(2.0))
	b.Add(2.0, oneDoc(3))

	res := b.Build()
	r.Len(res.Docs, 2)
	r.Equal(uint64(2), res.Docs[0].DocID)
	r.Equal(1.0, res.Docs[0].Distance)
	r.Equal(uint64(3), res.Docs[1].DocID)
	r.Equal(2.0, res.Docs[1].Distance)
}

func TestBuilderCheckAddRejectsWorseThanWorstRetained(t *testing.T) {
	r := require.New(t)
	b := NewBuilder(1)
	b.Add(1.0, oneDoc(1))
	r.False(b.CheckAdd(5.0))
	r.True(b.CheckAdd(0.5))
}

func TestBuilderMergesBucketsAtSameDistance(t *testing.T) {
	r := require.New(t)
	b := NewBuilder(5)
	b.Add(1.0, oneDoc(1))
	b.Add(1.0, oneDoc(2))

	res := b.Build()
	r.Len(res.Docs, 2)
	for _, d := range res.Docs {
		r.Equal(1.0, d.Distance)
	}
}

func TestBuilderNaNDistanceSortsLast(t *testing.T) {
	r := require.New(t)
	b := NewBuilder(3)
	b.Add(math.NaN(), oneDoc(1))
	b.Add(1.0, oneDoc(2))
	b.Add(2.0, oneDoc(3))

	res := b.Build()
	r.Len(res.Docs, 3)
	r.Equal(uint64(2), res.Docs[0].DocID)
	r.Equal(uint64(3), res.Docs[1].DocID)
	r.Equal(uint64(1), res.Docs[2].DocID)
	r.True(math.IsNaN(res.Docs[2].Distance))
}

func TestBuilderEvictsWorstBucketOnceOvershotByWholeBucket(t *testing.T) {
	r := require.New(t)
	b := NewBuilder(2)
	twoDocs := NewIds64()
	twoDocs, _ = twoDocs.Insert(10)
	twoDocs, _ = twoDocs.Insert(11)
	b.Add(1.0, oneDoc(1))
	b.Add(5.0, twoDocs) // total now 3 > knn(2); worst bucket has 2 docs, 3-2=1 < 2 -> no eviction yet
	b.Add(2.0, oneDoc(2))

	res := b.Build()
	r.Len(res.Docs, 2)
	r.Equal(uint64(1), res.Docs[0].DocID)
	r.Equal(uint64(2), res.Docs[1].DocID)
}
