package knn

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/google/btree"
)

// DocDistance pairs a document id with the distance it was found at.
type DocDistance struct {
	DocID    uint64
	Distance float64
}

// Result is the sorted, size-bounded output of a Builder.
type Result struct {
	Docs []DocDistance
}

// Builder accumulates (distance, docs) candidates and, once built, yields
// the knn closest documents ordered by ascending distance. It mirrors
// KnnResultBuilder: a running bitmap of every doc currently held plus a
// priority list keyed by distance, with eviction of the worst bucket once
// the held set overshoots knn by a whole bucket.
type Builder struct {
	knn          uint64
	docs         *roaring64.Bitmap
	priorityList *btree.BTreeG[floatKeyEntry]
}

// NewBuilder returns a builder that will retain at most knn documents.
func NewBuilder(knnLimit uint) *Builder {
	return &Builder{
		knn:          uint64(knnLimit),
		docs:         roaring64.New(),
		priorityList: newFloatKeyTree(),
	}
}

// CheckAdd reports whether a candidate at the given distance is still worth
// adding: always true while under the limit, otherwise only if dist does
// not exceed the current worst retained distance.
func (b *Builder) CheckAdd(dist float64) bool {
	if b.docs.GetCardinality() < b.knn {
		return true
	}
	worst, ok := b.priorityList.Max()
	if !ok {
		return true
	}
	return dist <= float64(worst.key)
}

// Add records docs as being at distance dist, merging into any existing
// bucket at that exact distance, then evicts the worst bucket if the held
// set has overshot the limit by a whole bucket's worth of documents.
func (b *Builder) Add(dist float64, docs *Ids64) {
	key := FloatKey(dist)
	docs.AppendTo(b.docs)

	if existing, ok := b.priorityList.Get(floatKeyEntry{key: key}); ok {
		merged := existing.docs.AppendFrom(docs)
		b.priorityList.ReplaceOrInsert(floatKeyEntry{key: key, docs: merged})
	} else {
		b.priorityList.ReplaceOrInsert(floatKeyEntry{key: key, docs: docs})
	}

	total := b.docs.GetCardinality()
	if total <= b.knn {
		return
	}
	worst, ok := b.priorityList.Max()
	if !ok {
		return
	}
	if total-worst.docs.Len() >= b.knn {
		b.priorityList.DeleteMax()
		worst.docs.RemoveTo(b.docs)
	}
}

// Build drains the priority list in ascending-distance order, taking at most
// knn documents total (truncating the last bucket if it would overflow),
// and returns them as a Result.
func (b *Builder) Build() Result {
	out := make([]DocDistance, 0, b.knn)
	left := b.knn
	b.priorityList.Ascend(func(e floatKeyEntry) bool {
		ids := e.docs.Iter()
		if uint64(len(ids)) > left {
			ids = ids[:left]
		}
		for _, id := range ids {
			out = append(out, DocDistance{DocID: id, Distance: float64(e.key)})
		}
		left -= uint64(len(ids))
		return left > 0
	})
	return Result{Docs: out}
}
