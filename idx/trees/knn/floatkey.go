// Package knn implements the k-nearest-neighbour priority core: a
// total-ordered float key, a memory-tiered document-id set (Ids64), and a
// bounded result builder that tracks the k closest document groups seen so
// far. Grounded on original_source/core/src/idx/trees/knn.rs, translated
// from its BTreeMap<FloatKey, Ids64>-based builder into the btree.BTreeG
// generic tree used elsewhere in this module for ordered in-memory
// structures.
package knn

import (
	"github.com/google/btree"

	"github.com/surrealdb/qcore/val"
)

// FloatKey orders float64 distances totally (see val.FloatTotalCompare):
// every NaN compares equal to every other NaN and sorts after all non-NaN
// values. It is the map/priority-queue key used by Builder and the fusion
// package's top-limit heap.
type FloatKey float64

// Less implements the strict weak ordering required by btree.BTreeG.
func (k FloatKey) Less(o FloatKey) bool {
	return val.FloatTotalCompare(float64(k), float64(o)) < 0
}

func lessFloatKey(a, b FloatKey) bool { return a.Less(b) }

// newFloatKeyTree returns an empty ordered tree keyed by FloatKey, with
// btree degree 32 (the degree memkv also uses for its btree).
func newFloatKeyTree() *btree.BTreeG[floatKeyEntry] {
	return btree.NewG(32, func(a, b floatKeyEntry) bool {
		return lessFloatKey(a.key, b.key)
	})
}

type floatKeyEntry struct {
	key  FloatKey
	docs *Ids64
}
