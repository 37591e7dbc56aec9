// Package fusion implements Reciprocal Rank Fusion and weighted Linear
// Combination over ranked result lists, grounded on spec.md §4.4 and
// original_source/crates/core/src/fnc/search.rs's `rrf`/`linear`
// operations. Both combine per-list documents keyed by an "id" field,
// merging duplicate ids by summing/combining scores and their original
// field sets, then keep only the top-limit by a FloatKey-ordered min-heap
// (idx/trees/knn's total-order float type, reused here rather than
// duplicated).
package fusion

import (
	"container/heap"
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/surrealdb/qcore/idx/trees/knn"
	"github.com/surrealdb/qcore/val"
)

// Doc is one result-list entry: its id (used to merge duplicates across
// lists) and its original field set.
type Doc struct {
	ID     string
	Fields val.Object
}

// RRF implements Reciprocal Rank Fusion: rrf_score(d) = sum_i 1/(k+rank_i
// (d)+1), merging duplicate ids by summing scores and concatenating their
// original field sets (later lists' fields win on key collision, matching
// val.Object.Append).
func RRF(lists [][]Doc, k float64, limit int) []val.Object {
	scores := map[string]float64{}
	merged := map[string]val.Object{}
	order := []string{}

	for _, list := range lists {
		for rank, d := range list {
			scores[d.ID] += 1.0 / (k + float64(rank) + 1.0)
			if obj, ok := merged[d.ID]; ok {
				obj.Append(d.Fields)
				merged[d.ID] = obj
			} else {
				obj := val.NewObject()
				obj.Append(d.Fields)
				merged[d.ID] = obj
				order = append(order, d.ID)
			}
		}
	}

	out := make([]val.Object, 0, len(order))
	for _, id := range order {
		obj := merged[id]
		obj.Set("id", val.Str(id))
		obj.Set("rrf_score", val.FloatV(scores[id]))
		out = append(out, obj)
	}
	return topLimitByField(out, "rrf_score", limit)
}

// Normalization selects how each input list's scores are independently
// rescaled before weighted combination.
type Normalization uint8

const (
	NormMinMax Normalization = iota
	NormZScore
)

// extractScore applies the score-extraction priority from spec.md §4.4:
// prefer distance (inverted via 1/(1+d)), then ft_score, then score, else
// fall back to 1/(1+rank).
func extractScore(d Doc, rank int) float64 {
	if dist, ok := d.Fields.Get("distance"); ok {
		return 1.0 / (1.0 + dist.Number.AsFloat())
	}
	if ft, ok := d.Fields.Get("ft_score"); ok {
		return ft.Number.AsFloat()
	}
	if sc, ok := d.Fields.Get("score"); ok {
		return sc.Number.AsFloat()
	}
	return 1.0 / (1.0 + float64(rank))
}

func normalize(scores []float64, kind Normalization) []float64 {
	if len(scores) == 0 {
		return scores
	}
	out := make([]float64, len(scores))
	switch kind {
	case NormZScore:
		mean := 0.0
		for _, s := range scores {
			mean += s
		}
		mean /= float64(len(scores))
		variance := 0.0
		for _, s := range scores {
			variance += (s - mean) * (s - mean)
		}
		variance /= float64(len(scores))
		stddev := math.Sqrt(variance)
		if stddev == 0 {
			return out // all zero: every score equidistant from the mean
		}
		for i, s := range scores {
			out[i] = (s - mean) / stddev
		}
	default: // NormMinMax
		min, max := scores[0], scores[0]
		for _, s := range scores {
			if s < min {
				min = s
			}
			if s > max {
				max = s
			}
		}
		if max == min {
			for i := range scores {
				out[i] = 1
			}
			return out
		}
		for i, s := range scores {
			out[i] = (s - min) / (max - min)
		}
	}
	return out
}

// Linear implements weighted Linear Combination: each list's scores are
// extracted then normalized independently, combined as
// sum_i w_i*norm(score_i(d)), with absent-from-a-list contributing 0.
// Extraction/normalization of the lists runs concurrently (one goroutine
// per input list, each writing only its own slot of normedPerList) since
// the lists are independent until the merge step below.
func Linear(lists [][]Doc, weights []float64, norm Normalization, limit int) []val.Object {
	normedPerList := make([][]float64, len(lists))
	g, _ := errgroup.WithContext(context.Background())
	for i, list := range lists {
		i, list := i, list
		g.Go(func() error {
			raw := make([]float64, len(list))
			for rank, d := range list {
				raw[rank] = extractScore(d, rank)
			}
			normedPerList[i] = normalize(raw, norm)
			return nil
		})
	}
	_ = g.Wait() // normalize never errors; Wait only joins the goroutines

	combined := map[string]float64{}
	merged := map[string]val.Object{}
	order := []string{}

	for i, list := range lists {
		normed := normedPerList[i]
		w := 1.0
		if i < len(weights) {
			w = weights[i]
		}
		for rank, d := range list {
			combined[d.ID] += w * normed[rank]
			if obj, ok := merged[d.ID]; ok {
				obj.Append(d.Fields)
				merged[d.ID] = obj
			} else {
				obj := val.NewObject()
				obj.Append(d.Fields)
				merged[d.ID] = obj
				order = append(order, d.ID)
			}
		}
	}

	out := make([]val.Object, 0, len(order))
	for _, id := range order {
		obj := merged[id]
		obj.Set("id", val.Str(id))
		obj.Set("combined_score", val.FloatV(combined[id]))
		out = append(out, obj)
	}
	return topLimitByField(out, "combined_score", limit)
}

// heapItem wraps one candidate document with its score as a knn.FloatKey,
// the total-order float type shared with the k-NN priority core.
type heapItem struct {
	obj   val.Object
	score knn.FloatKey
}

// minHeap is a container/heap min-heap ordered by score ascending, so the
// root is always the current worst of the retained top-limit set —
// exactly the "push while size < limit, else push-and-pop when the
// candidate exceeds the heap min" rule spec.md §4.4 states.
type minHeap []heapItem

func (h minHeap) Len() int            { return len(h) }
func (h minHeap) Less(i, j int) bool  { return h[i].score.Less(h[j].score) }
func (h minHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x interface{}) { *h = append(*h, x.(heapItem)) }
func (h *minHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func topLimitByField(docs []val.Object, field string, limit int) []val.Object {
	if limit <= 0 {
		limit = len(docs)
	}
	h := &minHeap{}
	heap.Init(h)
	for _, d := range docs {
		v, _ := d.Get(field)
		score := knn.FloatKey(v.Number.AsFloat())
		if h.Len() < limit {
			heap.Push(h, heapItem{obj: d, score: score})
			continue
		}
		if h.Len() > 0 && (*h)[0].score.Less(score) {
			heap.Pop(h)
			heap.Push(h, heapItem{obj: d, score: score})
		}
	}

	out := make([]val.Object, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(heapItem).obj
	}
	return out
}
