package fusion

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/surrealdb/qcore/val"
)

func scoredDoc(id string, score float64) Doc {
	obj := val.NewObject()
	obj.Set("score", val.FloatV(score))
	return Doc{ID: id, Fields: obj}
}

// TestRRFRanksDocumentsAppearingInBothListsFirst is end-to-end scenario S5:
// two lists sharing "b" should rank it first under RRF.
func TestRRFRanksDocumentsAppearingInBothListsFirst(t *testing.T) {
	r := require.New(t)
	listA := []Doc{scoredDoc("a", 1), scoredDoc("b", 2)}
	listB := []Doc{scoredDoc("b", 9), scoredDoc("c", 8)}

	out := RRF([][]Doc{listA, listB}, 60, 3)
	r.Len(out, 3)

	id0, _ := out[0].Get("id")
	r.Equal("b", id0.Str)

	ids := map[string]bool{}
	for _, d := range out {
		idv, _ := d.Get("id")
		ids[idv.Str] = true
	}
	r.True(ids["a"])
	r.True(ids["c"])
}

func TestRRFMergesFieldsOfDuplicateIDs(t *testing.T) {
	r := require.New(t)
	docA := scoredDoc("x", 1)
	docA.Fields.Set("title", val.Str("from-a"))
	docB := scoredDoc("x", 1)
	docB.Fields.Set("extra", val.Str("from-b"))

	out := RRF([][]Doc{{docA}, {docB}}, 60, 10)
	r.Len(out, 1)
	title, ok := out[0].Get("title")
	r.True(ok)
	r.Equal("from-a", title.Str)
	extra, ok := out[0].Get("extra")
	r.True(ok)
	r.Equal("from-b", extra.Str)
}

func TestLinearPrefersDistanceThenFtScoreThenScore(t *testing.T) {
	r := require.New(t)
	distDoc := val.NewObject()
	distDoc.Set("distance", val.FloatV(1))
	r.Equal(0.5, extractScore(Doc{ID: "d", Fields: distDoc}, 0))

	ftDoc := val.NewObject()
	ftDoc.Set("ft_score", val.FloatV(3))
	r.Equal(3.0, extractScore(Doc{ID: "f", Fields: ftDoc}, 0))

	rankOnly := val.NewObject()
	r.Equal(1.0, extractScore(Doc{ID: "r", Fields: rankOnly}, 0))
	r.Equal(0.5, extractScore(Doc{ID: "r", Fields: rankOnly}, 1))
}

func TestLinearReturnsTopLimitDescending(t *testing.T) {
	r := require.New(t)
	list := []Doc{scoredDoc("a", 1), scoredDoc("b", 5), scoredDoc("c", 3)}
	out := Linear([][]Doc{list}, []float64{1}, NormMinMax, 2)
	r.Len(out, 2)
	top, _ := out[0].Get("id")
	r.Equal("b", top.Str)
}

func TestTopLimitByFieldHandlesFewerDocsThanLimit(t *testing.T) {
	r := require.New(t)
	docs := []val.Object{}
	for _, id := range []string{"a", "b"} {
		o := val.NewObject()
		o.Set("s", val.FloatV(1))
		o.Set("id", val.Str(id))
		docs = append(docs, o)
	}
	out := topLimitByField(docs, "s", 10)
	r.Len(out, 2)
}
