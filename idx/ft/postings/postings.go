// Package postings implements the posting store: PostingList(term) as a
// mapping doc_id -> (term_frequency, doc_length) persisted through a
// kv.RwTx/kv.Tx under a term-prefixed key space, plus the document-count
// and average-document-length counters the BM25 scorer needs. Grounded on
// spec.md §4.2 and fenghaojiang-erigon-lib/kv/kv_interface.go's range-scan
// idioms (Prefix/ForPrefix) for the query-time lookup path.
package postings

import (
	"context"
	"encoding/binary"

	"github.com/surrealdb/qcore/kv"
)

// Posting is one (doc_id, term_frequency, doc_length) entry for a term.
type Posting struct {
	DocID uint64
	TF    uint32
	DL    uint32
}

// keyPrefix builds the {index}/{term}/ prefix postings for one term live
// under, matching spec.md §6's "Persisted KV key layout" shape.
func keyPrefix(indexID, term string) []byte {
	return []byte("ft/" + indexID + "/p/" + term + "/")
}

func postingKey(indexID, term string, docID uint64) []byte {
	k := keyPrefix(indexID, term)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], docID)
	return append(k, buf[:]...)
}

func docCountKey(indexID string) []byte   { return []byte("ft/" + indexID + "/docs") }
func totalLenKey(indexID string) []byte   { return []byte("ft/" + indexID + "/totallen") }
func docLengthKey(indexID string, docID uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], docID)
	return append([]byte("ft/"+indexID+"/dl/"), buf[:]...)
}

func fieldTextKey(indexID string, docID uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], docID)
	return append([]byte("ft/"+indexID+"/text/"), buf[:]...)
}

func encodeU64(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[:]
}

func decodeU64(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func encodePosting(tf, dl uint32) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint32(buf[0:4], tf)
	binary.BigEndian.PutUint32(buf[4:8], dl)
	return buf[:]
}

func decodePosting(b []byte) (tf, dl uint32) {
	if len(b) != 8 {
		return 0, 0
	}
	return binary.BigEndian.Uint32(b[0:4]), binary.BigEndian.Uint32(b[4:8])
}

// nextPrefix returns the exclusive upper bound of a prefix scan over p.
func nextPrefix(p []byte) []byte {
	out := append([]byte(nil), p...)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] != 0xff {
			out[i]++
			return out[:i+1]
		}
	}
	return nil
}

// Ingest records that docID contains term tf times, out of a document of
// length dl tokens total. Overwriting an existing posting for the same
// (indexID, term, docID) is allowed (re-indexing after an UPDATE).
func Ingest(tx kv.RwTx, indexID, term string, docID uint64, tf, dl uint32) error {
	if err := tx.Set(postingKey(indexID, term, docID), encodePosting(tf, dl)); err != nil {
		return err
	}

	prevRaw, existed, err := tx.Get(docLengthKey(indexID, docID))
	if err != nil {
		return err
	}
	if err := tx.Set(docLengthKey(indexID, docID), encodeU64(uint64(dl))); err != nil {
		return err
	}

	totalRaw, _, err := tx.Get(totalLenKey(indexID))
	if err != nil {
		return err
	}
	total := decodeU64(totalRaw)
	if existed {
		total -= decodeU64(prevRaw)
	}
	total += uint64(dl)
	if err := tx.Set(totalLenKey(indexID), encodeU64(total)); err != nil {
		return err
	}

	if !existed {
		countRaw, _, err := tx.Get(docCountKey(indexID))
		if err != nil {
			return err
		}
		if err := tx.Set(docCountKey(indexID), encodeU64(decodeU64(countRaw)+1)); err != nil {
			return err
		}
	}
	return nil
}

// StoreFieldText persists the raw (pre-analysis) field text for docID
// under indexID, for indexes defined with HIGHLIGHTS: search::highlight
// and search::offsets re-analyze this stored text rather than the
// posting lists, since the posting store only keeps term->(tf, dl), not
// the original field content. Callers only need to call this for indexes
// that actually declared HIGHLIGHTS; Ingest itself doesn't require it.
func StoreFieldText(tx kv.RwTx, indexID string, docID uint64, text string) error {
	return tx.Set(fieldTextKey(indexID, docID), []byte(text))
}

// GetFieldText retrieves the stored field text for docID, ok == false if
// none was stored (HIGHLIGHTS not enabled on this index, or the document
// was never indexed).
func GetFieldText(tx kv.Tx, indexID string, docID uint64) (string, bool, error) {
	v, ok, err := tx.Get(fieldTextKey(indexID, docID))
	if err != nil || !ok {
		return "", ok, err
	}
	return string(v), true, nil
}

// Lookup range-scans (index_id, term, *) and streams the postings for
// term, in ascending doc-id order.
func Lookup(ctx context.Context, tx kv.Tx, indexID, term string) ([]Posting, error) {
	prefix := keyPrefix(indexID, term)
	kvs, err := tx.Scan(ctx, kv.KeyRange{Start: prefix, End: nextPrefix(prefix)}, 0)
	if err != nil {
		return nil, err
	}
	out := make([]Posting, 0, len(kvs))
	for _, rec := range kvs {
		if len(rec.Key) < len(prefix)+8 {
			continue
		}
		docID := binary.BigEndian.Uint64(rec.Key[len(prefix):])
		tf, dl := decodePosting(rec.Value)
		out = append(out, Posting{DocID: docID, TF: tf, DL: dl})
	}
	return out, nil
}

// Stats reports the document count and average document length for an
// index, the two aggregate inputs the BM25 formula needs beyond the
// per-posting (tf, dl).
type Stats struct {
	DocCount uint64
	AvgDL    float64
}

func GetStats(tx kv.Tx, indexID string) (Stats, error) {
	countRaw, _, err := tx.Get(docCountKey(indexID))
	if err != nil {
		return Stats{}, err
	}
	totalRaw, _, err := tx.Get(totalLenKey(indexID))
	if err != nil {
		return Stats{}, err
	}
	count := decodeU64(countRaw)
	if count == 0 {
		return Stats{}, nil
	}
	return Stats{DocCount: count, AvgDL: float64(decodeU64(totalRaw)) / float64(count)}, nil
}
