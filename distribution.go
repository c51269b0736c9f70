package docengine

// DistributionReadResponse is the response to SampleDistribution: an
// ordered mapping of each bucket's starting key to the approximate
// number of rows in that bucket, the same bucket size for every key
// (spec §4.6, §6).
type DistributionReadResponse struct {
	KeyCounts []KeyCount
}

// KeyCount is one bucket boundary and its approximate size.
type KeyCount struct {
	Key   []byte
	Count int64
}

// SampleDistribution derives an approximate key-count histogram over
// [left, ...) from up to maxDepth candidate split keys, bucketing at
// max(total_keys/len(splits), 1) per spec §4.6 and the original
// rdb_distribution_get bucket formula: key_splits.size(), the count of
// split keys the traversal actually discovered, not a caller-supplied
// parameter (original_source/src/rdb_protocol/btree.cc:538-543).
func (t *Table) SampleDistribution(left []byte, maxDepth int) DistributionReadResponse {
	snap := t.tree.ReadSnapshot()
	splits := snap.SplitKeys(left, maxDepth)
	total := int64(snap.TotalKeys())

	bucket := total
	if len(splits) > 0 {
		if b := total / int64(len(splits)); b > 1 {
			bucket = b
		} else {
			bucket = 1
		}
	}

	resp := DistributionReadResponse{KeyCounts: make([]KeyCount, 0, len(splits)+1)}
	resp.KeyCounts = append(resp.KeyCounts, KeyCount{Key: left, Count: bucket})
	for _, k := range splits {
		resp.KeyCounts = append(resp.KeyCounts, KeyCount{Key: k, Count: bucket})
	}
	return resp
}
