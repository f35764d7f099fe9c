package pairing

// Bucket is a run of standings that share one win count.
type Bucket struct {
	Wins    int
	Entries []Standing
}

func (b Bucket) Len() int {
	return len(b.Entries)
}

func (b Bucket) IDs() []int {
	ids := make([]int, len(b.Entries))
	for i, e := range b.Entries {
		ids[i] = e.ID
	}
	return ids
}

// PartitionByWins splits ordered standings into maximal runs of equal wins.
// Input order is preserved both across and within buckets.
func PartitionByWins(standings []Standing) []Bucket {
	var buckets []Bucket
	for _, s := range standings {
		n := len(buckets)
		if n > 0 && buckets[n-1].Wins == s.Wins {
			buckets[n-1].Entries = append(buckets[n-1].Entries, s)
			continue
		}
		buckets = append(buckets, Bucket{Wins: s.Wins, Entries: []Standing{s}})
	}
	return buckets
}
