package sampler

// AliasTable is the preprocessed form of a normalized weight set. Row i
// yields ids[i] with probability prob[i] and alias[i] otherwise.
type AliasTable struct {
	ids   []int64
	prob  []float64
	alias []int64
}

// NewAliasTable builds the table with the two-worklist construction.
// Weights are expected to be normalized already.
func NewAliasTable(options []Weighted) *AliasTable {
	n := len(options)
	t := &AliasTable{
		ids:   make([]int64, n),
		prob:  make([]float64, n),
		alias: make([]int64, n),
	}

	scaled := make([]float64, n)
	var small, large []int
	for i, o := range options {
		t.ids[i] = o.ID
		scaled[i] = o.Weight * float64(n)
		if scaled[i] >= 1 {
			large = append(large, i)
		} else {
			small = append(small, i)
		}
	}

	for len(small) > 0 && len(large) > 0 {
		s := small[0]
		small = small[1:]
		l := large[0]
		large = large[1:]

		t.prob[s] = scaled[s]
		t.alias[s] = t.ids[l]

		scaled[l] = (scaled[l] + scaled[s]) - 1
		if scaled[l] < 1 {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}

	for _, l := range large {
		t.prob[l] = 1
		t.alias[l] = t.ids[l]
	}
	// Rounding can strand entries in small; they keep their own mass.
	for _, s := range small {
		t.prob[s] = 1
		t.alias[s] = t.ids[s]
	}

	return t
}

// Len returns the number of rows.
func (t *AliasTable) Len() int {
	return len(t.ids)
}

// Sample rolls a fair die for the row, then flips that row's coin.
func (t *AliasTable) Sample(rng Rand) int64 {
	return t.coin(rng.Intn(len(t.ids))).flip(rng)
}

func (t *AliasTable) coin(row int) coin {
	return coin{
		heads: t.prob[row],
		sides: [2]int64{t.ids[row], t.alias[row]},
	}
}
