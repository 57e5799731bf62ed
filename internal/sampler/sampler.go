// Package sampler picks weighted random options using the alias method.
//
// Randomness is always supplied by the caller through Rand, so a seeded
// *rand.Rand gives reproducible picks in tests.
package sampler

import (
	"errors"
	"math"
	"sort"
)

// Rand is the subset of *math/rand.Rand the sampler draws from.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// Weighted is one option in a weighted pick.
type Weighted struct {
	ID     int64
	Weight float64
}

var (
	ErrEmpty          = errors.New("sampler: no options to pick from")
	ErrNoWeight       = errors.New("sampler: weights sum to zero")
	ErrNegativeWeight = errors.New("sampler: negative weight")
)

// sumTolerance decides when a set of weights already sums to 1.
const sumTolerance = 1e-9

// Pick returns the ID of one option, chosen with probability proportional
// to its weight. A single option is returned as-is, whatever its weight.
//
// Two options are decided with one biased coin flip. Larger sets build an
// alias table, roll a fair die to choose a row, then flip that row's coin.
func Pick(rng Rand, options []Weighted) (int64, error) {
	switch len(options) {
	case 0:
		return 0, ErrEmpty
	case 1:
		return options[0].ID, nil
	}

	normalized, err := Normalize(options)
	if err != nil {
		return 0, err
	}

	var c coin
	if len(normalized) == 2 {
		c = coin{
			heads: normalized[0].Weight,
			sides: [2]int64{normalized[0].ID, normalized[1].ID},
		}
	} else {
		c = NewAliasTable(normalized).coin(rng.Intn(len(normalized)))
	}
	return c.flip(rng), nil
}

// Normalize returns a copy of options whose weights sum to 1.
//
// Weights that already sum to 1 are returned unchanged. Otherwise each
// weight is scaled, truncated to whole hundredths, and the lost hundredths
// are handed back one at a time to the entries with the largest truncation
// remainders. Equal remainders keep their input order.
func Normalize(options []Weighted) ([]Weighted, error) {
	if len(options) == 0 {
		return nil, ErrEmpty
	}

	out := make([]Weighted, len(options))
	copy(out, options)

	var total float64
	for _, o := range out {
		if o.Weight < 0 {
			return nil, ErrNegativeWeight
		}
		total += o.Weight
	}
	if total <= 0 {
		return nil, ErrNoWeight
	}
	if math.Abs(total-1) <= sumTolerance {
		return out, nil
	}

	type remainder struct {
		pos   int
		value float64
	}

	cents := make([]int, len(out))
	remainders := make([]remainder, len(out))
	sum := 0
	for i := range out {
		scaled := out[i].Weight / total
		c := int(math.Floor(scaled*100 + sumTolerance))
		cents[i] = c
		sum += c
		remainders[i] = remainder{pos: i, value: scaled - float64(c)/100}
	}

	sort.SliceStable(remainders, func(a, b int) bool {
		return remainders[a].value > remainders[b].value
	})
	for i := 0; sum < 100; i++ {
		cents[remainders[i%len(remainders)].pos]++
		sum++
	}

	for i := range out {
		out[i].Weight = float64(cents[i]) / 100
	}
	return out, nil
}

// coin is a biased two-sided coin: sides[0] comes up with probability heads.
type coin struct {
	heads float64
	sides [2]int64
}

func (c coin) flip(rng Rand) int64 {
	if rng.Float64() < c.heads {
		return c.sides[0]
	}
	return c.sides[1]
}
