package engine

import (
	"fmt"
	"math/rand"
)

// TargetOrder assigns one target location per block. Every run of
// `locations` consecutive blocks is a fresh permutation, so each location is
// the target exactly blocks/locations times.
func TargetOrder(rng *rand.Rand, locations, blocks int) ([]int, error) {
	if locations <= 0 {
		return nil, fmt.Errorf("location count must be positive, got %d", locations)
	}
	if blocks <= 0 || blocks%locations != 0 {
		return nil, fmt.Errorf("block count %d must be a positive multiple of %d locations", blocks, locations)
	}
	order := make([]int, 0, blocks)
	for len(order) < blocks {
		order = append(order, rng.Perm(locations)...)
	}
	return order, nil
}

// ShuffleNoAdjacent repeats items `repeats` times, shuffles, then makes one
// left-to-right repair pass: a position equal to its predecessor is swapped
// with the first later position holding neither value. When no such position
// exists the duplicate is left in place.
func ShuffleNoAdjacent[T comparable](rng *rand.Rand, items []T, repeats int) []T {
	seq := make([]T, 0, len(items)*repeats)
	for r := 0; r < repeats; r++ {
		seq = append(seq, items...)
	}
	rng.Shuffle(len(seq), func(i, j int) { seq[i], seq[j] = seq[j], seq[i] })
	repairAdjacent(seq)
	return seq
}

func repairAdjacent[T comparable](seq []T) {
	for i := 1; i < len(seq); i++ {
		if seq[i] != seq[i-1] {
			continue
		}
		j := i
		for j < len(seq) && (seq[j] == seq[i] || seq[j] == seq[i-1]) {
			j++
		}
		if j < len(seq) {
			seq[i], seq[j] = seq[j], seq[i]
		}
	}
}

// AdjacentRepeats counts positions equal to their predecessor.
func AdjacentRepeats[T comparable](seq []T) int {
	n := 0
	for i := 1; i < len(seq); i++ {
		if seq[i] == seq[i-1] {
			n++
		}
	}
	return n
}

// LetterStream draws n symbols with replacement and replaces any symbol equal
// to its predecessor with a random different one.
func LetterStream(rng *rand.Rand, symbols []string, n int) []string {
	if len(symbols) == 0 || n <= 0 {
		return nil
	}
	seq := make([]string, n)
	for i := range seq {
		seq[i] = symbols[rng.Intn(len(symbols))]
	}
	if len(symbols) < 2 {
		return seq
	}
	others := make([]string, 0, len(symbols)-1)
	for i := 1; i < n; i++ {
		if seq[i] != seq[i-1] {
			continue
		}
		others = others[:0]
		for _, s := range symbols {
			if s != seq[i-1] {
				others = append(others, s)
			}
		}
		seq[i] = others[rng.Intn(len(others))]
	}
	return seq
}

// CounterbalancedBlocks builds `blocks` blocks, each holding every condition
// `reps` times in shuffled order.
func CounterbalancedBlocks(rng *rand.Rand, conds []Condition, blocks, reps int) [][]Condition {
	out := make([][]Condition, blocks)
	for b := range out {
		block := make([]Condition, 0, len(conds)*reps)
		for r := 0; r < reps; r++ {
			block = append(block, conds...)
		}
		rng.Shuffle(len(block), func(i, j int) { block[i], block[j] = block[j], block[i] })
		out[b] = block
	}
	return out
}
