// Package infer turns sample JSON documents into DCR column schemas. It
// samples a bounded number of array elements, classifies every field
// occurrence with the type detector, and resolves conflicting observations by
// majority vote.
package infer

import (
	"sort"

	"github.com/google/uuid"
	"github.com/valyala/fastjson"

	"github.com/azstreams/dcrbuilder/dcr"
)

// MaxSamples caps how many array elements contribute to inference. Sampling
// is not exhaustive; it exists to bound cost on huge arrays while still
// catching type variance.
const MaxSamples = 10

// fieldTally counts type observations for one field. order remembers which
// type was seen first so ties resolve deterministically.
type fieldTally struct {
	counts map[dcr.ColumnType]int
	order  []dcr.ColumnType
}

func (ft *fieldTally) observe(t dcr.ColumnType) {
	if _, seen := ft.counts[t]; !seen {
		ft.order = append(ft.order, t)
	}
	ft.counts[t]++
}

// resolve picks the type with the highest tally. Ties go to the type first
// observed. A field seen only as null has an empty tally and resolves to
// string.
func (ft *fieldTally) resolve() dcr.ColumnType {
	winner := dcr.TypeString
	best := 0
	for _, t := range ft.order {
		if ft.counts[t] > best {
			winner = t
			best = ft.counts[t]
		}
	}
	return winner
}

// Columns infers a column list from a parsed JSON document. An object is
// treated as the single sample; an array contributes up to MaxSamples object
// elements. Scalars, nulls, empty arrays and empty objects all produce an
// empty result.
//
// Every key observed in any sample appears in the output, so a field missing
// from some samples still makes the schema. Output is sorted by name to keep
// repeated runs on similar data diff-friendly.
func Columns(v *fastjson.Value) []dcr.Column {
	samples := collectSamples(v)
	if len(samples) == 0 {
		return []dcr.Column{}
	}

	tallies := map[string]*fieldTally{}
	for _, o := range samples {
		o.Visit(func(key []byte, val *fastjson.Value) {
			k := string(key)
			ft := tallies[k]
			if ft == nil {
				ft = &fieldTally{counts: map[dcr.ColumnType]int{}}
				tallies[k] = ft
			}
			if val == nil || val.Type() == fastjson.TypeNull {
				// The key counts toward the schema but nulls stay out of the
				// type tally.
				return
			}
			ft.observe(Type(val, 1))
		})
	}

	names := make([]string, 0, len(tallies))
	for name := range tallies {
		names = append(names, name)
	}
	sort.Strings(names)

	cols := make([]dcr.Column, 0, len(names))
	for _, name := range names {
		cols = append(cols, dcr.Column{
			ID:   uuid.NewString(),
			Name: name,
			Type: tallies[name].resolve(),
		})
	}
	return cols
}

func collectSamples(v *fastjson.Value) []*fastjson.Object {
	if v == nil {
		return nil
	}

	switch v.Type() {
	case fastjson.TypeObject:
		o, err := v.Object()
		if err != nil {
			return nil
		}
		return []*fastjson.Object{o}
	case fastjson.TypeArray:
		a, err := v.Array()
		if err != nil {
			return nil
		}
		var samples []*fastjson.Object
		for _, i := range sampleIndices(len(a)) {
			if a[i].Type() != fastjson.TypeObject {
				// Non-object elements carry no fields.
				continue
			}
			o, err := a[i].Object()
			if err != nil {
				continue
			}
			samples = append(samples, o)
		}
		return samples
	}

	return nil
}

// sampleIndices picks up to MaxSamples indices out of n: always the first,
// middle and last element, with the rest spread evenly in between.
// Deterministic for a given n.
func sampleIndices(n int) []int {
	if n <= 0 {
		return nil
	}
	if n <= MaxSamples {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}

	seen := map[int]bool{0: true, n / 2: true, n - 1: true}
	for i := 0; i < MaxSamples && len(seen) < MaxSamples; i++ {
		seen[i*(n-1)/(MaxSamples-1)] = true
	}

	idx := make([]int, 0, len(seen))
	for i := range seen {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}
