package hdreason

import "math/rand"

// sparsePolyRing bounds the exponent space for the sparse-polynomial
// strategy: a vector is a multiset of integer exponents modulo this ring
// size, per spec.md §3.
const sparsePolyRing = 4093 // prime, keeps bind's modular addition well mixed

const sparsePolyTermCount = 24

// sparsePolyAlgebra implements "sparse-polynomial": a vector is a sparse set
// of integer exponents in a small polynomial ring. Bind adds exponents
// modulo the ring (polynomial multiplication in the exponent group),
// unbind subtracts, and bundle takes the multiset union capped at a term
// budget so vectors stay sparse. Because multiple exponents can collide
// under addition, unbind is only approximately exact, matching spec.md §3's
// "up to similarity >= 0.99" carve-out for this strategy.
type sparsePolyAlgebra struct{}

func (sparsePolyAlgebra) Name() string { return StrategySparsePoly }

func exponentCounts(exps []uint16) map[uint16]int {
	m := make(map[uint16]int, len(exps))
	for _, e := range exps {
		m[e]++
	}
	return m
}

func countsToSlice(m map[uint16]int) []uint16 {
	out := make([]uint16, 0, len(m))
	for e, c := range m {
		for i := 0; i < c; i++ {
			out = append(out, e)
		}
	}
	return out
}

func (sparsePolyAlgebra) CreateFromName(name string, geometry int, theory string) Vector {
	seed := seedForName(name, theory)
	state := seed
	exps := make([]uint16, sparsePolyTermCount)
	for i := range exps {
		state = splitmix64(state)
		exps[i] = uint16(state % sparsePolyRing)
	}
	return Vector{StrategyID: StrategySparsePoly, Geometry: geometry, exponents: exps}
}

func (sparsePolyAlgebra) CreateRandom(geometry int, seed int64) Vector {
	r := rand.New(rand.NewSource(seed))
	exps := make([]uint16, sparsePolyTermCount)
	for i := range exps {
		exps[i] = uint16(r.Intn(sparsePolyRing))
	}
	return Vector{StrategyID: StrategySparsePoly, Geometry: geometry, exponents: exps}
}

func (sparsePolyAlgebra) Bind(a, b Vector) (Vector, error) {
	out := make([]uint16, 0, len(a.exponents)*len(b.exponents))
	for _, ea := range a.exponents {
		for _, eb := range b.exponents {
			out = append(out, uint16((int(ea)+int(eb))%sparsePolyRing))
		}
	}
	out = capTerms(out)
	return Vector{StrategyID: a.StrategyID, Geometry: a.Geometry, exponents: out}, nil
}

func (sparsePolyAlgebra) Unbind(a, b Vector) (Vector, error) {
	out := make([]uint16, 0, len(a.exponents)*len(b.exponents))
	for _, ea := range a.exponents {
		for _, eb := range b.exponents {
			d := (int(ea) - int(eb)) % sparsePolyRing
			if d < 0 {
				d += sparsePolyRing
			}
			out = append(out, uint16(d))
		}
	}
	out = capTerms(out)
	return Vector{StrategyID: a.StrategyID, Geometry: a.Geometry, exponents: out}, nil
}

func capTerms(exps []uint16) []uint16 {
	counts := exponentCounts(exps)
	if len(counts) <= sparsePolyTermCount {
		return countsToSlice(counts)
	}
	// Keep the highest-multiplicity terms; ties broken by exponent value for
	// determinism.
	type kv struct {
		exp   uint16
		count int
	}
	items := make([]kv, 0, len(counts))
	for e, c := range counts {
		items = append(items, kv{e, c})
	}
	for i := 1; i < len(items); i++ {
		j := i
		for j > 0 && (items[j].count > items[j-1].count ||
			(items[j].count == items[j-1].count && items[j].exp < items[j-1].exp)) {
			items[j], items[j-1] = items[j-1], items[j]
			j--
		}
	}
	if len(items) > sparsePolyTermCount {
		items = items[:sparsePolyTermCount]
	}
	out := make([]uint16, 0, sparsePolyTermCount)
	for _, it := range items {
		for i := 0; i < it.count; i++ {
			out = append(out, it.exp)
		}
	}
	return out
}

func (sparsePolyAlgebra) Bundle(vs ...Vector) (Vector, error) {
	merged := map[uint16]int{}
	for _, v := range vs {
		for _, e := range v.exponents {
			merged[e]++
		}
	}
	return Vector{StrategyID: StrategySparsePoly, Geometry: vs[0].Geometry, exponents: capTerms(countsToSlice(merged))}, nil
}

func (sparsePolyAlgebra) Similarity(a, b Vector) (float64, error) {
	ca, cb := exponentCounts(a.exponents), exponentCounts(b.exponents)
	var inter, union int
	seen := map[uint16]bool{}
	for e, na := range ca {
		seen[e] = true
		nb := cb[e]
		if na < nb {
			inter += na
		} else {
			inter += nb
		}
		if na > nb {
			union += na
		} else {
			union += nb
		}
	}
	for e, nb := range cb {
		if seen[e] {
			continue
		}
		union += nb
	}
	if union == 0 {
		return 1, nil
	}
	return float64(inter) / float64(union), nil
}

func (sparsePolyAlgebra) Equals(a, b Vector) (bool, error) {
	sim, _ := sparsePolyAlgebra{}.Similarity(a, b)
	return sim >= 0.999, nil
}

func (sparsePolyAlgebra) Clone(v Vector) Vector { return v.Clone() }
