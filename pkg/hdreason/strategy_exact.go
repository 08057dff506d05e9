package hdreason

import "fmt"

// IndexedAlgebra is implemented by strategies whose vectors are addressed by
// an allocator index rather than derived purely from a name. The exact
// strategy is the only one in this package: its Vocabulary owns a
// session-local Allocator (spec.md §4.1 "Session-local allocators") and
// calls CreateFromIndex once an index has been assigned, rather than calling
// CreateFromName.
type IndexedAlgebra interface {
	CreateFromIndex(idx int, geometry int) Vector
}

// Allocator hands out strictly increasing indices for the exact strategy.
// It is owned by a single Session's Vocabulary and must never be shared
// across sessions (spec.md §5).
type Allocator struct {
	nameToIndex map[string]int
	indexToName map[int]string
	next        int
}

// NewAllocator creates an empty allocator.
func NewAllocator() *Allocator {
	return &Allocator{nameToIndex: make(map[string]int), indexToName: make(map[int]string)}
}

// Assign returns the index for name, allocating a fresh one if this is the
// first time name has been seen by this allocator.
func (al *Allocator) Assign(name string) int {
	if idx, ok := al.nameToIndex[name]; ok {
		return idx
	}
	idx := al.next
	al.next++
	al.nameToIndex[name] = idx
	al.indexToName[idx] = name
	return idx
}

// NameAt returns the name assigned to idx, if any.
func (al *Allocator) NameAt(idx int) (string, bool) {
	n, ok := al.indexToName[idx]
	return n, ok
}

// Len reports how many names this allocator has assigned indices to.
func (al *Allocator) Len() int { return al.next }

// reservedAtoms are allocated before any user atom, per spec.md §4.1. Order
// matters only in that it precedes user atoms, not its internal sequence.
var reservedAtoms = []string{
	"Implies", "And", "Or", "Not", "ForAll", "Exists",
}

// bootstrapReserved assigns indices 0..len(reservedAtoms)-1 to the runtime
// operators before any user code runs, satisfying the allocator invariant
// that reserved indices are strictly lower than every user atom's index.
func bootstrapReserved(al *Allocator) {
	for _, name := range reservedAtoms {
		al.Assign(name)
	}
	for p := 1; p <= maxPosition; p++ {
		al.Assign(positionReservedName(p))
	}
}

func positionReservedName(p int) string {
	return fmt.Sprintf("__Pos_%d__", p)
}

// exactAlgebra implements the "exact" HDC strategy: atoms are one-hot (or, in
// bundles, superpositions of one-hots) vectors over an allocator's index
// space. Bind is exact pointwise addition of index offsets encoded through
// XOR-free index shifting; unbind is its exact inverse for atomic operands,
// matching spec.md §3's "bind/unbind are exact inverses for atomic operands"
// guarantee.
//
// Because indices are session-local, two sessions may allocate different
// indices to the same name; this is the documented exception to
// cross-session determinism called out in spec.md §4.1.
type exactAlgebra struct{}

func (exactAlgebra) Name() string { return StrategyExact }

func (exactAlgebra) CreateFromIndex(idx int, geometry int) Vector {
	return Vector{StrategyID: StrategyExact, Geometry: geometry, oneHots: map[int]float64{idx: 1}}
}

// CreateFromName is a fallback for code paths that construct an exact-
// strategy vector without going through a Vocabulary/Allocator (chiefly
// tests exercising the algebra in isolation); it hashes the name into the
// index space. Production code always resolves exact-strategy atoms through
// Vocabulary, which uses CreateFromIndex via the session Allocator instead.
func (exactAlgebra) CreateFromName(name string, geometry int, theory string) Vector {
	idx := int(seedForName(name, theory) % (1 << 24))
	return Vector{StrategyID: StrategyExact, Geometry: geometry, oneHots: map[int]float64{idx: 1}}
}

func (exactAlgebra) CreateRandom(geometry int, seed int64) Vector {
	idx := int(splitmix64(uint64(seed)) % (1 << 24))
	return Vector{StrategyID: StrategyExact, Geometry: geometry, oneHots: map[int]float64{idx: 1}}
}

// Bind shifts every index in a by every index in b (Minkowski sum of index
// sets), scaling weights multiplicatively. For atomic operands (single
// index each) this is exact and trivially invertible by Unbind.
func (exactAlgebra) Bind(a, b Vector) (Vector, error) {
	out := make(map[int]float64, len(a.oneHots)*len(b.oneHots))
	for ia, wa := range a.oneHots {
		for ib, wb := range b.oneHots {
			out[ia+ib] += wa * wb
		}
	}
	return Vector{StrategyID: a.StrategyID, Geometry: a.Geometry, oneHots: out}, nil
}

// Unbind shifts every index in a by the negative of every index in b.
func (exactAlgebra) Unbind(a, b Vector) (Vector, error) {
	out := make(map[int]float64, len(a.oneHots))
	for ia, wa := range a.oneHots {
		for ib, wb := range b.oneHots {
			idx := ia - ib
			if idx < 0 {
				continue
			}
			out[idx] += wa * wb
		}
	}
	return Vector{StrategyID: a.StrategyID, Geometry: a.Geometry, oneHots: out}, nil
}

// Bundle superposes one-hots by summing weights and renormalizing so the sum
// of weights equals 1, matching miniKanren-style substitution stores where
// bundling is a weighted union rather than arithmetic addition of geometry.
func (exactAlgebra) Bundle(vs ...Vector) (Vector, error) {
	out := make(map[int]float64)
	var total float64
	for _, v := range vs {
		for idx, w := range v.oneHots {
			out[idx] += w
			total += w
		}
	}
	if total > 0 {
		for idx := range out {
			out[idx] /= total
		}
	}
	return Vector{StrategyID: StrategyExact, Geometry: vs[0].Geometry, oneHots: out}, nil
}

// Similarity is the weighted Jaccard-style overlap of two superpositions; for
// atomic one-hots this is 1 when equal and 0 otherwise, matching spec.md §4.1
// "exact = 0" random baseline.
func (exactAlgebra) Similarity(a, b Vector) (float64, error) {
	var overlap float64
	for idx, wa := range a.oneHots {
		if wb, ok := b.oneHots[idx]; ok {
			if wa < wb {
				overlap += wa
			} else {
				overlap += wb
			}
		}
	}
	return overlap, nil
}

func (exactAlgebra) Equals(a, b Vector) (bool, error) {
	if len(a.oneHots) != len(b.oneHots) {
		return false, nil
	}
	for idx, w := range a.oneHots {
		if bw, ok := b.oneHots[idx]; !ok || bw != w {
			return false, nil
		}
	}
	return true, nil
}

func (exactAlgebra) Clone(v Vector) Vector { return v.Clone() }

// DecodeUnboundCandidates ranks allocator entries by similarity to the
// residual one-hot/superposition vector.
func (exactAlgebra) DecodeUnboundCandidates(residual Vector, opts DecodeOptions) []DecodeCandidate {
	if opts.Session == nil {
		return nil
	}
	al := opts.Session.vocab.allocator
	allowed := map[string]bool{}
	for _, d := range opts.Domain {
		allowed[d] = true
	}
	var out []DecodeCandidate
	for idx, w := range residual.oneHots {
		name, ok := al.NameAt(idx)
		if !ok {
			continue
		}
		if len(allowed) > 0 && !allowed[name] {
			continue
		}
		out = append(out, DecodeCandidate{Name: name, Similarity: w})
	}
	sortCandidates(out)
	if opts.MaxCandidates > 0 && len(out) > opts.MaxCandidates {
		out = out[:opts.MaxCandidates]
	}
	return out
}
