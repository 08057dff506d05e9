package hdreason

import "sort"

// maxPosition is the largest argument position the tagger supports
// (spec.md §2 "up to 20 position vectors").
const maxPosition = 20

// PositionTagger generates and caches the family of quasi-orthogonal
// position vectors Pos_1..Pos_20 for one (geometry, strategy) pair. It is
// cached per session, per spec.md §4.1: "cached in a per-session map keyed
// by that triple."
type PositionTagger struct {
	facade    Facade
	geometry  int
	strategy  string
	allocator *Allocator // non-nil only for the exact strategy
	cache     map[int]Vector
}

// NewPositionTagger creates a tagger for the given geometry and strategy.
// allocator must be supplied (non-nil) when strategy is the exact strategy
// and nil otherwise.
func NewPositionTagger(geometry int, strategy string, allocator *Allocator) *PositionTagger {
	return &PositionTagger{geometry: geometry, strategy: strategy, allocator: allocator, cache: make(map[int]Vector)}
}

func (pt *PositionTagger) positionVector(p int) (Vector, error) {
	if p < 1 || p > maxPosition {
		return Vector{}, newExecutionError("InvalidArgument", "position out of range [1,20]")
	}
	if v, ok := pt.cache[p]; ok {
		return v, nil
	}
	alg, err := AlgebraFor(pt.strategy)
	if err != nil {
		return Vector{}, err
	}
	var v Vector
	if idxAlg, ok := alg.(IndexedAlgebra); ok && pt.allocator != nil {
		idx := pt.allocator.Assign(positionReservedName(p))
		v = idxAlg.CreateFromIndex(idx, pt.geometry)
	} else {
		v = alg.CreateFromName(positionReservedName(p), pt.geometry, "__position__")
	}
	pt.cache[p] = v
	return v, nil
}

// WithPosition returns bind(v, Pos_p).
func (pt *PositionTagger) WithPosition(p int, v Vector) (Vector, error) {
	pos, err := pt.positionVector(p)
	if err != nil {
		return Vector{}, err
	}
	return pt.facade.Bind(v, pos)
}

// RemovePosition returns unbind(v, Pos_p).
func (pt *PositionTagger) RemovePosition(p int, v Vector) (Vector, error) {
	pos, err := pt.positionVector(p)
	if err != nil {
		return Vector{}, err
	}
	return pt.facade.Unbind(v, pos)
}

func sortCandidates(cands []DecodeCandidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Similarity != cands[j].Similarity {
			return cands[i].Similarity > cands[j].Similarity
		}
		return cands[i].Name < cands[j].Name
	})
}
