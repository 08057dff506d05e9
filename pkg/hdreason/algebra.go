package hdreason

// Strategy identifiers, per spec.md §2 "HDC strategies".
const (
	StrategyDenseBinary         = "dense-binary"
	StrategySparsePoly          = "sparse-polynomial"
	StrategyMetricAffine        = "metric-affine"
	StrategyMetricAffineElastic = "metric-affine-elastic"
	StrategyExact               = "exact"
)

// DecodeCandidate is one ranked answer from DecodeUnboundCandidates.
type DecodeCandidate struct {
	Name       string
	Similarity float64
}

// DecodeOptions narrows a DecodeUnboundCandidates search.
type DecodeOptions struct {
	Session       *Session
	MaxCandidates int
	Domain        []string // restrict search to these atom names, if non-empty
	Knowns        map[string]Vector
}

// Algebra is the contract every HDC strategy implements (spec.md §4.1). A
// Facade dispatches onto the Algebra registered for a Vector's StrategyID
// and enforces that binary operations never mix strategies.
type Algebra interface {
	Name() string
	CreateFromName(name string, geometry int, theory string) Vector
	CreateRandom(geometry int, seed int64) Vector
	Bind(a, b Vector) (Vector, error)
	Unbind(a, b Vector) (Vector, error)
	Bundle(vs ...Vector) (Vector, error)
	Similarity(a, b Vector) (float64, error)
	Equals(a, b Vector) (bool, error)
	Clone(v Vector) Vector
}

// CandidateDecoder is implemented by strategies that support
// DecodeUnboundCandidates (spec.md §4.1, §4.6). Not every strategy needs
// this — the exact strategy, for example, can decode a one-hot residual
// back to names exactly.
type CandidateDecoder interface {
	DecodeUnboundCandidates(residual Vector, opts DecodeOptions) []DecodeCandidate
}

var registry = map[string]Algebra{
	StrategyDenseBinary:         &denseBinaryAlgebra{},
	StrategySparsePoly:          &sparsePolyAlgebra{},
	StrategyMetricAffine:        newMetricAffineAlgebra(false),
	StrategyMetricAffineElastic: newMetricAffineAlgebra(true),
	StrategyExact:               &exactAlgebra{},
}

// AlgebraFor returns the registered strategy implementation for id, or an
// error if id names no known strategy.
func AlgebraFor(id string) (Algebra, error) {
	a, ok := registry[id]
	if !ok {
		return nil, newExecutionError("UnknownStrategy", "no such HDC strategy: "+id)
	}
	return a, nil
}

// Facade is a thin, stateless dispatcher over the registered strategies. It
// is the only thing session code talks to; it never inspects a Vector's
// internal representation itself, only forwards to the strategy named by
// the Vector's StrategyID and checks that both operands agree.
type Facade struct{}

func (Facade) same(a, b Vector) error {
	if a.StrategyID != b.StrategyID {
		return newExecutionError("StrategyMismatch", "cannot combine "+a.StrategyID+" with "+b.StrategyID)
	}
	if a.Geometry != b.Geometry {
		return newExecutionError("GeometryMismatch", "cannot combine vectors of differing geometry")
	}
	return nil
}

func (f Facade) Bind(a, b Vector) (Vector, error) {
	if err := f.same(a, b); err != nil {
		return Vector{}, err
	}
	alg, err := AlgebraFor(a.StrategyID)
	if err != nil {
		return Vector{}, err
	}
	return alg.Bind(a, b)
}

func (f Facade) Unbind(a, b Vector) (Vector, error) {
	if err := f.same(a, b); err != nil {
		return Vector{}, err
	}
	alg, err := AlgebraFor(a.StrategyID)
	if err != nil {
		return Vector{}, err
	}
	return alg.Unbind(a, b)
}

func (f Facade) Bundle(vs ...Vector) (Vector, error) {
	if len(vs) == 0 {
		return Vector{}, newExecutionError("InvalidArgument", "bundle requires at least one vector")
	}
	for _, v := range vs[1:] {
		if err := f.same(vs[0], v); err != nil {
			return Vector{}, err
		}
	}
	alg, err := AlgebraFor(vs[0].StrategyID)
	if err != nil {
		return Vector{}, err
	}
	return alg.Bundle(vs...)
}

func (f Facade) Similarity(a, b Vector) (float64, error) {
	if err := f.same(a, b); err != nil {
		return 0, err
	}
	alg, err := AlgebraFor(a.StrategyID)
	if err != nil {
		return 0, err
	}
	return alg.Similarity(a, b)
}

func (f Facade) Equals(a, b Vector) (bool, error) {
	if a.StrategyID != b.StrategyID || a.Geometry != b.Geometry {
		return false, nil
	}
	alg, err := AlgebraFor(a.StrategyID)
	if err != nil {
		return false, err
	}
	return alg.Equals(a, b)
}

// DecodeUnboundCandidates dispatches to the strategy's CandidateDecoder, if
// it implements one, returning (nil, false) otherwise so callers can fall
// back to a symbolic-only path.
func (f Facade) DecodeUnboundCandidates(residual Vector, opts DecodeOptions) ([]DecodeCandidate, bool) {
	alg, err := AlgebraFor(residual.StrategyID)
	if err != nil {
		return nil, false
	}
	dec, ok := alg.(CandidateDecoder)
	if !ok {
		return nil, false
	}
	return dec.DecodeUnboundCandidates(residual, opts), true
}
