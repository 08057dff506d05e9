package hdreason

import "math/rand"

const metricModulus = 251 // largest prime below 256, so bytes stay in [0,255)

// metricAffineAlgebra implements "metric-affine" (and, with elastic=true,
// "metric-affine-elastic"): vectors are Geometry bytes of integers mod
// metricModulus. Bind is modular addition, unbind modular subtraction,
// bundle is elementwise integer mean (rounded down), and similarity is the
// clamped-[0,1] mean element agreement described in spec.md §3.
//
// The elastic variant counts two elements as agreeing when they differ by at
// most a fixed margin of 2 (set in newMetricAffineAlgebra); the plain
// variant requires them to be equal. The margin affects Similarity only.
type metricAffineAlgebra struct {
	elastic bool
	margin  int
}

func newMetricAffineAlgebra(elastic bool) *metricAffineAlgebra {
	m := &metricAffineAlgebra{elastic: elastic}
	if elastic {
		m.margin = 2
	}
	return m
}

func (m *metricAffineAlgebra) strategyID() string {
	if m.elastic {
		return StrategyMetricAffineElastic
	}
	return StrategyMetricAffine
}

func (m *metricAffineAlgebra) Name() string { return m.strategyID() }

func (m *metricAffineAlgebra) CreateFromName(name string, geometry int, theory string) Vector {
	seed := seedForName(name, theory)
	out := make([]byte, geometry)
	state := seed
	for i := range out {
		state = splitmix64(state)
		out[i] = byte(state % metricModulus)
	}
	return Vector{StrategyID: m.strategyID(), Geometry: geometry, bytes: out}
}

func (m *metricAffineAlgebra) CreateRandom(geometry int, seed int64) Vector {
	r := rand.New(rand.NewSource(seed))
	out := make([]byte, geometry)
	for i := range out {
		out[i] = byte(r.Intn(metricModulus))
	}
	return Vector{StrategyID: m.strategyID(), Geometry: geometry, bytes: out}
}

func (m *metricAffineAlgebra) Bind(a, b Vector) (Vector, error) {
	out := make([]byte, len(a.bytes))
	for i := range out {
		out[i] = byte((int(a.bytes[i]) + int(b.bytes[i])) % metricModulus)
	}
	return Vector{StrategyID: a.StrategyID, Geometry: a.Geometry, bytes: out}, nil
}

func (m *metricAffineAlgebra) Unbind(a, b Vector) (Vector, error) {
	out := make([]byte, len(a.bytes))
	for i := range out {
		diff := (int(a.bytes[i]) - int(b.bytes[i])) % metricModulus
		if diff < 0 {
			diff += metricModulus
		}
		out[i] = byte(diff)
	}
	return Vector{StrategyID: a.StrategyID, Geometry: a.Geometry, bytes: out}, nil
}

func (m *metricAffineAlgebra) Bundle(vs ...Vector) (Vector, error) {
	geometry := vs[0].Geometry
	out := make([]byte, geometry)
	for i := 0; i < geometry; i++ {
		var sum int
		for _, v := range vs {
			sum += int(v.bytes[i])
		}
		out[i] = byte((sum / len(vs)) % metricModulus)
	}
	return Vector{StrategyID: m.strategyID(), Geometry: geometry, bytes: out}, nil
}

func (m *metricAffineAlgebra) Similarity(a, b Vector) (float64, error) {
	var agree float64
	for i := range a.bytes {
		d := int(a.bytes[i]) - int(b.bytes[i])
		if d < 0 {
			d = -d
		}
		window := 0
		if m.elastic {
			window = m.margin
		}
		if d <= window {
			agree += 1
		} else {
			// partial credit that decays with distance, clamped at 0.
			score := 1.0 - float64(d)/float64(metricModulus/2)
			if score < 0 {
				score = 0
			}
			agree += score
		}
	}
	sim := agree / float64(len(a.bytes))
	if sim < 0 {
		sim = 0
	}
	if sim > 1 {
		sim = 1
	}
	return sim, nil
}

func (m *metricAffineAlgebra) Equals(a, b Vector) (bool, error) {
	if len(a.bytes) != len(b.bytes) {
		return false, nil
	}
	for i := range a.bytes {
		if a.bytes[i] != b.bytes[i] {
			return false, nil
		}
	}
	return true, nil
}

func (m *metricAffineAlgebra) Clone(v Vector) Vector { return v.Clone() }
