package hdreason

import "sort"

// ComponentKB is the symbolic fact index described in spec.md §4.4: five
// maps (operator, arg0, arg1, (operator,arg0) composite, and the synonym
// graph) plus the canonical-representative bookkeeping the Canonicalizer
// consumes.
type ComponentKB struct {
	facts map[string]*Fact // id -> fact
	order []string         // insertion order, for deterministic KB vector rebuilds

	byOperator    map[string]map[string]bool
	byArg0        map[string]map[string]bool
	byArg1        map[string]map[string]bool
	byOperatorArg0 map[string]map[string]bool // key "operator\x00arg0" -> ids

	synonyms map[string]map[string]bool // undirected adjacency
	aliases  map[string]string          // explicit canonical override: componentKey of a synonym component -> representative
}

// NewComponentKB creates an empty fact index.
func NewComponentKB() *ComponentKB {
	return &ComponentKB{
		facts:          make(map[string]*Fact),
		byOperator:     make(map[string]map[string]bool),
		byArg0:         make(map[string]map[string]bool),
		byArg1:         make(map[string]map[string]bool),
		byOperatorArg0: make(map[string]map[string]bool),
		synonyms:       make(map[string]map[string]bool),
		aliases:        make(map[string]string),
	}
}

func opArg0Key(op, arg0 string) string { return op + "\x00" + arg0 }

// Add indexes fact, recording it under operator/arg0/arg1/(operator,arg0).
func (kb *ComponentKB) Add(f *Fact) {
	kb.facts[f.ID] = f
	kb.order = append(kb.order, f.ID)

	op := f.Metadata.Operator
	addTo(kb.byOperator, op, f.ID)

	args := f.Metadata.ArgNames()
	if len(args) > 0 {
		addTo(kb.byArg0, args[0], f.ID)
		addTo(kb.byOperatorArg0, opArg0Key(op, args[0]), f.ID)
	}
	if len(args) > 1 {
		addTo(kb.byArg1, args[1], f.ID)
	}
}

func addTo(index map[string]map[string]bool, key, id string) {
	if index[key] == nil {
		index[key] = make(map[string]bool)
	}
	index[key][id] = true
}

func removeFrom(index map[string]map[string]bool, key, id string) {
	if s, ok := index[key]; ok {
		delete(s, id)
		if len(s) == 0 {
			delete(index, key)
		}
	}
}

// Remove drops fact id from every index; used by learn rollback.
func (kb *ComponentKB) Remove(id string) {
	f, ok := kb.facts[id]
	if !ok {
		return
	}
	delete(kb.facts, id)
	args := f.Metadata.ArgNames()
	removeFrom(kb.byOperator, f.Metadata.Operator, id)
	if len(args) > 0 {
		removeFrom(kb.byArg0, args[0], id)
		removeFrom(kb.byOperatorArg0, opArg0Key(f.Metadata.Operator, args[0]), id)
	}
	if len(args) > 1 {
		removeFrom(kb.byArg1, args[1], id)
	}
	for i, oid := range kb.order {
		if oid == id {
			kb.order = append(kb.order[:i], kb.order[i+1:]...)
			break
		}
	}
}

// Get returns the fact stored under id.
func (kb *ComponentKB) Get(id string) (*Fact, bool) {
	f, ok := kb.facts[id]
	return f, ok
}

// Facts returns every fact in insertion order.
func (kb *ComponentKB) Facts() []*Fact {
	out := make([]*Fact, 0, len(kb.order))
	for _, id := range kb.order {
		out = append(out, kb.facts[id])
	}
	return out
}

// AddSynonym declares name1 and name2 as synonymous, adding both directed
// edges of the undirected graph (spec.md §3 Synonyms and aliases).
func (kb *ComponentKB) AddSynonym(name1, name2 string) {
	if kb.synonyms[name1] == nil {
		kb.synonyms[name1] = make(map[string]bool)
	}
	if kb.synonyms[name2] == nil {
		kb.synonyms[name2] = make(map[string]bool)
	}
	kb.synonyms[name1][name2] = true
	kb.synonyms[name2][name1] = true
}

// AddAlias declares name as synonymous with representative AND pins
// representative as the canonical spokesperson of the resulting component,
// overriding the default lexicographically-smallest-member rule.
func (kb *ComponentKB) AddAlias(name, representative string) {
	kb.AddSynonym(name, representative)
	kb.aliases[componentKey(kb.synonyms, representative)] = representative
}

// componentKey returns a stable identifier for the connected component
// containing seed, used as the alias map's key so every member of the
// component shares one override regardless of which name was aliased.
func componentKey(graph map[string]map[string]bool, seed string) string {
	members := closureFrom(graph, seed)
	sort.Strings(members)
	if len(members) == 0 {
		return seed
	}
	return members[0]
}

// closureFrom returns every name transitively reachable from seed through
// the synonym graph (including seed itself), using an explicit visited set
// so cyclic synonym declarations cannot loop (spec.md §9 Design Notes).
func closureFrom(graph map[string]map[string]bool, seed string) []string {
	visited := map[string]bool{seed: true}
	queue := []string{seed}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for neigh := range graph[n] {
			if !visited[neigh] {
				visited[neigh] = true
				queue = append(queue, neigh)
			}
		}
	}
	out := make([]string, 0, len(visited))
	for n := range visited {
		out = append(out, n)
	}
	return out
}

// expandSynonyms returns {name} union every name transitively synonymous
// with it, via the synonym graph.
func (kb *ComponentKB) expandSynonyms(name string) []string {
	return closureFrom(kb.synonyms, name)
}

// FindByOperator returns fact ids whose operator is op or a synonym of op.
func (kb *ComponentKB) FindByOperator(op string) []string {
	return kb.unionIndex(kb.byOperator, op)
}

// FindByArg0 returns fact ids whose first argument is arg0 or a synonym.
func (kb *ComponentKB) FindByArg0(arg0 string) []string {
	return kb.unionIndex(kb.byArg0, arg0)
}

// FindByArg1 returns fact ids whose second argument is arg1 or a synonym.
func (kb *ComponentKB) FindByArg1(arg1 string) []string {
	return kb.unionIndex(kb.byArg1, arg1)
}

// FindByOperatorAndArg0 returns fact ids matching both op and arg0 (each
// synonym-expanded).
func (kb *ComponentKB) FindByOperatorAndArg0(op, arg0 string) []string {
	ops := kb.expandSynonyms(op)
	arg0s := kb.expandSynonyms(arg0)
	seen := map[string]bool{}
	var out []string
	for _, o := range ops {
		for _, a := range arg0s {
			for id := range kb.byOperatorArg0[opArg0Key(o, a)] {
				if !seen[id] {
					seen[id] = true
					out = append(out, id)
				}
			}
		}
	}
	return out
}

func (kb *ComponentKB) unionIndex(index map[string]map[string]bool, key string) []string {
	seen := map[string]bool{}
	var out []string
	for _, k := range kb.expandSynonyms(key) {
		for id := range index[k] {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// MatchesWithSynonyms reports whether fact matches the given (possibly nil,
// meaning wildcard) operator/arg0/arg1, expanding synonyms on each non-nil
// parameter (spec.md §4.4).
func (kb *ComponentKB) MatchesWithSynonyms(f *Fact, op, arg0, arg1 *string) bool {
	args := f.Metadata.ArgNames()
	if op != nil && !kb.synonymEq(f.Metadata.Operator, *op) {
		return false
	}
	if arg0 != nil {
		if len(args) < 1 || !kb.synonymEq(args[0], *arg0) {
			return false
		}
	}
	if arg1 != nil {
		if len(args) < 2 || !kb.synonymEq(args[1], *arg1) {
			return false
		}
	}
	return true
}

func (kb *ComponentKB) synonymEq(a, b string) bool {
	if a == b {
		return true
	}
	for _, n := range kb.expandSynonyms(a) {
		if n == b {
			return true
		}
	}
	return false
}
