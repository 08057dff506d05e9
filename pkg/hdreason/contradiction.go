package hdreason

import "fmt"

// ContradictionVerdict is the result of checking one newly-added fact
// against the theory's declared constraints (spec.md §4.7).
type ContradictionVerdict struct {
	Contradicted bool
	ProofNL      string
	ProofObj     *ProofObject
}

// mutualExclusion declares `op s v1` contradicts `op s v2` (spec.md §4.7).
type mutualExclusion struct{ Op, V1, V2 string }

// sameArgsContradiction declares `op1 a b` contradicts `op2 a b`.
type sameArgsContradiction struct{ Op1, Op2 string }

// disjointTypes declares no x may satisfy both `isA x T1` and `isA x T2`.
type disjointTypes struct{ T1, T2 string }

// cardinalityConstraint bounds how many `rel` facts a T-typed subject may
// have.
type cardinalityConstraint struct {
	Type     string
	Rel      string
	Min, Max int
}

// theoryConstraints holds every declarative constraint a loaded theory
// contributed, consumed by checkContradictions. Declared via the DSL
// builtins `mutuallyExclusive`, `contradictsSameArgs`, `DISJOINT_WITH`,
// `cardinality`, and `functional` (spec.md §4.7), or via the JSON-schema
// alternate entry point (see loadTheoryConstraintsJSON).
type theoryConstraints struct {
	mutualExclusions []mutualExclusion
	sameArgs         []sameArgsContradiction
	disjoint         []disjointTypes
	cardinalities    []cardinalityConstraint
	functional       map[string]bool // operator -> at-most-one-value-per-subject
}

func newTheoryConstraints() *theoryConstraints {
	return &theoryConstraints{functional: make(map[string]bool)}
}

// declareMutuallyExclusive records `mutuallyExclusive op v1 v2`.
func (t *theoryConstraints) declareMutuallyExclusive(op, v1, v2 string) {
	t.mutualExclusions = append(t.mutualExclusions, mutualExclusion{op, v1, v2})
}

// declareContradictsSameArgs records `contradictsSameArgs op1 op2`.
func (t *theoryConstraints) declareContradictsSameArgs(op1, op2 string) {
	t.sameArgs = append(t.sameArgs, sameArgsContradiction{op1, op2})
}

// declareDisjoint records `DISJOINT_WITH T1 T2`.
func (t *theoryConstraints) declareDisjoint(t1, t2 string) {
	t.disjoint = append(t.disjoint, disjointTypes{t1, t2})
}

// declareFunctional marks op as a functional (at-most-one-value) relation.
func (t *theoryConstraints) declareFunctional(op string) { t.functional[op] = true }

// declareCardinality records a `(T, rel, min, max)` constraint.
func (t *theoryConstraints) declareCardinality(typ, rel string, min, max int) {
	t.cardinalities = append(t.cardinalities, cardinalityConstraint{typ, rel, min, max})
}

// checkContradictions runs every declared constraint against newFact, plus
// forward-chained inference at depth >= 2 through isA property inheritance
// (spec.md §4.7 final paragraph). It never mutates the KB; callers decide
// whether to roll back.
func (s *Session) checkContradictions(newFact *Fact) ContradictionVerdict {
	args := newFact.Metadata.ArgNames()

	if v, ok := s.checkMutualExclusion(newFact, args); ok {
		return v
	}
	if v, ok := s.checkSameArgs(newFact, args); ok {
		return v
	}
	if v, ok := s.checkDisjoint(newFact, args); ok {
		return v
	}
	if v, ok := s.checkTaxonomicCycle(newFact, args); ok {
		return v
	}
	if v, ok := s.checkFunctional(newFact, args); ok {
		return v
	}
	if v, ok := s.checkCardinality(newFact, args); ok {
		return v
	}
	if v, ok := s.checkInheritedContradiction(newFact, args); ok {
		return v
	}
	return ContradictionVerdict{}
}

// checkCardinality enforces a declared `cardinality T rel min max` upper
// bound: a T-typed subject may not accumulate more than max facts under
// rel (spec.md §4.7). The lower bound is not enforced here — facts only
// ever accumulate during a learn() call, so "too few" can't be detected at
// the moment a single fact is added; it would need to be checked once a
// theory finishes loading, which spec.md does not ask for.
func (s *Session) checkCardinality(f *Fact, args []string) (ContradictionVerdict, bool) {
	if len(args) < 1 {
		return ContradictionVerdict{}, false
	}
	subject := args[0]
	for _, cc := range s.theory.cardinalities {
		if cc.Max <= 0 || !s.kb.synonymEq(f.Metadata.Operator, cc.Rel) {
			continue
		}
		matchesType := false
		for _, t := range s.typesOf(subject) {
			if s.kb.synonymEq(t, cc.Type) {
				matchesType = true
				break
			}
		}
		if !matchesType {
			continue
		}
		count := len(s.kb.FindByOperatorAndArg0(cc.Rel, subject))
		if count > cc.Max {
			return s.rejectVerdict(fmt.Sprintf(
				"cardinality %s %s %d %d: %s already has %d %s facts, exceeding max %d",
				cc.Type, cc.Rel, cc.Min, cc.Max, subject, count, cc.Rel, cc.Max), f, nil), true
		}
	}
	return ContradictionVerdict{}, false
}

func (s *Session) checkMutualExclusion(f *Fact, args []string) (ContradictionVerdict, bool) {
	if len(args) < 2 {
		return ContradictionVerdict{}, false
	}
	for _, me := range s.theory.mutualExclusions {
		if !s.kb.synonymEq(f.Metadata.Operator, me.Op) {
			continue
		}
		var other string
		switch {
		case s.kb.synonymEq(args[1], me.V1):
			other = me.V2
		case s.kb.synonymEq(args[1], me.V2):
			other = me.V1
		default:
			continue
		}
		for _, id := range s.kb.FindByOperatorAndArg0(me.Op, args[0]) {
			existing, _ := s.kb.Get(id)
			exArgs := existing.Metadata.ArgNames()
			if len(exArgs) > 1 && s.kb.synonymEq(exArgs[1], other) {
				return s.rejectVerdict(fmt.Sprintf(
					"mutuallyExclusive %s %s %s: %s %s %s conflicts with %s %s %s",
					me.Op, me.V1, me.V2, me.Op, args[0], args[1], me.Op, args[0], other),
					f, existing), true
			}
		}
	}
	return ContradictionVerdict{}, false
}

func (s *Session) checkSameArgs(f *Fact, args []string) (ContradictionVerdict, bool) {
	if len(args) < 2 {
		return ContradictionVerdict{}, false
	}
	for _, sc := range s.theory.sameArgs {
		var other string
		switch {
		case s.kb.synonymEq(f.Metadata.Operator, sc.Op1):
			other = sc.Op2
		case s.kb.synonymEq(f.Metadata.Operator, sc.Op2):
			other = sc.Op1
		default:
			continue
		}
		for _, id := range s.kb.FindByOperatorAndArg0(other, args[0]) {
			existing, _ := s.kb.Get(id)
			exArgs := existing.Metadata.ArgNames()
			if len(exArgs) > 1 && s.kb.synonymEq(exArgs[1], args[1]) {
				return s.rejectVerdict(fmt.Sprintf(
					"contradictsSameArgs %s %s: %s %s %s conflicts with %s %s %s",
					sc.Op1, sc.Op2, f.Metadata.Operator, args[0], args[1], existing.Metadata.Operator, exArgs[0], exArgs[1]),
					f, existing), true
			}
		}
	}
	return ContradictionVerdict{}, false
}

func (s *Session) checkDisjoint(f *Fact, args []string) (ContradictionVerdict, bool) {
	if !s.kb.synonymEq(f.Metadata.Operator, "isA") || len(args) < 2 {
		return ContradictionVerdict{}, false
	}
	subject := args[0]
	newType := args[1]
	existingTypes := s.typesOf(subject)
	for _, d := range s.theory.disjoint {
		var otherType string
		switch {
		case s.kb.synonymEq(newType, d.T1):
			otherType = d.T2
		case s.kb.synonymEq(newType, d.T2):
			otherType = d.T1
		default:
			continue
		}
		for _, t := range existingTypes {
			if s.kb.synonymEq(t, otherType) {
				return s.rejectVerdict(fmt.Sprintf(
					"DISJOINT_WITH %s %s: %s cannot be both %s and %s", d.T1, d.T2, subject, newType, t),
					f, nil), true
			}
		}
	}
	return ContradictionVerdict{}, false
}

// typesOf returns every type subject is declared isA, including inherited
// types reached by following isA chains transitively (property inheritance
// through the taxonomy, spec.md §4.5 strategy 6 reused here).
func (s *Session) typesOf(subject string) []string {
	seen := map[string]bool{}
	var out []string
	var walk func(name string)
	walk = func(name string) {
		for _, id := range s.kb.FindByOperatorAndArg0("isA", name) {
			fact, _ := s.kb.Get(id)
			as := fact.Metadata.ArgNames()
			if len(as) < 2 {
				continue
			}
			t := as[1]
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
				walk(t)
			}
		}
	}
	walk(subject)
	return out
}

// checkTaxonomicCycle rejects a new `isA a b` edge that would close a cycle
// in the isA DAG (spec.md §4.7 "Taxonomic cycles").
func (s *Session) checkTaxonomicCycle(f *Fact, args []string) (ContradictionVerdict, bool) {
	if !s.kb.synonymEq(f.Metadata.Operator, "isA") || len(args) < 2 {
		return ContradictionVerdict{}, false
	}
	subject, parent := args[0], args[1]
	if subject == parent {
		return s.rejectVerdict(fmt.Sprintf("isA %s %s: self-referential taxonomic edge", subject, parent), f, nil), true
	}
	for _, t := range s.typesOf(parent) {
		if s.kb.synonymEq(t, subject) {
			return s.rejectVerdict(fmt.Sprintf(
				"isA %s %s: would close a taxonomic cycle (%s is already an ancestor of %s)", subject, parent, subject, parent),
				f, nil), true
		}
	}
	return ContradictionVerdict{}, false
}

func (s *Session) checkFunctional(f *Fact, args []string) (ContradictionVerdict, bool) {
	if len(args) < 2 || !s.theory.functional[f.Metadata.Operator] {
		return ContradictionVerdict{}, false
	}
	for _, id := range s.kb.FindByOperatorAndArg0(f.Metadata.Operator, args[0]) {
		existing, _ := s.kb.Get(id)
		exArgs := existing.Metadata.ArgNames()
		if len(exArgs) > 1 && !s.kb.synonymEq(exArgs[1], args[1]) {
			return s.rejectVerdict(fmt.Sprintf(
				"functional %s: %s already has value %s, cannot also have %s",
				f.Metadata.Operator, args[0], exArgs[1], args[1]), f, existing), true
		}
	}
	return ContradictionVerdict{}, false
}

// checkInheritedContradiction forward-chains property inheritance one level
// (spec.md §4.7: "forward-chained inferences of depth >= 2, e.g. property
// inheritance across isA may derive hasProperty Tea Cold which conflicts
// with the new hasProperty Tea Hot"). It derives every `op ancestorValue`
// fact subject inherits via isA, then re-runs the mutual-exclusion check
// against that derived fact.
func (s *Session) checkInheritedContradiction(f *Fact, args []string) (ContradictionVerdict, bool) {
	if len(args) < 2 {
		return ContradictionVerdict{}, false
	}
	subject := args[0]
	for _, t := range s.typesOf(subject) {
		for _, id := range s.kb.FindByOperatorAndArg0(f.Metadata.Operator, t) {
			derived, _ := s.kb.Get(id)
			derivedArgs := derived.Metadata.ArgNames()
			if len(derivedArgs) < 2 {
				continue
			}
			synthetic := &Fact{
				ID:       f.ID,
				Vector:   f.Vector,
				Metadata: FactMetadata{Operator: f.Metadata.Operator, Args: []Expr{Identifier{Name: subject}, Identifier{Name: derivedArgs[1]}}},
			}
			if v, ok := s.checkMutualExclusion(synthetic, []string{subject, derivedArgs[1]}); ok {
				v.ProofNL = "(inherited via isA " + subject + " " + t + ") " + v.ProofNL
				return v, true
			}
		}
	}
	return ContradictionVerdict{}, false
}

func (s *Session) rejectVerdict(proofNL string, newFact, existing *Fact) ContradictionVerdict {
	steps := []ProofStep{{Kind: "fact", Detail: newFact.Metadata.Render()}}
	if existing != nil {
		steps = append(steps, ProofStep{Kind: "fact", Detail: existing.Metadata.Render()})
	}
	obj := &ProofObject{
		Goal:  GoalDescriptor{Operator: newFact.Metadata.Operator, Args: newFact.Metadata.ArgNames()},
		Valid: true,
		Method: "contradiction",
		Steps: steps,
	}
	return ContradictionVerdict{Contradicted: true, ProofNL: proofNL, ProofObj: obj}
}
