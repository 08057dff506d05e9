package hdreason

import (
	"fmt"
	"time"

	"github.com/hyprcog/hdreason/pkg/hdreason/config"
)

// GoalDescriptor names the statement a ProofObject is about.
type GoalDescriptor struct {
	Operator string
	Args     []string
}

// ProofStep is one node of a proof tree (spec.md §4.5 "Proof object").
type ProofStep struct {
	Kind   string // fact|rule|transitive|synonym|validation|unification_match|cycle|...
	Detail string
	FactID string
	RuleID string
}

// ProofObject is the independently re-checkable proof spec.md §4.5/§7
// requires: every `fact` step must name a KB fact-id that still exists, and
// every `rule` step a rule that still exists and re-proves under the
// recorded substitution.
type ProofObject struct {
	Goal       GoalDescriptor
	Valid      bool
	Method     string
	Steps      []ProofStep
	UsesFacts  []string
	ValidatorOk *bool
}

// ProveResult is the return shape of Session.Prove (spec.md §6).
type ProveResult struct {
	Valid      bool
	Method     string
	Confidence float64
	Steps      []ProofStep
	ProofObj   *ProofObject
	Reason     string
}

// proofContext threads depth/timeout/cycle-detection state through one
// top-level Prove call (spec.md §4.5 "Cycle detection", "Depth/time").
type proofContext struct {
	sess     *Session
	limits   config.SolverLimits
	deadline time.Time
	visited  map[string]bool // canonical goal fingerprints currently being proved
	depth    int
	maxDepthSeen int
}

func goalFingerprint(md FactMetadata, canon *Canonicalizer) string {
	op := canon.Canonicalize(md.Operator)
	fp := op
	for _, a := range md.ArgNames() {
		fp += "\x00" + canon.Canonicalize(a)
	}
	return fp
}

// Prove attempts to establish goal, trying the eleven strategies of spec.md
// §4.5 in order; the first to succeed wins. It never returns an error:
// failure to prove is reported as Valid=false with a Reason, never a Go
// error (spec.md §7 "ProofError never surfaces").
func (s *Session) Prove(dsl string) ProveResult {
	s.stats.Proofs++
	prog, err := Parse(dsl)
	if err != nil || len(prog.Statements) == 0 {
		return ProveResult{Valid: false, Method: "parse_error", Reason: "could not parse goal"}
	}
	goalStmt := s.canon.CanonicalizeStatement(prog.Statements[0])
	md := structureCondition(FactMetadata{Operator: goalStmt.Operator, Args: goalStmt.Args})

	ctx := &proofContext{
		sess:     s,
		limits:   s.cfg.Limits,
		deadline: time.Now().Add(s.cfg.Limits.ProofTimeout),
		visited:  make(map[string]bool),
	}
	obj, method, confidence, reason := ctx.prove(md, Bindings{})
	s.stats.TotalProofSteps += int64(len(obj.Steps))
	if ctx.maxDepthSeen > s.stats.MaxProofDepth {
		s.stats.MaxProofDepth = ctx.maxDepthSeen
	}
	s.stats.MethodCounts[method]++

	valid := obj.Valid
	okv := s.ValidateProof(obj)
	obj.ValidatorOk = &okv

	return ProveResult{Valid: valid, Method: method, Confidence: confidence, Steps: obj.Steps, ProofObj: obj, Reason: reason}
}

// prove is the recursive core shared by Prove, backward chaining, and
// modus tollens. It returns a filled-in ProofObject (Valid may be false),
// the winning method name, a confidence, and a reason when invalid.
func (ctx *proofContext) prove(goal FactMetadata, bindings Bindings) (*ProofObject, string, float64, string) {
	if time.Now().After(ctx.deadline) {
		return &ProofObject{Goal: goalDesc(goal), Valid: false}, "timeout", 0, "proof timed out"
	}
	if ctx.depth > ctx.maxDepthSeen {
		ctx.maxDepthSeen = ctx.depth
	}
	if ctx.depth >= ctx.limits.MaxProofDepth {
		return &ProofObject{Goal: goalDesc(goal), Valid: false}, "depth_exceeded", 0, "max proof depth exceeded"
	}

	fp := goalFingerprint(goal, ctx.sess.canon)
	if ctx.visited[fp] {
		return &ProofObject{Goal: goalDesc(goal), Valid: false, Steps: []ProofStep{{Kind: "cycle", Detail: fp}}}, "cycle", 0, "cyclic goal"
	}
	ctx.visited[fp] = true
	defer delete(ctx.visited, fp)
	ctx.depth++
	defer func() { ctx.depth-- }()

	strategies := []func(FactMetadata, Bindings) (*ProofObject, string, float64, string, bool){
		ctx.tryDirectMatch,
		ctx.tryCanonicalRewrite,
		ctx.trySymmetricFlip,
		ctx.tryInverse,
		ctx.tryTransitiveChain,
		ctx.tryPropertyInheritance,
		ctx.tryBackwardChaining,
		ctx.tryModusTollens,
		ctx.tryQuantifiers,
		ctx.tryExplicitNegation,
		ctx.tryCWA,
	}
	for _, strat := range strategies {
		if obj, method, conf, reason, ok := strat(goal, bindings); ok {
			return obj, method, conf, reason
		}
	}
	return &ProofObject{Goal: goalDesc(goal), Valid: false}, "exhausted", 0, "no strategy proved the goal"
}

func goalDesc(md FactMetadata) GoalDescriptor {
	return GoalDescriptor{Operator: md.Operator, Args: md.ArgNames()}
}

// 1. Direct match: exact metadata equality, or high vector similarity, to a
// KB fact.
func (ctx *proofContext) tryDirectMatch(goal FactMetadata, _ Bindings) (*ProofObject, string, float64, string, bool) {
	s := ctx.sess
	args := goal.ArgNames()
	var candidateIDs []string
	if len(args) >= 2 {
		candidateIDs = s.kb.FindByOperatorAndArg0(goal.Operator, args[0])
	} else {
		candidateIDs = s.kb.FindByOperator(goal.Operator)
	}
	for _, id := range candidateIDs {
		fact, _ := s.kb.Get(id)
		if fact.Metadata.Negated {
			continue
		}
		if metadataEqual(fact.Metadata, goal, s.canon) {
			return &ProofObject{
				Goal: goalDesc(goal), Valid: true,
				Steps:     []ProofStep{{Kind: "fact", Detail: fact.Metadata.Render(), FactID: fact.ID}},
				UsesFacts: []string{fact.ID},
			}, "direct_match", s.cfg.Thresholds.ExactMatch, ""
		}
	}
	return nil, "", 0, "", false
}

func metadataEqual(a, b FactMetadata, canon *Canonicalizer) bool {
	if canon.Canonicalize(a.Operator) != canon.Canonicalize(b.Operator) {
		return false
	}
	aArgs, bArgs := a.ArgNames(), b.ArgNames()
	if len(aArgs) != len(bArgs) {
		return false
	}
	for i := range aArgs {
		if canon.Canonicalize(aArgs[i]) != canon.Canonicalize(bArgs[i]) {
			return false
		}
	}
	return true
}

// 2. Canonical rewrite: canonicalize the goal and repeat direct match.
func (ctx *proofContext) tryCanonicalRewrite(goal FactMetadata, bindings Bindings) (*ProofObject, string, float64, string, bool) {
	canon := ctx.sess.canon
	args := make([]Expr, len(goal.Args))
	changed := false
	for i, a := range goal.Args {
		if id, ok := a.(Identifier); ok {
			c := canon.Canonicalize(id.Name)
			if c != id.Name {
				changed = true
			}
			args[i] = Identifier{Name: c}
		} else {
			args[i] = a
		}
	}
	if !changed {
		return nil, "", 0, "", false
	}
	rewritten := FactMetadata{Operator: goal.Operator, Args: args}
	if obj, _, conf, _, ok := ctx.tryDirectMatch(rewritten, bindings); ok {
		obj.Steps = append([]ProofStep{{Kind: "synonym", Detail: "canonicalized to " + rewritten.Render()}}, obj.Steps...)
		return obj, "canonical_rewrite", conf, "", true
	}
	return nil, "", 0, "", false
}

// 3. Symmetric flip: if the operator is declared __SymmetricRelation, try
// swapped arguments.
func (ctx *proofContext) trySymmetricFlip(goal FactMetadata, bindings Bindings) (*ProofObject, string, float64, string, bool) {
	s := ctx.sess
	if len(goal.Args) != 2 {
		return nil, "", 0, "", false
	}
	if len(s.kb.FindByOperatorAndArg0("__SymmetricRelation", goal.Operator)) == 0 {
		return nil, "", 0, "", false
	}
	flipped := FactMetadata{Operator: goal.Operator, Args: []Expr{goal.Args[1], goal.Args[0]}}
	if obj, _, conf, _, ok := ctx.tryDirectMatch(flipped, bindings); ok {
		obj.Steps = append([]ProofStep{{Kind: "validation", Detail: "symmetric flip of " + goal.Render()}}, obj.Steps...)
		return obj, "symmetric_flip", conf, "", true
	}
	return nil, "", 0, "", false
}

// 4. Inverse: if `inverseRelation op1 op2` holds, try the inverse goal.
func (ctx *proofContext) tryInverse(goal FactMetadata, bindings Bindings) (*ProofObject, string, float64, string, bool) {
	s := ctx.sess
	if len(goal.Args) != 2 {
		return nil, "", 0, "", false
	}
	for _, id := range s.kb.FindByOperatorAndArg0("inverseRelation", goal.Operator) {
		fact, _ := s.kb.Get(id)
		as := fact.Metadata.ArgNames()
		if len(as) < 2 {
			continue
		}
		inverse := FactMetadata{Operator: as[1], Args: []Expr{goal.Args[1], goal.Args[0]}}
		if obj, _, conf, _, ok := ctx.tryDirectMatch(inverse, bindings); ok {
			obj.Steps = append([]ProofStep{{Kind: "rule", Detail: "inverseRelation " + goal.Operator + " " + as[1], FactID: fact.ID}}, obj.Steps...)
			return obj, "inverse", conf, "", true
		}
	}
	return nil, "", 0, "", false
}

const defaultTransitiveDepth = 12

// 5. Transitive chain: BFS from arg0 seeking arg1 for declared-transitive
// (or isA/locatedIn by default) relations.
func (ctx *proofContext) tryTransitiveChain(goal FactMetadata, _ Bindings) (*ProofObject, string, float64, string, bool) {
	s := ctx.sess
	args := goal.ArgNames()
	if len(args) != 2 {
		return nil, "", 0, "", false
	}
	if !s.isTransitive(goal.Operator) {
		return nil, "", 0, "", false
	}

	type frame struct {
		name string
		path []*Fact
	}
	start := args[0]
	target := args[1]
	visited := map[string]bool{start: true}
	queue := []frame{{name: start}}
	for len(queue) > 0 && len(queue[0].path) <= defaultTransitiveDepth {
		cur := queue[0]
		queue = queue[1:]
		for _, id := range s.kb.FindByOperatorAndArg0(goal.Operator, cur.name) {
			fact, _ := s.kb.Get(id)
			as := fact.Metadata.ArgNames()
			if len(as) < 2 {
				continue
			}
			next := as[1]
			path := append(append([]*Fact(nil), cur.path...), fact)
			if s.kb.synonymEq(next, target) {
				steps := make([]ProofStep, 0, len(path)+1)
				for _, f := range path {
					steps = append(steps, ProofStep{Kind: "fact", Detail: f.Metadata.Render(), FactID: f.ID})
				}
				steps = append(steps, ProofStep{Kind: "transitive", Detail: fmt.Sprintf("%s transitively connects %s to %s", goal.Operator, start, target)})
				ids := make([]string, 0, len(path))
				for _, f := range path {
					ids = append(ids, f.ID)
				}
				method := "transitive_chain"
				if len(path) == 1 {
					method = "transitive_direct"
				}
				return &ProofObject{Goal: goalDesc(goal), Valid: true, Steps: steps, UsesFacts: ids}, method, s.cfg.Thresholds.HighConfidence, "", true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, frame{name: next, path: path})
			}
		}
	}
	return nil, "", 0, "", false
}

func (s *Session) isTransitive(op string) bool {
	if op == "isA" || op == "locatedIn" {
		return true
	}
	return len(s.kb.FindByOperatorAndArg0("__TransitiveRelation", op)) > 0
}

// 6. Property inheritance: for `op ?subject value`, search upward along
// isA chains for `op ancestor value`.
func (ctx *proofContext) tryPropertyInheritance(goal FactMetadata, _ Bindings) (*ProofObject, string, float64, string, bool) {
	s := ctx.sess
	args := goal.ArgNames()
	if len(args) != 2 || goal.Operator == "isA" {
		return nil, "", 0, "", false
	}
	subject, value := args[0], args[1]
	for _, t := range s.typesOf(subject) {
		for _, id := range s.kb.FindByOperatorAndArg0(goal.Operator, t) {
			fact, _ := s.kb.Get(id)
			as := fact.Metadata.ArgNames()
			if len(as) < 2 || !s.kb.synonymEq(as[1], value) {
				continue
			}
			if fact.Metadata.Negated {
				// The nearest ancestor to declare an opinion about this value
				// says no: a farther ancestor's positive fact must not be
				// inherited past it (spec.md §4.5 strategy 6).
				return nil, "", 0, "", false
			}
			steps := []ProofStep{
				{Kind: "fact", Detail: fmt.Sprintf("isA %s %s", subject, t)},
				{Kind: "fact", Detail: fact.Metadata.Render(), FactID: fact.ID},
				{Kind: "validation", Detail: "property inherited via isA"},
			}
			return &ProofObject{Goal: goalDesc(goal), Valid: true, Steps: steps, UsesFacts: []string{fact.ID}}, "property_inheritance", s.cfg.Thresholds.HighConfidence, "", true
		}
	}
	return nil, "", 0, "", false
}

// 7. Backward chaining with unification: for every rule whose conclusion
// unifies with the goal, recursively prove its condition.
func (ctx *proofContext) tryBackwardChaining(goal FactMetadata, bindings Bindings) (*ProofObject, string, float64, string, bool) {
	s := ctx.sess
	for _, rule := range s.rules {
		b2, ok := UnifyMetadata(rule.Conclusion, goal, bindings.Clone(), s.canon)
		if !ok {
			continue
		}
		cond := SubstituteMetadata(rule.Condition, b2)
		obj, method, conf, _, ok2 := ctx.proveConjunction(cond, b2)
		if !ok2 {
			continue
		}
		steps := append([]ProofStep{{Kind: "rule", Detail: "Implies (" + rule.Condition.Render() + ") (" + rule.Conclusion.Render() + ")", RuleID: rule.ID}}, obj.Steps...)
		return &ProofObject{Goal: goalDesc(goal), Valid: true, Steps: steps, UsesFacts: obj.UsesFacts}, "backward_chaining:" + method, conf, "", true
	}
	return nil, "", 0, "", false
}

// proveConjunction proves a condition that may itself be And/Or/Not
// structured (spec.md §4.5 step 7 "And/Or/Not children handled
// structurally").
func (ctx *proofContext) proveConjunction(cond FactMetadata, bindings Bindings) (*ProofObject, string, float64, string, bool) {
	switch cond.Operator {
	case "And":
		var steps []ProofStep
		var used []string
		for _, part := range cond.Parts {
			obj, _, _, _, ok := ctx.proveConjunction(part, bindings)
			if !ok {
				return nil, "", 0, "", false
			}
			steps = append(steps, obj.Steps...)
			used = append(used, obj.UsesFacts...)
		}
		return &ProofObject{Goal: goalDesc(cond), Valid: true, Steps: steps, UsesFacts: used}, "conjunction", 1, "", true
	case "Or":
		for _, part := range cond.Parts {
			if obj, method, conf, _, ok := ctx.proveConjunction(part, bindings); ok {
				return obj, method, conf, "", true
			}
		}
		return nil, "", 0, "", false
	case "Not":
		if len(cond.Parts) != 1 {
			return nil, "", 0, "", false
		}
		obj, method, conf, reason, valid := ctx.proveNegation(cond.Parts[0], bindings)
		if !valid {
			return nil, "", 0, reason, false
		}
		return obj, method, conf, "", true
	default:
		obj, method, conf, reason := ctx.prove(cond, bindings)
		return obj, method, conf, reason, obj.Valid
	}
}

func (ctx *proofContext) proveNegation(p FactMetadata, bindings Bindings) (*ProofObject, string, float64, string, bool) {
	notGoal := FactMetadata{Operator: "Not", Parts: []FactMetadata{p}}
	obj, method, conf, reason := ctx.prove(notGoal, bindings)
	return obj, method, conf, reason, obj.Valid
}

// 8. Modus tollens: for a `Not P` goal, find a rule A -> B with A unifying
// P, then recursively prove Not B; if that holds, A->B and Not B give Not A.
func (ctx *proofContext) tryModusTollens(goal FactMetadata, bindings Bindings) (*ProofObject, string, float64, string, bool) {
	if goal.Operator != "Not" || len(goal.Parts) != 1 {
		return nil, "", 0, "", false
	}
	p := goal.Parts[0]
	s := ctx.sess
	for _, rule := range s.rules {
		b2, ok := UnifyMetadata(rule.Condition, p, bindings.Clone(), s.canon)
		if !ok {
			continue
		}
		notB := FactMetadata{Operator: "Not", Parts: []FactMetadata{SubstituteMetadata(rule.Conclusion, b2)}}
		obj, method, conf, reason := ctx.prove(notB, b2)
		if !obj.Valid {
			continue
		}
		steps := append([]ProofStep{{Kind: "rule", Detail: "modus tollens via " + rule.Condition.Render() + " -> " + rule.Conclusion.Render(), RuleID: rule.ID}}, obj.Steps...)
		return &ProofObject{Goal: goalDesc(goal), Valid: true, Steps: steps, UsesFacts: obj.UsesFacts}, "modus_tollens:" + method, conf, reason, true
	}
	return nil, "", 0, "", false
}

// 9. Quantifier rules: Exists via witness search; Not Exists via declared
// type disjointness.
func (ctx *proofContext) tryQuantifiers(goal FactMetadata, bindings Bindings) (*ProofObject, string, float64, string, bool) {
	s := ctx.sess
	switch goal.Operator {
	case "Exists":
		if goal.Variable == "" || len(goal.Body) != 1 {
			return nil, "", 0, "", false
		}
		body := goal.Body[0]
		for _, name := range s.vocab.Names() {
			witness := SubstituteMetadata(body, Bindings{goal.Variable: Identifier{Name: name}})
			obj, method, conf, _ := ctx.prove(witness, bindings.Clone())
			if obj.Valid {
				steps := append([]ProofStep{{Kind: "unification_match", Detail: "witness " + goal.Variable + "=" + name}}, obj.Steps...)
				return &ProofObject{Goal: goalDesc(goal), Valid: true, Steps: steps, UsesFacts: obj.UsesFacts}, "exists_witness:" + method, conf, "", true
			}
		}
		return nil, "", 0, "", false
	case "Not":
		if len(goal.Parts) != 1 || goal.Parts[0].Operator != "Exists" {
			return nil, "", 0, "", false
		}
		inner := goal.Parts[0]
		if inner.Operator == "Exists" && len(inner.Body) == 1 && inner.Body[0].Operator == "And" && len(inner.Body[0].Parts) == 2 {
			a, b := inner.Body[0].Parts[0], inner.Body[0].Parts[1]
			if a.Operator == "isA" && b.Operator == "isA" {
				aArgs, bArgs := a.ArgNames(), b.ArgNames()
				if len(aArgs) == 2 && len(bArgs) == 2 {
					for _, d := range s.theory.disjoint {
						if (s.kb.synonymEq(aArgs[1], d.T1) && s.kb.synonymEq(bArgs[1], d.T2)) ||
							(s.kb.synonymEq(aArgs[1], d.T2) && s.kb.synonymEq(bArgs[1], d.T1)) {
							steps := []ProofStep{{Kind: "validation", Detail: fmt.Sprintf("DISJOINT_WITH %s %s", d.T1, d.T2)}}
							return &ProofObject{Goal: goalDesc(goal), Valid: true, Steps: steps}, "not_exists_disjoint", s.cfg.Thresholds.HighConfidence, "", true
						}
					}
				}
			}
		}
		return nil, "", 0, "", false
	}
	return nil, "", 0, "", false
}

// 10. Explicit negation: `Not P` holds if a fact explicitly asserting
// `Not P` exists.
func (ctx *proofContext) tryExplicitNegation(goal FactMetadata, _ Bindings) (*ProofObject, string, float64, string, bool) {
	if goal.Operator != "Not" || len(goal.Parts) != 1 {
		return nil, "", 0, "", false
	}
	inner := goal.Parts[0]
	s := ctx.sess
	args := inner.ArgNames()
	var ids []string
	if len(args) > 0 {
		ids = s.kb.FindByOperatorAndArg0(inner.Operator, args[0])
	} else {
		ids = s.kb.FindByOperator(inner.Operator)
	}
	for _, id := range ids {
		fact, _ := s.kb.Get(id)
		if fact.Metadata.Negated && metadataEqual(FactMetadata{Operator: fact.Metadata.Operator, Args: fact.Metadata.Args}, inner, s.canon) {
			return &ProofObject{
				Goal: goalDesc(goal), Valid: true,
				Steps:     []ProofStep{{Kind: "fact", Detail: "Not " + fact.Metadata.Render(), FactID: fact.ID}},
				UsesFacts: []string{fact.ID},
			}, "explicit_negation", s.cfg.Thresholds.ExactMatch, "", true
		}
	}
	return nil, "", 0, "", false
}

// 11. Closed-world assumption (opt-in): `Not P` holds if P is unprovable.
func (ctx *proofContext) tryCWA(goal FactMetadata, bindings Bindings) (*ProofObject, string, float64, string, bool) {
	if !ctx.sess.cwa || goal.Operator != "Not" || len(goal.Parts) != 1 {
		return nil, "", 0, "", false
	}
	p := goal.Parts[0]
	obj, _, _, _ := ctx.prove(p, bindings)
	if obj.Valid {
		return nil, "", 0, "", false
	}
	return &ProofObject{
		Goal:  goalDesc(goal),
		Valid: true,
		Steps: []ProofStep{{Kind: "validation", Detail: "closed-world assumption: " + p.Render() + " is unprovable"}},
	}, "closed_world_assumption", ctx.sess.cfg.Thresholds.ModerateConfidence, "", true
}

// ValidateProof independently walks obj's tree once, checking that every
// `fact` step references a KB fact that still exists and every `rule` step
// references a rule that still exists (spec.md §4.5 "independent
// validator", §7).
func (s *Session) ValidateProof(obj *ProofObject) bool {
	if obj == nil {
		return false
	}
	if !obj.Valid {
		return true // an invalid proof trivially "validates" as invalid
	}
	for _, step := range obj.Steps {
		if step.FactID != "" {
			if _, ok := s.kb.Get(step.FactID); !ok {
				return false
			}
		}
		if step.RuleID != "" {
			found := false
			for _, r := range s.rules {
				if r.ID == step.RuleID {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}
