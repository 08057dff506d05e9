package hdreason

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// BindingResult is one hole's answer within a QueryResult (spec.md §6).
type BindingResult struct {
	Answer       string
	Similarity   float64
	Alternatives []string
	Method       string
}

// ResultCandidate is one fully-verified binding combination (spec.md §6
// "allResults").
type ResultCandidate struct {
	Bindings map[string]string
	Proof    *ProofObject
	Score    float64
	Method   string
}

// QueryResult is the return shape of Session.Query (spec.md §6).
type QueryResult struct {
	Success    bool
	Bindings   map[string]BindingResult
	AllResults []ResultCandidate
	Confidence float64
	Errors     []string
}

// holeQuery is the decomposition of a goal statement with one or more `?v`
// holes (spec.md §4.6).
type holeQuery struct {
	operator  string
	opVec     Vector
	partial   Vector // bundle of opVec + bound known args, holes omitted
	holeNames []string
	holePos   []int
	argByPos  map[int]Expr // every argument (known and hole) keyed by 1-based position
}

// Query executes a hole-filling pattern match, or dispatches to a
// meta-operator (deduce/whatif/explain/findAll) when the goal's operator
// names one (spec.md §4.6).
func (s *Session) Query(dsl string) QueryResult {
	s.stats.Queries++
	prog, err := Parse(dsl)
	if err != nil || len(prog.Statements) == 0 {
		return QueryResult{Success: false, Errors: []string{"could not parse query"}}
	}
	goal := s.canon.CanonicalizeStatement(prog.Statements[0])

	if handler, ok := metaOperators[goal.Operator]; ok {
		return handler(s, goal)
	}

	hq, holes, err := s.decomposeHoles(goal)
	if err != nil {
		return QueryResult{Success: false, Errors: []string{err.Error()}}
	}
	if len(holes) == 0 {
		pv := s.Prove(goal.Operator + " " + joinArgStrings(goal.Args))
		return QueryResult{Success: pv.Valid, Confidence: pv.Confidence}
	}

	s.stats.HDCQueries++
	// Every hole's residual unbind and candidate decode is independent of
	// every other hole's, so they fan out across an errgroup rather than
	// running one at a time (spec.md §4.6 step 2; SPEC_FULL.md DOMAIN STACK).
	perHole := make([][]DecodeCandidate, len(hq.holePos))
	g, _ := errgroup.WithContext(context.Background())
	for i, p := range hq.holePos {
		i, p := i, p
		g.Go(func() error {
			residual, err := s.sess_unbindForHole(hq.partial, p)
			if err != nil {
				return err
			}
			cands, _ := s.facade.DecodeUnboundCandidates(residual, DecodeOptions{Session: s, MaxCandidates: s.cfg.Limits.MaxSolutions})
			perHole[i] = cands
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return QueryResult{Success: false, Errors: []string{err.Error()}}
	}
	candidatesByHole := make(map[string][]DecodeCandidate, len(holes))
	for i, p := range hq.holePos {
		candidatesByHole[fmt.Sprintf("%d", p)] = perHole[i]
	}

	var results []ResultCandidate
	s.combineHoleCandidates(hq, candidatesByHole, map[string]string{}, 0, &results)

	if len(results) > 0 {
		s.stats.HDCSuccesses++
	}

	out := QueryResult{Success: len(results) > 0, AllResults: results, Bindings: map[string]BindingResult{}}
	seenPerHole := map[string]map[string]bool{}
	for _, r := range results {
		if r.Score > out.Confidence {
			out.Confidence = r.Score
		}
		for name, val := range r.Bindings {
			if seenPerHole[name] == nil {
				seenPerHole[name] = map[string]bool{}
			}
			if !seenPerHole[name][val] {
				seenPerHole[name][val] = true
				b := out.Bindings[name]
				if b.Answer == "" || r.Score > b.Similarity {
					b.Answer = val
					b.Similarity = r.Score
					b.Method = r.Method
				} else {
					b.Alternatives = append(b.Alternatives, val)
				}
				out.Bindings[name] = b
			}
		}
	}
	return out
}

// decomposeHoles builds the partial statement vector (known positions
// bound, holes omitted) and records each hole's name and argument position
// (spec.md §4.6 step 1).
func (s *Session) decomposeHoles(goal Statement) (holeQuery, []Hole, error) {
	opVec, err := s.vocab.Intern(goal.Operator)
	if err != nil {
		return holeQuery{}, nil, err
	}
	hq := holeQuery{operator: goal.Operator, opVec: opVec, partial: opVec, argByPos: map[int]Expr{}}
	var holes []Hole
	for i, a := range goal.Args {
		pos := i + 1
		hq.argByPos[pos] = a
		if h, ok := a.(Hole); ok {
			hq.holeNames = append(hq.holeNames, h.Name)
			hq.holePos = append(hq.holePos, pos)
			holes = append(holes, h)
			continue
		}
		argVec, err := s.executor.resolveExpr(a)
		if err != nil {
			return holeQuery{}, nil, err
		}
		positioned, err := s.vocab.Position().WithPosition(pos, argVec)
		if err != nil {
			return holeQuery{}, nil, err
		}
		bound, err := s.facade.Bind(opVec, positioned)
		if err != nil {
			return holeQuery{}, nil, err
		}
		hq.partial, err = s.facade.Bundle(hq.partial, bound)
		if err != nil {
			return holeQuery{}, nil, err
		}
	}
	return hq, holes, nil
}

// sess_unbindForHole computes residual_p = unbind(unbind(kb, partial), Pos_p)
// (spec.md §4.6 step 2).
func (s *Session) sess_unbindForHole(partial Vector, p int) (Vector, error) {
	stripped, err := s.facade.Unbind(s.kbVector, partial)
	if err != nil {
		return Vector{}, err
	}
	return s.vocab.Position().RemovePosition(p, stripped)
}

// combineHoleCandidates explores the Cartesian product of per-hole
// candidates (bounded by MaxSolutions), verifying each complete binding by
// rebuilding the full statement vector and checking it against the KB
// (spec.md §4.6 steps 4-5).
func (s *Session) combineHoleCandidates(hq holeQuery, byHole map[string][]DecodeCandidate, current map[string]string, idx int, out *[]ResultCandidate) {
	if len(*out) >= s.cfg.Limits.MaxSolutions {
		return
	}
	if idx == len(hq.holePos) {
		bindings := make(map[string]string, len(current))
		for k, v := range current {
			bindings[k] = v
		}
		if rc, ok := s.verifyBinding(hq, bindings); ok {
			*out = append(*out, rc)
		}
		return
	}
	key := fmt.Sprintf("%d", hq.holePos[idx])
	for _, c := range byHole[key] {
		current[hq.holeNames[idx]] = c.Name
		s.combineHoleCandidates(hq, byHole, current, idx+1, out)
	}
	delete(current, hq.holeNames[idx])
}

// verifyBinding rebuilds the full statement vector for one candidate
// binding and checks it against the KB, holographically (similarity to
// kbVector) and symbolically (component-KB membership). holographicPriority
// (the default) skips the symbolic check once holography validates;
// symbolicPriority always runs both.
func (s *Session) verifyBinding(hq holeQuery, bindings map[string]string) (ResultCandidate, bool) {
	full := hq.opVec
	maxPos := 0
	for p := range hq.argByPos {
		if p > maxPos {
			maxPos = p
		}
	}
	args := make([]Expr, 0, maxPos)
	for p := 1; p <= maxPos; p++ {
		a, ok := hq.argByPos[p]
		if !ok {
			continue
		}
		if h, isHole := a.(Hole); isHole {
			a = Identifier{Name: h.Name}
		}
		args = append(args, a)
		var argVec Vector
		var err error
		if id, isID := a.(Identifier); isID {
			if val, bound := bindings[id.Name]; bound {
				argVec, err = s.vocab.Intern(val)
			} else {
				argVec, err = s.executor.resolveExpr(a)
			}
		} else {
			argVec, err = s.executor.resolveExpr(a)
		}
		if err != nil {
			return ResultCandidate{}, false
		}
		positioned, err := s.vocab.Position().WithPosition(p, argVec)
		if err != nil {
			return ResultCandidate{}, false
		}
		bound, err := s.facade.Bind(hq.opVec, positioned)
		if err != nil {
			return ResultCandidate{}, false
		}
		full, err = s.facade.Bundle(full, bound)
		if err != nil {
			return ResultCandidate{}, false
		}
	}

	sim, err := s.facade.Similarity(full, s.kbVector)
	if err != nil {
		return ResultCandidate{}, false
	}
	if sim >= s.cfg.Thresholds.BundleMembership {
		s.stats.HoloSkipSymbolic++
		return ResultCandidate{Bindings: bindings, Score: sim, Method: "holographic"}, true
	}

	resolvedArgNames := make([]string, len(args))
	for i, a := range args {
		if id, ok := a.(Identifier); ok {
			if v, bound := bindings[id.Name]; bound {
				resolvedArgNames[i] = v
				continue
			}
		}
		resolvedArgNames[i] = a.String()
	}
	for _, id := range s.kb.FindByOperator(hq.operator) {
		fact, _ := s.kb.Get(id)
		factArgs := fact.Metadata.ArgNames()
		if len(factArgs) != len(resolvedArgNames) {
			continue
		}
		match := true
		for i := range factArgs {
			if !s.kb.synonymEq(factArgs[i], resolvedArgNames[i]) {
				match = false
				break
			}
		}
		if match {
			return ResultCandidate{Bindings: bindings, Score: s.cfg.Thresholds.HighConfidence, Method: "symbolic"}, true
		}
	}
	if sim >= s.cfg.Thresholds.WeakCandidate {
		return ResultCandidate{Bindings: bindings, Score: sim, Method: "weak_holographic"}, true
	}
	return ResultCandidate{}, false
}

func joinArgStrings(args []Expr) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += " "
		}
		out += a.String()
	}
	return out
}

// metaOperatorFunc dispatches one meta-operator over an already-canonicalized
// goal statement (spec.md §9 "small table from operator-name -> handler").
type metaOperatorFunc func(s *Session, goal Statement) QueryResult

var metaOperators = map[string]metaOperatorFunc{
	"deduce":  metaDeduce,
	"whatif":  metaWhatIf,
	"explain": metaExplain,
	"findAll": metaFindAll,
}

// metaDeduce performs a forward BFS over facts matching a filter from src,
// up to depth/limit, emitting a proof chain (spec.md §4.6).
func metaDeduce(s *Session, goal Statement) QueryResult {
	if len(goal.Args) < 2 {
		return QueryResult{Success: false, Errors: []string{"deduce requires src and filter"}}
	}
	src := goal.Args[0].String()
	filter := goal.Args[1].String()
	depth := 3
	limit := 10
	if len(goal.Args) > 3 {
		if n, ok := goal.Args[3].(NumberLit); ok {
			limit = int(n.Value)
		}
	}
	if len(goal.Args) > 2 {
		if n, ok := goal.Args[2].(NumberLit); ok {
			depth = int(n.Value)
		}
	}

	var chain []ProofStep
	visited := map[string]bool{src: true}
	frontier := []string{src}
	matches := 0
	for d := 0; d < depth && matches < limit; d++ {
		var next []string
		for _, name := range frontier {
			for _, id := range s.kb.FindByArg0(name) {
				fact, _ := s.kb.Get(id)
				if !s.kb.synonymEq(fact.Metadata.Operator, filter) {
					continue
				}
				chain = append(chain, ProofStep{Kind: "fact", Detail: fact.Metadata.Render(), FactID: fact.ID})
				matches++
				args := fact.Metadata.ArgNames()
				if len(args) > 1 && !visited[args[1]] {
					visited[args[1]] = true
					next = append(next, args[1])
				}
				if matches >= limit {
					break
				}
			}
		}
		frontier = next
	}
	obj := &ProofObject{Goal: goalDesc(FactMetadata{Operator: goal.Operator, Args: goal.Args}), Valid: matches > 0, Steps: chain}
	return QueryResult{Success: matches > 0, AllResults: []ResultCandidate{{Proof: obj, Score: float64(matches), Method: "deduce"}}}
}

// metaWhatIf temporarily removes every fact whose operator is cause from the
// live KB, attempts to prove target, re-adds the removed facts (at the end of
// the KB's insertion order), and classifies the outcome (spec.md §4.6).
func metaWhatIf(s *Session, goal Statement) QueryResult {
	if len(goal.Args) < 2 {
		return QueryResult{Success: false, Errors: []string{"whatif requires cause and target"}}
	}
	cause := goal.Args[0].String()
	target := goal.Args[1]

	removed := s.kb.FindByOperator(cause)
	removedFacts := make([]*Fact, 0, len(removed))
	for _, id := range removed {
		if f, ok := s.kb.Get(id); ok {
			removedFacts = append(removedFacts, f)
			s.kb.Remove(id)
		}
	}

	targetDSL := ""
	if c, ok := target.(Compound); ok {
		targetDSL = c.Operator + " " + joinArgStrings(c.Args)
	} else {
		targetDSL = target.String()
	}
	pv := s.Prove(targetDSL)

	for _, f := range removedFacts {
		s.kb.Add(f)
	}

	outcome := "unchanged"
	if !pv.Valid {
		outcome = "would_fail"
	} else if pv.Confidence < s.cfg.Thresholds.HighConfidence {
		outcome = "uncertain"
	}
	return QueryResult{
		Success:    true,
		Bindings:   map[string]BindingResult{"outcome": {Answer: outcome, Similarity: pv.Confidence, Method: "whatif"}},
		AllResults: []ResultCandidate{{Proof: pv.ProofObj, Score: pv.Confidence, Method: "whatif:" + outcome}},
	}
}

// metaExplain attempts prove-first, falling back to abduce, and renders a
// natural-language explanation (spec.md §4.6).
func metaExplain(s *Session, goal Statement) QueryResult {
	if len(goal.Args) == 0 {
		return QueryResult{Success: false, Errors: []string{"explain requires a goal"}}
	}
	c, ok := goal.Args[0].(Compound)
	var dsl string
	if ok {
		dsl = c.Operator + " " + joinArgStrings(c.Args)
	} else {
		dsl = goal.Args[0].String()
	}
	pv := s.Prove(dsl)
	if pv.Valid {
		why := fmt.Sprintf("%s holds via %s", dsl, pv.Method)
		return QueryResult{
			Success:  true,
			Bindings: map[string]BindingResult{"why": {Answer: why, Method: pv.Method, Similarity: pv.Confidence}},
			AllResults: []ResultCandidate{{Proof: pv.ProofObj, Score: pv.Confidence, Method: pv.Method}},
		}
	}
	ar := s.Abduce(dsl)
	if ar.Success && len(ar.Explanations) > 0 {
		why := fmt.Sprintf("%s would hold if %s", dsl, ar.Explanations[0])
		return QueryResult{
			Success:  true,
			Bindings: map[string]BindingResult{"why": {Answer: why, Method: "abduce"}},
		}
	}
	return QueryResult{Success: false, Errors: []string{"no explanation found for " + dsl}}
}

// metaFindAll enumerates bindings satisfying a pattern (spec.md §4.6) by
// running the pattern through Query, so its results are bounded exactly like
// a plain hole query's.
func metaFindAll(s *Session, goal Statement) QueryResult {
	if len(goal.Args) == 0 {
		return QueryResult{Success: false, Errors: []string{"findAll requires a pattern"}}
	}
	inner, ok := goal.Args[0].(Compound)
	if !ok {
		return QueryResult{Success: false, Errors: []string{"findAll pattern must be a compound"}}
	}
	innerStmt := Statement{Operator: inner.Operator, Args: inner.Args}
	return s.Query(innerStmt.Operator + " " + joinArgStrings(innerStmt.Args))
}

// AbduceResult is the return shape of Session.Abduce (spec.md §6).
type AbduceResult struct {
	Success      bool
	Explanations []string
}

// Abduce finds rules whose conclusion unifies with goal and reports their
// conditions as candidate explanations (a lightweight reverse of backward
// chaining, used by metaExplain and directly via Session.Abduce).
func (s *Session) Abduce(dsl string) AbduceResult {
	prog, err := Parse(dsl)
	if err != nil || len(prog.Statements) == 0 {
		return AbduceResult{Success: false}
	}
	goal := s.canon.CanonicalizeStatement(prog.Statements[0])
	md := FactMetadata{Operator: goal.Operator, Args: goal.Args}
	var explanations []string
	for _, rule := range s.rules {
		if _, ok := UnifyMetadata(rule.Conclusion, md, Bindings{}, s.canon); ok {
			explanations = append(explanations, rule.Condition.Render())
		}
	}
	return AbduceResult{Success: len(explanations) > 0, Explanations: explanations}
}

// InduceResult is the return shape of Session.Induce (spec.md §6).
type InduceResult struct {
	Success        bool
	Patterns       []string
	SuggestedRules []string
}

// Induce looks for operators that co-occur on the same subject across
// multiple facts, suggesting an `Implies` rule candidate between them. This
// is a simple, bounded pattern-mining pass, not a general ILP solver.
func (s *Session) Induce() InduceResult {
	bySubject := map[string]map[string]bool{}
	for _, f := range s.kb.Facts() {
		args := f.Metadata.ArgNames()
		if len(args) == 0 {
			continue
		}
		if bySubject[args[0]] == nil {
			bySubject[args[0]] = map[string]bool{}
		}
		bySubject[args[0]][f.Metadata.Operator] = true
	}
	pairCounts := map[[2]string]int{}
	for _, ops := range bySubject {
		var list []string
		for op := range ops {
			list = append(list, op)
		}
		for i := 0; i < len(list); i++ {
			for j := 0; j < len(list); j++ {
				if i == j {
					continue
				}
				pairCounts[[2]string{list[i], list[j]}]++
			}
		}
	}
	var patterns, rules []string
	for pair, count := range pairCounts {
		if count < 2 {
			continue
		}
		patterns = append(patterns, fmt.Sprintf("%s co-occurs with %s (%d subjects)", pair[0], pair[1], count))
		rules = append(rules, fmt.Sprintf("Implies (%s ?x ?v) (%s ?x ?v)", pair[0], pair[1]))
	}
	return InduceResult{Success: len(patterns) > 0, Patterns: patterns, SuggestedRules: rules}
}

// FindAllResult is the return shape of Session.FindAll (spec.md §6).
type FindAllResult struct {
	Success bool
	Count   int
	Results []ResultCandidate
}

// FindAll exhaustively enumerates every binding satisfying pattern.
func (s *Session) FindAll(pattern string) FindAllResult {
	qr := s.Query(pattern)
	return FindAllResult{Success: qr.Success, Count: len(qr.AllResults), Results: qr.AllResults}
}
