package hdreason

import "fmt"

// planActionDef is one STRIPS-style action declared via
// `requires/causes/prevents` facts (spec.md §4.9 Planning).
type planActionDef struct {
	name     string
	requires []string
	causes   []string
	prevents []string
	cost     float64
	toolSig  string // from actionSig, if declared
}

// planState is a set of fact strings ("relation arg0 arg1") describing
// what holds at one point in the plan.
type planState map[string]bool

func stateKey(op string, args []string) string {
	k := op
	for _, a := range args {
		k += " " + a
	}
	return k
}

// solvePlanning runs a bounded breadth-first search from a start state to a
// conjunction of goal facts, applying declared actions (spec.md §4.9
// Planning).
func (s *Session) solvePlanning(stmt Statement) (*SolveResult, error) {
	actions := s.loadPlanActions()
	if len(actions) == 0 {
		return nil, newExecutionError("InvalidArgument", "solve planning: no requires/causes action facts declared")
	}

	start := s.currentPlanState()
	if e, ok := configEntry(stmt, "start"); ok && e.From != "" {
		if ref, found := s.scope[e.From]; found {
			_ = ref // the declared start is a KB reference; state is still read from the live KB
		}
	}

	goalEntries := configEntries(stmt, "goal")
	if len(goalEntries) == 0 {
		return nil, newExecutionError("InvalidArgument", "solve planning requires at least one 'goal' entry")
	}
	var goals []string
	for _, g := range goalEntries {
		if c, ok := g.Value.(Compound); ok {
			goals = append(goals, stateKey(c.Operator, argStrings(c.Args)))
		}
	}

	maxDepth := s.cfg.Limits.MaxPlanDepth
	if e, ok := configEntry(stmt, "maxDepth"); ok {
		if n, ok := e.Value.(NumberLit); ok {
			maxDepth = int(n.Value)
		}
	}

	guard := s.loadPlanGuard(stmt)

	path := s.bfsPlan(start, goals, actions, guard, maxDepth)
	if path == nil {
		return &SolveResult{Kind: "planning"}, nil
	}

	result := &SolveResult{Kind: "planning"}
	var totalCost float64
	for i, step := range path {
		md := FactMetadata{Operator: "planStep", Source: "solve planning"}
		vec, err := s.resolveDSLLiteral(fmt.Sprintf("planStep %d \"%s\"", i+1, step.name))
		if err != nil {
			return nil, err
		}
		fact := s.addFact(md, vec)
		result.SolutionIDs = append(result.SolutionIDs, fact.ID)
		result.Facts = append(result.Facts, fmt.Sprintf("planStep %d %s", i+1, step.name))
		totalCost += step.cost
		if step.toolSig != "" {
			result.Facts = append(result.Facts, fmt.Sprintf("planAction %s %s", step.name, step.toolSig))
		}
	}
	planVec, err := s.resolveDSLLiteral(fmt.Sprintf("plan \"plan\" %d", len(path)))
	if err == nil {
		s.addFact(FactMetadata{Operator: "plan", Source: "solve planning"}, planVec)
	}
	costVec, err := s.resolveDSLLiteral(fmt.Sprintf("planCost \"plan\" %v", totalCost))
	if err == nil {
		s.addFact(FactMetadata{Operator: "planCost", Source: "solve planning"}, costVec)
	}
	result.Facts = append(result.Facts, fmt.Sprintf("plan plan %d", len(path)), fmt.Sprintf("planCost plan %v", totalCost))
	return result, nil
}

func argStrings(args []Expr) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a.String()
	}
	return out
}

// resolveDSLLiteral builds the statement vector for a small literal DSL
// fragment without persisting it via Learn (the planner constructs result
// facts directly, the way solveCSP does).
func (s *Session) resolveDSLLiteral(dsl string) (Vector, error) {
	prog, err := Parse(dsl)
	if err != nil || len(prog.Statements) == 0 {
		return Vector{}, newExecutionError("InvalidArgument", "could not build plan fact literal")
	}
	return s.executor.resolveCompound(Compound{Operator: prog.Statements[0].Operator, Args: prog.Statements[0].Args})
}

// loadPlanActions reads every `requires`/`causes`/`prevents` fact grouped
// by action name (the action's subject), plus optional `actionCost` and
// `actionSig` facts.
func (s *Session) loadPlanActions() []planActionDef {
	byName := map[string]*planActionDef{}
	get := func(name string) *planActionDef {
		if a, ok := byName[name]; ok {
			return a
		}
		a := &planActionDef{name: name, cost: 1}
		byName[name] = a
		return a
	}
	for _, id := range s.kb.FindByOperator("requires") {
		f, _ := s.kb.Get(id)
		args := f.Metadata.ArgNames()
		if len(args) < 2 {
			continue
		}
		a := get(args[0])
		a.requires = append(a.requires, args[1])
	}
	for _, id := range s.kb.FindByOperator("causes") {
		f, _ := s.kb.Get(id)
		args := f.Metadata.ArgNames()
		if len(args) < 2 {
			continue
		}
		a := get(args[0])
		a.causes = append(a.causes, args[1])
	}
	for _, id := range s.kb.FindByOperator("prevents") {
		f, _ := s.kb.Get(id)
		args := f.Metadata.ArgNames()
		if len(args) < 2 {
			continue
		}
		a := get(args[0])
		a.prevents = append(a.prevents, args[1])
	}
	for _, id := range s.kb.FindByOperator("actionSig") {
		f, _ := s.kb.Get(id)
		args := f.Metadata.ArgNames()
		if len(args) < 2 {
			continue
		}
		get(args[0]).toolSig = args[1]
	}
	for _, id := range s.kb.FindByOperator("actionCost") {
		f, _ := s.kb.Get(id)
		if len(f.Metadata.Args) < 2 {
			continue
		}
		if n, ok := f.Metadata.Args[1].(NumberLit); ok {
			get(f.Metadata.ArgNames()[0]).cost = n.Value
		}
	}
	out := make([]planActionDef, 0, len(byName))
	for _, a := range byName {
		out = append(out, *a)
	}
	return out
}

// loadPlanGuard reads an optional `guard/conflictOp/locationOp` config
// entry declaring a same-location conflict constraint that must hold in
// every visited state (spec.md §4.9).
type planGuard struct {
	conflictOp string
	locationOp string
}

func (s *Session) loadPlanGuard(stmt Statement) *planGuard {
	conflictEntry, hasConflict := configEntry(stmt, "conflictOp")
	locationEntry, hasLocation := configEntry(stmt, "locationOp")
	if !hasConflict || !hasLocation {
		return nil
	}
	c, _ := conflictEntry.Value.(Identifier)
	l, _ := locationEntry.Value.(Identifier)
	if c.Name == "" || l.Name == "" {
		return nil
	}
	return &planGuard{conflictOp: c.Name, locationOp: l.Name}
}

// guardHolds checks that no two entities sharing a location (per
// locationOp) are in conflict (per conflictOp) in state — a coarse
// same-location conflict check applied uniformly to every visited state.
func (s *Session) guardHolds(state planState, g *planGuard) bool {
	if g == nil {
		return true
	}
	locations := map[string]string{}
	for fact := range state {
		var subj, loc string
		if n, _ := fmt.Sscanf(fact, g.locationOp+" %s %s", &subj, &loc); n == 2 {
			locations[subj] = loc
		}
	}
	for a, locA := range locations {
		for b, locB := range locations {
			if a == b || locA != locB {
				continue
			}
			if state[stateKey(g.conflictOp, []string{a, b})] || state[stateKey(g.conflictOp, []string{b, a})] {
				return false
			}
		}
	}
	return true
}

// currentPlanState snapshots the live KB into a planState set (every
// persisted fact's "operator arg0 arg1..." string).
func (s *Session) currentPlanState() planState {
	st := planState{}
	for _, f := range s.kb.Facts() {
		st[stateKey(f.Metadata.Operator, f.Metadata.ArgNames())] = true
	}
	return st
}

func applyAction(state planState, a planActionDef) planState {
	next := planState{}
	for k := range state {
		next[k] = true
	}
	for _, p := range a.prevents {
		delete(next, p)
	}
	for _, c := range a.causes {
		next[c] = true
	}
	return next
}

func satisfiesRequires(state planState, a planActionDef) bool {
	for _, r := range a.requires {
		if !state[r] {
			return false
		}
	}
	return true
}

func satisfiesGoals(state planState, goals []string) bool {
	for _, g := range goals {
		if !state[g] {
			return false
		}
	}
	return true
}

// bfsPlan explores states breadth-first up to maxDepth, returning the first
// (shortest) action sequence reaching a state satisfying every goal, or nil
// if none is found (spec.md §4.9 Planning).
func (s *Session) bfsPlan(start planState, goals []string, actions []planActionDef, guard *planGuard, maxDepth int) []planActionDef {
	type node struct {
		state planState
		path  []planActionDef
	}
	visited := map[string]bool{}
	fingerprint := func(st planState) string {
		var keys []string
		for k := range st {
			keys = append(keys, k)
		}
		return fmt.Sprint(keys)
	}
	queue := []node{{state: start}}
	visited[fingerprint(start)] = true

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if satisfiesGoals(cur.state, goals) {
			return cur.path
		}
		if len(cur.path) >= maxDepth {
			continue
		}
		for _, a := range actions {
			if !satisfiesRequires(cur.state, a) {
				continue
			}
			next := applyAction(cur.state, a)
			if !s.guardHolds(next, guard) {
				continue
			}
			fp := fingerprint(next)
			if visited[fp] {
				continue
			}
			visited[fp] = true
			queue = append(queue, node{state: next, path: append(append([]planActionDef(nil), cur.path...), a)})
		}
	}
	return nil
}
