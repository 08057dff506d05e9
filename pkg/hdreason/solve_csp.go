package hdreason

import (
	"context"
	"fmt"

	"github.com/hyprcog/hdreason/internal/parallel"
)

// cspVariable is one variable enumerated from `isA ?x T` for a solve's
// `guests from Guest` style config entry (spec.md §4.9).
type cspVariable struct {
	name   string
	domain []string // candidate values, from `tables from Table`
}

// cspConstraint is a binary inequality constraint connected by a named
// relation (`noConflict conflictsWith`) or the implicit all-different rule.
type cspConstraint struct {
	kind     string // "noConflict" | "allDifferent"
	relation string // operator name, for "noConflict"
}

// solveCSP enumerates every solution to a CSP declared by a `solve csp`/
// `solve WeddingSeating` statement (spec.md §4.9). Variables and their
// domains come from `<name> from <Type>` config entries; constraints come
// from `noConflict <op>` / `allDifferent` entries.
func (s *Session) solveCSP(stmt Statement) (*SolveResult, error) {
	varEntries := configEntries(stmt, "guests")
	domEntries := configEntries(stmt, "tables")
	if len(varEntries) == 0 || len(domEntries) == 0 {
		varEntries, domEntries = inferCSPRoles(stmt)
	}
	if len(varEntries) == 0 || len(domEntries) == 0 {
		return nil, newExecutionError("InvalidArgument", "solve csp requires a variable-role and domain-role 'from' entry")
	}

	varType := varEntries[0].From
	domType := domEntries[0].From
	vars := s.enumerateType(varType)
	domain := s.enumerateType(domType)
	if len(vars) == 0 || len(domain) == 0 {
		return nil, newExecutionError("InvalidArgument", "solve csp: empty variable or domain set for "+varType+"/"+domType)
	}

	var constraints []cspConstraint
	for _, e := range configEntries(stmt, "noConflict") {
		if id, ok := e.Value.(Identifier); ok {
			constraints = append(constraints, cspConstraint{kind: "noConflict", relation: id.Name})
		}
	}
	if _, ok := configEntry(stmt, "allDifferent"); ok {
		constraints = append(constraints, cspConstraint{kind: "allDifferent"})
	}

	// The persisted relation is named after the solve's own destination
	// (`@seating solve ...` -> "seating"), not the noConflict constraint's
	// relation: queries address the solution by the name the caller gave it
	// (spec.md §8 scenario 5's `query "seating Alice ?table"`), and
	// noConflict's relation is only an input constraint, not the output
	// shape.
	relationName := stmt.Dest
	if relationName == "" {
		relationName = "assignedTo"
	}

	solutions := s.backtrackCSP(vars, domain, constraints)

	result := &SolveResult{Kind: "csp"}
	for _, assignment := range solutions {
		vec, err := s.buildCSPSolutionVector(relationName, vars, assignment)
		if err != nil {
			return nil, err
		}
		md := FactMetadata{
			Operator: "cspSolution",
			Source:   "solve csp",
		}
		fact := s.addFact(md, vec)
		result.SolutionIDs = append(result.SolutionIDs, fact.ID)
		for i, v := range vars {
			nl := fmt.Sprintf("%s %s %s", relationName, v, assignment[i])
			result.Facts = append(result.Facts, nl)
		}
	}
	return result, nil
}

// inferCSPRoles falls back to the first two `from` entries in declaration
// order when the config doesn't use the literal `guests`/`tables` keys
// (those are WeddingSeating's named convention, not a hard requirement).
func inferCSPRoles(stmt Statement) (vars, doms []SolveConfigEntry) {
	var fromEntries []SolveConfigEntry
	for _, e := range stmt.SolveConfig {
		if e.From != "" {
			fromEntries = append(fromEntries, e)
		}
	}
	if len(fromEntries) >= 2 {
		return fromEntries[:1], fromEntries[1:2]
	}
	return nil, nil
}

// enumerateType returns every x such that `isA x T` (directly declared,
// synonym-expanded).
func (s *Session) enumerateType(t string) []string {
	var out []string
	for _, id := range s.kb.FindByArg1(t) {
		fact, _ := s.kb.Get(id)
		if !s.kb.synonymEq(fact.Metadata.Operator, "isA") {
			continue
		}
		args := fact.Metadata.ArgNames()
		if len(args) > 0 {
			out = append(out, args[0])
		}
	}
	return out
}

// conflictPairs returns the set of (a,b) pairs related by relation,
// normalized so both orderings are present (the DSL declares both
// directions explicitly per spec.md §8 scenario 5, but this tolerates a
// theory that only declares one).
func (s *Session) conflictPairs(relation string) map[[2]string]bool {
	pairs := map[[2]string]bool{}
	for _, id := range s.kb.FindByOperator(relation) {
		fact, _ := s.kb.Get(id)
		args := fact.Metadata.ArgNames()
		if len(args) < 2 {
			continue
		}
		pairs[[2]string{args[0], args[1]}] = true
		pairs[[2]string{args[1], args[0]}] = true
	}
	return pairs
}

// cspFrame is one level of the explicit frame stack backtrackFrom walks
// (grounded on the teacher's minikanren.DFSSearch iterative-backtracking
// shape).
type cspFrame struct {
	varIdx  int
	valIdx  int
	current []string
}

// backtrackCSP explores the first variable's domain values as independent
// branches across the adapted worker pool (internal/parallel), each branch
// then walked sequentially by backtrackFrom — the CSP analogue of the query
// engine's per-hole errgroup fan-out (SPEC_FULL.md DOMAIN STACK). Every
// constraint is still checked the same way regardless of which branch finds
// it; the split only changes how work is scheduled, not what is accepted.
func (s *Session) backtrackCSP(vars, domain []string, constraints []cspConstraint) [][]string {
	if len(vars) == 0 || len(domain) == 0 {
		return nil
	}
	conflicts, allDifferent := s.cspConstraintTables(constraints)
	limit := s.cfg.Limits.MaxSolutions

	branches := parallel.RunBatch(context.Background(), len(domain), s.cfg.Limits.MaxSolutions, func(i int) [][]string {
		first := domain[i]
		if !cspConsistent(vars, conflicts, allDifferent, nil, first) {
			return nil
		}
		frame := cspFrame{varIdx: 1, valIdx: 0, current: []string{first}}
		return backtrackFrom(vars, domain, conflicts, allDifferent, frame, limit)
	})

	var solutions [][]string
	for _, b := range branches {
		solutions = append(solutions, b...)
		if len(solutions) >= limit {
			break
		}
	}
	if len(solutions) > limit {
		solutions = solutions[:limit]
	}
	return solutions
}

// cspConstraintTables extracts the noConflict pair table and allDifferent
// flag from a solve's declared constraints.
func (s *Session) cspConstraintTables(constraints []cspConstraint) (map[[2]string]bool, bool) {
	var conflicts map[[2]string]bool
	allDifferent := false
	for _, c := range constraints {
		if c.kind == "noConflict" {
			conflicts = s.conflictPairs(c.relation)
		}
		if c.kind == "allDifferent" {
			allDifferent = true
		}
	}
	return conflicts, allDifferent
}

func cspConsistent(vars []string, conflicts map[[2]string]bool, allDifferent bool, current []string, candidate string) bool {
	for i, assigned := range current {
		if allDifferent && assigned == candidate {
			return false
		}
		if conflicts != nil && conflicts[[2]string{vars[i], vars[len(current)]}] && assigned == candidate {
			return false
		}
	}
	return true
}

// backtrackFrom runs the explicit frame-stack DFS from an already-assigned
// prefix (frame.current), returning every completion satisfying every
// constraint, bounded by limit.
func backtrackFrom(vars, domain []string, conflicts map[[2]string]bool, allDifferent bool, start cspFrame, limit int) [][]string {
	var solutions [][]string
	stack := []cspFrame{start}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.varIdx == len(vars) {
			solutions = append(solutions, append([]string(nil), top.current...))
			stack = stack[:len(stack)-1]
			continue
		}
		if top.valIdx >= len(domain) {
			stack = stack[:len(stack)-1]
			continue
		}
		candidate := domain[top.valIdx]
		top.valIdx++
		if !cspConsistent(vars, conflicts, allDifferent, top.current, candidate) {
			continue
		}
		next := append(append([]string(nil), top.current...), candidate)
		stack = append(stack, cspFrame{varIdx: top.varIdx + 1, valIdx: 0, current: next})
		if len(solutions) >= limit {
			break
		}
	}
	return solutions
}

// buildCSPSolutionVector constructs the bundled "compound solution" vector
// `bundle(bind(relName, Pos1(var), Pos2(dom)) for each assignment)` (spec.md
// §4.9).
func (s *Session) buildCSPSolutionVector(relation string, vars, assignment []string) (Vector, error) {
	relVec, err := s.vocab.Intern(relation)
	if err != nil {
		return Vector{}, err
	}
	var full Vector
	for i, v := range vars {
		vVec, err := s.vocab.Intern(v)
		if err != nil {
			return Vector{}, err
		}
		dVec, err := s.vocab.Intern(assignment[i])
		if err != nil {
			return Vector{}, err
		}
		p1, err := s.vocab.Position().WithPosition(1, vVec)
		if err != nil {
			return Vector{}, err
		}
		p2, err := s.vocab.Position().WithPosition(2, dVec)
		if err != nil {
			return Vector{}, err
		}
		bound, err := s.facade.Bind(relVec, p1)
		if err != nil {
			return Vector{}, err
		}
		bound, err = s.facade.Bind(bound, p2)
		if err != nil {
			return Vector{}, err
		}
		if full.IsZero() {
			full = bound
		} else {
			full, err = s.facade.Bundle(full, bound)
			if err != nil {
				return Vector{}, err
			}
		}
	}
	return full, nil
}
