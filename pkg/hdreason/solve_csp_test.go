package hdreason

import "testing"

func TestCspConsistentAllDifferent(t *testing.T) {
	vars := []string{"v0", "v1", "v2"}
	if !cspConsistent(vars, nil, true, []string{"a", "b"}, "c") {
		t.Fatal("expected a fresh value to be consistent under allDifferent")
	}
	if cspConsistent(vars, nil, true, []string{"a", "b"}, "a") {
		t.Fatal("expected a repeated value to violate allDifferent")
	}
}

func TestCspConsistentNoConflict(t *testing.T) {
	vars := []string{"alice", "bob"}
	conflicts := map[[2]string]bool{{"alice", "bob"}: true, {"bob", "alice"}: true}
	// assigning alice and bob the same table should be rejected.
	if cspConsistent(vars, conflicts, false, []string{"table1"}, "table1") {
		t.Fatal("expected a declared conflict to reject the same assignment")
	}
	if !cspConsistent(vars, conflicts, false, []string{"table1"}, "table2") {
		t.Fatal("expected distinct tables to be consistent")
	}
}

func TestBacktrackFromFindsAllValidAssignments(t *testing.T) {
	vars := []string{"v0", "v1"}
	domain := []string{"a", "b"}
	start := cspFrame{varIdx: 0, valIdx: 0, current: nil}

	solutions := backtrackFrom(vars, domain, nil, true, start, 100)
	if len(solutions) != 2 {
		t.Fatalf("expected 2 all-different assignments of 2 vars over 2 values, got %d: %v", len(solutions), solutions)
	}
}

func TestBacktrackFromRespectsLimit(t *testing.T) {
	vars := []string{"v0", "v1"}
	domain := []string{"a", "b"}
	start := cspFrame{varIdx: 0, valIdx: 0, current: nil}

	solutions := backtrackFrom(vars, domain, nil, false, start, 1)
	if len(solutions) != 1 {
		t.Fatalf("expected the search to stop at the solution limit, got %d", len(solutions))
	}
}

func TestSolveCSPWithAllDifferentAndConflicts(t *testing.T) {
	sess := newTestSession(t)
	setup := sess.Learn(`isA alice Guest
isA bob Guest
isA table1 Table
isA table2 Table
conflictsWith alice bob`)
	if !setup.Success {
		t.Fatalf("expected setup facts to learn cleanly, got errors: %v", setup.Errors)
	}

	res := sess.Learn("@seating solve WeddingSeating [guests from Guest, tables from Table, noConflict conflictsWith]")
	if !res.Success {
		t.Fatalf("expected the CSP solve to succeed, got errors: %v", res.Errors)
	}
	if res.SolveResult == nil || res.SolveResult.Kind != "csp" {
		t.Fatalf("expected a csp SolveResult, got %+v", res.SolveResult)
	}
	if len(res.SolveResult.SolutionIDs) == 0 {
		t.Fatal("expected at least one seating solution to be persisted")
	}

	q := sess.Query("seating alice ?table")
	if !q.Success {
		t.Fatalf("expected the solve's own destination name to be queryable as a relation, got errors: %v", q.Errors)
	}
	b, ok := q.Bindings["table"]
	if !ok || (b.Answer != "table1" && b.Answer != "table2") {
		t.Fatalf("expected ?table to bind to table1 or table2, got %+v", q.Bindings)
	}
}

func TestEnumerateTypeReadsIsAFacts(t *testing.T) {
	sess := newTestSession(t)
	setup := sess.Learn("isA alice Guest\nisA bob Guest\nisA table1 Table")
	if !setup.Success {
		t.Fatalf("expected setup to succeed, got errors: %v", setup.Errors)
	}
	guests := sess.enumerateType("Guest")
	if len(guests) != 2 {
		t.Fatalf("expected 2 guests, got %v", guests)
	}
}
