package hdreason

import "testing"

func TestSolvePlanningFindsShortestPath(t *testing.T) {
	sess := newTestSession(t)

	setup := sess.Learn("atHome\nrequires move atHome\ncauses move atWork")
	if !setup.Success {
		t.Fatalf("expected setup facts to learn cleanly, got errors: %v", setup.Errors)
	}

	res := sess.Learn("@plan solve planning [goal (atWork)]")
	if !res.Success {
		t.Fatalf("expected planning solve to succeed, got errors: %v", res.Errors)
	}
	if res.SolveResult == nil {
		t.Fatal("expected a SolveResult attached to the learn result")
	}
	if res.SolveResult.Kind != "planning" {
		t.Fatalf("expected Kind planning, got %q", res.SolveResult.Kind)
	}
	if len(res.SolveResult.SolutionIDs) == 0 {
		t.Fatal("expected at least one persisted plan fact")
	}
}

func TestSolvePlanningNoActionsIsError(t *testing.T) {
	sess := newTestSession(t)
	res := sess.Learn("@plan solve planning [goal (atWork)]")
	if res.Success {
		t.Fatal("expected an error when no requires/causes action facts are declared")
	}
}

func TestSolvePlanningUnreachableGoalYieldsEmptyResult(t *testing.T) {
	sess := newTestSession(t)
	setup := sess.Learn("requires move atHome\ncauses move atWork")
	if !setup.Success {
		t.Fatalf("expected setup to learn cleanly, got errors: %v", setup.Errors)
	}

	// atHome was never asserted, so move's precondition never holds and
	// atWork can never be reached.
	res := sess.Learn("@plan solve planning [goal (atWork)]")
	if !res.Success {
		t.Fatalf("expected the solve itself to succeed even with no plan found, got errors: %v", res.Errors)
	}
	if res.SolveResult == nil {
		t.Fatal("expected a SolveResult even when no plan is found")
	}
	if len(res.SolveResult.SolutionIDs) != 0 {
		t.Fatalf("expected no persisted plan facts for an unreachable goal, got %d", len(res.SolveResult.SolutionIDs))
	}
}

func TestBfsPlanRespectsMaxDepth(t *testing.T) {
	sess := newTestSession(t)
	actions := []planActionDef{
		{name: "step1", requires: []string{"start"}, causes: []string{"mid"}, cost: 1},
		{name: "step2", requires: []string{"mid"}, causes: []string{"end"}, cost: 1},
	}
	start := planState{"start": true}
	goals := []string{"end"}

	if path := sess.bfsPlan(start, goals, actions, nil, 1); path != nil {
		t.Fatalf("expected maxDepth 1 to be insufficient for a 2-step plan, got %v", path)
	}
	path := sess.bfsPlan(start, goals, actions, nil, 2)
	if len(path) != 2 {
		t.Fatalf("expected a 2-step plan within maxDepth 2, got %d steps", len(path))
	}
}

func TestGuardHoldsRejectsSameLocationConflict(t *testing.T) {
	sess := newTestSession(t)
	guard := &planGuard{conflictOp: "conflictsWith", locationOp: "locatedAt"}

	state := planState{
		stateKey("locatedAt", []string{"alice", "room1"}): true,
		stateKey("locatedAt", []string{"bob", "room1"}):   true,
		stateKey("conflictsWith", []string{"alice", "bob"}): true,
	}
	if sess.guardHolds(state, guard) {
		t.Fatal("expected a same-location conflict to violate the guard")
	}

	peaceful := planState{
		stateKey("locatedAt", []string{"alice", "room1"}): true,
		stateKey("locatedAt", []string{"bob", "room2"}):   true,
	}
	if !sess.guardHolds(peaceful, guard) {
		t.Fatal("expected no conflict when locations differ")
	}
}

func TestApplyActionAppliesCausesAndPrevents(t *testing.T) {
	state := planState{"atHome": true}
	action := planActionDef{name: "move", requires: []string{"atHome"}, causes: []string{"atWork"}, prevents: []string{"atHome"}}

	next := applyAction(state, action)
	if next["atHome"] {
		t.Fatal("expected 'atHome' to be removed by prevents")
	}
	if !next["atWork"] {
		t.Fatal("expected 'atWork' to be added by causes")
	}
	// original state must be untouched
	if !state["atHome"] {
		t.Fatal("expected applyAction to not mutate its input state")
	}
}
