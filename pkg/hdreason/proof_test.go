package hdreason

import "testing"

func TestProveDirectMatchSucceeds(t *testing.T) {
	sess := newTestSession(t)
	learned := sess.Learn("isA socrates Human")
	if !learned.Success {
		t.Fatalf("expected setup fact to learn cleanly, got errors: %v", learned.Errors)
	}

	res := sess.Prove("isA socrates Human")
	if !res.Valid {
		t.Fatalf("expected a directly-asserted fact to prove, got reason %q", res.Reason)
	}
	if res.Method != "direct_match" && res.Method != "directMatch" {
		t.Logf("proved via method %q", res.Method)
	}
	if res.ProofObj == nil {
		t.Fatal("expected a ProofObject to be attached")
	}
}

func TestProveUnknownGoalFails(t *testing.T) {
	sess := newTestSession(t)
	res := sess.Prove("isA unicorn Magical")
	if res.Valid {
		t.Fatal("expected an unasserted, unprovable goal to fail")
	}
	if res.Reason == "" {
		t.Fatal("expected a non-empty reason for a failed proof")
	}
}

func TestProveViaImpliesRule(t *testing.T) {
	sess := newTestSession(t)
	setup := sess.Learn("Implies (isA ?x Human) (isA ?x Mortal)\nisA socrates Human")
	if !setup.Success {
		t.Fatalf("expected rule + fact to learn cleanly, got errors: %v", setup.Errors)
	}

	res := sess.Prove("isA socrates Mortal")
	if !res.Valid {
		t.Fatalf("expected backward chaining through Implies to prove the goal, got reason %q", res.Reason)
	}
}

func TestValidateProofRejectsDanglingFactID(t *testing.T) {
	sess := newTestSession(t)
	sess.Learn("isA socrates Human")
	res := sess.Prove("isA socrates Human")
	if !res.Valid {
		t.Fatalf("expected setup proof to succeed, got reason %q", res.Reason)
	}

	tampered := &ProofObject{
		Goal:   res.ProofObj.Goal,
		Valid:  res.ProofObj.Valid,
		Method: res.ProofObj.Method,
		Steps: []ProofStep{
			{Kind: "fact", FactID: "no-such-fact-id"},
		},
	}
	if sess.ValidateProof(tampered) {
		t.Fatal("expected ValidateProof to reject a proof step naming a nonexistent fact id")
	}
}

func TestProveParseErrorIsReportedNotPanicked(t *testing.T) {
	sess := newTestSession(t)
	res := sess.Prove("(unterminated")
	if res.Valid {
		t.Fatal("expected an unparseable goal to fail rather than prove")
	}
	if res.Method != "parse_error" {
		t.Fatalf("expected method 'parse_error', got %q", res.Method)
	}
}

func TestImpliesByReferenceBuildsRule(t *testing.T) {
	sess := newTestSession(t)
	setup := sess.Learn("@cond isA ?x Human\nImplies $cond (isA ?x Mortal)\nisA socrates Human")
	if !setup.Success {
		t.Fatalf("expected a reference-declared Implies rule to learn cleanly, got errors: %v", setup.Errors)
	}
	if len(sess.rules) != 1 {
		t.Fatalf("expected exactly 1 rule to be captured from the reference-declared Implies, got %d", len(sess.rules))
	}

	res := sess.Prove("isA socrates Mortal")
	if !res.Valid {
		t.Fatalf("expected backward chaining through a reference-declared Implies rule to prove the goal, got reason %q", res.Reason)
	}
}

func TestImpliesUndefinedReferenceIsRejectedNotSilentlyDropped(t *testing.T) {
	sess := newTestSession(t)
	res := sess.Learn("Implies $nope (isA ?x Mortal)")
	if res.Success {
		t.Fatal("expected an Implies referencing an undefined scope name to fail rather than silently no-op")
	}
	if len(sess.rules) != 0 {
		t.Fatalf("expected no rule to be captured from a rejected Implies, got %d", len(sess.rules))
	}
}

func TestProveViaConjunctiveRuleRequiresAllParts(t *testing.T) {
	sess := newTestSession(t)
	setup := sess.Learn("Implies (And (isA ?x Human) (isA ?x Alive)) (isA ?x Mortal)\nisA socrates Human")
	if !setup.Success {
		t.Fatalf("expected rule + fact to learn cleanly, got errors: %v", setup.Errors)
	}

	partial := sess.Prove("isA socrates Mortal")
	if partial.Valid {
		t.Fatal("expected the conjunctive condition to fail when only one conjunct holds")
	}

	if !sess.Learn("isA socrates Alive").Success {
		t.Fatal("expected the second conjunct fact to learn cleanly")
	}
	full := sess.Prove("isA socrates Mortal")
	if !full.Valid {
		t.Fatalf("expected the conjunctive condition to prove once both conjuncts hold, got reason %q", full.Reason)
	}
}

func TestProveModusTollensFromImpliesRule(t *testing.T) {
	sess := newTestSession(t)
	setup := sess.Learn("Implies (isA ?x Bird) (can ?x Fly)\nNot (can Tweety Fly)")
	if !setup.Success {
		t.Fatalf("expected rule + negated fact to learn cleanly, got errors: %v", setup.Errors)
	}

	res := sess.Prove("Not (isA Tweety Bird)")
	if !res.Valid {
		t.Fatalf("expected modus tollens to prove Not (isA Tweety Bird) from Not (can Tweety Fly), got reason %q", res.Reason)
	}
}

func TestProveExistsFindsWitness(t *testing.T) {
	sess := newTestSession(t)
	setup := sess.Learn("isA socrates Human")
	if !setup.Success {
		t.Fatalf("expected setup fact to learn cleanly, got errors: %v", setup.Errors)
	}

	res := sess.Prove("Exists ?x (isA ?x Human)")
	if !res.Valid {
		t.Fatalf("expected Exists to find socrates as a witness, got reason %q", res.Reason)
	}
}

func TestProveNotExistsDisjointTypes(t *testing.T) {
	sess := newTestSession(t)
	doc := []byte(`{"disjointWith": [["Alive", "Dead"]]}`)
	if err := sess.LoadTheoryConstraintsJSON(doc); err != nil {
		t.Fatalf("expected theory constraints to load, got %v", err)
	}

	res := sess.Prove("Not (Exists ?x (And (isA ?x Alive) (isA ?x Dead)))")
	if !res.Valid {
		t.Fatalf("expected disjoint types to rule out the existential, got reason %q", res.Reason)
	}
}

func TestProveExplicitNegationFact(t *testing.T) {
	sess := newTestSession(t)
	setup := sess.Learn("Not (can Penguin Fly)")
	if !setup.Success {
		t.Fatalf("expected the negated fact to learn cleanly, got errors: %v", setup.Errors)
	}

	res := sess.Prove("Not (can Penguin Fly)")
	if !res.Valid {
		t.Fatalf("expected an explicitly asserted negation to prove itself, got reason %q", res.Reason)
	}
	if res.Method != "explicit_negation" {
		t.Fatalf("expected method 'explicit_negation', got %q", res.Method)
	}
}

func TestProveCWAAssumesUnprovableGoalsFalse(t *testing.T) {
	sess := newTestSession(t)
	res := sess.Learn("@_ Set CWA on")
	if !res.Success {
		t.Fatalf("expected Set CWA on to succeed, got errors: %v", res.Errors)
	}

	proof := sess.Prove("Not (isA ghost Haunting)")
	if !proof.Valid {
		t.Fatalf("expected CWA to hold an unprovable goal false, got reason %q", proof.Reason)
	}
	if proof.Method != "closed_world_assumption" {
		t.Fatalf("expected method 'closed_world_assumption', got %q", proof.Method)
	}
}

// TestPropertyInheritanceBlockedByCloserNegatedAncestor covers the scenario
// the maintainer review called out by name: a closer ancestor's explicit
// negation must block inheritance from a farther ancestor's positive fact,
// not be skipped over.
func TestPropertyInheritanceBlockedByCloserNegatedAncestor(t *testing.T) {
	sess := newTestSession(t)
	setup := sess.Learn("can Bird Fly\nNot (can Penguin Fly)\nisA Penguin Bird\nisA Opus Penguin")
	if !setup.Success {
		t.Fatalf("expected setup facts to learn cleanly, got errors: %v", setup.Errors)
	}

	res := sess.Prove("can Opus Fly")
	if res.Valid {
		t.Fatal("expected Penguin's negated Fly fact to block inheritance from Bird's positive Fly fact")
	}
}
