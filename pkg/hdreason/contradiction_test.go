package hdreason

import "testing"

func TestMutuallyExclusiveRejectsConflictingFact(t *testing.T) {
	sess := newTestSession(t)
	doc := []byte(`{"mutuallyExclusive": [["status", "alive", "dead"]]}`)
	if err := sess.LoadTheoryConstraintsJSON(doc); err != nil {
		t.Fatalf("expected theory constraints to load, got %v", err)
	}

	learned := sess.Learn("status socrates alive")
	if !learned.Success {
		t.Fatalf("expected the first status fact to be accepted, got errors: %v", learned.Errors)
	}

	before := len(sess.kb.order)
	conflict := sess.Learn("status socrates dead")
	if conflict.Success {
		t.Fatal("expected a mutually-exclusive status to be rejected")
	}
	if len(sess.kb.order) != before {
		t.Fatalf("expected rollback after a rejected contradiction, fact count changed from %d to %d", before, len(sess.kb.order))
	}
}

func TestFunctionalRelationRejectsSecondValue(t *testing.T) {
	sess := newTestSession(t)
	doc := []byte(`{"functional": ["hasAge"]}`)
	if err := sess.LoadTheoryConstraintsJSON(doc); err != nil {
		t.Fatalf("expected theory constraints to load, got %v", err)
	}

	learned := sess.Learn("hasAge socrates seventy")
	if !learned.Success {
		t.Fatalf("expected the first hasAge fact to be accepted, got errors: %v", learned.Errors)
	}
	conflict := sess.Learn("hasAge socrates eighty")
	if conflict.Success {
		t.Fatal("expected a second value for a functional relation to be rejected")
	}
}

func TestDisjointTypesRejectsBothMemberships(t *testing.T) {
	sess := newTestSession(t)
	doc := []byte(`{"disjointWith": [["Alive", "Dead"]]}`)
	if err := sess.LoadTheoryConstraintsJSON(doc); err != nil {
		t.Fatalf("expected theory constraints to load, got %v", err)
	}

	learned := sess.Learn("isA socrates Alive")
	if !learned.Success {
		t.Fatalf("expected the first isA fact to be accepted, got errors: %v", learned.Errors)
	}
	conflict := sess.Learn("isA socrates Dead")
	if conflict.Success {
		t.Fatal("expected disjoint type membership to be rejected")
	}
}

func TestCardinalityRejectsFactBeyondMax(t *testing.T) {
	sess := newTestSession(t)
	doc := []byte(`{"cardinality": [["Guest", "hasSeat", 1, 1]]}`)
	if err := sess.LoadTheoryConstraintsJSON(doc); err != nil {
		t.Fatalf("expected theory constraints to load, got %v", err)
	}

	setup := sess.Learn("isA alice Guest\nhasSeat alice table1")
	if !setup.Success {
		t.Fatalf("expected the first hasSeat fact to be accepted, got errors: %v", setup.Errors)
	}

	before := len(sess.kb.order)
	conflict := sess.Learn("hasSeat alice table2")
	if conflict.Success {
		t.Fatal("expected a second hasSeat fact to exceed the max-1 cardinality bound")
	}
	if len(sess.kb.order) != before {
		t.Fatalf("expected rollback after a rejected cardinality violation, fact count changed from %d to %d", before, len(sess.kb.order))
	}
}

func TestNonContradictingFactsAreAccepted(t *testing.T) {
	sess := newTestSession(t)
	doc := []byte(`{"mutuallyExclusive": [["status", "alive", "dead"]]}`)
	if err := sess.LoadTheoryConstraintsJSON(doc); err != nil {
		t.Fatal(err)
	}
	res := sess.Learn("status socrates alive\nstatus plato alive")
	if !res.Success {
		t.Fatalf("expected unrelated subjects with the same status to both be accepted, got errors: %v", res.Errors)
	}
}
