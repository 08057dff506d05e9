package hdreason

import "testing"

func TestLoadTheoryConstraintsJSONDeclaresConstraints(t *testing.T) {
	sess := newTestSession(t)
	doc := []byte(`{
		"mutuallyExclusive": [["alive", "dead", "entity"]],
		"functional": ["hasAge"]
	}`)
	if err := sess.LoadTheoryConstraintsJSON(doc); err != nil {
		t.Fatalf("expected valid theory JSON to load, got %v", err)
	}
}

func TestLoadTheoryConstraintsJSONRejectsInvalidShape(t *testing.T) {
	sess := newTestSession(t)
	// mutuallyExclusive entries require exactly 3 string items.
	doc := []byte(`{"mutuallyExclusive": [["alive", "dead"]]}`)
	if err := sess.LoadTheoryConstraintsJSON(doc); err == nil {
		t.Fatal("expected a 2-item mutuallyExclusive tuple to fail schema validation")
	}
}

func TestLoadTheoryConstraintsJSONRejectsMalformedJSON(t *testing.T) {
	sess := newTestSession(t)
	if err := sess.LoadTheoryConstraintsJSON([]byte("{not json")); err == nil {
		t.Fatal("expected malformed JSON to be rejected")
	}
}

func TestValidateTheoryJSONMissingFileIsNotAnError(t *testing.T) {
	sess := newTestSession(t)
	if err := sess.validateTheoryJSON("/nonexistent/theory.json"); err != nil {
		t.Fatalf("expected a missing theory.json to be treated as optional, got %v", err)
	}
}

func TestCompiledTheorySchemaIsCachedAndReusable(t *testing.T) {
	s1, err := compiledTheorySchema()
	if err != nil {
		t.Fatal(err)
	}
	s2, err := compiledTheorySchema()
	if err != nil {
		t.Fatal(err)
	}
	if s1 != s2 {
		t.Fatal("expected compiledTheorySchema to return the same cached schema instance")
	}
}
