package hdreason

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/hyprcog/hdreason/pkg/hdreason/config"
)

func testSessionConfig() config.Session {
	cfg := config.DefaultSessionConfig()
	cfg.Geometry = 256
	return cfg
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	sess, err := NewSession(testSessionConfig())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return sess
}

func TestLearnPersistsFacts(t *testing.T) {
	sess := newTestSession(t)
	res := sess.Learn("isA socrates Human\nisA socrates Mortal")
	if !res.Success {
		t.Fatalf("expected Learn to succeed, got errors: %v", res.Errors)
	}
	if res.Facts != 2 {
		t.Fatalf("expected 2 facts learned, got %d", res.Facts)
	}
	if len(sess.kb.order) != 2 {
		t.Fatalf("expected 2 facts in the KB, got %d", len(sess.kb.order))
	}
}

func TestLearnRollsBackWholeCallOnParseError(t *testing.T) {
	sess := newTestSession(t)
	sess.Learn("isA socrates Human")
	before := len(sess.kb.order)

	res := sess.Learn("isA plato Human\n(unterminated")
	if res.Success {
		t.Fatal("expected the malformed second statement to fail the whole call")
	}
	if len(sess.kb.order) != before {
		t.Fatalf("expected rollback to leave fact count at %d, got %d", before, len(sess.kb.order))
	}
}

func TestLearnEmptyDSLSucceedsWithNoFacts(t *testing.T) {
	sess := newTestSession(t)
	res := sess.Learn("")
	if !res.Success {
		t.Fatalf("expected empty input to succeed, got errors: %v", res.Errors)
	}
	if res.Facts != 0 {
		t.Fatalf("expected 0 facts, got %d", res.Facts)
	}
}

func TestLearnUndefinedReferenceIsRejectedAndRolledBack(t *testing.T) {
	sess := newTestSession(t)
	sess.Learn("isA socrates Human")
	before := len(sess.kb.order)

	res := sess.Learn("isA $nope Mortal")
	if res.Success {
		t.Fatal("expected an undefined reference to fail")
	}
	if len(sess.kb.order) != before {
		t.Fatalf("expected rollback, fact count changed from %d to %d", before, len(sess.kb.order))
	}
}

func TestSetCWADirective(t *testing.T) {
	sess := newTestSession(t)
	if sess.cwa {
		t.Fatal("expected CWA off by default in test config")
	}
	res := sess.Learn("@_ Set CWA on")
	if !res.Success {
		t.Fatalf("expected Set directive to succeed, got errors: %v", res.Errors)
	}
	if !sess.cwa {
		t.Fatal("expected CWA to be enabled after Set CWA on")
	}
}

func TestAddFactUpdatesKBVectorAndProvenance(t *testing.T) {
	sess := newTestSession(t)
	vec, err := sess.vocab.Intern("standalone")
	if err != nil {
		t.Fatal(err)
	}
	before := len(sess.provenance)
	fact := sess.addFact(FactMetadata{Operator: "marker", Source: "test"}, vec)
	if fact.ID == "" {
		t.Fatal("expected addFact to assign a non-empty fact ID")
	}
	if len(sess.provenance) != before+1 {
		t.Fatalf("expected provenance to grow by 1, got %d -> %d", before, len(sess.provenance))
	}
	if _, ok := sess.kb.Get(fact.ID); !ok {
		t.Fatal("expected the added fact to be retrievable from the KB")
	}
}

// TestLearnRollbackRestoresSessionStateByDeepEquality goes past the fact
// count the other rollback tests check, diffing the KB's facts, scope, and
// rules field-by-field against their pre-call snapshot (spec.md §4.8 step
// 4: restore must be complete, not just "the same length").
func TestLearnRollbackRestoresSessionStateByDeepEquality(t *testing.T) {
	sess := newTestSession(t)
	setup := sess.Learn("isA socrates Human\nisA plato Human\nImplies (isA ?x Human) (isA ?x Mortal)")
	require.True(t, setup.Success, "expected setup facts/rule to learn cleanly, got errors: %v", setup.Errors)

	wantFacts := append([]*Fact(nil), sess.kb.Facts()...)
	wantScope := make(Scope, len(sess.scope))
	for k, v := range sess.scope {
		wantScope[k] = v
	}
	wantRules := append([]Rule(nil), sess.rules...)
	wantKBVector := sess.kbVector

	res := sess.Learn("isA aristotle Human\n(unterminated")
	require.False(t, res.Success, "expected the malformed second statement to fail the whole call")

	opts := cmp.AllowUnexported(Vector{})
	if diff := cmp.Diff(wantFacts, sess.kb.Facts(), opts); diff != "" {
		t.Fatalf("rollback left the KB's facts divergent from pre-call state (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantScope, sess.scope, opts); diff != "" {
		t.Fatalf("rollback left scope divergent from pre-call state (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantRules, sess.rules, opts); diff != "" {
		t.Fatalf("rollback left rules divergent from pre-call state (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantKBVector, sess.kbVector, opts); diff != "" {
		t.Fatalf("rollback left the bundled KB vector divergent from pre-call state (-want +got):\n%s", diff)
	}
}

func TestStatsTracksHDCBindings(t *testing.T) {
	sess := newTestSession(t)
	before := sess.Stats().HDCBindings
	sess.Learn("isA socrates Human")
	if sess.Stats().HDCBindings <= before {
		t.Fatal("expected learning a fact with an argument to increment HDCBindings")
	}
}
