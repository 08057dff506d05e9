package hdreason

import "testing"

func TestUnifyExprHoleBindsToGround(t *testing.T) {
	pattern := Hole{Name: "x"}
	ground := Identifier{Name: "socrates"}

	bindings, ok := unifyExpr(pattern, ground, Bindings{}, nil)
	if !ok {
		t.Fatal("expected hole to unify with any ground term")
	}
	if bindings["x"] != Expr(ground) {
		t.Fatalf("expected x bound to %v, got %v", ground, bindings["x"])
	}
}

func TestUnifyExprHoleConsistentAcrossOccurrences(t *testing.T) {
	compound := Compound{
		Operator: "pair",
		Args:     []Expr{Hole{Name: "x"}, Hole{Name: "x"}},
	}
	ground := Compound{
		Operator: "pair",
		Args:     []Expr{Identifier{Name: "a"}, Identifier{Name: "a"}},
	}
	if _, ok := unifyExpr(compound, ground, Bindings{}, nil); !ok {
		t.Fatal("expected repeated hole to unify when both occurrences match")
	}

	mismatched := Compound{
		Operator: "pair",
		Args:     []Expr{Identifier{Name: "a"}, Identifier{Name: "b"}},
	}
	if _, ok := unifyExpr(compound, mismatched, Bindings{}, nil); ok {
		t.Fatal("expected repeated hole to fail when occurrences disagree")
	}
}

func TestUnifyExprIdentifierMismatch(t *testing.T) {
	pattern := Identifier{Name: "socrates"}
	ground := Identifier{Name: "plato"}
	if _, ok := unifyExpr(pattern, ground, Bindings{}, nil); ok {
		t.Fatal("expected distinct identifiers to fail unification")
	}
}

func TestUnifyExprListRequiresSameLength(t *testing.T) {
	pattern := ListExpr{Items: []Expr{Hole{Name: "x"}}}
	ground := ListExpr{Items: []Expr{Identifier{Name: "a"}, Identifier{Name: "b"}}}
	if _, ok := unifyExpr(pattern, ground, Bindings{}, nil); ok {
		t.Fatal("expected list unification to fail on length mismatch")
	}
}

func TestUnifyMetadataOperatorMustMatch(t *testing.T) {
	pattern := FactMetadata{Operator: "isA", Args: []Expr{Hole{Name: "x"}, Identifier{Name: "Mortal"}}}
	ground := FactMetadata{Operator: "eats", Args: []Expr{Identifier{Name: "socrates"}, Identifier{Name: "Mortal"}}}
	if _, ok := UnifyMetadata(pattern, ground, Bindings{}, nil); ok {
		t.Fatal("expected differing operators to fail unification")
	}
}

func TestUnifyMetadataBindsArgs(t *testing.T) {
	pattern := FactMetadata{Operator: "isA", Args: []Expr{Hole{Name: "x"}, Identifier{Name: "Mortal"}}}
	ground := FactMetadata{Operator: "isA", Args: []Expr{Identifier{Name: "socrates"}, Identifier{Name: "Mortal"}}}
	bindings, ok := UnifyMetadata(pattern, ground, Bindings{}, nil)
	if !ok {
		t.Fatal("expected unification to succeed")
	}
	if bindings["x"] != Expr(Identifier{Name: "socrates"}) {
		t.Fatalf("expected x bound to socrates, got %v", bindings["x"])
	}
}

func TestSubstituteReplacesBoundHoles(t *testing.T) {
	expr := Compound{Operator: "isA", Args: []Expr{Hole{Name: "x"}, Identifier{Name: "Mortal"}}}
	bindings := Bindings{"x": Identifier{Name: "socrates"}}

	out := Substitute(expr, bindings)
	compound, ok := out.(Compound)
	if !ok {
		t.Fatalf("expected Compound, got %T", out)
	}
	if compound.Args[0] != Expr(Identifier{Name: "socrates"}) {
		t.Fatalf("expected substituted arg socrates, got %v", compound.Args[0])
	}
}

func TestSubstituteLeavesUnboundHoles(t *testing.T) {
	expr := Hole{Name: "y"}
	out := Substitute(expr, Bindings{})
	if out != Expr(expr) {
		t.Fatalf("expected unbound hole to be left untouched, got %v", out)
	}
}

func TestBindingsCloneIsIndependent(t *testing.T) {
	original := Bindings{"x": Identifier{Name: "a"}}
	clone := original.Clone()
	clone["x"] = Identifier{Name: "b"}

	if original["x"] != Expr(Identifier{Name: "a"}) {
		t.Fatal("expected cloning bindings to not mutate the original map")
	}
}
