package hdreason

import "testing"

func mkFact(id, op string, args ...string) *Fact {
	exprs := make([]Expr, len(args))
	for i, a := range args {
		exprs[i] = Identifier{Name: a}
	}
	return &Fact{ID: id, Metadata: FactMetadata{Operator: op, Args: exprs}}
}

func TestComponentKBAddAndGet(t *testing.T) {
	kb := NewComponentKB()
	f := mkFact("f1", "isA", "socrates", "Human")
	kb.Add(f)

	got, ok := kb.Get("f1")
	if !ok || got.Metadata.Operator != "isA" {
		t.Fatalf("expected to retrieve fact f1, got %v ok=%v", got, ok)
	}
	if len(kb.Facts()) != 1 {
		t.Fatalf("expected 1 fact, got %d", len(kb.Facts()))
	}
}

func TestComponentKBRemoveClearsAllIndexes(t *testing.T) {
	kb := NewComponentKB()
	kb.Add(mkFact("f1", "isA", "socrates", "Human"))
	kb.Remove("f1")

	if _, ok := kb.Get("f1"); ok {
		t.Fatal("expected removed fact to be gone")
	}
	if len(kb.FindByOperator("isA")) != 0 {
		t.Fatal("expected operator index to be cleared after removal")
	}
	if len(kb.FindByArg0("socrates")) != 0 {
		t.Fatal("expected arg0 index to be cleared after removal")
	}
	if len(kb.order) != 0 {
		t.Fatal("expected order slice to be empty after removal")
	}
}

func TestComponentKBFindByOperatorAndArg0(t *testing.T) {
	kb := NewComponentKB()
	kb.Add(mkFact("f1", "isA", "socrates", "Human"))
	kb.Add(mkFact("f2", "isA", "plato", "Human"))
	kb.Add(mkFact("f3", "likes", "socrates", "wine"))

	ids := kb.FindByOperatorAndArg0("isA", "socrates")
	if len(ids) != 1 || ids[0] != "f1" {
		t.Fatalf("expected [f1], got %v", ids)
	}
}

func TestSynonymExpansionIsTransitiveAndCycleSafe(t *testing.T) {
	kb := NewComponentKB()
	kb.AddSynonym("Human", "Person")
	kb.AddSynonym("Person", "Mortal")
	kb.AddSynonym("Mortal", "Human") // cycle back to the first

	kb.Add(mkFact("f1", "isA", "socrates", "Human"))

	ids := kb.FindByArg1("Mortal")
	if len(ids) != 1 || ids[0] != "f1" {
		t.Fatalf("expected synonym expansion to find f1 via Mortal, got %v", ids)
	}
	if !kb.synonymEq("Human", "Mortal") {
		t.Fatal("expected Human and Mortal to be synonym-equal through the chain")
	}
}

func TestAddAliasPinsCanonicalRepresentative(t *testing.T) {
	kb := NewComponentKB()
	kb.AddAlias("Person", "Human")

	key := componentKey(kb.synonyms, "Person")
	if kb.aliases[key] != "Human" {
		t.Fatalf("expected alias override to pin 'Human', got %q", kb.aliases[key])
	}
}

func TestMatchesWithSynonymsWildcards(t *testing.T) {
	kb := NewComponentKB()
	f := mkFact("f1", "isA", "socrates", "Human")
	kb.Add(f)

	op := "isA"
	if !kb.MatchesWithSynonyms(f, &op, nil, nil) {
		t.Fatal("expected a nil arg0/arg1 to act as a wildcard match")
	}
	wrong := "likes"
	if kb.MatchesWithSynonyms(f, &wrong, nil, nil) {
		t.Fatal("expected a mismatched operator to fail")
	}
}
