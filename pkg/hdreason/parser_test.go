package hdreason

import "testing"

func TestParseEmptyProgram(t *testing.T) {
	prog, err := Parse("")
	if err != nil {
		t.Fatalf("expected empty input to parse cleanly, got %v", err)
	}
	if len(prog.Statements) != 0 {
		t.Fatalf("expected 0 statements, got %d", len(prog.Statements))
	}
}

func TestParseSimpleStatementPersistsByDefault(t *testing.T) {
	prog, err := Parse("isA socrates Human")
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	stmt := prog.Statements[0]
	if stmt.Kind != StmtSimple {
		t.Fatalf("expected StmtSimple, got %v", stmt.Kind)
	}
	if stmt.Operator != "isA" {
		t.Fatalf("expected operator isA, got %q", stmt.Operator)
	}
	if !stmt.Persist {
		t.Fatal("expected an anonymous statement to persist implicitly")
	}
	if len(stmt.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(stmt.Args))
	}
	if id, ok := stmt.Args[0].(Identifier); !ok || id.Name != "socrates" {
		t.Fatalf("expected arg0 identifier socrates, got %v", stmt.Args[0])
	}
}

func TestParseStatementWithDestAndHole(t *testing.T) {
	prog, err := Parse("@result isA ?x Mortal")
	if err != nil {
		t.Fatal(err)
	}
	stmt := prog.Statements[0]
	if stmt.Dest != "result" {
		t.Fatalf("expected dest 'result', got %q", stmt.Dest)
	}
	if stmt.Persist {
		t.Fatal("expected a plain @dest statement (no colon suffix) to not persist")
	}
	hole, ok := stmt.Args[0].(Hole)
	if !ok || hole.Name != "x" {
		t.Fatalf("expected hole ?x, got %v", stmt.Args[0])
	}
}

func TestParseDestWithPersistSuffix(t *testing.T) {
	prog, err := Parse("@result:persist isA socrates Mortal")
	if err != nil {
		t.Fatal(err)
	}
	stmt := prog.Statements[0]
	if stmt.Dest != "result" {
		t.Fatalf("expected dest 'result', got %q", stmt.Dest)
	}
	if !stmt.Persist {
		t.Fatal("expected a colon-suffixed dest to persist")
	}
}

func TestParseCompoundArgument(t *testing.T) {
	prog, err := Parse("implies (isA ?x Human) (isA ?x Mortal)")
	if err != nil {
		t.Fatal(err)
	}
	stmt := prog.Statements[0]
	compound, ok := stmt.Args[0].(Compound)
	if !ok {
		t.Fatalf("expected Compound, got %T", stmt.Args[0])
	}
	if compound.Operator != "isA" || len(compound.Args) != 2 {
		t.Fatalf("unexpected compound shape: %+v", compound)
	}
}

func TestParseListArgument(t *testing.T) {
	prog, err := Parse("group members [alice, bob, carol]")
	if err != nil {
		t.Fatal(err)
	}
	stmt := prog.Statements[0]
	list, ok := stmt.Args[1].(ListExpr)
	if !ok {
		t.Fatalf("expected ListExpr, got %T", stmt.Args[1])
	}
	if len(list.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(list.Items))
	}
}

func TestParseUnterminatedListIsError(t *testing.T) {
	if _, err := Parse("group members [alice, bob"); err == nil {
		t.Fatal("expected an error for an unterminated list")
	}
}

func TestParseMacroStatement(t *testing.T) {
	src := "@greet macro who\nsays who hello\nend"
	prog, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	stmt := prog.Statements[0]
	if stmt.Kind != StmtMacro {
		t.Fatalf("expected StmtMacro, got %v", stmt.Kind)
	}
	if len(stmt.Params) != 1 || stmt.Params[0] != "who" {
		t.Fatalf("expected param 'who', got %v", stmt.Params)
	}
	if len(stmt.Body) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(stmt.Body))
	}
}

func TestParseUnterminatedMacroIsError(t *testing.T) {
	if _, err := Parse("@greet macro who\nsays who hello"); err == nil {
		t.Fatal("expected an error for a macro missing 'end'")
	}
}

func TestParseSolveStatement(t *testing.T) {
	src := "@seating solve csp [guests from Guest, tables from Table, allDifferent true]"
	prog, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	stmt := prog.Statements[0]
	if stmt.Kind != StmtSolve {
		t.Fatalf("expected StmtSolve, got %v", stmt.Kind)
	}
	if stmt.SolveKind != "csp" {
		t.Fatalf("expected solve kind 'csp', got %q", stmt.SolveKind)
	}
	if len(stmt.SolveConfig) != 3 {
		t.Fatalf("expected 3 config entries, got %d", len(stmt.SolveConfig))
	}
	if stmt.SolveConfig[0].Key != "guests" || stmt.SolveConfig[0].From != "Guest" {
		t.Fatalf("unexpected first config entry: %+v", stmt.SolveConfig[0])
	}
}

func TestParseMultipleDestsIsError(t *testing.T) {
	if _, err := Parse("@a @b isA socrates Human"); err == nil {
		t.Fatal("expected an error for multiple @ destinations in one statement")
	}
}

func TestParseMultipleStatements(t *testing.T) {
	src := "isA socrates Human\nisA plato Human\n"
	prog, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
}
