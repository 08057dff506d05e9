package hdreason

import "fmt"

// Scope is a name -> vector map, local to one learn invocation but
// persisted across invocations when a destination uses `@name:suffix` or
// the statement is anonymous (spec.md §3 Scope).
type Scope map[string]Vector

// Executor evaluates parsed statements against a Session's Vocabulary,
// Scope, ComponentKB, rules, and graphs/macros table (spec.md §4.3).
type Executor struct {
	sess   *Session
	facade Facade
}

func newExecutor(s *Session) *Executor { return &Executor{sess: s} }

// ExecResult carries what one executed statement produced, for the
// contradiction detector and learn() bookkeeping.
type ExecResult struct {
	Vector      Vector
	Metadata    FactMetadata
	FactID      string // set only if the statement persisted to the KB
	IsRule      bool
	IsMacro     bool
	IsGraph     bool
	SolveResult *SolveResult
}

// Execute evaluates one statement, per the seven steps of spec.md §4.3.
func (ex *Executor) Execute(stmt Statement) (ExecResult, error) {
	switch stmt.Kind {
	case StmtMacro:
		ex.sess.macros[stmt.Dest] = stmt
		return ExecResult{IsMacro: true}, nil
	case StmtGraph:
		ex.sess.graphs[stmt.Dest] = stmt
		return ExecResult{IsGraph: true}, nil
	case StmtSolve:
		return ex.executeSolve(stmt)
	default:
		if isBuiltin(stmt.Operator) {
			return ex.executeBuiltin(stmt)
		}
		return ex.executeSimple(stmt)
	}
}

func (ex *Executor) executeSimple(stmt Statement) (ExecResult, error) {
	canon := ex.sess.canon
	cstmt := canon.CanonicalizeStatement(stmt)

	opVec, err := ex.sess.vocab.Intern(cstmt.Operator)
	if err != nil {
		return ExecResult{}, err
	}

	full := opVec
	for i, arg := range cstmt.Args {
		argVec, err := ex.resolveExpr(arg)
		if err != nil {
			return ExecResult{}, err
		}
		positioned, err := ex.sess.vocab.Position().WithPosition(i+1, argVec)
		if err != nil {
			return ExecResult{}, err
		}
		bound, err := ex.facade.Bind(opVec, positioned)
		if err != nil {
			return ExecResult{}, err
		}
		ex.sess.stats.HDCBindings++
		full, err = ex.facade.Bundle(full, bound)
		if err != nil {
			return ExecResult{}, err
		}
	}

	md := FactMetadata{Operator: cstmt.Operator, Args: cstmt.Args, Source: fmt.Sprintf("line %d", stmt.Line)}
	if rewritten, ok, err := canon.Rewrite(md); err != nil {
		return ExecResult{}, err
	} else if ok {
		md = rewritten
	}

	if stmt.Dest != "" {
		ex.sess.scope[stmt.Dest] = full
		ex.sess.scopeMeta[stmt.Dest] = structureCondition(md)
	}

	res := ExecResult{Vector: full, Metadata: collapseNegatedAssertion(md)}

	if cstmt.Operator == "Implies" {
		cond, concl, applicable, ierr := extractImplies(md, ex.sess)
		if ierr != nil {
			return ExecResult{}, ierr
		}
		if applicable {
			rule := NewRule(newFactID(), cond, concl, full)
			ex.sess.rules = append(ex.sess.rules, rule)
			res.IsRule = true
		}
	}

	if stmt.Persist {
		res.FactID = newFactID()
	}

	return res, nil
}

// extractImplies reads the two arguments of an `Implies (cond) (concl)` /
// `Implies $cond $concl` statement into structured condition/conclusion
// metadata. applicable is false when md isn't shaped like Implies at all
// (not an error: the caller only builds a rule when applicable). err is set
// when md.Operator IS Implies but an argument can't be resolved — an
// undefined `$name` reference, or an argument that is neither a compound nor
// a reference — so a malformed rule declaration is reported, never silently
// dropped.
func extractImplies(md FactMetadata, sess *Session) (cond, concl FactMetadata, applicable bool, err error) {
	if md.Operator != "Implies" || len(md.Args) != 2 {
		return FactMetadata{}, FactMetadata{}, false, nil
	}
	rawCond, err := resolveImpliesArg(md.Args[0], sess)
	if err != nil {
		return FactMetadata{}, FactMetadata{}, true, err
	}
	rawConcl, err := resolveImpliesArg(md.Args[1], sess)
	if err != nil {
		return FactMetadata{}, FactMetadata{}, true, err
	}
	return structureCondition(rawCond), structureCondition(rawConcl), true, nil
}

// resolveImpliesArg resolves one side of an Implies statement to the
// FactMetadata it denotes: a compound argument names its own statement
// shape directly; a reference looks up what the named scope destination was
// last bound to (spec.md §3 Scope).
func resolveImpliesArg(e Expr, sess *Session) (FactMetadata, error) {
	switch v := e.(type) {
	case Compound:
		return FactMetadata{Operator: v.Operator, Args: v.Args}, nil
	case Reference:
		md, ok := sess.scopeMeta[v.Name]
		if !ok {
			return FactMetadata{}, newExecutionError("UndefinedReference", "Implies: undefined reference $"+v.Name)
		}
		return md, nil
	default:
		return FactMetadata{}, newExecutionError("InvalidArgument", "Implies requires a compound or reference argument, got "+e.String())
	}
}

// resolveExpr resolves one argument expression to a vector: identifier ->
// vocabulary atom; reference -> scope lookup; literal -> vocabulary atom
// under canonical string form; list -> bundle of positioned items; compound
// -> full statement vector; hole -> special per-name vector (spec.md §4.3
// step 2).
func (ex *Executor) resolveExpr(e Expr) (Vector, error) {
	switch v := e.(type) {
	case Identifier:
		return ex.sess.vocab.Intern(v.Name)
	case Reference:
		val, ok := ex.sess.scope[v.Name]
		if !ok {
			return Vector{}, newExecutionError("UndefinedReference", "undefined reference $"+v.Name)
		}
		return val, nil
	case StringLit:
		return ex.sess.vocab.Intern("\"" + v.Value + "\"")
	case NumberLit:
		return ex.sess.vocab.Intern("#" + formatNumber(v.Value))
	case Hole:
		return ex.sess.vocab.Intern("__HOLE_" + v.Name + "__")
	case ListExpr:
		full := Vector{}
		for i, item := range v.Items {
			itemVec, err := ex.resolveExpr(item)
			if err != nil {
				return Vector{}, err
			}
			positioned, err := ex.sess.vocab.Position().WithPosition(i+1, itemVec)
			if err != nil {
				return Vector{}, err
			}
			if full.IsZero() {
				full = positioned
			} else {
				full, err = ex.facade.Bundle(full, positioned)
				if err != nil {
					return Vector{}, err
				}
			}
		}
		return full, nil
	case Compound:
		return ex.resolveCompound(v)
	default:
		return Vector{}, newExecutionError("InvalidArgument", "unresolvable expression")
	}
}

func (ex *Executor) resolveCompound(c Compound) (Vector, error) {
	opVec, err := ex.sess.vocab.Intern(c.Operator)
	if err != nil {
		return Vector{}, err
	}
	full := opVec
	for i, arg := range c.Args {
		argVec, err := ex.resolveExpr(arg)
		if err != nil {
			return Vector{}, err
		}
		positioned, err := ex.sess.vocab.Position().WithPosition(i+1, argVec)
		if err != nil {
			return Vector{}, err
		}
		bound, err := ex.facade.Bind(opVec, positioned)
		if err != nil {
			return Vector{}, err
		}
		ex.sess.stats.HDCBindings++
		full, err = ex.facade.Bundle(full, bound)
		if err != nil {
			return Vector{}, err
		}
	}
	return full, nil
}
