package hdreason

import "strings"

// isBuiltin reports whether operator names one of the L0 builtins exposed
// by the executor when enabled (spec.md §4.3 step 7).
func isBuiltin(operator string) bool {
	switch operator {
	case "___Bind", "___Bundle", "___BundlePositioned", "___NewVector", "___GetType":
		return true
	default:
		return false
	}
}

// executeBuiltin implements the L0 builtins. These bypass canonicalization
// and KB persistence entirely — they are raw vector-algebra escape hatches
// for theory authors, not symbolic facts.
func (ex *Executor) executeBuiltin(stmt Statement) (ExecResult, error) {
	if !ex.sess.l0BuiltinsEnabled {
		return ExecResult{}, newExecutionError("BuiltinsDisabled", "L0 builtins are not enabled for this session")
	}

	switch stmt.Operator {
	case "___Bind":
		return ex.builtinReduce(stmt, ex.facade.Bind)
	case "___Bundle", "___BundlePositioned":
		vecs := make([]Vector, 0, len(stmt.Args))
		for i, a := range stmt.Args {
			v, err := ex.resolveExpr(a)
			if err != nil {
				return ExecResult{}, err
			}
			if stmt.Operator == "___BundlePositioned" {
				v, err = ex.sess.vocab.Position().WithPosition(i+1, v)
				if err != nil {
					return ExecResult{}, err
				}
			}
			vecs = append(vecs, v)
		}
		full, err := ex.facade.Bundle(vecs...)
		if err != nil {
			return ExecResult{}, err
		}
		if stmt.Dest != "" {
			ex.sess.scope[stmt.Dest] = full
		}
		return ExecResult{Vector: full}, nil
	case "___NewVector":
		if len(stmt.Args) == 0 {
			return ExecResult{}, newExecutionError("InvalidArgument", "___NewVector requires a name argument")
		}
		id, ok := stmt.Args[0].(Identifier)
		if !ok {
			return ExecResult{}, newExecutionError("InvalidArgument", "___NewVector name must be an identifier")
		}
		theory := ""
		if len(stmt.Args) > 1 {
			theory = stmt.Args[1].String()
		}
		_ = theory
		v, err := ex.sess.vocab.Intern(id.Name)
		if err != nil {
			return ExecResult{}, err
		}
		if stmt.Dest != "" {
			ex.sess.scope[stmt.Dest] = v
		}
		return ExecResult{Vector: v}, nil
	case "___GetType":
		if len(stmt.Args) == 0 {
			return ExecResult{}, newExecutionError("InvalidArgument", "___GetType requires an argument")
		}
		c, ok := stmt.Args[0].(Compound)
		if !ok {
			if ex.sess.strictTypes {
				return ExecResult{}, newExecutionError("MissingType", "___GetType: argument is not a typed constructor chain")
			}
			return ExecResult{}, nil
		}
		t := primaryTypeOf(c)
		if t == "" && ex.sess.strictTypes {
			return ExecResult{}, newExecutionError("MissingType", "___GetType: no type marker found")
		}
		v, err := ex.sess.vocab.Intern(t)
		if err != nil {
			return ExecResult{}, err
		}
		if stmt.Dest != "" {
			ex.sess.scope[stmt.Dest] = v
		}
		return ExecResult{Vector: v}, nil
	}
	return ExecResult{}, newExecutionError("UnknownOperator", "unknown builtin "+stmt.Operator)
}

func (ex *Executor) builtinReduce(stmt Statement, op func(a, b Vector) (Vector, error)) (ExecResult, error) {
	if len(stmt.Args) < 2 {
		return ExecResult{}, newExecutionError("InvalidArgument", stmt.Operator+" requires at least two arguments")
	}
	acc, err := ex.resolveExpr(stmt.Args[0])
	if err != nil {
		return ExecResult{}, err
	}
	for _, a := range stmt.Args[1:] {
		v, err := ex.resolveExpr(a)
		if err != nil {
			return ExecResult{}, err
		}
		acc, err = op(acc, v)
		if err != nil {
			return ExecResult{}, err
		}
	}
	if stmt.Dest != "" {
		ex.sess.scope[stmt.Dest] = acc
	}
	return ExecResult{Vector: acc}, nil
}

// primaryTypeOf walks a typed constructor chain `(Type ... (Type2 ...))`-like
// compound looking for the outermost operator that names a type, per the
// convention that a Compound's Operator is itself the type marker when the
// inner args are further Compounds. This is a deliberately small heuristic:
// the first-level operator wins.
func primaryTypeOf(c Compound) string {
	if strings.HasPrefix(c.Operator, "Type") || c.Operator == "As" {
		if len(c.Args) > 0 {
			if id, ok := c.Args[0].(Identifier); ok {
				return id.Name
			}
		}
		return ""
	}
	return c.Operator
}
