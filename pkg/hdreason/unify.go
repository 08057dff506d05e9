package hdreason

// Bindings maps a rule's free-variable names to the Expr they were unified
// with during backward chaining (spec.md §4.5 step 7).
type Bindings map[string]Expr

// Clone returns a shallow copy of b so speculative unification attempts
// don't mutate a shared binding set on failure.
func (b Bindings) Clone() Bindings {
	out := make(Bindings, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// unifyExpr attempts to unify pattern (which may contain Hole variables)
// against ground, extending bindings. It returns the extended bindings and
// true on success.
func unifyExpr(pattern, ground Expr, bindings Bindings, canon *Canonicalizer) (Bindings, bool) {
	switch p := pattern.(type) {
	case Hole:
		if existing, bound := bindings[p.Name]; bound {
			return unifyExpr(existing, ground, bindings, canon)
		}
		out := bindings.Clone()
		out[p.Name] = ground
		return out, true
	case Identifier:
		g, ok := ground.(Identifier)
		if !ok {
			return bindings, false
		}
		if canon != nil {
			if canon.Canonicalize(p.Name) == canon.Canonicalize(g.Name) {
				return bindings, true
			}
		}
		return bindings, p.Name == g.Name
	case Reference:
		g, ok := ground.(Reference)
		return bindings, ok && p.Name == g.Name
	case StringLit:
		g, ok := ground.(StringLit)
		return bindings, ok && p.Value == g.Value
	case NumberLit:
		g, ok := ground.(NumberLit)
		return bindings, ok && p.Value == g.Value
	case ListExpr:
		g, ok := ground.(ListExpr)
		if !ok || len(p.Items) != len(g.Items) {
			return bindings, false
		}
		cur := bindings
		for i := range p.Items {
			var matched bool
			cur, matched = unifyExpr(p.Items[i], g.Items[i], cur, canon)
			if !matched {
				return bindings, false
			}
		}
		return cur, true
	case Compound:
		g, ok := ground.(Compound)
		if !ok || p.Operator != g.Operator || len(p.Args) != len(g.Args) {
			return bindings, false
		}
		cur := bindings
		for i := range p.Args {
			var matched bool
			cur, matched = unifyExpr(p.Args[i], g.Args[i], cur, canon)
			if !matched {
				return bindings, false
			}
		}
		return cur, true
	default:
		return bindings, false
	}
}

// UnifyMetadata unifies a rule-side pattern (condition or conclusion) against
// a ground fact/goal's metadata: operators must match exactly (no variables
// in operator position, per spec.md §9 Open Questions) and arguments unify
// positionally.
func UnifyMetadata(pattern, ground FactMetadata, bindings Bindings, canon *Canonicalizer) (Bindings, bool) {
	if pattern.Operator != ground.Operator || len(pattern.Args) != len(ground.Args) {
		return bindings, false
	}
	cur := bindings
	for i := range pattern.Args {
		var ok bool
		cur, ok = unifyExpr(pattern.Args[i], ground.Args[i], cur, canon)
		if !ok {
			return bindings, false
		}
	}
	return cur, true
}

// Substitute replaces every Hole in e with its binding, leaving unbound
// holes untouched.
func Substitute(e Expr, bindings Bindings) Expr {
	switch v := e.(type) {
	case Hole:
		if bound, ok := bindings[v.Name]; ok {
			return bound
		}
		return v
	case ListExpr:
		items := make([]Expr, len(v.Items))
		for i, it := range v.Items {
			items[i] = Substitute(it, bindings)
		}
		return ListExpr{Items: items}
	case Compound:
		args := make([]Expr, len(v.Args))
		for i, a := range v.Args {
			args[i] = Substitute(a, bindings)
		}
		return Compound{Operator: v.Operator, Args: args}
	default:
		return e
	}
}

// SubstituteMetadata applies bindings throughout a FactMetadata tree.
func SubstituteMetadata(md FactMetadata, bindings Bindings) FactMetadata {
	out := md
	out.Args = make([]Expr, len(md.Args))
	for i, a := range md.Args {
		out.Args[i] = Substitute(a, bindings)
	}
	if len(md.Parts) > 0 {
		out.Parts = make([]FactMetadata, len(md.Parts))
		for i, p := range md.Parts {
			out.Parts[i] = SubstituteMetadata(p, bindings)
		}
	}
	if md.Condition != nil {
		c := SubstituteMetadata(*md.Condition, bindings)
		out.Condition = &c
	}
	if md.Conclusion != nil {
		c := SubstituteMetadata(*md.Conclusion, bindings)
		out.Conclusion = &c
	}
	if len(md.Body) > 0 {
		out.Body = make([]FactMetadata, len(md.Body))
		for i, b := range md.Body {
			out.Body[i] = SubstituteMetadata(b, bindings)
		}
	}
	return out
}
