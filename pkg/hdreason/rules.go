package hdreason

// Rule is a captured `Implies(cond, concl)` statement (spec.md §3 Rules):
// both sides keep their vector and structured metadata, plus the set of
// free variables (`?x`, `?y`, ...) collected by walking the AST for Hole
// nodes, and a flag distinguishing ground rules from schema rules.
type Rule struct {
	ID          string
	Condition   FactMetadata
	Conclusion  FactMetadata
	Vector      Vector
	Variables   []string
	HasVariables bool
}

// collectHoles walks e looking for Hole nodes and appends their names to
// out, deduplicating as it goes.
func collectHoles(e Expr, out []string, seen map[string]bool) []string {
	switch v := e.(type) {
	case Hole:
		if !seen[v.Name] {
			seen[v.Name] = true
			out = append(out, v.Name)
		}
	case ListExpr:
		for _, it := range v.Items {
			out = collectHoles(it, out, seen)
		}
	case Compound:
		for _, a := range v.Args {
			out = collectHoles(a, out, seen)
		}
	}
	return out
}

// collectMetadataHoles finds every free variable referenced anywhere inside
// a FactMetadata tree (condition, conclusion, parts, body, and their args).
func collectMetadataHoles(md FactMetadata, out []string, seen map[string]bool) []string {
	for _, a := range md.Args {
		out = collectHoles(a, out, seen)
	}
	for _, a := range md.InnerArgs {
		out = collectHoles(a, out, seen)
	}
	for _, p := range md.Parts {
		out = collectMetadataHoles(p, out, seen)
	}
	for _, b := range md.Body {
		out = collectMetadataHoles(b, out, seen)
	}
	if md.Condition != nil {
		out = collectMetadataHoles(*md.Condition, out, seen)
	}
	if md.Conclusion != nil {
		out = collectMetadataHoles(*md.Conclusion, out, seen)
	}
	return out
}

// NewRule builds a Rule from a parsed Implies statement's condition and
// conclusion metadata and its bundled vector.
func NewRule(id string, cond, concl FactMetadata, vec Vector) Rule {
	seen := map[string]bool{}
	vars := collectMetadataHoles(cond, nil, seen)
	vars = collectMetadataHoles(concl, vars, seen)
	return Rule{
		ID: id, Condition: cond, Conclusion: concl, Vector: vec,
		Variables: vars, HasVariables: len(vars) > 0,
	}
}
