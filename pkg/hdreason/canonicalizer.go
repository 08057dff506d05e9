package hdreason

import "sort"

// Canonicalizer rewrites identifiers to their component's canonical
// representative (spec.md §4.4). The default representative is the
// lexicographically smallest member of a synonym component; an explicit
// `alias`/`canonical` declaration overrides that with a pinned name, and the
// override propagates through the whole transitive closure.
type Canonicalizer struct {
	kb *ComponentKB

	// rewrites holds canonicalRewrite declarations: primitive operator ->
	// (macro operator, arg index permutation). spec.md §4.4.
	rewrites map[string]canonicalRewriteRule
}

type canonicalRewriteRule struct {
	macroOperator string
	argIndexes    []int
	conflict      bool // set once a second, differing rewrite is declared
}

// NewCanonicalizer creates a Canonicalizer backed by kb's synonym graph.
func NewCanonicalizer(kb *ComponentKB) *Canonicalizer {
	return &Canonicalizer{kb: kb, rewrites: make(map[string]canonicalRewriteRule)}
}

// Canonicalize returns the canonical representative of name. It is
// idempotent: Canonicalize(Canonicalize(x)) == Canonicalize(x), since the
// representative is always itself a member of its own component and the
// computation only depends on component membership, not on which name asked.
func (c *Canonicalizer) Canonicalize(name string) string {
	members := closureFrom(c.kb.synonyms, name)
	if len(members) <= 1 {
		return name
	}
	sort.Strings(members)
	if override, ok := c.aliasOverride(members); ok {
		return override
	}
	return members[0]
}

// aliasOverride looks for a pinned alias representative for this component.
func (c *Canonicalizer) aliasOverride(members []string) (string, bool) {
	rep, ok := c.kb.aliases[componentKeyFromMembers(members)]
	return rep, ok
}

func componentKeyFromMembers(members []string) string {
	cp := append([]string(nil), members...)
	sort.Strings(cp)
	if len(cp) == 0 {
		return ""
	}
	return cp[0]
}

// CanonicalizeStatement rewrites every Identifier in stmt's arguments,
// including those nested inside list and compound arguments, to its
// canonical representative; operators and other literals are left
// untouched (spec.md §4.4).
func (c *Canonicalizer) CanonicalizeStatement(stmt Statement) Statement {
	out := stmt
	out.Args = make([]Expr, len(stmt.Args))
	for i, a := range stmt.Args {
		out.Args[i] = c.canonicalizeExpr(a)
	}
	return out
}

func (c *Canonicalizer) canonicalizeExpr(e Expr) Expr {
	switch v := e.(type) {
	case Identifier:
		return Identifier{Name: c.Canonicalize(v.Name)}
	case ListExpr:
		items := make([]Expr, len(v.Items))
		for i, it := range v.Items {
			items[i] = c.canonicalizeExpr(it)
		}
		return ListExpr{Items: items}
	case Compound:
		args := make([]Expr, len(v.Args))
		for i, a := range v.Args {
			args[i] = c.canonicalizeExpr(a)
		}
		return Compound{Operator: v.Operator, Args: args}
	default:
		return e
	}
}

// DeclareRewrite registers a canonicalRewrite primOp -> macroOp over the
// given argument index permutation. Declaring a second, differing rewrite
// for the same primOp marks the rule as conflicting, which rejects any
// later persistence attempt of that primitive (spec.md §4.4).
func (c *Canonicalizer) DeclareRewrite(primOp, macroOp string, argIndexes []int) {
	existing, ok := c.rewrites[primOp]
	if ok && (existing.macroOperator != macroOp || !sameInts(existing.argIndexes, argIndexes)) {
		existing.conflict = true
		c.rewrites[primOp] = existing
		return
	}
	c.rewrites[primOp] = canonicalRewriteRule{macroOperator: macroOp, argIndexes: argIndexes}
}

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Rewrite applies a declared canonicalRewrite to md, if one exists for its
// operator, returning the rewritten macro-form metadata. ok is false if no
// rewrite applies; err is set if the rewrite rule conflicts.
func (c *Canonicalizer) Rewrite(md FactMetadata) (rewritten FactMetadata, ok bool, err error) {
	rule, has := c.rewrites[md.Operator]
	if !has {
		return md, false, nil
	}
	if rule.conflict {
		return md, false, newExecutionError("ConflictingRewrite", "multiple canonicalRewrite rules declared for "+md.Operator)
	}
	args := make([]Expr, len(rule.argIndexes))
	for i, idx := range rule.argIndexes {
		if idx < 0 || idx >= len(md.Args) {
			return md, false, newExecutionError("InvalidArgument", "canonicalRewrite index out of range")
		}
		args[i] = md.Args[idx]
	}
	return FactMetadata{Operator: rule.macroOperator, Args: args, Source: md.Source}, true, nil
}
