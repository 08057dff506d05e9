package hdreason

import "strings"

// FactMetadata is the canonical, structured representation of a persisted
// statement (spec.md §3 Fact). Every symbolic code path — the component KB,
// canonicalizer, contradiction detector, and proof engine — operates on
// this structure rather than re-parsing DSL text. Rendering it back to DSL
// (Render) must be bijective up to whitespace.
type FactMetadata struct {
	Operator string
	Args     []Expr
	Source   string

	// InnerOperator/InnerArgs describe a compound argument's own statement
	// shape, when Args[i] was a Compound; used by canonicalRewrite.
	InnerOperator string
	InnerArgs     []Expr

	// Parts holds the children of a conjunction/disjunction operator
	// (And/Or), each as its own metadata record.
	Parts []FactMetadata

	// Condition/Conclusion hold the two sides of an Implies rule.
	Condition *FactMetadata
	Conclusion *FactMetadata

	// Body holds the statements inside a quantifier scope (ForAll/Exists).
	Body []FactMetadata

	// Variable names the bound variable for a quantifier.
	Variable string

	// Negated marks an explicit `Not <op> ...` statement.
	Negated bool
}

// Render reproduces DSL text for m. It is the inverse of the executor's
// metadata construction and must parse back to an AST describing the same
// fact (spec.md invariants, §3).
func (m FactMetadata) Render() string {
	if m.Negated && m.Operator != "Not" {
		flat := m
		flat.Negated = false
		return "Not " + flat.Render()
	}
	if m.Operator == "Not" && len(m.Parts) == 1 {
		return "Not " + m.Parts[0].Render()
	}
	if m.Operator == "Implies" && m.Condition != nil && m.Conclusion != nil {
		return "Implies (" + m.Condition.Render() + ") (" + m.Conclusion.Render() + ")"
	}
	if (m.Operator == "And" || m.Operator == "Or") && len(m.Parts) > 0 {
		parts := make([]string, len(m.Parts))
		for i, p := range m.Parts {
			parts[i] = "(" + p.Render() + ")"
		}
		return m.Operator + " " + strings.Join(parts, " ")
	}
	var sb strings.Builder
	sb.WriteString(m.Operator)
	for _, a := range m.Args {
		sb.WriteString(" ")
		sb.WriteString(a.String())
	}
	return sb.String()
}

// ArgNames returns the textual form of each top-level argument, used for
// indexing by the component KB (operator/arg0/arg1) and for canonicalization
// substitution. Non-identifier arguments render through Expr.String().
func (m FactMetadata) ArgNames() []string {
	out := make([]string, len(m.Args))
	for i, a := range m.Args {
		out[i] = a.String()
	}
	return out
}

// structureCondition recursively decomposes a flat Operator/Args metadata
// record into its structural form wherever the operator is one of the five
// special forms (Not/And/Or/Exists/ForAll): And/Or get Parts, Not
// gets a single-element Parts holding its negated child, and Exists/ForAll
// get Variable/Body. This is the shape the proof engine's strategies walk
// (proof.go); it is what a reference ($name) resolves to when used as a
// rule condition/conclusion, and what a goal statement becomes before
// Session.Prove dispatches its strategies.
//
// Leaf operators (isA, can, ...) pass through unchanged.
func structureCondition(md FactMetadata) FactMetadata {
	switch md.Operator {
	case "Not":
		if len(md.Args) == 1 {
			if c, ok := md.Args[0].(Compound); ok {
				inner := structureCondition(FactMetadata{Operator: c.Operator, Args: c.Args, Source: md.Source})
				md.Parts = []FactMetadata{inner}
			}
		}
		return md
	case "And", "Or":
		parts := make([]FactMetadata, 0, len(md.Args))
		for _, a := range md.Args {
			if c, ok := a.(Compound); ok {
				parts = append(parts, structureCondition(FactMetadata{Operator: c.Operator, Args: c.Args, Source: md.Source}))
			}
		}
		md.Parts = parts
		return md
	case "Exists", "ForAll":
		if len(md.Args) == 2 {
			if h, ok := md.Args[0].(Hole); ok {
				if c, ok := md.Args[1].(Compound); ok {
					md.Variable = h.Name
					md.Body = []FactMetadata{structureCondition(FactMetadata{Operator: c.Operator, Args: c.Args, Source: md.Source})}
				}
			}
		}
		return md
	default:
		return md
	}
}

// collapseNegatedAssertion turns a top-level `Not (op args...)` assertion
// into the flat negative-fact shape the component KB and proof engine's
// direct/explicit-negation/inheritance lookups expect: Operator/Args become
// the inner statement's, with Negated set, so the fact is indexed and
// matched exactly like a positive `op args...` fact would be (spec.md §4.7,
// §4.5 strategies 6 and 10). Statements that aren't a single-compound `Not`
// pass through unchanged.
func collapseNegatedAssertion(md FactMetadata) FactMetadata {
	if md.Operator != "Not" || len(md.Args) != 1 {
		return md
	}
	c, ok := md.Args[0].(Compound)
	if !ok {
		return md
	}
	return FactMetadata{Operator: c.Operator, Args: c.Args, Source: md.Source, Negated: true}
}

// Fact is a persisted statement: its vector, optional scope name, and
// canonical structured metadata (spec.md §3).
type Fact struct {
	ID       string
	Vector   Vector
	Name     string
	Metadata FactMetadata
}
