package hdreason

// SolveResult is attached to a LearnResult when a `solve` statement ran
// (spec.md §4.9).
type SolveResult struct {
	Kind        string
	SolutionIDs []string
	Facts       []string // rendered NL fact strings, per spec.md §4.9 CSP output
}

// executeSolve dispatches a `solve <kind> [...]` statement to the CSP or
// planning subsystem (spec.md §4.9). `WeddingSeating` is a named CSP alias.
func (ex *Executor) executeSolve(stmt Statement) (ExecResult, error) {
	switch stmt.SolveKind {
	case "csp", "WeddingSeating":
		res, err := ex.sess.solveCSP(stmt)
		if err != nil {
			return ExecResult{}, err
		}
		if stmt.Dest != "" {
			ex.sess.scope[stmt.Dest] = Vector{}
		}
		return ExecResult{SolveResult: res}, nil
	case "planning":
		res, err := ex.sess.solvePlanning(stmt)
		if err != nil {
			return ExecResult{}, err
		}
		if stmt.Dest != "" {
			ex.sess.scope[stmt.Dest] = Vector{}
		}
		return ExecResult{SolveResult: res}, nil
	default:
		return ExecResult{}, newExecutionError("UnknownOperator", "unknown solve kind "+stmt.SolveKind)
	}
}

// configEntry looks up a SolveConfigEntry by key.
func configEntry(stmt Statement, key string) (SolveConfigEntry, bool) {
	for _, e := range stmt.SolveConfig {
		if e.Key == key {
			return e, true
		}
	}
	return SolveConfigEntry{}, false
}

func configEntries(stmt Statement, key string) []SolveConfigEntry {
	var out []SolveConfigEntry
	for _, e := range stmt.SolveConfig {
		if e.Key == key {
			out = append(out, e)
		}
	}
	return out
}
