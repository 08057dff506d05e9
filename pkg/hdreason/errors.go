package hdreason

import (
	"github.com/samber/oops"
)

// Error kind tags, matching the taxonomy in spec.md §7. These are not Go
// types but string tags attached via oops' Code() so callers can branch on
// ErrorKind(err) without a type switch per package boundary.
const (
	KindLexer         = "LexerError"
	KindParse         = "ParseError"
	KindExecution     = "ExecutionError"
	KindContradiction = "ContradictionRejected"
	KindLoad          = "LoadError"
)

func newLexerError(line, col int, msg string) error {
	return oops.Code(KindLexer).With("line", line).With("column", col).Errorf("lexer: %s", msg)
}

func newParseError(line, col int, msg string) error {
	return oops.Code(KindParse).With("line", line).With("column", col).Errorf("parse: %s", msg)
}

func newExecutionError(reason, msg string) error {
	return oops.Code(KindExecution).With("reason", reason).Errorf("execution: %s", msg)
}

func newContradictionError(rule string, proofNL string) error {
	return oops.Code(KindContradiction).With("rule", rule).With("proof_nl", proofNL).Errorf("contradiction: %s", proofNL)
}

func newLoadError(path string, cause error) error {
	return oops.Code(KindLoad).With("path", path).Wrapf(cause, "load %q", path)
}

// ErrorKind extracts the spec.md §7 taxonomy tag from an error produced by
// this package, or "" if err did not originate here.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	oc, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	return oc.Code()
}
