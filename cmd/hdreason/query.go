package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyprcog/hdreason/pkg/hdreason"
)

// addFactsFlag is shared by query/prove/solve: the DSL source to learn
// before running the actual operation.
func addFactsFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVar(dst, "facts", "", "DSL source file to learn before running the operation")
}

// primeSession builds a session and, if factsPath is set, learns it in
// before returning.
func primeSession(factsPath string) (*hdreason.Session, error) {
	sess, err := newCLISession()
	if err != nil {
		return nil, err
	}
	if factsPath == "" {
		return sess, nil
	}
	data, err := os.ReadFile(factsPath)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", factsPath, err)
	}
	if res := sess.Learn(string(data)); !res.Success {
		return nil, fmt.Errorf("learning %q: %v", factsPath, res.Errors)
	}
	return sess, nil
}

func newQueryCmd() *cobra.Command {
	var factsPath string
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "query [dsl]",
		Short: "Answer a hole-query or meta-operator goal against a session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dsl, err := readDSLSource(args)
			if err != nil {
				return err
			}
			sess, err := primeSession(factsPath)
			if err != nil {
				return err
			}
			res := sess.Query(dsl)
			if jsonOut {
				return printJSON(res)
			}
			printQueryResult(res)
			return nil
		},
	}
	addFactsFlag(cmd, &factsPath)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the QueryResult as JSON")
	return cmd
}

func printQueryResult(res hdreason.QueryResult) {
	if !res.Success {
		for _, e := range res.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", e)
		}
		return
	}
	for name, b := range res.Bindings {
		fmt.Printf("%s = %s (similarity %.3f, method %s)\n", name, b.Answer, b.Similarity, b.Method)
	}
	fmt.Printf("confidence: %.3f\n", res.Confidence)
}
