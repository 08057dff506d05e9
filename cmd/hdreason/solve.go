package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newSolveCmd() *cobra.Command {
	var factsPath string
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "solve [dsl]",
		Short: "Run a `solve csp|planning ...` statement and report its solutions",
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
			res := sess.Learn(dsl)
			if jsonOut {
				return printJSON(res)
			}
			if !res.Success {
				for _, e := range res.Errors {
					fmt.Fprintf(os.Stderr, "error: %s\n", e)
				}
				return nil
			}
			if res.SolveResult == nil {
				fmt.Println("no solve statement in input")
				return nil
			}
			fmt.Printf("%s: %d solution(s)\n", res.SolveResult.Kind, len(res.SolveResult.SolutionIDs))
			for _, f := range res.SolveResult.Facts {
				fmt.Printf("  %s\n", f)
			}
			return nil
		},
	}
	addFactsFlag(cmd, &factsPath)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the LearnResult as JSON")
	return cmd
}
