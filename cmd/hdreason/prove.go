package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyprcog/hdreason/pkg/hdreason"
)

func newProveCmd() *cobra.Command {
	var factsPath string
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "prove [dsl]",
		Short: "Prove a goal against a session, walking the proof strategy chain",
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
			res := sess.Prove(dsl)
			if jsonOut {
				return printJSON(res)
			}
			printProveResult(res)
			return nil
		},
	}
	addFactsFlag(cmd, &factsPath)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the ProveResult as JSON")
	return cmd
}

func printProveResult(res hdreason.ProveResult) {
	if !res.Valid {
		fmt.Printf("not proved: %s\n", res.Reason)
		return
	}
	fmt.Printf("proved via %s (confidence %.3f)\n", res.Method, res.Confidence)
	for _, step := range res.Steps {
		fmt.Printf("  %s: %s\n", step.Kind, step.Detail)
	}
}
