package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyprcog/hdreason/pkg/hdreason"
)

func newCoreCmd() *cobra.Command {
	var includeIndex, validate bool
	cmd := &cobra.Command{
		Use:   "core [corePath]",
		Short: "Load a versioned theory/core pack into a fresh session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "core"
			if len(args) == 1 {
				path = args[0]
			}
			sess, err := newCLISession()
			if err != nil {
				return err
			}
			res := sess.LoadCore(hdreason.LoadCoreOptions{
				CorePath:     path,
				IncludeIndex: includeIndex,
				Validate:     validate,
			})
			if res.Success {
				fmt.Println("core pack loaded")
				return nil
			}
			for _, e := range res.Errors {
				fmt.Fprintf(os.Stderr, "error: %s\n", e)
			}
			return fmt.Errorf("loadCore failed")
		},
	}
	cmd.Flags().BoolVar(&includeIndex, "include-index", false, "also load _index.hd after the core pack")
	cmd.Flags().BoolVar(&validate, "validate", false, "validate theory.json against the theory constraints schema")
	return cmd
}
