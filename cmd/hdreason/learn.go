package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyprcog/hdreason/pkg/hdreason"
)

func newLearnCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "learn [file]",
		Short: "Learn facts and rules from a DSL source into a fresh session",
		Long: `Reads DSL statements from the named file (or stdin if omitted), running
them through one session's transactional learn pipeline and reporting what
was committed, rejected, or rolled back.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dsl, err := readDSLSource(args)
			if err != nil {
				return err
			}
			sess, err := newCLISession()
			if err != nil {
				return err
			}
			res := sess.Learn(dsl)
			if jsonOut {
				return printJSON(res)
			}
			printLearnResult(res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the LearnResult as JSON")
	return cmd
}

func readDSLSource(args []string) (string, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading %q: %w", args[0], err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

func newCLISession() (*hdreason.Session, error) {
	cfg, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}
	sess, err := hdreason.NewSession(cfg)
	if err != nil {
		return nil, err
	}
	return sess.WithLogger(newZapLogger(cfg.LogLevel)), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printLearnResult(res hdreason.LearnResult) {
	if res.Success {
		fmt.Printf("ok: %d facts committed\n", res.Facts)
		for _, w := range res.Warnings {
			fmt.Printf("warning: %s\n", w)
		}
		if res.SolveResult != nil {
			for _, f := range res.SolveResult.Facts {
				fmt.Printf("  %s\n", f)
			}
		}
		return
	}
	for _, e := range res.Errors {
		fmt.Fprintf(os.Stderr, "error: %s\n", e)
	}
}
