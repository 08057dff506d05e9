package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newReplCmd() *cobra.Command {
	var factsPath string
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive read-learn-print loop over one session",
		Long: `Starts a single session and reads DSL statements from stdin one at a time.
A line starting with '?' is run as a query instead of a learn statement; a
line starting with '!' is run as a prove goal. Everything else is learned.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := primeSession(factsPath)
			if err != nil {
				return err
			}
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Fprintln(os.Stdout, "hdreason repl — ':quit' to exit")
			for {
				fmt.Fprint(os.Stdout, "> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == ":quit" || line == ":q" {
					break
				}
				switch {
				case strings.HasPrefix(line, "?"):
					printQueryResult(sess.Query(strings.TrimSpace(line[1:])))
				case strings.HasPrefix(line, "!"):
					printProveResult(sess.Prove(strings.TrimSpace(line[1:])))
				default:
					printLearnResult(sess.Learn(line))
				}
			}
			return scanner.Err()
		},
	}
	addFactsFlag(cmd, &factsPath)
	return cmd
}
