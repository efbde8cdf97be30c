package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"nextadvisor/internal/engine"
	"nextadvisor/internal/resolver"
)

// batchLine is one JSON line of batch output.
type batchLine struct {
	Index int    `json:"index"`
	Error string `json:"error,omitempty"`
	*resolver.Recommendation
}

func (a *app) batchCmd() *cobra.Command {
	var record bool

	cmd := &cobra.Command{
		Use:   "batch <file|->",
		Short: "Resolve one requirement per line, concurrently",
		Long: `Reads requirements one per line (blank lines and lines starting with #
are skipped) and writes one JSON recommendation per line, in input order.
All lines are resolved against the same catalog snapshot.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			texts, err := readRequirements(cmd, args[0])
			if err != nil {
				return err
			}
			eng, err := a.newEngine()
			if err != nil {
				return err
			}

			results, err := eng.ResolveAll(cmd.Context(), texts)
			if err != nil {
				return err
			}
			if err := writeBatch(cmd.OutOrStdout(), results); err != nil {
				return err
			}

			if record {
				recs := make([]*resolver.Recommendation, len(results))
				for i, r := range results {
					recs[i] = r.Recommendation
				}
				return a.record(cmd, eng.Catalog(), recs...)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&record, "record", false, "Record every resolution in the store")
	return cmd
}

func readRequirements(cmd *cobra.Command, path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open requirements: %w", err)
		}
		defer f.Close()
		r = f
	}

	var texts []string
	sc := newLineScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		texts = append(texts, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read requirements: %w", err)
	}
	return texts, nil
}

func writeBatch(w io.Writer, results []engine.Result) error {
	enc := json.NewEncoder(w)
	for _, r := range results {
		line := batchLine{Index: r.Index, Recommendation: r.Recommendation}
		if r.Err != nil {
			line.Error = r.Err.Error()
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to write result %d: %w", r.Index, err)
		}
	}
	return nil
}
