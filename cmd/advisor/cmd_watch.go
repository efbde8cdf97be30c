package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nextadvisor/internal/catalog"
	"nextadvisor/internal/logging"
	"nextadvisor/internal/resolver"
)

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Answer requirements from stdin while hot-reloading the catalog",
		Long: `Reads one requirement per line from stdin and writes one JSON
recommendation per line. When --catalog (or catalog.path) names a file or
directory, edits to it are picked up without restarting; a revision that fails
validation is reported and the previous catalog stays live.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := a.newEngine()
			if err != nil {
				return err
			}

			if path := a.cfg.Catalog.Path; path != "" {
				w, err := catalog.NewWatcher(path, a.cfg.GetDebounce(), eng.PublishFunc())
				if err != nil {
					return err
				}
				defer w.Stop()
				if err := w.Start(ctx); err != nil {
					return err
				}
			} else {
				logging.Get(logging.CategoryCLI).Info("serving embedded catalog; nothing to watch")
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			sc := newLineScanner(cmd.InOrStdin())
			for i := 0; sc.Scan(); {
				if err := ctx.Err(); err != nil {
					return err
				}
				text := strings.TrimSpace(sc.Text())
				if text == "" {
					continue
				}
				rec, err := eng.Resolve(ctx, text)
				var ite *resolver.IncompleteTemplateError
				if err != nil && !errors.As(err, &ite) {
					return err
				}
				line := batchLine{Index: i, Recommendation: rec}
				if err != nil {
					line.Error = err.Error()
				}
				if err := enc.Encode(line); err != nil {
					return fmt.Errorf("failed to write result: %w", err)
				}
				i++
			}
			return sc.Err()
		},
	}
}
