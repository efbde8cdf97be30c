package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"nextadvisor/internal/catalog"
	"nextadvisor/internal/logging"
	"nextadvisor/internal/resolver"
	"nextadvisor/internal/ux"
)

func (a *app) resolveCmd() *cobra.Command {
	var format string
	var record, raw bool

	cmd := &cobra.Command{
		Use:   "resolve [requirement...]",
		Short: "Recommend files for one requirement",
		Example: `  advisor resolve "fetch a product by ID from the URL"
  advisor resolve --format text create a route at /products/[id]`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ux.ParseFormat(format)
			if err != nil {
				return err
			}
			eng, err := a.newEngine()
			if err != nil {
				return err
			}

			rec, resolveErr := eng.Resolve(cmd.Context(), joinArgs(args))
			var ite *resolver.IncompleteTemplateError
			if resolveErr != nil && !errors.As(resolveErr, &ite) {
				return resolveErr
			}

			r := ux.NewRenderer(cmd.OutOrStdout(), f)
			r.Raw = raw
			if err := r.Recommendation(rec); err != nil {
				return err
			}

			if record {
				if err := a.record(cmd, eng.Catalog(), rec); err != nil {
					return err
				}
			}

			if rec.Status == resolver.StatusNoMatch {
				return resolver.ErrNoMatch
			}
			return resolveErr
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json, text, markdown")
	cmd.Flags().BoolVar(&record, "record", false, "Record the resolution in the store")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print Markdown source instead of rendering it")
	return cmd
}

// record archives the catalog and logs the resolutions. The id of each record
// goes to stderr so stdout stays parseable.
func (a *app) record(cmd *cobra.Command, cat *catalog.Catalog, recs ...*resolver.Recommendation) error {
	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.SaveCatalog(cat); err != nil {
		return err
	}
	for _, rec := range recs {
		if rec == nil {
			continue
		}
		id, err := s.RecordResolution(rec)
		if err != nil {
			return err
		}
		logging.Get(logging.CategoryCLI).Debug("recorded %s for %q", id, rec.Requirement)
		fmt.Fprintf(cmd.ErrOrStderr(), "recorded %s\n", id)
	}
	return nil
}
