package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nextadvisor/internal/catalog"
	"nextadvisor/internal/ux"
)

func (a *app) catalogCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect, validate and archive pattern catalogs",
	}
	cmd.PersistentFlags().StringVarP(&format, "format", "f", "text", "Output format: json, text, markdown")

	renderer := func(cmd *cobra.Command) (*ux.Renderer, error) {
		f, err := ux.ParseFormat(format)
		if err != nil {
			return nil, err
		}
		return ux.NewRenderer(cmd.OutOrStdout(), f), nil
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.loadCatalog()
			if err != nil {
				return err
			}
			r, err := renderer(cmd)
			if err != nil {
				return err
			}
			return r.Entries(cat)
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one entry in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.loadCatalog()
			if err != nil {
				return err
			}
			e, err := cat.Get(args[0])
			if err != nil {
				return err
			}
			r, err := renderer(cmd)
			if err != nil {
				return err
			}
			return r.Entry(e)
		},
	}

	validate := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate a catalog file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.LoadPath(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s version=%s entries=%d digest=%s\n",
				args[0], cat.Version(), cat.Len(), cat.Digest())
			return nil
		},
	}

	imp := &cobra.Command{
		Use:   "import <path>",
		Short: "Validate a catalog and archive it in the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.LoadPath(args[0])
			if err != nil {
				return err
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			saved, err := s.SaveCatalog(cat)
			if err != nil {
				return err
			}
			state := "imported"
			if !saved {
				state = "already archived"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: version=%s digest=%s\n", state, cat.Version(), cat.Digest())
			return nil
		},
	}

	versions := &cobra.Command{
		Use:   "versions",
		Short: "List archived catalog versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			vs, err := s.ListVersions()
			if err != nil {
				return err
			}
			r, err := renderer(cmd)
			if err != nil {
				return err
			}
			return r.Versions(vs)
		},
	}

	cmd.AddCommand(list, show, validate, imp, versions)
	return cmd
}
