package main

import (
	"github.com/spf13/cobra"

	"nextadvisor/internal/store"
	"nextadvisor/internal/ux"
)

func (a *app) historyCmd() *cobra.Command {
	var limit int
	var full bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded resolutions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			logged, err := s.ListResolutions(limit)
			if err != nil {
				return err
			}
			if logged == nil {
				logged = []store.Resolution{}
			}
			if !full {
				for i := range logged {
					logged[i].Recommendation = nil
				}
			}
			return ux.NewRenderer(cmd.OutOrStdout(), ux.FormatJSON).JSON(logged)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum records to show (0 for all)")
	cmd.Flags().BoolVar(&full, "full", false, "Include the full recommendation")
	return cmd
}
