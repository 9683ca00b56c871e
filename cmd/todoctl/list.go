package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"todo-engine/internal/models"
	"todo-engine/internal/query"
	"todo-engine/internal/session"
)

func newListCmd(opts *options) *cobra.Command {
	var (
		search string
		sortBy string
		page   int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of todos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, ok := models.ParseSortKey(sortBy)
			if !ok {
				return fmt.Errorf("unknown sort %q (none, creationTime, priority, dueDate)", sortBy)
			}
			svc, err := loadService(cmd.Context(), opts)
			if err != nil {
				return err
			}
			renderView(cmd.OutOrStdout(), session.Compute(svc.Todos(), query.Params{
				SearchTerm:   search,
				SortBy:       key,
				CurrentPage:  max(page, 1),
				ItemsPerPage: opts.perPage,
			}))
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive title filter")
	cmd.Flags().StringVar(&sortBy, "sort", "none", "none, creationTime, priority or dueDate")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	return cmd
}
