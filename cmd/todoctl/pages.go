package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"todo-engine/internal/pagination"
)

func newPagesCmd() *cobra.Command {
	var total, current int
	cmd := &cobra.Command{
		Use:   "pages",
		Short: "Print the page buttons for a page count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items := pagination.Strings(pagination.Pages(current, total))
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(items, " "))
			return nil
		},
	}
	cmd.Flags().IntVar(&total, "total", 1, "total pages")
	cmd.Flags().IntVar(&current, "current", 1, "current page")
	return cmd
}
