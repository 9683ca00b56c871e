package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"todo-engine/internal/models"
	"todo-engine/internal/service"
)

func newAddCmd(opts *options) *cobra.Command {
	var in models.Input
	var priority string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a todo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadService(cmd.Context(), opts)
			if err != nil {
				return err
			}
			in.Priority = models.Priority(priority)
			todo, err := svc.Add(service.WithActor(cmd.Context(), opts.actor), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s: %s\n", todo.ID, todo.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.Title, "title", "t", "", "title (at least 3 characters)")
	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "description (at most 100 characters)")
	cmd.Flags().StringVar(&priority, "priority", string(models.DefaultPriority), "Low, Medium or High")
	cmd.Flags().StringVar(&in.DueDate, "due", "", "due date, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newToggleCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Flip a todo between done and open",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadService(cmd.Context(), opts)
			if err != nil {
				return err
			}
			todo, err := svc.Toggle(service.WithActor(cmd.Context(), opts.actor), args[0])
			if err != nil {
				return err
			}
			state := "open"
			if todo.Completed {
				state = "done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", todo.ID, state)
			return nil
		},
	}
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadService(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if err := svc.Delete(service.WithActor(cmd.Context(), opts.actor), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
