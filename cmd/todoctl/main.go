// Command todoctl queries and edits the remote todo list from a terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"todo-engine/internal/config"
	"todo-engine/internal/remote"
	"todo-engine/internal/service"
	"todo-engine/internal/session"
	"todo-engine/pkg/logger"
)

type options struct {
	remoteURL string
	perPage   int
	actor     string
}

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Get()
	logger.SetLevel("error")
	opts := &options{}

	root := &cobra.Command{
		Use:   "todoctl",
		Short: "Inspect and edit the remote todo list",
		Long: `todoctl loads the todo list from the remote store and runs the same
search, sort and pagination the HTTP API uses.

Examples:
  todoctl list --search milk --sort priority
  todoctl add --title "Pay rent" --priority High --due 2026-12-01
  todoctl toggle 3
  todoctl pages --total 10 --current 5
  todoctl shell`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.remoteURL, "remote", cfg.RemoteBaseURL, "base URL of the remote todo store")
	root.PersistentFlags().IntVar(&opts.perPage, "per-page", cfg.ItemsPerPage, "todos per page")
	root.PersistentFlags().StringVar(&opts.actor, "actor", "todoctl", "name recorded on mutations")

	root.AddCommand(
		newListCmd(opts),
		newAddCmd(opts),
		newToggleCmd(opts),
		newDeleteCmd(opts),
		newPagesCmd(),
		newShellCmd(opts),
	)
	return root
}

// loadService fetches the collection from the remote.
func loadService(ctx context.Context, opts *options) (*service.Service, error) {
	cfg := config.Get()
	svc := service.New(remote.NewClient(strings.TrimRight(opts.remoteURL, "/"), cfg.RemoteUserID, cfg.RemoteBatchSize), nil, nil)
	if err := svc.Reload(ctx); err != nil {
		return nil, fmt.Errorf("failed to load todos: %w", err)
	}
	return svc, nil
}

func renderView(w io.Writer, v session.View) {
	if v.TotalItems == 0 {
		fmt.Fprintln(w, "No todos found.")
		return
	}
	fmt.Fprintf(w, "%-14s %-40s %-7s %-11s %s\n", "ID", "TITLE", "PRIO", "DUE", "DONE")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, t := range v.Items {
		title := t.Title
		if len(title) > 37 {
			title = title[:37] + "..."
		}
		done := ""
		if t.Completed {
			done = "x"
		}
		due := t.DueDate
		if due == "" {
			due = "-"
		}
		fmt.Fprintf(w, "%-14s %-40s %-7s %-11s %s\n", t.ID, title, t.Priority, due, done)
	}
	if len(v.Items) == 0 {
		fmt.Fprintln(w, "(page is empty)")
	}
	fmt.Fprintf(w, "\n%d todos, %d completed, %d remaining\n", v.TotalItems, v.Completed, v.Remaining)
	fmt.Fprintf(w, "page %d of %d: %s\n", v.CurrentPage, v.TotalPages, strings.Join(v.Pages, " "))
}
