package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"todo-engine/internal/config"
	"todo-engine/internal/models"
	"todo-engine/internal/service"
	"todo-engine/internal/session"
)

const shellHelp = `commands:
  search [TERM]   filter by title (applied after typing pauses)
  sort KEY        none, creationTime, priority, dueDate
  page N | next | prev
  add TITLE       create a todo with default priority
  toggle ID       flip completion
  delete ID       remove a todo
  reload          fetch the list again
  quit`

// lockedWriter serializes output from the prompt loop and debounced redraws.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func newShellCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive search, sort and paging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := service.WithActor(cmd.Context(), opts.actor)
			svc, err := loadService(ctx, opts)
			if err != nil {
				return err
			}
			out := &lockedWriter{w: cmd.OutOrStdout()}
			sess := session.New(svc, opts.perPage, config.Get().SearchDebounce)
			defer sess.Close()
			sess.OnChange(func(v session.View) { renderView(out, v) })
			renderView(out, sess.View())

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					break
				}
				verb, rest, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
				rest = strings.TrimSpace(rest)
				switch verb {
				case "":
				case "quit", "exit":
					sess.Flush()
					return nil
				case "help":
					fmt.Fprintln(out, shellHelp)
				case "search":
					sess.SetSearchTerm(rest)
				case "sort":
					key, ok := models.ParseSortKey(rest)
					if !ok {
						fmt.Fprintf(out, "unknown sort %q\n", rest)
						continue
					}
					sess.SetSort(key)
				case "page":
					n, err := strconv.Atoi(rest)
					if err != nil {
						fmt.Fprintf(out, "bad page %q\n", rest)
						continue
					}
					sess.SetPage(n)
				case "next":
					sess.SetPage(sess.Params().CurrentPage + 1)
				case "prev":
					sess.SetPage(sess.Params().CurrentPage - 1)
				case "add":
					if _, err := svc.Add(ctx, models.Input{Title: rest}); err != nil {
						fmt.Fprintln(out, "error:", err)
						continue
					}
					sess.Refresh()
				case "toggle":
					if _, err := svc.Toggle(ctx, rest); err != nil {
						fmt.Fprintln(out, "error:", err)
						continue
					}
					sess.Refresh()
				case "delete":
					if err := svc.Delete(ctx, rest); err != nil {
						fmt.Fprintln(out, "error:", err)
						continue
					}
					sess.Refresh()
				case "reload":
					if err := svc.Reload(ctx); err != nil {
						fmt.Fprintln(out, "error:", err)
						continue
					}
					sess.Refresh()
				default:
					fmt.Fprintf(out, "unknown command %q, try help\n", verb)
				}
			}
			sess.Flush()
			return scanner.Err()
		},
	}
}
