// Seed creates sample todos on the remote store. Run from project root: go run ./scripts/seed [count]
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"todo-engine/internal/config"
	"todo-engine/internal/models"
	"todo-engine/internal/remote"
)

var priorities = []models.Priority{models.PriorityHigh, models.PriorityMedium, models.PriorityLow}

func main() {
	_ = godotenv.Load()

	total := 20
	if len(os.Args) > 1 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil || n <= 0 {
			fmt.Fprintln(os.Stderr, "count must be a positive integer")
			os.Exit(1)
		}
		total = n
	}

	cfg := config.Get()
	client := remote.NewClient(cfg.RemoteBaseURL, cfg.RemoteUserID, cfg.RemoteBatchSize)
	ctx := context.Background()
	start := time.Now()

	for i := 1; i <= total; i++ {
		in := models.Input{
			Title:     fmt.Sprintf("Seed todo %d", i),
			Priority:  priorities[i%len(priorities)],
			Completed: i%4 == 0,
		}
		if _, err := client.Create(ctx, in); err != nil {
			fmt.Fprintln(os.Stderr, "\nCreate failed:", err)
			os.Exit(1)
		}
		fmt.Printf("\rCreated %d / %d", i, total)
	}

	fmt.Printf("\nDone: %d todos in %v\n", total, time.Since(start))
}
