// Command codegraph is a thin demonstration binary for pkg/codegraph: it
// indexes a project root given on the command line and prints its
// aggregate stats. It is not a full CLI product — no subcommands,
// watch mode, or query surface live here; pkg/codegraph and pkg/queryapi
// are the real integration points for a caller that wants more.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/codegraphio/codegraph/pkg/codegraph"
)

func main() {
	var (
		root    = flag.String("root", ".", "project root to index")
		workers = flag.Int("workers", 0, "worker pool size (0 = auto)")
		persist = flag.Bool("persist", true, "write the indexed graph to .codegraph_cache")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(*root, *workers, *persist); err != nil {
		slog.Error("codegraph.failed", "err", err)
		os.Exit(1)
	}
}

func run(root string, workers int, persist bool) error {
	project, err := codegraph.Index(context.Background(), root, codegraph.Options{
		Workers: workers,
		Persist: persist,
	})
	if err != nil {
		return fmt.Errorf("index %s: %w", root, err)
	}

	stats := project.Store.Stats()
	slog.Info("codegraph.indexed",
		"root", project.Root,
		"project_id", project.ID,
		"functions", stats.TotalFunctions,
		"files", stats.TotalFiles,
		"languages", stats.TotalLanguages,
		"resolved_calls", stats.ResolvedCalls,
		"unresolved_calls", stats.UnresolvedCalls,
	)
	return nil
}
