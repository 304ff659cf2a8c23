package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ppiankov/claimgraph/internal/logger"
	"github.com/ppiankov/claimgraph/internal/metrics"
	"github.com/ppiankov/claimgraph/internal/model"
	"github.com/ppiankov/claimgraph/internal/pipeline"
	"github.com/ppiankov/claimgraph/internal/store"
)

const rule = "═══════════════════════════════════════════════════════════"

// commandContext is cancelled on interrupt and, when timeout > 0, after timeout
func commandContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func printBanner(title string, rows ...[2]string) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "%s\n", rule)
	fmt.Fprintf(os.Stderr, "  %s\n", title)
	fmt.Fprintf(os.Stderr, "%s\n", rule)
	fmt.Fprintf(os.Stderr, "\n")
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		fmt.Fprintf(os.Stderr, "  %-14s%s\n", row[0]+":", row[1])
	}
	fmt.Fprintf(os.Stderr, "\n")
}

func printSummary(title string, sum *pipeline.Summary) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "%s\n", rule)
	fmt.Fprintf(os.Stderr, "  %s\n", title)
	fmt.Fprintf(os.Stderr, "%s\n", rule)
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Run:        %s\n", sum.RunID)
	fmt.Fprintf(os.Stderr, "  Claims:     %d\n", sum.Claims)
	fmt.Fprintf(os.Stderr, "  Skipped:    %d\n", sum.Skipped)
	if sum.Tasks > 0 {
		fmt.Fprintf(os.Stderr, "  Tasks:      %d\n", sum.Tasks)
		fmt.Fprintf(os.Stderr, "  Sentences:  %d\n", sum.Documents)
	} else if sum.Documents > 0 {
		fmt.Fprintf(os.Stderr, "  Documents:  %d\n", sum.Documents)
	}
	if sum.Degraded > 0 {
		fmt.Fprintf(os.Stderr, "  Degraded:   %d (no metadata)\n", sum.Degraded)
	}
	if sum.Graphs > 0 {
		fmt.Fprintf(os.Stderr, "  Graphs:     %d\n", sum.Graphs)
	}
	fmt.Fprintf(os.Stderr, "  Duration:   %v\n", sum.Duration.Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "\n")
}

// stageError explains integrity failures, which point at mismatched input files
func stageError(stage string, err error) error {
	var integrity *model.DataIntegrityError
	if errors.As(err, &integrity) {
		return fmt.Errorf("%s failed: inputs are inconsistent: %w", stage, err)
	}
	return fmt.Errorf("%s failed: %w", stage, err)
}

// finish writes the metrics textfile when configured
func finish(cfg *model.Config, log *logger.Logger) {
	if cfg.Output.MetricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.Output.MetricsFile); err != nil {
		log.Warn("metrics not written", "path", cfg.Output.MetricsFile, "error", err)
		return
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Metrics written to %s\n", cfg.Output.MetricsFile)
	}
}

// openSink opens the graph outputs: a JSON Lines file and, when a Neo4j
// URI is configured, the graph database
func openSink(ctx context.Context, cfg *model.Config, path string, log *logger.Logger) (store.Sink, error) {
	file, err := store.NewJSONLSink(path)
	if err != nil {
		return nil, err
	}
	if cfg.Store.Neo4jURI == "" {
		return file, nil
	}
	db, err := store.NewNeo4jSink(ctx, cfg.Store, log)
	if err != nil {
		_ = file.Close(ctx)
		return nil, err
	}
	return store.MultiSink{file, db}, nil
}
