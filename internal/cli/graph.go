package cli

import (
	"github.com/ppiankov/claimgraph/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	graphRecordsPath string
	graphsPath       string
	neo4jURI         string
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Build relationship graphs from aggregated records",
	Long: `Graph builds one graph per claim record.

Documents and authors are sized by their rescaled influence. Evidence
stance links predicted in both directions are merged when the directions
agree and dropped when they disagree. Graphs are written as JSON Lines and,
with a Neo4j URI configured, merged into the graph database.

Example:
  claimgraph graph --records records.jsonl --graphs graphs.jsonl
  claimgraph graph --records records.jsonl --neo4j neo4j://localhost:7687`,
	Args: cobra.NoArgs,
	RunE: runGraph,
}

func addGraphFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&graphsPath, "graphs", "graphs.jsonl", "output graphs JSONL")
	cmd.Flags().StringVar(&neo4jURI, "neo4j", "", "Neo4j URI to export graphs to (overrides config)")
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().StringVar(&graphRecordsPath, "records", "records.jsonl", "aggregated records JSONL")
	addGraphFlags(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(0)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if neo4jURI != "" {
		cfg.Store.Neo4jURI = neo4jURI
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	printBanner("Claimgraph Graphs",
		[2]string{"Records", graphRecordsPath},
		[2]string{"Output", graphsPath},
		[2]string{"Neo4j", cfg.Store.Neo4jURI},
	)

	sink, err := openSink(ctx, cfg, graphsPath, log)
	if err != nil {
		return err
	}

	p := pipeline.NewWithMetadata(cfg, nil, log)
	sum, err := p.BuildGraphs(ctx, graphRecordsPath, sink)
	if closeErr := sink.Close(ctx); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return stageError("graph", err)
	}

	printSummary("Graphs Complete", sum)
	finish(cfg, log)
	return nil
}
