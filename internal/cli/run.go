package cli

import (
	"github.com/ppiankov/claimgraph/internal/pipeline"
	"github.com/spf13/cobra"
)

var runRecordsPath string

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Aggregate records and build graphs in one pass",
	Long: `Run performs the features and graph stages without an intermediate
file. Records are still written when --records is given.

Example:
  claimgraph run --claims claims.jsonl --corpus corpus.jsonl \
    --predictions predictions.jsonl --erelations erelations.jsonl \
    --emap emap.json --graphs graphs.jsonl`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	addInputFlags(runCmd)
	addFeatureFlags(runCmd)
	addGraphFlags(runCmd)
	runCmd.Flags().StringVar(&runRecordsPath, "records", "", "also write aggregated records to this JSONL file")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(stageTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if neo4jURI != "" {
		cfg.Store.Neo4jURI = neo4jURI
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	printBanner("Claimgraph Run",
		[2]string{"Claims", claimsPath},
		[2]string{"Corpus", corpusPath},
		[2]string{"Predictions", predictionsPath},
		[2]string{"Relations", relationsPath},
		[2]string{"Records", runRecordsPath},
		[2]string{"Graphs", graphsPath},
		[2]string{"Neo4j", cfg.Store.Neo4jURI},
	)

	p, err := pipeline.New(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	sink, err := openSink(ctx, cfg, graphsPath, log)
	if err != nil {
		return err
	}

	sum, err := p.Run(ctx, pipeline.FeaturesInput{
		ClaimsPath:      claimsPath,
		CorpusPath:      corpusPath,
		PredictionsPath: predictionsPath,
		RelationsPath:   relationsPath,
		MapPath:         evidenceMap,
		OutputPath:      runRecordsPath,
	}, sink)
	if closeErr := sink.Close(ctx); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return stageError("run", err)
	}

	printSummary("Run Complete", sum)
	finish(cfg, log)
	return nil
}
