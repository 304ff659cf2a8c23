package cli

import (
	"github.com/ppiankov/claimgraph/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	relationsPath string
	evidenceMap   string
	recordsPath   string
	noCache       bool
)

// featuresCmd represents the features command
var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Aggregate per-claim records with bibliographic metadata",
	Long: `Features builds one record per claim with evidence.

Every relevant document is enriched with citation counts, author statistics
and its reference list from the Semantic Scholar Graph API. Citations and
shared authors between the claim's documents become links. When the
second-pass predictions and task map are given, evidence-evidence stance
links are attached too.

Example:
  claimgraph features --claims claims.jsonl --corpus corpus.jsonl \
    --predictions predictions.jsonl --erelations erelations.jsonl \
    --emap emap.json --output records.jsonl`,
	Args: cobra.NoArgs,
	RunE: runFeatures,
}

func addFeatureFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&relationsPath, "erelations", "", "second-pass predictions over the evidence-pair tasks (optional)")
	cmd.Flags().StringVar(&evidenceMap, "emap", "", "task map written by the pairs stage (required with --erelations)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the API response cache")
}

func init() {
	rootCmd.AddCommand(featuresCmd)

	addInputFlags(featuresCmd)
	addFeatureFlags(featuresCmd)
	featuresCmd.Flags().StringVarP(&recordsPath, "output", "o", "records.jsonl", "output records JSONL")
}

func runFeatures(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(stageTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	printBanner("Claimgraph Features",
		[2]string{"Claims", claimsPath},
		[2]string{"Corpus", corpusPath},
		[2]string{"Predictions", predictionsPath},
		[2]string{"Relations", relationsPath},
		[2]string{"Output", recordsPath},
		[2]string{"API", cfg.Metadata.BaseURL},
	)

	p, err := pipeline.New(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	sum, err := p.BuildRecords(ctx, pipeline.FeaturesInput{
		ClaimsPath:      claimsPath,
		CorpusPath:      corpusPath,
		PredictionsPath: predictionsPath,
		RelationsPath:   relationsPath,
		MapPath:         evidenceMap,
		OutputPath:      recordsPath,
	})
	if err != nil {
		return stageError("features", err)
	}

	printSummary("Features Complete", sum)
	finish(cfg, log)
	return nil
}
