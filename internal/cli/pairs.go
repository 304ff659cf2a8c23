package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/claimgraph/internal/pipeline"
	"github.com/spf13/cobra"
)

// Input files shared by pairs, features and run
var (
	claimsPath      string
	corpusPath      string
	predictionsPath string
	stageTimeout    time.Duration
)

var (
	taskClaimsPath string
	taskCorpusPath string
	mapPath        string
)

// pairsCmd represents the pairs command
var pairsCmd = &cobra.Command{
	Use:   "pairs",
	Short: "Generate cross-document evidence-pair tasks",
	Long: `Pairs turns every claim's evidence sentences into synthetic stance tasks.

Each evidence sentence of one document is posed as a claim against every
evidence sentence of the claim's other documents. The tasks are written in
the claims/corpus format of the stance model, together with a map from task
id back to the pair of sentences, for the features stage to join the
second-pass predictions.

Example:
  claimgraph pairs --claims claims.jsonl --corpus corpus.jsonl \
    --predictions predictions.jsonl --out-map emap.json`,
	Args: cobra.NoArgs,
	RunE: runPairs,
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&claimsPath, "claims", "", "claims JSONL file")
	cmd.Flags().StringVar(&corpusPath, "corpus", "", "corpus JSONL file")
	cmd.Flags().StringVar(&predictionsPath, "predictions", "", "stance predictions JSONL file")
	cmd.Flags().DurationVar(&stageTimeout, "timeout", 0, "overall timeout (0 = none)")
	_ = cmd.MarkFlagRequired("claims")
	_ = cmd.MarkFlagRequired("corpus")
	_ = cmd.MarkFlagRequired("predictions")
}

func init() {
	rootCmd.AddCommand(pairsCmd)

	addInputFlags(pairsCmd)
	pairsCmd.Flags().StringVar(&taskClaimsPath, "out-claims", "eclaims.jsonl", "output task claims JSONL")
	pairsCmd.Flags().StringVar(&taskCorpusPath, "out-corpus", "ecorpus.jsonl", "output task corpus JSONL")
	pairsCmd.Flags().StringVar(&mapPath, "out-map", "emap.json", "output task map JSON")
}

func runPairs(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(stageTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	printBanner("Claimgraph Evidence Pairs",
		[2]string{"Claims", claimsPath},
		[2]string{"Corpus", corpusPath},
		[2]string{"Predictions", predictionsPath},
		[2]string{"Task map", mapPath},
	)

	p := pipeline.NewWithMetadata(cfg, nil, log)
	sum, err := p.GeneratePairs(ctx, pipeline.PairsInput{
		ClaimsPath:      claimsPath,
		CorpusPath:      corpusPath,
		PredictionsPath: predictionsPath,
		TaskClaimsPath:  taskClaimsPath,
		TaskCorpusPath:  taskCorpusPath,
		MapPath:         mapPath,
	})
	if err != nil {
		return stageError("pairs", err)
	}

	printSummary("Pairs Complete", sum)
	fmt.Fprintf(os.Stderr, "  Outputs:    %s, %s, %s\n\n", taskClaimsPath, taskCorpusPath, mapPath)
	finish(cfg, log)
	return nil
}
