package cli

import (
	"fmt"
	"strings"

	"github.com/ppiankov/claimgraph/internal/metadata"
	"github.com/ppiankov/claimgraph/internal/pipeline"
	"github.com/spf13/cobra"
)

var idType string

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <id>",
	Short: "Resolve an external paper id to its corpus id",
	Long: `Resolve looks up the Semantic Scholar corpus id of a paper identified
by an external identifier such as a DOI or a PubMed id.

Example:
  claimgraph resolve 32511233 --type pubmed
  claimgraph resolve PMC7266444 --type pmc`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVar(&idType, "type", "pubmed", "id type ("+strings.Join(metadata.IDTypes(), ", ")+")")
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(0)
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

	p, err := pipeline.New(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	corpusID, found, err := p.Resolve(ctx, args[0], idType)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no corpus id found for %s %s", idType, args[0])
	}
	fmt.Println(corpusID)
	return nil
}
