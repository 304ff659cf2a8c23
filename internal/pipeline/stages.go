package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ppiankov/claimgraph/internal/dataset"
	"github.com/ppiankov/claimgraph/internal/features"
	"github.com/ppiankov/claimgraph/internal/metadata"
	"github.com/ppiankov/claimgraph/internal/metrics"
	"github.com/ppiankov/claimgraph/internal/model"
	"github.com/ppiankov/claimgraph/internal/pairs"
	"github.com/ppiankov/claimgraph/internal/store"
)

// PairsInput names the files of the pair generation stage
type PairsInput struct {
	ClaimsPath      string
	CorpusPath      string
	PredictionsPath string

	TaskClaimsPath string
	TaskCorpusPath string
	MapPath        string
}

// FeaturesInput names the files of the aggregation stage. RelationsPath
// and MapPath are optional but must be given together.
type FeaturesInput struct {
	ClaimsPath      string
	CorpusPath      string
	PredictionsPath string
	RelationsPath   string
	MapPath         string

	OutputPath string
}

// GeneratePairs writes the second-pass task files
func (p *Pipeline) GeneratePairs(ctx context.Context, in PairsInput) (*Summary, error) {
	start := time.Now()
	claims, corpus, predictions, err := loadInputs(in.ClaimsPath, in.CorpusPath, in.PredictionsPath)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := pairs.NewGenerator(p.log).Generate(claims, corpus, predictions)
	if err != nil {
		return nil, err
	}
	if err := res.Write(in.TaskClaimsPath, in.TaskCorpusPath, in.MapPath); err != nil {
		return nil, err
	}

	p.log.Info("generated evidence pairs", "claims", res.Claims, "tasks", len(res.Tasks), "sentences", len(res.Corpus))
	return &Summary{
		RunID:     p.runID,
		Claims:    res.Claims,
		Skipped:   res.SkippedClaims,
		Documents: len(res.Corpus),
		Tasks:     len(res.Tasks),
		Duration:  time.Since(start),
	}, nil
}

// BuildRecords aggregates one record per claim and writes them as JSON Lines
func (p *Pipeline) BuildRecords(ctx context.Context, in FeaturesInput) (sum *Summary, err error) {
	if in.OutputPath == "" {
		return nil, errors.New("records output path required")
	}
	w, err := dataset.Create(in.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("open records output: %w", err)
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close records output: %w", closeErr)
		}
	}()

	return p.records(ctx, in, func(r *model.ClaimRecord) error {
		return w.Write(r)
	})
}

// BuildGraphs reads aggregated records and writes one graph per claim
func (p *Pipeline) BuildGraphs(ctx context.Context, recordsPath string, sink store.Sink) (*Summary, error) {
	start := time.Now()
	records, err := dataset.ReadRecords(recordsPath)
	if err != nil {
		return nil, err
	}

	sum := &Summary{RunID: p.runID}
	for i := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.graph(ctx, &records[i], sink, sum); err != nil {
			return nil, err
		}
	}
	sum.Duration = time.Since(start)
	p.log.Info("built graphs", "graphs", sum.Graphs)
	return sum, nil
}

// Run aggregates records and builds their graphs in one pass. Records are
// also written when in.OutputPath is set.
func (p *Pipeline) Run(ctx context.Context, in FeaturesInput, sink store.Sink) (sum *Summary, err error) {
	var w *dataset.Writer
	if in.OutputPath != "" {
		w, err = dataset.Create(in.OutputPath)
		if err != nil {
			return nil, fmt.Errorf("open records output: %w", err)
		}
		defer func() {
			if closeErr := w.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close records output: %w", closeErr)
			}
		}()
	}

	graphs := &Summary{}
	sum, err = p.records(ctx, in, func(r *model.ClaimRecord) error {
		if w != nil {
			if err := w.Write(r); err != nil {
				return err
			}
		}
		return p.graph(ctx, r, sink, graphs)
	})
	if err != nil {
		return nil, err
	}
	sum.Graphs = graphs.Graphs
	return sum, nil
}

func (p *Pipeline) graph(ctx context.Context, r *model.ClaimRecord, sink store.Sink, sum *Summary) error {
	g, err := p.builder.Build(r)
	if err != nil {
		return err
	}
	if err := sink.Write(ctx, g); err != nil {
		return fmt.Errorf("write graph of claim %d: %w", r.ClaimID, err)
	}
	sum.Graphs++
	return nil
}

// records aggregates every claim with evidence, in predictions file order
func (p *Pipeline) records(ctx context.Context, in FeaturesInput, emit func(*model.ClaimRecord) error) (*Summary, error) {
	start := time.Now()
	claims, corpus, predictions, err := loadInputs(in.ClaimsPath, in.CorpusPath, in.PredictionsPath)
	if err != nil {
		return nil, err
	}
	elinks, err := loadELinks(in.RelationsPath, in.MapPath)
	if err != nil {
		return nil, err
	}

	agg := features.NewAggregator(p.meta, p.log)
	names := metadata.NewAuthorNames()
	sum := &Summary{RunID: p.runID}
	seen := mapset.NewThreadUnsafeSet[int64]()

	for _, rec := range predictions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !seen.Add(rec.ID) {
			return nil, &model.DataIntegrityError{Kind: model.IntegrityClaim, ID: rec.ID, ClaimID: rec.ID, Detail: "duplicate claim id"}
		}
		if len(rec.Evidence) == 0 {
			sum.Skipped++
			continue
		}
		claim, ok := claims[rec.ID]
		if !ok {
			return nil, &model.DataIntegrityError{Kind: model.IntegrityClaim, ID: rec.ID, ClaimID: rec.ID}
		}

		record, err := agg.Aggregate(ctx, claim, rec, corpus, names)
		if err != nil {
			return nil, err
		}
		if links, ok := elinks[rec.ID]; ok {
			record.ELinks = links
		}

		for i := range record.Docs {
			if record.Docs[i].MetadataEmpty() {
				sum.Degraded++
			}
		}
		sum.Claims++
		sum.Documents += len(record.Docs)
		metrics.ClaimsProcessed.WithLabelValues("features").Inc()

		if err := emit(record); err != nil {
			return nil, err
		}
	}

	sum.Duration = time.Since(start)
	p.log.Info("aggregated claims",
		"claims", sum.Claims,
		"skipped", sum.Skipped,
		"documents", sum.Documents,
		"degraded", sum.Degraded,
		"authors", names.Len())
	return sum, nil
}

func loadInputs(claimsPath, corpusPath, predictionsPath string) (map[int64]model.Claim, map[int64]*model.Document, []model.PredictionRecord, error) {
	claims, err := dataset.ReadClaims(claimsPath)
	if err != nil {
		return nil, nil, nil, err
	}
	corpus, err := dataset.ReadCorpus(corpusPath)
	if err != nil {
		return nil, nil, nil, err
	}
	predictions, err := dataset.ReadPredictions(predictionsPath)
	if err != nil {
		return nil, nil, nil, err
	}
	return claims, corpus, predictions, nil
}

func loadELinks(relationsPath, mapPath string) (map[int64][]model.ELink, error) {
	if relationsPath == "" && mapPath == "" {
		return map[int64][]model.ELink{}, nil
	}
	if relationsPath == "" || mapPath == "" {
		return nil, errors.New("evidence relations and evidence map must be given together")
	}
	emap, err := dataset.ReadEvidenceMap(mapPath)
	if err != nil {
		return nil, err
	}
	results, err := dataset.ReadPredictions(relationsPath)
	if err != nil {
		return nil, fmt.Errorf("evidence relations: %w", err)
	}
	return features.LoadELinks(emap, results)
}
