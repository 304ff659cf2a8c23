// Package features merges stance predictions with bibliographic metadata
// into one record per claim, and derives the cross-document links.
package features

import (
	"context"
	"fmt"

	"github.com/ppiankov/claimgraph/internal/dataset"
	"github.com/ppiankov/claimgraph/internal/logger"
	"github.com/ppiankov/claimgraph/internal/metadata"
	"github.com/ppiankov/claimgraph/internal/metrics"
	"github.com/ppiankov/claimgraph/internal/model"
)

// MetadataSource supplies per-document bibliographic metadata. Lookups
// never fail; unavailable metadata is returned as zero values.
type MetadataSource interface {
	Paper(ctx context.Context, corpusID int64) model.PaperInfo
	Authors(ctx context.Context, corpusID int64, names *metadata.AuthorNames) model.AuthorInfo
	References(ctx context.Context, corpusID int64) map[int64]model.ReferenceInfo
}

// Aggregator builds claim records
type Aggregator struct {
	meta MetadataSource
	log  *logger.Logger
}

// NewAggregator creates an aggregator
func NewAggregator(meta MetadataSource, log *logger.Logger) *Aggregator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Aggregator{meta: meta, log: log}
}

// Aggregate builds the record for one claim. Documents keep the publish
// order used for pair generation. Evidence links are attached by the caller.
func (a *Aggregator) Aggregate(ctx context.Context, claim model.Claim, rec model.PredictionRecord, corpus map[int64]*model.Document, names *metadata.AuthorNames) (*model.ClaimRecord, error) {
	if claim.ID != rec.ID {
		return nil, fmt.Errorf("claim %d paired with predictions for %d", claim.ID, rec.ID)
	}

	docs, err := dataset.OrderDocuments(rec, corpus)
	if err != nil {
		return nil, fmt.Errorf("claim %d: %w", rec.ID, err)
	}

	record := &model.ClaimRecord{
		ClaimID:     claim.ID,
		Claim:       claim.Text,
		Docs:        make([]model.DocFeatures, 0, len(docs)),
		AuthorLinks: []model.AuthorLink{},
		RefLinks:    []model.RefLink{},
		ELinks:      []model.ELink{},
	}

	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record.Docs = append(record.Docs, a.document(ctx, rec.ID, d, names))
	}

	record.AuthorLinks = AuthorLinks(record.Docs)
	record.RefLinks = RefLinks(record.Docs)
	record.Verdict = Verdict(record.Docs)

	a.log.Debug("aggregated claim",
		"claim_id", claim.ID,
		"documents", len(record.Docs),
		"author_links", len(record.AuthorLinks),
		"reference_links", len(record.RefLinks))
	return record, nil
}

func (a *Aggregator) document(ctx context.Context, claimID int64, d dataset.RelevantDocument, names *metadata.AuthorNames) model.DocFeatures {
	pred := d.Prediction
	evidence := make([]model.EvidenceSentence, len(d.Evidence))
	for i, text := range d.Evidence {
		evidence[i] = model.EvidenceSentence{
			Index: pred.Sentences[i],
			Text:  text,
			Prob:  pred.SentenceConfidence(i),
		}
	}

	aliases := d.Doc.Aliases
	if aliases == nil {
		aliases = []int64{}
	}

	f := model.DocFeatures{
		DocID:       d.Doc.DocID,
		Title:       d.Doc.Title,
		Label:       pred.Label,
		LabelProb:   pred.Confidence(),
		LabelProbs:  pred.LabelProbs,
		Evidence:    evidence,
		Aliases:     aliases,
		Journal:     d.Doc.Journal,
		PublishTime: d.Doc.PublishTime,
		Paper:       a.meta.Paper(ctx, d.Doc.DocID),
		Authors:     a.meta.Authors(ctx, d.Doc.DocID, names),
		References:  a.meta.References(ctx, d.Doc.DocID),
	}
	if f.References == nil {
		f.References = map[int64]model.ReferenceInfo{}
	}

	if f.MetadataEmpty() {
		metrics.DegradedDocuments.Inc()
		a.log.Warn("document has no bibliographic metadata", "claim_id", claimID, "corpus_id", f.DocID)
	}
	return f
}
