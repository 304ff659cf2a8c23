// Package graph assembles the per-claim relationship graph from an
// aggregated claim record.
package graph

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ppiankov/claimgraph/internal/logger"
	"github.com/ppiankov/claimgraph/internal/metrics"
	"github.com/ppiankov/claimgraph/internal/model"
	"github.com/ppiankov/claimgraph/internal/score"
)

// Builder turns claim records into graphs
type Builder struct {
	scorer    *score.Scorer
	baseSize  float64
	baseWidth float64
	log       *logger.Logger
}

// NewBuilder creates a builder
func NewBuilder(cfg model.GraphConfig, log *logger.Logger) *Builder {
	if log == nil {
		log = logger.NewNop()
	}
	return &Builder{
		scorer:    score.NewScorer(cfg),
		baseSize:  cfg.BaseSize,
		baseWidth: cfg.BaseWidth,
		log:       log,
	}
}

// Build creates the graph of one claim. Nodes are the claim, then each
// document followed by its evidence sentences, then the authors. Links are
// added claim-document, document-evidence, document-document,
// evidence-evidence, document-author, and evidence-evidence links are then
// reconciled across directions.
func (b *Builder) Build(record *model.ClaimRecord) (*model.Graph, error) {
	docScores, err := b.scorer.ScoreDocuments(record.Docs)
	if err != nil {
		return nil, fmt.Errorf("score documents of claim %d: %w", record.ClaimID, err)
	}
	authorScores, err := b.scorer.ScoreAuthors(record.Docs)
	if err != nil {
		return nil, fmt.Errorf("score authors of claim %d: %w", record.ClaimID, err)
	}

	g := &model.Graph{ClaimID: record.ClaimID}
	g.Nodes = append(g.Nodes, model.Node{
		ID:   model.ClaimNodeID,
		Type: model.NodeClaim,
		Text: record.Claim,
		Size: b.baseSize,
	})

	var claimLinks, evidenceLinks []model.Link
	for i := range record.Docs {
		d := &record.Docs[i]
		id := model.DocumentNodeID(d.DocID)

		g.Nodes = append(g.Nodes, model.Node{
			ID:      id,
			Type:    model.NodeDocument,
			Text:    d.Title,
			Size:    docScores.Scores[id],
			SizeRaw: docScores.Raw[id],
			Date:    d.PublishTime.String(),
			Authors: authorNames(d.Authors),
			Journal: d.Journal,
		})
		claimLinks = append(claimLinks, model.Link{
			Source: id,
			Target: model.ClaimNodeID,
			Label:  model.StanceLabel(d.Label),
			Width:  d.LabelProb,
		})

		for n, e := range d.Evidence {
			eid := model.EvidenceKey{DocID: d.DocID, Sentence: n}.String()
			g.Nodes = append(g.Nodes, model.Node{
				ID:   eid,
				Type: model.NodeEvidence,
				Text: e.Text,
				Size: b.baseSize,
			})
			evidenceLinks = append(evidenceLinks, model.Link{
				Source: eid,
				Target: id,
				Label:  model.LinkEvidence,
				Width:  e.Prob,
			})
		}
	}

	links := append(claimLinks, evidenceLinks...)
	for _, r := range record.RefLinks {
		links = append(links, model.Link{
			Source: model.DocumentNodeID(r.Source),
			Target: model.DocumentNodeID(r.Reference),
			Label:  model.LinkReference,
			Width:  b.baseWidth,
		})
	}
	for _, e := range record.ELinks {
		sentProb := e.SentProb
		bidirectional := false
		links = append(links, model.Link{
			Source:        model.EvidenceKey{DocID: e.FDocID, Sentence: e.FDocENum}.String(),
			Target:        model.EvidenceKey{DocID: e.SDocID, Sentence: e.SDocENum}.String(),
			Label:         model.StanceLabel(e.Label),
			Width:         e.LabelProb,
			SentProb:      &sentProb,
			Bidirectional: &bidirectional,
		})
	}

	authorNodes, authorLinks := b.authors(record.Docs, authorScores)
	g.Nodes = append(g.Nodes, authorNodes...)
	links = append(links, authorLinks...)

	g.Links = Reconcile(links, IsEvidenceID)

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("graph of claim %d: %w", record.ClaimID, err)
	}

	b.record(g)
	b.log.Debug("built graph", "claim_id", record.ClaimID, "nodes", len(g.Nodes), "links", len(g.Links))
	return g, nil
}

// authors creates one node per distinct author, in order of first
// appearance, each linked once from every document it appears on
func (b *Builder) authors(docs []model.DocFeatures, scores *score.Result) ([]model.Node, []model.Link) {
	var order []model.AuthorRef
	byAuthor := make(map[string][]string)
	for i := range docs {
		docID := model.DocumentNodeID(docs[i].DocID)
		seen := mapset.NewThreadUnsafeSet[string]()
		for _, a := range docs[i].Authors.Authors {
			if !seen.Add(a.ID) {
				continue
			}
			if _, ok := byAuthor[a.ID]; !ok {
				order = append(order, a)
			}
			byAuthor[a.ID] = append(byAuthor[a.ID], docID)
		}
	}

	nodes := make([]model.Node, 0, len(order))
	var links []model.Link
	for _, a := range order {
		id := model.AuthorNodeID(a.ID)
		nodes = append(nodes, model.Node{
			ID:      id,
			Type:    model.NodeAuthor,
			Text:    a.Name,
			Size:    scores.Scores[a.ID],
			SizeRaw: scores.Raw[a.ID],
		})
		for _, docID := range byAuthor[a.ID] {
			links = append(links, model.Link{
				Source: docID,
				Target: id,
				Label:  model.LinkAuthor,
				Width:  b.baseWidth,
			})
		}
	}
	return nodes, links
}

func (b *Builder) record(g *model.Graph) {
	for _, n := range g.Nodes {
		metrics.GraphNodeCount.WithLabelValues(string(n.Type)).Inc()
	}
	for _, l := range g.Links {
		metrics.GraphLinkCount.WithLabelValues(string(l.Label)).Inc()
	}
	metrics.ClaimsProcessed.WithLabelValues("graph").Inc()
}

func authorNames(a model.AuthorInfo) string {
	names := make([]string, 0, len(a.Authors))
	for _, au := range a.Authors {
		names = append(names, au.Name)
	}
	return strings.Join(names, ", ")
}
