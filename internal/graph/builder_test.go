package graph

import (
	"math"
	"testing"

	"github.com/ppiankov/claimgraph/internal/model"
)

func testBuilder() *Builder {
	return NewBuilder(model.DefaultConfig().Graph, nil)
}

func scenario() *model.ClaimRecord {
	return &model.ClaimRecord{
		ClaimID: 1,
		Claim:   "X causes Y",
		Docs: []model.DocFeatures{
			{
				DocID:     11,
				Title:     "D1",
				Label:     model.LabelSupport,
				LabelProb: 0.9,
				Evidence: []model.EvidenceSentence{
					{Index: 0, Text: "a", Prob: 0.8},
					{Index: 3, Text: "b", Prob: 0.6},
				},
				PublishTime: model.ParsePublishTime("2020-01-01"),
				Paper:       model.PaperInfo{CitationCount: 10, InfluentialCitationCount: 3},
			},
			{
				DocID:       22,
				Title:       "D2",
				Label:       model.LabelContradict,
				LabelProb:   0.7,
				Evidence:    []model.EvidenceSentence{{Index: 1, Text: "c", Prob: 0.5}},
				PublishTime: model.ParsePublishTime("2021-01-01"),
				Paper:       model.PaperInfo{CitationCount: 4},
			},
		},
	}
}

func countLinks(g *model.Graph, label model.LinkLabel) int {
	n := 0
	for _, l := range g.Links {
		if l.Label == label {
			n++
		}
	}
	return n
}

func TestBuild_EndToEnd(t *testing.T) {
	g, err := testBuilder().Build(scenario())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if g.Nodes[0].ID != model.ClaimNodeID || g.Nodes[0].Text != "X causes Y" {
		t.Errorf("expected claim node first, got %+v", g.Nodes[0])
	}
	if got := g.CountNodes(model.NodeClaim); got != 1 {
		t.Errorf("expected 1 claim node, got %d", got)
	}
	if got := g.CountNodes(model.NodeDocument); got != 2 {
		t.Errorf("expected 2 document nodes, got %d", got)
	}
	if got := g.CountNodes(model.NodeEvidence); got != 3 {
		t.Errorf("expected 3 evidence nodes, got %d", got)
	}
	if got := g.CountNodes(model.NodeAuthor); got != 0 {
		t.Errorf("expected 0 author nodes, got %d", got)
	}

	if len(g.Links) != 5 {
		t.Fatalf("expected 5 links, got %d: %+v", len(g.Links), g.Links)
	}
	if g.Links[0].Label != model.LinkSupport || g.Links[0].Target != model.ClaimNodeID || g.Links[0].Width != 0.9 {
		t.Errorf("unexpected first claim link %+v", g.Links[0])
	}
	if g.Links[1].Label != model.LinkContradict || g.Links[1].Source != "22" {
		t.Errorf("unexpected second claim link %+v", g.Links[1])
	}
	if got := countLinks(g, model.LinkEvidence); got != 3 {
		t.Errorf("expected 3 document-evidence links, got %d", got)
	}
	if got := countLinks(g, model.LinkReference); got != 0 {
		t.Errorf("expected 0 document-document links, got %d", got)
	}
	if got := countLinks(g, model.LinkAuthor); got != 0 {
		t.Errorf("expected 0 author links, got %d", got)
	}
}

func TestBuild_NodeAttributes(t *testing.T) {
	g, err := testBuilder().Build(scenario())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	var d1, d2 *model.Node
	for i := range g.Nodes {
		switch g.Nodes[i].ID {
		case "11":
			d1 = &g.Nodes[i]
		case "22":
			d2 = &g.Nodes[i]
		}
	}
	if d1 == nil || d2 == nil {
		t.Fatal("document nodes missing")
	}
	if d1.Size <= d2.Size {
		t.Errorf("expected the more cited document to be larger: %v vs %v", d1.Size, d2.Size)
	}
	if d1.Date != "2020-01-01" || len(d1.SizeRaw) != 6 || *d1.SizeRaw[0] != 10 {
		t.Errorf("unexpected document node %+v", d1)
	}
	if g.Nodes[2].ID != "11_0" || g.Nodes[3].ID != "11_1" {
		t.Errorf("expected evidence nodes after their document, got %s, %s", g.Nodes[2].ID, g.Nodes[3].ID)
	}
}

func TestBuild_LinksAuthorsAndReferences(t *testing.T) {
	record := scenario()
	record.Docs[0].Authors = model.AuthorInfo{
		Authors:        []model.AuthorRef{{ID: "7", Name: "Ada"}, {ID: "8", Name: "Bo"}},
		PaperCounts:    []int{10, 2},
		CitationCounts: []int{100, 5},
		HIndices:       []int{6, 1},
	}
	record.Docs[1].Authors = model.AuthorInfo{
		Authors:        []model.AuthorRef{{ID: "7", Name: "Ada"}},
		PaperCounts:    []int{10},
		CitationCounts: []int{100},
		HIndices:       []int{6},
	}
	record.RefLinks = []model.RefLink{{Source: 22, Reference: 11}}
	record.ELinks = []model.ELink{
		{EvidenceRef: model.EvidenceRef{ClaimID: 1, FDocID: 11, FDocENum: 0, SDocID: 22, SDocENum: 0}, Label: model.LabelSupport, LabelProb: 0.8, SentProb: 1},
		{EvidenceRef: model.EvidenceRef{ClaimID: 1, FDocID: 22, FDocENum: 0, SDocID: 11, SDocENum: 0}, Label: model.LabelSupport, LabelProb: 0.6, SentProb: 1},
		{EvidenceRef: model.EvidenceRef{ClaimID: 1, FDocID: 11, FDocENum: 1, SDocID: 22, SDocENum: 0}, Label: model.LabelContradict, LabelProb: 0.5, SentProb: 1},
	}

	g, err := testBuilder().Build(record)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if got := g.CountNodes(model.NodeAuthor); got != 2 {
		t.Errorf("expected 2 author nodes, got %d", got)
	}
	if got := countLinks(g, model.LinkAuthor); got != 3 {
		t.Errorf("expected 3 author links, got %d", got)
	}
	if got := countLinks(g, model.LinkReference); got != 1 {
		t.Errorf("expected 1 reference link, got %d", got)
	}

	var evidenceLinks []model.Link
	for _, l := range g.Links {
		if IsEvidenceID(l.Source) && IsEvidenceID(l.Target) {
			evidenceLinks = append(evidenceLinks, l)
		}
	}
	if len(evidenceLinks) != 2 {
		t.Fatalf("expected 2 evidence-evidence links, got %+v", evidenceLinks)
	}
	if !*evidenceLinks[0].Bidirectional || math.Abs(evidenceLinks[0].Width-0.7) > 1e-9 {
		t.Errorf("expected merged bidirectional link, got %+v", evidenceLinks[0])
	}
	if *evidenceLinks[1].Bidirectional || evidenceLinks[1].Label != model.LinkContradict {
		t.Errorf("expected unidirectional contradict link, got %+v", evidenceLinks[1])
	}

	var docNode model.Node
	for _, n := range g.Nodes {
		if n.ID == "11" {
			docNode = n
		}
	}
	if docNode.Authors != "Ada, Bo" {
		t.Errorf("expected joined author names, got %q", docNode.Authors)
	}
}

func TestBuild_UnknownEvidenceEndpoint(t *testing.T) {
	record := scenario()
	record.ELinks = []model.ELink{
		{EvidenceRef: model.EvidenceRef{ClaimID: 1, FDocID: 11, FDocENum: 5, SDocID: 22, SDocENum: 0}, Label: model.LabelSupport},
	}
	if _, err := testBuilder().Build(record); err == nil {
		t.Error("expected error for link to a missing evidence node")
	}
}

func TestBuild_RepeatedAuthorLinkedOnce(t *testing.T) {
	record := scenario()
	record.Docs[0].Authors = model.AuthorInfo{
		Authors:        []model.AuthorRef{{ID: "7", Name: "Ada"}, {ID: "7", Name: "Ada"}},
		PaperCounts:    []int{3, 3},
		CitationCounts: []int{30, 30},
		HIndices:       []int{2, 2},
	}
	record.Docs[1].Authors = model.AuthorInfo{
		Authors:        []model.AuthorRef{{ID: "7", Name: "Ada"}},
		PaperCounts:    []int{3},
		CitationCounts: []int{30},
		HIndices:       []int{2},
	}

	g, err := testBuilder().Build(record)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if n := g.CountNodes(model.NodeAuthor); n != 1 {
		t.Errorf("expected 1 author node, got %d", n)
	}
	if n := countLinks(g, model.LinkAuthor); n != 2 {
		t.Errorf("expected one author link per document, got %d", n)
	}
}
