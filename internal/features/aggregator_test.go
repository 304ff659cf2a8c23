package features

import (
	"context"
	"errors"
	"testing"

	"github.com/ppiankov/claimgraph/internal/metadata"
	"github.com/ppiankov/claimgraph/internal/model"
)

type fakeMetadata struct {
	papers  map[int64]model.PaperInfo
	authors map[int64][]model.AuthorRef
	refs    map[int64]map[int64]model.ReferenceInfo
	calls   int
}

func (f *fakeMetadata) Paper(_ context.Context, id int64) model.PaperInfo {
	f.calls++
	return f.papers[id]
}

func (f *fakeMetadata) Authors(_ context.Context, id int64, names *metadata.AuthorNames) model.AuthorInfo {
	info := model.AuthorInfo{}
	for _, a := range f.authors[id] {
		info.Authors = append(info.Authors, a)
		info.PaperCounts = append(info.PaperCounts, 1)
		info.CitationCounts = append(info.CitationCounts, 1)
		info.HIndices = append(info.HIndices, 1)
		names.Set(a.ID, a.Name)
	}
	info.Summarize()
	return info
}

func (f *fakeMetadata) References(_ context.Context, id int64) map[int64]model.ReferenceInfo {
	return f.refs[id]
}

func corpus() map[int64]*model.Document {
	return map[int64]*model.Document{
		1: {DocID: 1, Title: "D1", Abstract: []string{"s0", "s1", "s2"}, PublishTime: model.ParsePublishTime("2021-01-01"), Journal: "Nature"},
		2: {DocID: 2, Title: "D2", Abstract: []string{"t0", "t1"}, PublishTime: model.ParsePublishTime("2020-01-01"), Aliases: []int64{22}},
	}
}

func TestAggregate(t *testing.T) {
	meta := &fakeMetadata{
		papers:  map[int64]model.PaperInfo{1: {CitationCount: 10, InfluentialCitationCount: 2}},
		authors: map[int64][]model.AuthorRef{1: {{ID: "a", Name: "Ada"}}, 2: {{ID: "a", Name: "Ada"}, {ID: "b", Name: "Bo"}}},
		refs:    map[int64]map[int64]model.ReferenceInfo{1: {22: {IsInfluential: true, Intents: []string{"background"}}}},
	}
	rec := model.PredictionRecord{ID: 5, Evidence: map[int64]model.Prediction{
		1: {Label: model.LabelSupport, LabelProbs: []float64{0.1, 0.1, 0.8}, Sentences: []int{0, 2}, SentenceProbs: []float64{0.9, 0.4}},
		2: {Label: model.LabelContradict, LabelProbs: []float64{0.7, 0.2, 0.1}, Sentences: []int{1}},
	}}
	names := metadata.NewAuthorNames()

	record, err := NewAggregator(meta, nil).Aggregate(context.Background(), model.Claim{ID: 5, Text: "X causes Y"}, rec, corpus(), names)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if len(record.Docs) != 2 || record.Docs[0].DocID != 2 {
		t.Fatalf("expected documents ordered oldest first, got %+v", record.Docs)
	}
	d1 := record.Docs[1]
	if d1.LabelProb != 0.8 {
		t.Errorf("expected label prob 0.8, got %v", d1.LabelProb)
	}
	if len(d1.Evidence) != 2 || d1.Evidence[1].Index != 2 || d1.Evidence[1].Text != "s2" || d1.Evidence[1].Prob != 0.4 {
		t.Errorf("unexpected evidence %+v", d1.Evidence)
	}
	if record.Docs[0].LabelProb != 0.7 {
		t.Errorf("expected contradict prob 0.7, got %v", record.Docs[0].LabelProb)
	}

	if len(record.RefLinks) != 1 {
		t.Fatalf("expected 1 reference link, got %+v", record.RefLinks)
	}
	if rl := record.RefLinks[0]; rl.Source != 1 || rl.Reference != 2 || !rl.IsInfluential {
		t.Errorf("unexpected reference link %+v", rl)
	}

	if len(record.AuthorLinks) != 1 || record.AuthorLinks[0].Common[0] != "a" {
		t.Errorf("unexpected author links %+v", record.AuthorLinks)
	}
	if names.Len() != 2 {
		t.Errorf("expected 2 names recorded, got %d", names.Len())
	}
	if record.Verdict == nil || record.Verdict.Label != model.LabelSupport || record.Verdict.SupportRatio != 0.5 {
		t.Errorf("unexpected verdict %+v", record.Verdict)
	}
}

func TestAggregate_MissingDocument(t *testing.T) {
	meta := &fakeMetadata{}
	rec := model.PredictionRecord{ID: 3, Evidence: map[int64]model.Prediction{
		99: {Label: model.LabelSupport, Sentences: []int{0}},
	}}

	_, err := NewAggregator(meta, nil).Aggregate(context.Background(), model.Claim{ID: 3, Text: "c"}, rec, corpus(), metadata.NewAuthorNames())
	var integrity *model.DataIntegrityError
	if !errors.As(err, &integrity) || integrity.ID != 99 || integrity.ClaimID != 3 {
		t.Fatalf("expected integrity error for document 99, got %v", err)
	}
	if meta.calls != 0 {
		t.Errorf("expected no metadata lookups before the integrity check, got %d", meta.calls)
	}
}

func TestAggregate_EmptyMetadataIsNotFatal(t *testing.T) {
	rec := model.PredictionRecord{ID: 1, Evidence: map[int64]model.Prediction{
		1: {Label: model.LabelSupport, Sentences: []int{0}},
	}}

	record, err := NewAggregator(&fakeMetadata{}, nil).Aggregate(context.Background(), model.Claim{ID: 1, Text: "c"}, rec, corpus(), metadata.NewAuthorNames())
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if !record.Docs[0].MetadataEmpty() {
		t.Error("expected empty metadata")
	}
	if record.Docs[0].References == nil {
		t.Error("expected non-nil reference map")
	}
	if record.Docs[0].LabelProb != 1 {
		t.Errorf("expected confidence 1 without probabilities, got %v", record.Docs[0].LabelProb)
	}
}
