package dataset

import (
	"fmt"
	"sort"

	"github.com/ppiankov/claimgraph/internal/model"
)

// RelevantDocument pairs a corpus document with its prediction for one claim
type RelevantDocument struct {
	Doc        *model.Document
	Prediction model.Prediction
	Evidence   []string // evidence sentence texts in prediction order
}

// OrderDocuments resolves a claim's predicted documents against the corpus
// and orders them oldest first. Unknown dates sort first; ties break on
// corpus id so the order is stable across runs.
func OrderDocuments(rec model.PredictionRecord, corpus map[int64]*model.Document) ([]RelevantDocument, error) {
	docs := make([]RelevantDocument, 0, len(rec.Evidence))
	for _, docID := range SortedDocIDs(rec) {
		doc, ok := corpus[docID]
		if !ok {
			return nil, &model.DataIntegrityError{Kind: model.IntegrityDocument, ID: docID, ClaimID: rec.ID}
		}
		pred := rec.Evidence[docID]

		texts := make([]string, len(pred.Sentences))
		for i, idx := range pred.Sentences {
			if idx < 0 || idx >= len(doc.Abstract) {
				return nil, &model.DataIntegrityError{
					Kind:    model.IntegritySentence,
					ID:      int64(idx),
					ClaimID: rec.ID,
					Detail:  fmt.Sprintf("document %d has %d abstract sentences", docID, len(doc.Abstract)),
				}
			}
			texts[i] = doc.Abstract[idx]
		}

		docs = append(docs, RelevantDocument{Doc: doc, Prediction: pred, Evidence: texts})
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Doc.PublishTime.Before(docs[j].Doc.PublishTime)
	})
	return docs, nil
}
