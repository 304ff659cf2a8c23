package features

import (
	"github.com/ppiankov/claimgraph/internal/dataset"
	"github.com/ppiankov/claimgraph/internal/model"
)

// LoadELinks joins second-pass stance results with the evidence map and
// groups the resulting evidence links by claim id. Results without evidence
// are skipped; a result whose task id is not in the map is an integrity error.
func LoadELinks(emap map[int64]model.EvidenceRef, results []model.PredictionRecord) (map[int64][]model.ELink, error) {
	links := make(map[int64][]model.ELink)
	for _, r := range results {
		if len(r.Evidence) == 0 {
			continue
		}
		ref, ok := emap[r.ID]
		if !ok {
			return nil, &model.DataIntegrityError{
				Kind:    model.IntegrityTask,
				ID:      r.ID,
				ClaimID: -1,
				Detail:  "task id missing from evidence map",
			}
		}

		// a task compares against a single synthetic document
		pred := r.Evidence[dataset.SortedDocIDs(r)[0]]
		links[ref.ClaimID] = append(links[ref.ClaimID], model.ELink{
			EvidenceRef: ref,
			Label:       pred.Label,
			LabelProb:   pred.Confidence(),
			SentProb:    rationaleProb(pred),
		})
	}
	return links, nil
}

// rationaleProb is the probability that the one-sentence document was
// selected as rationale
func rationaleProb(p model.Prediction) float64 {
	if len(p.Sentences) > 0 {
		return p.SentenceConfidence(0)
	}
	if len(p.SentenceProbs) > 0 {
		return p.SentenceProbs[0]
	}
	return 1
}
