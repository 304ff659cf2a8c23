// Package pairs generates the synthetic claim-vs-document tasks used to
// predict stance between evidence sentences of different documents.
package pairs

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ppiankov/claimgraph/internal/dataset"
	"github.com/ppiankov/claimgraph/internal/logger"
	"github.com/ppiankov/claimgraph/internal/metrics"
	"github.com/ppiankov/claimgraph/internal/model"
)

// Result holds every generated task together with the reverse map.
// Task ids and synthetic corpus ids are both dense and start at 0.
type Result struct {
	Tasks  []model.TaskClaim
	Corpus []model.TaskDocument
	Refs   map[int64]model.EvidenceRef

	Claims        int // claims that produced at least one task
	SkippedClaims int // claims that produced no task

	taskIDs     map[model.EvidenceRef]int64
	sentenceIDs map[model.SentenceKey]int64
}

func newResult() *Result {
	return &Result{
		Refs:        make(map[int64]model.EvidenceRef),
		taskIDs:     make(map[model.EvidenceRef]int64),
		sentenceIDs: make(map[model.SentenceKey]int64),
	}
}

// Lookup maps a task id back to the evidence pair it compares
func (r *Result) Lookup(taskID int64) (model.EvidenceRef, bool) {
	ref, ok := r.Refs[taskID]
	return ref, ok
}

// TaskID maps an evidence pair to its task id
func (r *Result) TaskID(ref model.EvidenceRef) (int64, bool) {
	id, ok := r.taskIDs[ref]
	return id, ok
}

// SentenceID returns the synthetic corpus id of an evidence sentence
func (r *Result) SentenceID(key model.SentenceKey) (int64, bool) {
	id, ok := r.sentenceIDs[key]
	return id, ok
}

func (r *Result) addSentence(key model.SentenceKey, text string) int64 {
	if id, ok := r.sentenceIDs[key]; ok {
		return id
	}
	id := int64(len(r.Corpus))
	r.sentenceIDs[key] = id
	r.Corpus = append(r.Corpus, model.TaskDocument{DocID: id, Title: nil, Abstract: []string{text}})
	return id
}

func (r *Result) addTask(ref model.EvidenceRef, claim string, docID int64) {
	id := int64(len(r.Tasks))
	r.Tasks = append(r.Tasks, model.TaskClaim{ID: id, Claim: claim, DocIDs: []int64{docID}})
	r.Refs[id] = ref
	r.taskIDs[ref] = id
}

// Generator enumerates cross-document evidence pairs
type Generator struct {
	log *logger.Logger
}

// NewGenerator creates a generator
func NewGenerator(log *logger.Logger) *Generator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Generator{log: log}
}

// Generate produces one task for every ordered pair of evidence sentences
// drawn from two different documents of the same claim. Predictions are
// visited in the given order; documents within a claim oldest first.
func (g *Generator) Generate(claims map[int64]model.Claim, corpus map[int64]*model.Document, predictions []model.PredictionRecord) (*Result, error) {
	res := newResult()
	seen := mapset.NewThreadUnsafeSet[int64]()

	for _, rec := range predictions {
		if !seen.Add(rec.ID) {
			return nil, &model.DataIntegrityError{Kind: model.IntegrityClaim, ID: rec.ID, ClaimID: rec.ID, Detail: "duplicate claim id"}
		}
		if len(rec.Evidence) == 0 {
			res.SkippedClaims++
			continue
		}
		if _, ok := claims[rec.ID]; !ok {
			return nil, &model.DataIntegrityError{Kind: model.IntegrityClaim, ID: rec.ID, ClaimID: rec.ID}
		}

		docs, err := dataset.OrderDocuments(rec, corpus)
		if err != nil {
			return nil, fmt.Errorf("claim %d: %w", rec.ID, err)
		}
		if len(docs) < 2 {
			res.SkippedClaims++
			continue
		}

		before := len(res.Tasks)
		g.generateClaim(res, rec.ID, docs)
		if len(res.Tasks) == before {
			res.SkippedClaims++
			continue
		}
		res.Claims++

		g.log.Debug("generated evidence pairs", "claim_id", rec.ID, "documents", len(docs), "tasks", len(res.Tasks)-before)
	}

	metrics.TasksGenerated.Add(float64(len(res.Tasks)))
	metrics.ClaimsProcessed.WithLabelValues("pairs").Add(float64(res.Claims))
	return res, nil
}

func (g *Generator) generateClaim(res *Result, claimID int64, docs []dataset.RelevantDocument) {
	for _, d := range docs {
		for i, text := range d.Evidence {
			res.addSentence(model.SentenceKey{ClaimID: claimID, DocID: d.Doc.DocID, Sentence: i}, text)
		}
	}

	for fi, first := range docs {
		for fe, text := range first.Evidence {
			for si, second := range docs {
				// a document's own sentences are never compared
				if si == fi {
					continue
				}
				for se := range second.Evidence {
					ref := model.EvidenceRef{
						ClaimID:  claimID,
						FDocID:   first.Doc.DocID,
						FDocENum: fe,
						SDocID:   second.Doc.DocID,
						SDocENum: se,
					}
					sentenceID, _ := res.SentenceID(ref.Second())
					res.addTask(ref, text, sentenceID)
				}
			}
		}
	}
}

// Write persists the task claims, task corpus and evidence map
func (r *Result) Write(claimsPath, corpusPath, mapPath string) error {
	if err := dataset.WriteJSONL(claimsPath, r.Tasks); err != nil {
		return fmt.Errorf("write task claims: %w", err)
	}
	if err := dataset.WriteJSONL(corpusPath, r.Corpus); err != nil {
		return fmt.Errorf("write task corpus: %w", err)
	}
	return dataset.WriteEvidenceMap(mapPath, r.Refs)
}
