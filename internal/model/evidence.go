package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Label is a stance prediction
type Label string

const (
	LabelSupport    Label = "SUPPORT"
	LabelContradict Label = "CONTRADICT"
)

// Index returns the label's position in the [CONTRADICT, NEI, SUPPORT] probability vector
func (l Label) Index() int {
	switch l {
	case LabelContradict:
		return 0
	case LabelSupport:
		return 2
	default:
		return 1
	}
}

// Prediction is the stance model's output for one claim x document
type Prediction struct {
	Label         Label     `json:"label" validate:"required,oneof=SUPPORT CONTRADICT"`
	LabelProbs    []float64 `json:"label_probs,omitempty" validate:"omitempty,len=3,dive,gte=0,lte=1"`
	Sentences     []int     `json:"sentences" validate:"dive,gte=0"`
	SentenceProbs []float64 `json:"sentences_probs,omitempty" validate:"omitempty,dive,gte=0,lte=1"`
}

// Confidence is the probability assigned to the predicted label. Predictions
// without a probability vector count as fully confident.
func (p Prediction) Confidence() float64 {
	if len(p.LabelProbs) != 3 {
		return 1
	}
	return p.LabelProbs[p.Label.Index()]
}

// SentenceConfidence returns the rationale probability of the i-th evidence
// sentence. Probabilities are either parallel to Sentences or indexed by
// abstract position.
func (p Prediction) SentenceConfidence(i int) float64 {
	if i < 0 || i >= len(p.Sentences) {
		return 0
	}
	if len(p.SentenceProbs) == len(p.Sentences) {
		return p.SentenceProbs[i]
	}
	if idx := p.Sentences[i]; idx < len(p.SentenceProbs) {
		return p.SentenceProbs[idx]
	}
	return 1
}

// PredictionRecord holds every document prediction for one claim (or one
// synthetic task in the second pass). Documents with an empty entry are
// absent from Evidence.
type PredictionRecord struct {
	ID       int64                `json:"id"`
	Evidence map[int64]Prediction `json:"evidence"`
}

// SentenceKey identifies one evidence sentence of one document under one claim
type SentenceKey struct {
	ClaimID  int64
	DocID    int64
	Sentence int
}

// EvidenceRef maps a synthetic task back to the pair of evidence sentences it compares.
// Sentence numbers are positions within the document's evidence list.
type EvidenceRef struct {
	ClaimID  int64 `json:"claim_id"`
	FDocID   int64 `json:"fdoc_id"`
	FDocENum int   `json:"fdoc_e_num"`
	SDocID   int64 `json:"sdoc_id"`
	SDocENum int   `json:"sdoc_e_num"`
}

// First returns the key of the sentence posed as the claim
func (r EvidenceRef) First() SentenceKey {
	return SentenceKey{ClaimID: r.ClaimID, DocID: r.FDocID, Sentence: r.FDocENum}
}

// Second returns the key of the sentence posed as the document
func (r EvidenceRef) Second() SentenceKey {
	return SentenceKey{ClaimID: r.ClaimID, DocID: r.SDocID, Sentence: r.SDocENum}
}

// TaskClaim is one synthetic claim-vs-document comparison
type TaskClaim struct {
	ID     int64   `json:"id"`
	Claim  string  `json:"claim"`
	DocIDs []int64 `json:"doc_ids"`
}

// TaskDocument is a single evidence sentence exposed as a one-sentence document
type TaskDocument struct {
	DocID    int64    `json:"doc_id"`
	Title    *string  `json:"title"`
	Abstract []string `json:"abstract"`
}

// ELink is a second-pass stance prediction between two evidence sentences
type ELink struct {
	EvidenceRef
	Label     Label   `json:"label"`
	LabelProb float64 `json:"label_prob"`
	SentProb  float64 `json:"sent_prob"`
}

// EvidenceKey is the composite id of an evidence node: document plus
// zero-based position in the document's evidence list
type EvidenceKey struct {
	DocID    int64
	Sentence int
}

// String renders the node id
func (k EvidenceKey) String() string {
	return fmt.Sprintf("%d_%d", k.DocID, k.Sentence)
}

// ParseEvidenceKey parses a node id produced by EvidenceKey.String
func ParseEvidenceKey(id string) (EvidenceKey, error) {
	doc, sent, ok := strings.Cut(id, "_")
	if !ok {
		return EvidenceKey{}, fmt.Errorf("not an evidence id: %q", id)
	}
	docID, err := strconv.ParseInt(doc, 10, 64)
	if err != nil {
		return EvidenceKey{}, fmt.Errorf("parse document of %q: %w", id, err)
	}
	n, err := strconv.Atoi(sent)
	if err != nil || n < 0 {
		return EvidenceKey{}, fmt.Errorf("parse sentence of %q", id)
	}
	return EvidenceKey{DocID: docID, Sentence: n}, nil
}
