package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/ppiankov/claimgraph/internal/model"
)

// validate checks record shapes at the input boundary
var validate = validator.New()

// ReadClaims loads the claims file keyed by claim id
func ReadClaims(path string) (map[int64]model.Claim, error) {
	claims := make(map[int64]model.Claim)
	err := ReadJSONL(path, func(_ int, raw []byte) error {
		var c model.Claim
		if err := json.Unmarshal(raw, &c); err != nil {
			return fmt.Errorf("decode claim: %w", err)
		}
		if err := validate.Struct(c); err != nil {
			return fmt.Errorf("claim %d: %w", c.ID, err)
		}
		claims[c.ID] = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}
	return claims, nil
}

// ReadCorpus loads the document corpus keyed by corpus id
func ReadCorpus(path string) (map[int64]*model.Document, error) {
	corpus := make(map[int64]*model.Document)
	err := ReadJSONL(path, func(_ int, raw []byte) error {
		var d model.Document
		if err := json.Unmarshal(raw, &d); err != nil {
			return fmt.Errorf("decode document: %w", err)
		}
		corpus[d.DocID] = &d
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return corpus, nil
}

type rawPredictionRecord struct {
	ID       int64                      `json:"id"`
	Evidence map[string]json.RawMessage `json:"evidence"`
}

// ReadPredictions loads stance predictions in file order. Empty evidence
// entries are dropped, so a record with no usable entries has an empty map.
func ReadPredictions(path string) ([]model.PredictionRecord, error) {
	var records []model.PredictionRecord
	err := ReadJSONL(path, func(_ int, raw []byte) error {
		rec, err := DecodePredictionRecord(raw)
		if err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read predictions: %w", err)
	}
	return records, nil
}

// DecodePredictionRecord decodes and validates one predictions line
func DecodePredictionRecord(raw []byte) (model.PredictionRecord, error) {
	var r rawPredictionRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		return model.PredictionRecord{}, fmt.Errorf("decode prediction record: %w", err)
	}

	rec := model.PredictionRecord{ID: r.ID, Evidence: make(map[int64]model.Prediction, len(r.Evidence))}
	for key, entry := range r.Evidence {
		docID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return rec, fmt.Errorf("record %d: document key %q: %w", r.ID, key, err)
		}
		p, ok, err := DecodePrediction(entry)
		if err != nil {
			return rec, fmt.Errorf("record %d document %d: %w", r.ID, docID, err)
		}
		if ok {
			rec.Evidence[docID] = p
		}
	}
	return rec, nil
}

// DecodePrediction decodes one evidence entry. An empty object or null
// means "no evidence" and reports ok=false. Unknown fields are rejected.
func DecodePrediction(raw json.RawMessage) (model.Prediction, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(bytes.Join(bytes.Fields(trimmed), nil), []byte("{}")) {
		return model.Prediction{}, false, nil
	}

	var p model.Prediction
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return p, false, fmt.Errorf("decode prediction: %w", err)
	}
	clampProbabilities(p.LabelProbs)
	clampProbabilities(p.SentenceProbs)
	if err := validate.Struct(p); err != nil {
		return p, false, fmt.Errorf("invalid prediction: %w", err)
	}
	return p, true, nil
}

// probTolerance absorbs float rounding in softmax outputs
const probTolerance = 1e-6

// clampProbabilities pulls values within probTolerance of [0, 1] into the
// range; anything further out is left for validation to reject
func clampProbabilities(probs []float64) {
	for i, v := range probs {
		switch {
		case v > 1 && v <= 1+probTolerance:
			probs[i] = 1
		case v < 0 && v >= -probTolerance:
			probs[i] = 0
		}
	}
}

// SortedDocIDs returns the record's document ids in ascending order
func SortedDocIDs(rec model.PredictionRecord) []int64 {
	ids := make([]int64, 0, len(rec.Evidence))
	for id := range rec.Evidence {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ReadEvidenceMap loads the synthetic task id -> evidence pair map
func ReadEvidenceMap(path string) (map[int64]model.EvidenceRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read evidence map: %w", err)
	}
	var raw map[string]model.EvidenceRef
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode evidence map: %w", err)
	}
	out := make(map[int64]model.EvidenceRef, len(raw))
	for key, ref := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("evidence map key %q: %w", key, err)
		}
		out[id] = ref
	}
	return out, nil
}

// WriteEvidenceMap writes the task map as one JSON object keyed by decimal task id
func WriteEvidenceMap(path string, refs map[int64]model.EvidenceRef) error {
	if err := writeJSON(path, refs); err != nil {
		return fmt.Errorf("write evidence map: %w", err)
	}
	return nil
}

// ReadRecords loads aggregated claim records
func ReadRecords(path string) ([]model.ClaimRecord, error) {
	var records []model.ClaimRecord
	err := ReadJSONL(path, func(_ int, raw []byte) error {
		var r model.ClaimRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			return fmt.Errorf("decode claim record: %w", err)
		}
		for i := range r.Docs {
			if err := r.Docs[i].Authors.Validate(); err != nil {
				return fmt.Errorf("claim %d document %d: %w", r.ClaimID, r.Docs[i].DocID, err)
			}
		}
		records = append(records, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return records, nil
}

// ReadGraphs loads persisted graphs
func ReadGraphs(path string) ([]model.Graph, error) {
	var graphs []model.Graph
	err := ReadJSONL(path, func(_ int, raw []byte) error {
		var g model.Graph
		if err := json.Unmarshal(raw, &g); err != nil {
			return fmt.Errorf("decode graph: %w", err)
		}
		graphs = append(graphs, g)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read graphs: %w", err)
	}
	return graphs, nil
}
