// Package score turns raw bibliometric attributes into normalized
// importance values for documents and authors.
package score

import (
	"fmt"

	"github.com/ppiankov/claimgraph/internal/model"
)

// Value is a raw attribute value; nil means unknown
type Value = *float64

// Known wraps a known value
func Known(v float64) Value { return &v }

// DocumentAttributes names the columns produced by DocumentValues
var DocumentAttributes = []string{
	"citationCount",
	"influentialCitationCount",
	"meanPaperCount",
	"meanCitationCount",
	"meanHIndex",
	"publishTime",
}

// AuthorAttributes names the columns produced by AuthorValues
var AuthorAttributes = []string{"paperCount", "citationCount", "hIndex"}

// Table holds one row of raw attribute values per entity
type Table struct {
	Keys []string
	Rows [][]Value
}

// Add appends an entity
func (t *Table) Add(key string, row []Value) {
	t.Keys = append(t.Keys, key)
	t.Rows = append(t.Rows, row)
}

// Result holds the importance of every entity together with its raw values
type Result struct {
	Attributes []string
	Scores     map[string]float64
	Raw        map[string][]Value
}

// Scorer computes importance values within a configured output range
type Scorer struct {
	sizeMin        float64
	sizeMax        float64
	usePublishTime bool
}

// NewScorer creates a scorer from the graph configuration
func NewScorer(cfg model.GraphConfig) *Scorer {
	return &Scorer{
		sizeMin:        cfg.SizeMin,
		sizeMax:        cfg.SizeMax,
		usePublishTime: cfg.UsePublishTime,
	}
}

// Score scales every attribute to [0, 1] across the entities, averages
// each entity's scaled attributes, then scales the averages into the
// output range.
func (s *Scorer) Score(t Table) (map[string]float64, error) {
	if len(t.Keys) != len(t.Rows) {
		return nil, fmt.Errorf("score table has %d keys and %d rows", len(t.Keys), len(t.Rows))
	}
	scores := make(map[string]float64, len(t.Keys))
	if len(t.Rows) == 0 {
		return scores, nil
	}

	width := len(t.Rows[0])
	for i, row := range t.Rows {
		if len(row) != width {
			return nil, fmt.Errorf("entity %q has %d attributes, want %d", t.Keys[i], len(row), width)
		}
	}

	means := make([]float64, len(t.Rows))
	column := make([]Value, len(t.Rows))
	for a := 0; a < width; a++ {
		for i, row := range t.Rows {
			column[i] = row[a]
		}
		for i, v := range ScaleValues(column, 0, 1) {
			means[i] += v
		}
	}

	averaged := make([]Value, len(means))
	for i := range means {
		if width > 0 {
			means[i] /= float64(width)
		}
		averaged[i] = Known(means[i])
	}

	for i, v := range ScaleValues(averaged, s.sizeMin, s.sizeMax) {
		scores[t.Keys[i]] = v
	}
	return scores, nil
}

// ScoreDocuments computes document importance keyed by document node id
func (s *Scorer) ScoreDocuments(docs []model.DocFeatures) (*Result, error) {
	var t Table
	for i := range docs {
		t.Add(model.DocumentNodeID(docs[i].DocID), DocumentValues(&docs[i], s.usePublishTime))
	}
	return s.result(DocumentAttributes, t)
}

// ScoreAuthors computes author importance keyed by author id
func (s *Scorer) ScoreAuthors(docs []model.DocFeatures) (*Result, error) {
	return s.result(AuthorAttributes, AuthorValues(docs))
}

func (s *Scorer) result(attrs []string, t Table) (*Result, error) {
	scores, err := s.Score(t)
	if err != nil {
		return nil, err
	}
	raw := make(map[string][]Value, len(t.Keys))
	for i, k := range t.Keys {
		raw[k] = t.Rows[i]
	}
	return &Result{Attributes: attrs, Scores: scores, Raw: raw}, nil
}

// DocumentValues extracts the raw importance attributes of a document. Mean
// author statistics are unknown for documents without authors, and the
// publish time is unknown for undated documents or when disabled.
func DocumentValues(doc *model.DocFeatures, usePublishTime bool) []Value {
	values := []Value{
		Known(float64(doc.Paper.CitationCount)),
		Known(float64(doc.Paper.InfluentialCitationCount)),
		mean(doc.Authors.PaperCounts),
		mean(doc.Authors.CitationCounts),
		mean(doc.Authors.HIndices),
		nil,
	}
	if usePublishTime && doc.PublishTime.Valid() {
		values[5] = Known(float64(doc.PublishTime.Time().Unix()))
	}
	return values
}

// AuthorValues collects paper count, citation count and h-index for every
// distinct author, in order of first appearance. The first occurrence of an
// author wins.
func AuthorValues(docs []model.DocFeatures) Table {
	var t Table
	seen := make(map[string]struct{})
	for _, d := range docs {
		a := d.Authors
		for i, au := range a.Authors {
			if _, ok := seen[au.ID]; ok {
				continue
			}
			seen[au.ID] = struct{}{}
			t.Add(au.ID, []Value{
				Known(float64(at(a.PaperCounts, i))),
				Known(float64(at(a.CitationCounts, i))),
				Known(float64(at(a.HIndices, i))),
			})
		}
	}
	return t
}

func at(values []int, i int) int {
	if i < len(values) {
		return values[i]
	}
	return 0
}

func mean(values []int) Value {
	if len(values) == 0 {
		return nil
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return Known(float64(sum) / float64(len(values)))
}
