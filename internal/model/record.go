package model

import (
	"fmt"
	"sort"
)

// PaperInfo holds citation statistics for a document
type PaperInfo struct {
	CitationCount            int `json:"citationCount"`
	InfluentialCitationCount int `json:"influentialCitationCount"`
}

// AuthorRef is an author id with its display name
type AuthorRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AuthorInfo describes a document's authors. Authors, PaperCounts,
// CitationCounts and HIndices are parallel, aligned by author position.
type AuthorInfo struct {
	Authors        []AuthorRef `json:"authors"`
	PaperCounts    []int       `json:"paperCounts"`
	CitationCounts []int       `json:"citationCounts"`
	HIndices       []int       `json:"hIndices"`

	NumAuthors          int     `json:"numAuthors"`
	MaxPaperCount       int     `json:"maxPaperCount"`
	MedianPaperCount    float64 `json:"medianPaperCount"`
	MaxCitationCount    int     `json:"maxCitationCount"`
	MedianCitationCount float64 `json:"medianCitationCount"`
	MaxHIndex           int     `json:"maxHIndex"`
	MedianHIndex        float64 `json:"medianHIndex"`
}

// Validate checks the parallel-sequence invariant
func (a *AuthorInfo) Validate() error {
	n := len(a.Authors)
	if len(a.PaperCounts) != n || len(a.CitationCounts) != n || len(a.HIndices) != n {
		return fmt.Errorf("author info misaligned: %d authors, %d paper counts, %d citation counts, %d h-indices",
			n, len(a.PaperCounts), len(a.CitationCounts), len(a.HIndices))
	}
	return nil
}

// Summarize fills the count and max/median fields from the parallel sequences
func (a *AuthorInfo) Summarize() {
	a.NumAuthors = len(a.Authors)
	a.MaxPaperCount, a.MedianPaperCount = maxMedian(a.PaperCounts)
	a.MaxCitationCount, a.MedianCitationCount = maxMedian(a.CitationCounts)
	a.MaxHIndex, a.MedianHIndex = maxMedian(a.HIndices)
}

// IDs returns the author ids in position order
func (a *AuthorInfo) IDs() []string {
	ids := make([]string, len(a.Authors))
	for i, au := range a.Authors {
		ids[i] = au.ID
	}
	return ids
}

func maxMedian(values []int) (int, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	n := len(sorted)
	median := float64(sorted[n/2])
	if n%2 == 0 {
		median = float64(sorted[n/2-1]+sorted[n/2]) / 2
	}
	return sorted[n-1], median
}

// ReferenceInfo is one entry of a document's reference list
type ReferenceInfo struct {
	IsInfluential bool     `json:"isInfluential"`
	Intents       []string `json:"intents"`
	Contexts      []string `json:"contexts,omitempty"`
}

// EvidenceSentence is one evidence sentence with its abstract index and rationale probability
type EvidenceSentence struct {
	Index int     `json:"index"`
	Text  string  `json:"text"`
	Prob  float64 `json:"prob"`
}

// DocFeatures is everything known about one relevant document of a claim
type DocFeatures struct {
	DocID       int64                   `json:"doc_id"`
	Title       string                  `json:"title"`
	Label       Label                   `json:"label"`
	LabelProb   float64                 `json:"label_prob"`
	LabelProbs  []float64               `json:"label_probs,omitempty"`
	Evidence    []EvidenceSentence      `json:"evidence"`
	Aliases     []int64                 `json:"aliases,omitempty"`
	Journal     string                  `json:"journal,omitempty"`
	PublishTime PublishTime             `json:"publish_time"`
	Paper       PaperInfo               `json:"pinfo"`
	Authors     AuthorInfo              `json:"ainfo"`
	References  map[int64]ReferenceInfo `json:"rinfo"`
}

// MetadataEmpty reports whether the metadata lookups returned nothing
func (d *DocFeatures) MetadataEmpty() bool {
	return d.Paper == (PaperInfo{}) && len(d.Authors.Authors) == 0 && len(d.References) == 0
}

// RefLink is a directed citation between two documents of the same claim
type RefLink struct {
	Source        int64    `json:"source"`
	Reference     int64    `json:"reference"`
	IsInfluential bool     `json:"isInfluential"`
	Intent        []string `json:"intent"`
}

// AuthorLink records authors shared between two documents of the same claim
type AuthorLink struct {
	Source int64    `json:"source"`
	Doc    int64    `json:"doc"`
	Common []string `json:"common"`
}

// ClaimRecord is the aggregated per-claim record consumed by the graph builder
type ClaimRecord struct {
	ClaimID     int64         `json:"claim_id"`
	Claim       string        `json:"claim"`
	Docs        []DocFeatures `json:"docs"`
	AuthorLinks []AuthorLink  `json:"alinks"`
	RefLinks    []RefLink     `json:"rlinks"`
	ELinks      []ELink       `json:"elinks"`
	Verdict     *Verdict      `json:"verdict,omitempty"`
}

// Doc returns the document with the given id
func (r *ClaimRecord) Doc(id int64) (*DocFeatures, bool) {
	for i := range r.Docs {
		if r.Docs[i].DocID == id {
			return &r.Docs[i], true
		}
	}
	return nil, false
}
