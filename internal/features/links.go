package features

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ppiankov/claimgraph/internal/model"
)

// RefLinks finds citations between documents of the same claim. For each
// ordered pair (A, B) the first of B's identities (corpus id, then aliases
// in stored order) present in A's reference list yields one link A->B.
func RefLinks(docs []model.DocFeatures) []model.RefLink {
	links := []model.RefLink{}
	for i := range docs {
		src := &docs[i]
		if len(src.References) == 0 {
			continue
		}
		for j := range docs {
			if i == j {
				continue
			}
			dst := &docs[j]
			for _, id := range identities(dst) {
				ref, ok := src.References[id]
				if !ok {
					continue
				}
				intent := ref.Intents
				if intent == nil {
					intent = []string{}
				}
				links = append(links, model.RefLink{
					Source:        src.DocID,
					Reference:     dst.DocID,
					IsInfluential: ref.IsInfluential,
					Intent:        intent,
				})
				break
			}
		}
	}
	return links
}

func identities(d *model.DocFeatures) []int64 {
	ids := make([]int64, 0, len(d.Aliases)+1)
	ids = append(ids, d.DocID)
	return append(ids, d.Aliases...)
}

// AuthorLinks finds documents sharing authors. Pairs are scanned in index
// order and only the first co-authored partner of each source document is
// kept, so the result is not a full adjacency list.
func AuthorLinks(docs []model.DocFeatures) []model.AuthorLink {
	sets := make([]mapset.Set[string], len(docs))
	for i := range docs {
		sets[i] = mapset.NewSet[string](docs[i].Authors.IDs()...)
	}

	links := []model.AuthorLink{}
	for i := range docs {
		if sets[i].Cardinality() == 0 {
			continue
		}
		for j := i + 1; j < len(docs); j++ {
			common := sets[i].Intersect(sets[j])
			if common.Cardinality() == 0 {
				continue
			}
			ids := common.ToSlice()
			sort.Strings(ids)
			links = append(links, model.AuthorLink{
				Source: docs[i].DocID,
				Doc:    docs[j].DocID,
				Common: ids,
			})
			break
		}
	}
	return links
}

// Verdict is the majority vote over document stances; ties count as support
func Verdict(docs []model.DocFeatures) *model.Verdict {
	if len(docs) == 0 {
		return nil
	}
	support := 0
	for _, d := range docs {
		if d.Label == model.LabelSupport {
			support++
		}
	}
	v := &model.Verdict{
		Label:        model.LabelContradict,
		SupportRatio: float64(support) / float64(len(docs)),
		Documents:    len(docs),
	}
	if 2*support >= len(docs) {
		v.Label = model.LabelSupport
	}
	return v
}
