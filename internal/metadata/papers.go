package metadata

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/claimgraph/internal/model"
	"github.com/tidwall/gjson"
)

func corpusPaperID(corpusID int64) string {
	return fmt.Sprintf("corpusid:%d", corpusID)
}

// Paper returns citation statistics for a document
func (c *Client) Paper(ctx context.Context, corpusID int64) model.PaperInfo {
	body, ok := c.get(ctx, "paper", c.paperURL(corpusPaperID(corpusID), "", "fields=citationCount,influentialCitationCount"))
	if !ok {
		c.log.Warn("paper metadata unavailable", "corpus_id", corpusID)
		return model.PaperInfo{}
	}
	return model.PaperInfo{
		CitationCount:            int(gjson.GetBytes(body, "citationCount").Int()),
		InfluentialCitationCount: int(gjson.GetBytes(body, "influentialCitationCount").Int()),
	}
}

// Authors returns the document's authors with their statistics. Names are
// recorded in names, and taken from it when the response omits one.
func (c *Client) Authors(ctx context.Context, corpusID int64, names *AuthorNames) model.AuthorInfo {
	info := model.AuthorInfo{
		Authors:        []model.AuthorRef{},
		PaperCounts:    []int{},
		CitationCounts: []int{},
		HIndices:       []int{},
	}

	fields := "fields=authors.name,authors.paperCount,authors.citationCount,authors.hIndex"
	body, ok := c.get(ctx, "authors", c.paperURL(corpusPaperID(corpusID), "", fields))
	if !ok {
		c.log.Warn("author metadata unavailable", "corpus_id", corpusID)
		return info
	}

	gjson.GetBytes(body, "authors").ForEach(func(_, a gjson.Result) bool {
		id := a.Get("authorId").String()
		if id == "" {
			c.log.Debug("skipping author without id", "corpus_id", corpusID, "name", a.Get("name").String())
			return true
		}
		name := a.Get("name").String()
		if names != nil {
			if name == "" {
				name, _ = names.Name(id)
			} else {
				names.Set(id, name)
			}
		}

		info.Authors = append(info.Authors, model.AuthorRef{ID: id, Name: name})
		info.PaperCounts = append(info.PaperCounts, int(a.Get("paperCount").Int()))
		info.CitationCounts = append(info.CitationCounts, int(a.Get("citationCount").Int()))
		info.HIndices = append(info.HIndices, int(a.Get("hIndex").Int()))
		return true
	})

	info.Summarize()
	return info
}

// References returns the document's reference list keyed by the cited
// paper's corpus id. Cited papers without external ids are dropped.
func (c *Client) References(ctx context.Context, corpusID int64) map[int64]model.ReferenceInfo {
	refs := make(map[int64]model.ReferenceInfo)

	query := "fields=externalIds,contexts,intents,isInfluential&limit=1000"
	body, ok := c.get(ctx, "references", c.paperURL(corpusPaperID(corpusID), "/references", query))
	if !ok {
		c.log.Warn("reference metadata unavailable", "corpus_id", corpusID)
		return refs
	}

	gjson.GetBytes(body, "data").ForEach(func(_, r gjson.Result) bool {
		cited := r.Get("citedPaper.externalIds.CorpusId")
		if !cited.Exists() || cited.Type == gjson.Null {
			return true
		}
		refs[cited.Int()] = model.ReferenceInfo{
			IsInfluential: r.Get("isInfluential").Bool(),
			Intents:       stringArray(r.Get("intents")),
			Contexts:      stringArray(r.Get("contexts")),
		}
		return true
	})
	return refs
}

// idPrefixes maps identifier types to the API's paper id prefixes
var idPrefixes = map[string]string{
	"s2":     "",
	"doi":    "",
	"arxiv":  "arXiv:",
	"mag":    "MAG:",
	"acl":    "ACL:",
	"pubmed": "PMID:",
	"pmc":    "PMCID:",
}

// IDTypes lists the identifier types CorpusID accepts
func IDTypes() []string {
	return []string{"s2", "doi", "arxiv", "mag", "acl", "pubmed", "pmc"}
}

// CorpusID resolves an external paper identifier to its corpus id. found is
// false when the API has no match; err is set only for an unknown idType.
func (c *Client) CorpusID(ctx context.Context, id, idType string) (corpusID int64, found bool, err error) {
	prefix, ok := idPrefixes[strings.ToLower(idType)]
	if !ok {
		return 0, false, fmt.Errorf("unknown id type %q (want one of %s)", idType, strings.Join(IDTypes(), ", "))
	}
	id = strings.TrimSpace(id)
	if strings.EqualFold(idType, "pmc") {
		// PMC ids arrive as "PMC1234"; the API wants the bare number
		if len(id) < 3 {
			return 0, false, fmt.Errorf("pmc id %q too short", id)
		}
		id = id[3:]
	}

	body, ok := c.get(ctx, "resolve", c.paperURL(prefix+id, "", "fields=externalIds"))
	if !ok {
		return 0, false, nil
	}
	cid := gjson.GetBytes(body, "externalIds.CorpusId")
	if !cid.Exists() || cid.Type == gjson.Null {
		return 0, false, nil
	}
	return cid.Int(), true, nil
}

func stringArray(r gjson.Result) []string {
	out := []string{}
	r.ForEach(func(_, v gjson.Result) bool {
		out = append(out, v.String())
		return true
	})
	return out
}
