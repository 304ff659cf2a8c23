package graph

import (
	"github.com/ppiankov/claimgraph/internal/metrics"
	"github.com/ppiankov/claimgraph/internal/model"
)

// endpoints is an ordered node pair
type endpoints struct {
	source string
	target string
}

func (e endpoints) reverse() endpoints {
	return endpoints{source: e.target, target: e.source}
}

type slot struct {
	link    model.Link
	dropped bool
	done    bool
}

// IsEvidenceID reports whether a node id names an evidence sentence
func IsEvidenceID(id string) bool {
	_, err := model.ParseEvidenceKey(id)
	return err == nil
}

// Reconcile resolves evidence-evidence links predicted in both directions.
// For each unordered pair of evidence nodes: a link in one direction only is
// kept as is; two links with the same label become one bidirectional link at
// the position of the first, carrying the mean width and mean sentence
// probability; two links with different labels are both removed. A repeated
// link in the same direction replaces the earlier one. All other links pass
// through in their original order.
func Reconcile(links []model.Link, isEvidence func(id string) bool) []model.Link {
	slots := make([]slot, 0, len(links))
	index := make(map[endpoints]int)

	for _, l := range links {
		if !isEvidence(l.Source) || !isEvidence(l.Target) {
			slots = append(slots, slot{link: l, done: true})
			continue
		}
		key := endpoints{source: l.Source, target: l.Target}
		if i, ok := index[key]; ok {
			slots[i].link = l
			continue
		}
		index[key] = len(slots)
		slots = append(slots, slot{link: l})
	}

	for i := range slots {
		s := &slots[i]
		if s.done {
			continue
		}
		s.done = true

		key := endpoints{source: s.link.Source, target: s.link.Target}
		j, ok := index[key.reverse()]
		if !ok || j == i {
			metrics.EvidenceLinkDecisions.WithLabelValues("unidirectional").Inc()
			continue
		}

		back := &slots[j]
		back.done = true
		back.dropped = true
		if s.link.Label != back.link.Label {
			s.dropped = true
			metrics.EvidenceLinkDecisions.WithLabelValues("dropped").Inc()
			continue
		}
		s.link = merge(s.link, back.link)
		metrics.EvidenceLinkDecisions.WithLabelValues("merged").Inc()
	}

	out := make([]model.Link, 0, len(slots))
	for _, s := range slots {
		if !s.dropped {
			out = append(out, s.link)
		}
	}
	return out
}

func merge(forward, backward model.Link) model.Link {
	merged := forward
	merged.Width = (forward.Width + backward.Width) / 2
	switch {
	case forward.SentProb != nil && backward.SentProb != nil:
		p := (*forward.SentProb + *backward.SentProb) / 2
		merged.SentProb = &p
	case forward.SentProb == nil:
		merged.SentProb = backward.SentProb
	}
	bidirectional := true
	merged.Bidirectional = &bidirectional
	return merged
}
